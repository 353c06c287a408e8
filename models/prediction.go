package models

import "github.com/shopspring/decimal"

// PredictionRequest is the typed input of one price estimate.
type PredictionRequest struct {
	Year         float64 `json:"year"`
	KmDriven     float64 `json:"km_driven"`
	Mileage      float64 `json:"mileage"`
	Engine       float64 `json:"engine"`
	MaxPower     float64 `json:"max_power"`
	Seats        float64 `json:"seats"`
	Brand        string  `json:"brand"`
	Fuel         string  `json:"fuel"`
	SellerType   string  `json:"seller_type"`
	Transmission string  `json:"transmission"`
	Owner        string  `json:"owner"`
}

// Labels returns the five categorical labels in feature order.
func (r *PredictionRequest) Labels() [5]string {
	return [5]string{r.Brand, r.Fuel, r.SellerType, r.Transmission, r.Owner}
}

// Numeric returns the six numeric fields in feature order.
func (r *PredictionRequest) Numeric() [6]float64 {
	return [6]float64{r.Year, r.KmDriven, r.Mileage, r.Engine, r.MaxPower, r.Seats}
}

// Prediction is the outcome of one estimate. Raw is the unclamped model output.
type Prediction struct {
	Price      decimal.Decimal `json:"price"`
	Raw        float64         `json:"raw"`
	Floored    bool            `json:"floored"`
	ArtifactID string          `json:"artifact_id"`
}

// NumericRange describes the bounds and default of one numeric form input.
type NumericRange struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// FormOptions holds everything a presentation layer needs to build an input
// form: category choices from the trained artifact and numeric bounds from
// the live dataset.
type FormOptions struct {
	Categories map[string][]string     `json:"categories"`
	Ranges     map[string]NumericRange `json:"ranges"`
	Rows       int                     `json:"rows"`
}

// DatasetSummary holds an overview of a cleaned dataset.
type DatasetSummary struct {
	TotalListings   int
	PricedListings  int
	AveragePrice    float64
	MinPrice        float64
	MaxPrice        float64
	MostExpensive   *Listing
	ListingsByBrand map[string]int
}

// BatchResult pairs one input row with its prediction or failure.
type BatchResult struct {
	Input      *RawListing
	Prediction *Prediction
	Err        error
}
