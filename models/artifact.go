package models

import (
	"time"

	"github.com/google/uuid"
)

// Categorical column names, in feature order.
const (
	ColumnName         = "name"
	ColumnFuel         = "fuel"
	ColumnSellerType   = "seller_type"
	ColumnTransmission = "transmission"
	ColumnOwner        = "owner"
)

// Numeric column names, in feature order.
const (
	ColumnYear     = "year"
	ColumnKmDriven = "km_driven"
	ColumnMileage  = "mileage"
	ColumnEngine   = "engine"
	ColumnMaxPower = "max_power"
	ColumnSeats    = "seats"
)

// ColumnSellingPrice is the training target.
const ColumnSellingPrice = "selling_price"

var (
	// NumericColumns lists the numeric feature columns in vector order.
	NumericColumns = []string{ColumnYear, ColumnKmDriven, ColumnMileage, ColumnEngine, ColumnMaxPower, ColumnSeats}
	// CategoricalColumns lists the categorical feature columns in vector order.
	CategoricalColumns = []string{ColumnName, ColumnFuel, ColumnSellerType, ColumnTransmission, ColumnOwner}
	// FeatureColumns is the full feature vector layout the model is bound to.
	FeatureColumns = append(append([]string{}, NumericColumns...), CategoricalColumns...)
)

// LinearModel is the fitted regression: price = Intercept + Coefficients·x.
type LinearModel struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Artifact is the trained model plus the category maps it was trained
// against. It is created once by the training job and never mutated after.
type Artifact struct {
	ID                 uuid.UUID               `json:"id"`
	TrainedAt          time.Time               `json:"trained_at"`
	Algorithm          string                  `json:"algorithm"`
	Rows               int                     `json:"rows"`
	Features           []string                `json:"features"`
	Categories         map[string]*CategoryMap `json:"categories"`
	Model              LinearModel             `json:"model"`
	RSquared           float64                 `json:"r_squared"`
	DatasetFingerprint string                  `json:"dataset_fingerprint,omitempty"`
}
