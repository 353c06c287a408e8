package services

import "smart-price/models"

// FeatureCount is the length of every feature vector.
const FeatureCount = 11

// FeatureVector is positionally bound to models.FeatureColumns:
// year, km_driven, mileage, engine, max_power, seats, then the name, fuel,
// seller_type, transmission and owner codes.
type FeatureVector [FeatureCount]float64

// BuildFeatureVector lays out numeric values and category codes in model order.
func BuildFeatureVector(numeric [6]float64, codes [5]int) FeatureVector {
	var v FeatureVector
	copy(v[:6], numeric[:])
	for i, code := range codes {
		v[6+i] = float64(code)
	}
	return v
}

// BuildFeatureMatrix encodes listings in row order with the given encoder.
func BuildFeatureMatrix(enc *Encoder, listings []*models.Listing) ([]FeatureVector, error) {
	rows := make([]FeatureVector, 0, len(listings))
	for _, l := range listings {
		codes, err := enc.Encode(l.Labels())
		if err != nil {
			return nil, err
		}
		rows = append(rows, BuildFeatureVector(l.Numeric(), codes))
	}
	return rows, nil
}
