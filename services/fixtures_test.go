package services

import (
	"io"
	"testing"

	"smart-price/models"
	"smart-price/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLoggerTo(io.Discard) }

func sampleRaw() []*models.RawListing {
	return []*models.RawListing{
		{Row: 1, Name: "Maruti Swift Dzire VDI", Year: "2015", KmDriven: "50000", Fuel: "Petrol",
			SellerType: "Individual", Transmission: "Manual", Owner: "First Owner",
			Mileage: "18.5 kmpl", Engine: "1197 CC", MaxPower: "82 bhp", Seats: "5", SellingPrice: "400000"},
		{Row: 2, Name: "Hyundai i20 Sportz Diesel", Year: "2017", KmDriven: "30000", Fuel: "Diesel",
			SellerType: "Dealer", Transmission: "Manual", Owner: "First Owner",
			Mileage: "22.54 kmpl", Engine: "1396 CC", MaxPower: "88.73 bhp", Seats: "5", SellingPrice: "650000"},
		{Row: 3, Name: "Honda City 1.5 V AT", Year: "2012", KmDriven: "90000", Fuel: "Petrol",
			SellerType: "Individual", Transmission: "Automatic", Owner: "Second Owner",
			Mileage: "17.0 kmpl", Engine: "1497 CC", MaxPower: "117.3 bhp", Seats: "5", SellingPrice: "350000"},
	}
}

func sampleListings(t *testing.T) []*models.Listing {
	t.Helper()
	listings, stats := NewCleaner(newTestLogger(), nil).Clean(sampleRaw(), true)
	if stats.Dropped() != 0 {
		t.Fatalf("sample rows dropped: %v", stats.DroppedByField)
	}
	return listings
}

func trainedPredictor(t *testing.T) *Predictor {
	t.Helper()
	listings := sampleListings(t)
	a, err := NewTrainer(newTestLogger(), 1e-6).Train(listings, DatasetFingerprint(listings))
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	p, err := NewPredictor(a, newTestLogger(), nil)
	if err != nil {
		t.Fatalf("NewPredictor: %v", err)
	}
	return p
}

func marutiRequest() *models.PredictionRequest {
	return &models.PredictionRequest{
		Year: 2015, KmDriven: 50000, Mileage: 18.5, Engine: 1197, MaxPower: 82, Seats: 5,
		Brand: "Maruti", Fuel: "Petrol", SellerType: "Individual",
		Transmission: "Manual", Owner: "First Owner",
	}
}
