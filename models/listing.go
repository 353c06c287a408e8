package models

import "time"

// RawListing holds one dataset row exactly as read from the source file,
// before any numeric extraction or validation.
type RawListing struct {
	Row          int
	Name         string
	Year         string
	KmDriven     string
	Fuel         string
	SellerType   string
	Transmission string
	Owner        string
	Mileage      string
	Engine       string
	MaxPower     string
	Seats        string
	SellingPrice string
}

// Listing is the cleaned, validated record used for encoding and training.
// Brand holds the manufacturer token only ("Maruti"), Name keeps the full
// model text for storage.
type Listing struct {
	ID           int64
	Name         string
	Brand        string
	Year         int
	KmDriven     int
	Fuel         string
	SellerType   string
	Transmission string
	Owner        string
	Mileage      float64
	Engine       float64
	MaxPower     float64
	Seats        int
	SellingPrice float64
	HasPrice     bool
	CreatedAt    time.Time
}

// Labels returns the five categorical labels in feature order.
func (l *Listing) Labels() [5]string {
	return [5]string{l.Brand, l.Fuel, l.SellerType, l.Transmission, l.Owner}
}

// Numeric returns the six numeric fields in feature order.
func (l *Listing) Numeric() [6]float64 {
	return [6]float64{
		float64(l.Year),
		float64(l.KmDriven),
		l.Mileage,
		l.Engine,
		l.MaxPower,
		float64(l.Seats),
	}
}
