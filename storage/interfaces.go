package storage

import "smart-price/models"

// ListingSource yields dataset rows as raw, unvalidated strings.
type ListingSource interface {
	ReadRaw() ([]*models.RawListing, error)
}

// ListingWriter is the interface any storage backend for cleaned listings must satisfy.
type ListingWriter interface {
	Write(listings []*models.Listing) error
	Close() error
}

// ArtifactStore persists trained artifacts. Load returns the most recent one.
type ArtifactStore interface {
	Save(a *models.Artifact) error
	Load() (*models.Artifact, error)
}

// DatasetPublisher stores the cleaned training rows together with the
// artifact fitted on them, atomically.
type DatasetPublisher interface {
	Publish(listings []*models.Listing, a *models.Artifact) error
}

// ResultWriter persists batch prediction results in input order.
type ResultWriter interface {
	WriteResults(results []*models.BatchResult) error
	Close() error
}
