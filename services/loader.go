package services

import (
	"fmt"

	"smart-price/metrics"
	"smart-price/models"
	"smart-price/utils"
)

// ArtifactLoader is the read side of an artifact store.
type ArtifactLoader interface {
	Load() (*models.Artifact, error)
}

// LoadPredictor loads and validates the trained artifact. Every failure is
// reported as ErrModelUnavailable; the caller must not serve without it.
func LoadPredictor(loader ArtifactLoader, logger *utils.Logger, m *metrics.Metrics) (*Predictor, error) {
	a, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	p, err := NewPredictor(a, logger, m)
	if err != nil {
		return nil, err
	}
	logger.Info("[predictor] Loaded artifact %s (%s, %d rows, trained %s)",
		a.ID, a.Algorithm, a.Rows, a.TrainedAt.Format("2006-01-02 15:04:05"))
	return p, nil
}
