package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"smart-price/models"
	"smart-price/utils"
)

// AlgorithmRidgeOLS names the fitted model family recorded in artifacts.
const AlgorithmRidgeOLS = "ridge-ols"

// Trainer fits a price model on cleaned listings and packages it together
// with the category maps it was trained against.
type Trainer struct {
	logger    *utils.Logger
	regressor *LinearRegression
}

// NewTrainer creates a Trainer using ridge-regularised least squares.
func NewTrainer(logger *utils.Logger, lambda float64) *Trainer {
	return &Trainer{logger: logger, regressor: &LinearRegression{Lambda: lambda}}
}

// Train builds category maps, encodes every listing in row order and fits the
// regressor. datasetFingerprint identifies the cleaned training rows and may be empty.
func (t *Trainer) Train(listings []*models.Listing, datasetFingerprint string) (*models.Artifact, error) {
	if len(listings) == 0 {
		return nil, fmt.Errorf("trainer: %w: no rows left after cleaning", ErrEmptyDataset)
	}

	maps := BuildCategoryMaps(listings)
	enc, err := NewEncoder(maps)
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}
	x, err := BuildFeatureMatrix(enc, listings)
	if err != nil {
		return nil, fmt.Errorf("trainer: encode: %w", err)
	}

	y := make([]float64, len(listings))
	for i, l := range listings {
		if !l.HasPrice {
			return nil, fmt.Errorf("trainer: row %d has no selling price", i)
		}
		y[i] = l.SellingPrice
	}

	model, err := t.regressor.FitLinear(x, y)
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}

	artifact := &models.Artifact{
		ID:                 uuid.New(),
		TrainedAt:          time.Now().UTC(),
		Algorithm:          AlgorithmRidgeOLS,
		Rows:               len(listings),
		Features:           append([]string{}, models.FeatureColumns...),
		Categories:         maps,
		Model:              model.LinearModel,
		RSquared:           RSquared(model, x, y),
		DatasetFingerprint: datasetFingerprint,
	}

	for _, col := range models.CategoricalColumns {
		t.logger.Debug("[trainer] %s: %d categories", col, maps[col].Len())
	}
	t.logger.Info("[trainer] Fitted %s on %d rows (R²=%.4f) artifact=%s",
		artifact.Algorithm, artifact.Rows, artifact.RSquared, artifact.ID)
	return artifact, nil
}

// ValidateArtifact checks that a loaded artifact matches the feature layout
// this build encodes. Any mismatch is ErrModelUnavailable.
func ValidateArtifact(a *models.Artifact) error {
	if a == nil {
		return fmt.Errorf("artifact: nil: %w", ErrModelUnavailable)
	}
	if len(a.Features) != len(models.FeatureColumns) {
		return fmt.Errorf("artifact: %d feature columns, want %d: %w",
			len(a.Features), len(models.FeatureColumns), ErrModelUnavailable)
	}
	for i, col := range models.FeatureColumns {
		if a.Features[i] != col {
			return fmt.Errorf("artifact: feature %d is %q, want %q: %w",
				i, a.Features[i], col, ErrModelUnavailable)
		}
	}
	if _, err := NewEncoder(a.Categories); err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	if _, err := NewLinear(a.Model); err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	return nil
}
