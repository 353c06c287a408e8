package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"smart-price/metrics"
	"smart-price/models"
	"smart-price/utils"
)

// MinPrice is the floor applied to every predicted price.
const MinPrice = 10000.0

// ClampPrice floors raw at MinPrice. Non-finite model output is floored too.
// The second result reports whether the floor was applied.
func ClampPrice(raw float64) (float64, bool) {
	if math.IsNaN(raw) || raw < MinPrice {
		return MinPrice, true
	}
	if math.IsInf(raw, 1) {
		return math.MaxFloat64, false
	}
	return raw, false
}

// Predictor is the inference core. It holds a validated artifact that is
// never mutated after construction, so one Predictor serves any number of
// goroutines without locking.
type Predictor struct {
	artifact *models.Artifact
	encoder  *Encoder
	model    Model
	logger   *utils.Logger
	metrics  *metrics.Metrics
}

// NewPredictor validates the artifact and prepares it for serving. An
// artifact that does not match the feature layout is ErrModelUnavailable.
func NewPredictor(a *models.Artifact, logger *utils.Logger, m *metrics.Metrics) (*Predictor, error) {
	if err := ValidateArtifact(a); err != nil {
		return nil, err
	}
	enc, err := NewEncoder(a.Categories)
	if err != nil {
		return nil, err
	}
	model, err := NewLinear(a.Model)
	if err != nil {
		return nil, err
	}
	return &Predictor{artifact: a, encoder: enc, model: model, logger: logger, metrics: m}, nil
}

// Artifact returns the loaded artifact. Callers must treat it as read-only.
func (p *Predictor) Artifact() *models.Artifact {
	return p.artifact
}

// Encoder returns the encoder built from the artifact's category maps.
func (p *Predictor) Encoder() *Encoder {
	return p.encoder
}

// Encode turns a request into the feature vector the model was trained on.
// Numeric values must satisfy the same bounds as training rows; labels are
// trimmed the same way.
func (p *Predictor) Encode(req *models.PredictionRequest) (FeatureVector, error) {
	numeric := req.Numeric()
	for i, v := range numeric {
		col := models.NumericColumns[i]
		if !numericInDomain(col, v) {
			return FeatureVector{}, fmt.Errorf("%w: %s=%v is out of range", ErrInvalidRequest, col, v)
		}
	}
	labels := req.Labels()
	for i := range labels {
		labels[i] = strings.TrimSpace(labels[i])
	}
	codes, err := p.encoder.Encode(labels)
	if err != nil {
		return FeatureVector{}, err
	}
	return BuildFeatureVector(numeric, codes), nil
}

// Evaluate invokes the model on an encoded vector and applies the price floor.
func (p *Predictor) Evaluate(v FeatureVector) *models.Prediction {
	raw := p.model.Predict(v)
	price, floored := ClampPrice(raw)
	return &models.Prediction{
		Price:      decimal.NewFromFloat(price).Round(0),
		Raw:        raw,
		Floored:    floored,
		ArtifactID: p.artifact.ID.String(),
	}
}

// Predict encodes req and evaluates the model. Unknown labels fail with
// *UnknownCategoryError before the model is invoked.
func (p *Predictor) Predict(req *models.PredictionRequest) (*models.Prediction, error) {
	start := time.Now()
	v, err := p.Encode(req)
	if err != nil {
		p.metrics.PredictionFailed(err)
		p.logger.Debug("[predictor] Rejected request: %v", err)
		return nil, err
	}
	pred := p.Evaluate(v)
	p.metrics.PredictionServed(pred.Floored, time.Since(start))
	return pred, nil
}
