package services

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smart-price/models"
)

type countingModel struct {
	calls int
	out   float64
}

func (m *countingModel) Predict(FeatureVector) float64 {
	m.calls++
	return m.out
}

func TestClampPrice(t *testing.T) {
	tests := []struct {
		raw     float64
		want    float64
		floored bool
	}{
		{-250000, MinPrice, true},
		{0, MinPrice, true},
		{9999.99, MinPrice, true},
		{10000, 10000, false},
		{450000, 450000, false},
		{math.NaN(), MinPrice, true},
		{math.Inf(-1), MinPrice, true},
	}

	for _, tt := range tests {
		got, floored := ClampPrice(tt.raw)
		if got != tt.want || floored != tt.floored {
			t.Errorf("ClampPrice(%v) = %v, %v; want %v, %v", tt.raw, got, floored, tt.want, tt.floored)
		}
	}
}

func TestEndToEndFeatureVector(t *testing.T) {
	p := trainedPredictor(t)

	if code, _ := p.Artifact().Categories[models.ColumnName].Code("Maruti"); code != 0 {
		t.Errorf("Maruti code: got %d, want 0", code)
	}

	v, err := p.Encode(marutiRequest())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := FeatureVector{2015, 50000, 18.5, 1197.0, 82.0, 5, 0, 0, 0, 0, 0}
	if v != want {
		t.Errorf("feature vector: got %v, want %v", v, want)
	}
}

func TestPredictRoundTrip(t *testing.T) {
	p := trainedPredictor(t)
	a := p.Artifact()

	pred, err := p.Predict(marutiRequest())
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	x := []float64{2015, 50000, 18.5, 1197, 82, 5, 0, 0, 0, 0, 0}
	ref := a.Model.Intercept
	for j, v := range x {
		ref += a.Model.Coefficients[j] * v
	}
	if math.Abs(pred.Raw-ref) > 1e-6*math.Max(1, math.Abs(ref)) {
		t.Errorf("raw prediction %v differs from reference %v", pred.Raw, ref)
	}
	if math.Abs(pred.Raw-400000) > 4000 {
		t.Errorf("training row should be reproduced closely: got %v, want ≈ 400000", pred.Raw)
	}
	if pred.ArtifactID != a.ID.String() {
		t.Errorf("ArtifactID: got %q, want %q", pred.ArtifactID, a.ID)
	}
}

func TestPredictFloorInvariant(t *testing.T) {
	p := trainedPredictor(t)
	floor := decimal.NewFromFloat(MinPrice)

	brands := []string{"Maruti", "Hyundai", "Honda"}
	for year := 1990.0; year <= 2025; year += 5 {
		for km := 0.0; km <= 1e6; km += 250000 {
			for _, brand := range brands {
				req := marutiRequest()
				req.Year, req.KmDriven, req.Brand = year, km, brand
				pred, err := p.Predict(req)
				if err != nil {
					t.Fatalf("Predict: %v", err)
				}
				if pred.Price.LessThan(floor) {
					t.Fatalf("price %s below floor for year=%v km=%v brand=%s", pred.Price, year, km, brand)
				}
			}
		}
	}
}

func TestPredictFloorsNegativeOutput(t *testing.T) {
	p := trainedPredictor(t)
	p.model = &countingModel{out: -1e6}

	pred, err := p.Predict(marutiRequest())
	if err != nil {
		t.Fatal(err)
	}
	if !pred.Floored || !pred.Price.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected floored price 10000, got %s (floored=%v)", pred.Price, pred.Floored)
	}
	if pred.Raw != -1e6 {
		t.Errorf("Raw: got %v, want -1e6", pred.Raw)
	}
}

func TestPredictUnknownCategorySkipsModel(t *testing.T) {
	p := trainedPredictor(t)
	model := &countingModel{out: 500000}
	p.model = model

	req := marutiRequest()
	req.Brand = "UnknownBrandXYZ"
	pred, err := p.Predict(req)
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if pred != nil {
		t.Errorf("expected no prediction, got %+v", pred)
	}
	if model.calls != 0 {
		t.Errorf("model invoked %d times for a rejected request", model.calls)
	}
}

func TestPredictRejectsNonFinite(t *testing.T) {
	p := trainedPredictor(t)
	req := marutiRequest()
	req.Mileage = math.NaN()

	if _, err := p.Predict(req); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNewPredictorRejectsBadArtifacts(t *testing.T) {
	good := trainedPredictor(t).Artifact()

	reordered := *good
	reordered.Features = append([]string{}, good.Features...)
	reordered.Features[0], reordered.Features[1] = reordered.Features[1], reordered.Features[0]

	short := *good
	short.Model.Coefficients = good.Model.Coefficients[:10]

	missingMap := *good
	missingMap.Categories = map[string]*models.CategoryMap{
		models.ColumnName: good.Categories[models.ColumnName],
	}

	tests := map[string]*models.Artifact{
		"nil":          nil,
		"reordered":    &reordered,
		"short model":  &short,
		"missing maps": &missingMap,
		"empty":        {ID: uuid.New()},
	}
	for name, a := range tests {
		if _, err := NewPredictor(a, newTestLogger(), nil); !errors.Is(err, ErrModelUnavailable) {
			t.Errorf("%s: expected ErrModelUnavailable, got %v", name, err)
		}
	}
}

func TestTrainEmptyDataset(t *testing.T) {
	_, err := NewTrainer(newTestLogger(), 1e-6).Train(nil, "")
	if !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestTrainRecordsArtifactMetadata(t *testing.T) {
	listings := sampleListings(t)
	fp := DatasetFingerprint(listings)
	a, err := NewTrainer(newTestLogger(), 1e-6).Train(listings, fp)
	if err != nil {
		t.Fatal(err)
	}
	if a.Rows != 3 || a.Algorithm != AlgorithmRidgeOLS || a.DatasetFingerprint != fp {
		t.Errorf("metadata: rows=%d algorithm=%q fingerprint=%q", a.Rows, a.Algorithm, a.DatasetFingerprint)
	}
	if a.ID == uuid.Nil || a.TrainedAt.IsZero() {
		t.Error("artifact must carry an ID and training time")
	}
	if len(a.Features) != FeatureCount {
		t.Errorf("features: got %d, want %d", len(a.Features), FeatureCount)
	}
}

type staticLoader struct {
	a   *models.Artifact
	err error
}

func (l staticLoader) Load() (*models.Artifact, error) { return l.a, l.err }

func TestLoadPredictorModelUnavailable(t *testing.T) {
	_, err := LoadPredictor(staticLoader{err: errors.New("no such file")}, newTestLogger(), nil)
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("load failure: expected ErrModelUnavailable, got %v", err)
	}

	_, err = LoadPredictor(staticLoader{a: &models.Artifact{}}, newTestLogger(), nil)
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("invalid artifact: expected ErrModelUnavailable, got %v", err)
	}

	good := trainedPredictor(t).Artifact()
	if _, err := LoadPredictor(staticLoader{a: good}, newTestLogger(), nil); err != nil {
		t.Errorf("valid artifact: %v", err)
	}
}

func TestPredictRejectsOutOfRangeNumerics(t *testing.T) {
	p := trainedPredictor(t)

	tests := []struct {
		name   string
		modify func(r *models.PredictionRequest)
	}{
		{"negative km", func(r *models.PredictionRequest) { r.KmDriven = -5 }},
		{"zero seats", func(r *models.PredictionRequest) { r.Seats = 0 }},
		{"fractional seats", func(r *models.PredictionRequest) { r.Seats = 4.5 }},
		{"fractional year", func(r *models.PredictionRequest) { r.Year = 2015.5 }},
		{"negative engine", func(r *models.PredictionRequest) { r.Engine = -1197 }},
		{"infinite power", func(r *models.PredictionRequest) { r.MaxPower = math.Inf(1) }},
	}
	for _, tt := range tests {
		req := marutiRequest()
		tt.modify(req)
		if _, err := p.Predict(req); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("%s: expected ErrInvalidRequest, got %v", tt.name, err)
		}
	}
}

func TestPredictTrimsLabels(t *testing.T) {
	p := trainedPredictor(t)
	want, err := p.Predict(marutiRequest())
	if err != nil {
		t.Fatal(err)
	}

	req := marutiRequest()
	req.Brand = " Maruti "
	req.Owner = "First Owner\t"
	got, err := p.Predict(req)
	if err != nil {
		t.Fatalf("padded labels: %v", err)
	}
	if got.Raw != want.Raw {
		t.Errorf("padded labels predicted %v, want %v", got.Raw, want.Raw)
	}
}
