package services

import (
	"smart-price/models"
	"smart-price/utils"
)

// BatchPredictor scores many request rows concurrently against one shared,
// read-only Predictor.
type BatchPredictor struct {
	predictor *Predictor
	cleaner   *Cleaner
	logger    *utils.Logger
	workers   int
}

// NewBatchPredictor creates a BatchPredictor running up to workers predictions at once.
func NewBatchPredictor(p *Predictor, cleaner *Cleaner, logger *utils.Logger, workers int) *BatchPredictor {
	return &BatchPredictor{predictor: p, cleaner: cleaner, logger: logger, workers: workers}
}

// RequestFromListing converts a cleaned row into a prediction request.
func RequestFromListing(l *models.Listing) *models.PredictionRequest {
	return &models.PredictionRequest{
		Year:         float64(l.Year),
		KmDriven:     float64(l.KmDriven),
		Mileage:      l.Mileage,
		Engine:       l.Engine,
		MaxPower:     l.MaxPower,
		Seats:        float64(l.Seats),
		Brand:        l.Brand,
		Fuel:         l.Fuel,
		SellerType:   l.SellerType,
		Transmission: l.Transmission,
		Owner:        l.Owner,
	}
}

// Run predicts every row. Results keep the input order; a row that fails to
// normalize or encode carries its error instead of a prediction.
func (b *BatchPredictor) Run(rows []*models.RawListing) []*models.BatchResult {
	results := make([]*models.BatchResult, len(rows))
	pool := utils.NewWorkerPool(b.workers)

	for i, raw := range rows {
		i, raw := i, raw
		pool.Submit(func() {
			res := &models.BatchResult{Input: raw}
			listing, err := b.cleaner.Normalize(raw, false)
			if err != nil {
				res.Err = err
			} else {
				res.Prediction, res.Err = b.predictor.Predict(RequestFromListing(listing))
			}
			results[i] = res
		})
	}
	pool.Wait()

	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	b.logger.Info("[batch] Scored %d rows (%d failed)", len(results), failed)
	return results
}
