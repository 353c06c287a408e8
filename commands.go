package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"smart-price/api"
	"smart-price/config"
	"smart-price/metrics"
	"smart-price/models"
	"smart-price/services"
	"smart-price/storage"
	"smart-price/utils"
)

type appEnv struct {
	cfg     *config.Config
	logger  *utils.Logger
	metrics *metrics.Metrics
}

func predictFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{Name: models.ColumnYear, Required: true, Usage: "year of manufacture"},
		&cli.Float64Flag{Name: models.ColumnKmDriven, Required: true, Usage: "kilometers driven"},
		&cli.Float64Flag{Name: models.ColumnMileage, Required: true, Usage: "mileage (kmpl)"},
		&cli.Float64Flag{Name: models.ColumnEngine, Required: true, Usage: "engine displacement (CC)"},
		&cli.Float64Flag{Name: models.ColumnMaxPower, Required: true, Usage: "max power (bhp)"},
		&cli.Float64Flag{Name: models.ColumnSeats, Required: true, Usage: "number of seats"},
		&cli.StringFlag{Name: "brand", Required: true, Usage: "manufacturer, e.g. Maruti"},
		&cli.StringFlag{Name: models.ColumnFuel, Required: true, Usage: "fuel type"},
		&cli.StringFlag{Name: models.ColumnSellerType, Required: true, Usage: "seller type"},
		&cli.StringFlag{Name: models.ColumnTransmission, Required: true, Usage: "transmission type"},
		&cli.StringFlag{Name: models.ColumnOwner, Required: true, Usage: "owner category"},
	}
}

// artifactStore opens the configured backend. The returned closer is never nil.
func (e *appEnv) artifactStore() (storage.ArtifactStore, func(), error) {
	if !e.cfg.UsePostgres() {
		return storage.NewFileArtifactStore(e.cfg.ArtifactPath), func() {}, nil
	}
	pg, err := storage.NewPostgresStore(e.cfg.DSN(), e.cfg.DBMaxRetries, e.logger)
	if err != nil {
		return nil, func() {}, err
	}
	return pg, func() { _ = pg.Close() }, nil
}

// liveListings returns the cleaned dataset used for form ranges and the
// staleness check: the stored table for postgres, the dataset file otherwise.
func (e *appEnv) liveListings(store storage.ArtifactStore) ([]*models.Listing, error) {
	if pg, ok := store.(*storage.PostgresStore); ok {
		return pg.FetchAll()
	}
	raw, err := storage.OpenSource(e.cfg.DatasetPath, false).ReadRaw()
	if err != nil {
		return nil, err
	}
	listings, _ := services.NewCleaner(e.logger, e.metrics).Clean(raw, false)
	return listings, nil
}

func (e *appEnv) loadPredictor() (*services.Predictor, storage.ArtifactStore, func(), error) {
	store, closeStore, err := e.artifactStore()
	if err != nil {
		return nil, nil, closeStore, fmt.Errorf("%w: %v", services.ErrModelUnavailable, err)
	}
	p, err := services.LoadPredictor(store, e.logger, e.metrics)
	if err != nil {
		return nil, nil, closeStore, err
	}
	return p, store, closeStore, nil
}

func (e *appEnv) train(c *cli.Context) error {
	raw, err := storage.OpenSource(e.cfg.DatasetPath, true).ReadRaw()
	if err != nil {
		return err
	}
	e.logger.Info("[train] Read %d rows from %s", len(raw), e.cfg.DatasetPath)

	listings, stats := services.NewCleaner(e.logger, e.metrics).Clean(raw, true)
	for field, n := range stats.DroppedByField {
		e.logger.Info("[train] Dropped %d rows with malformed %s", n, field)
	}

	artifact, err := services.NewTrainer(e.logger, c.Float64("lambda")).
		Train(listings, services.DatasetFingerprint(listings))
	if err != nil {
		return err
	}

	if path := c.String("export-clean"); path != "" {
		w, err := storage.NewTSVWriter(path)
		if err != nil {
			return err
		}
		if err := w.Write(listings); err != nil {
			_ = w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		e.logger.Info("[train] Cleaned dataset written to %s", path)
	}

	store, closeStore, err := e.artifactStore()
	defer closeStore()
	if err != nil {
		return err
	}
	if err := persistTrained(store, listings, artifact); err != nil {
		return err
	}
	e.logger.Info("[train] Artifact %s saved (%s backend)", artifact.ID, e.cfg.StoreBackend)
	return nil
}

// persistTrained stores the artifact, together with the cleaned rows when the
// backend keeps a dataset table. Either both land or neither does.
func persistTrained(store storage.ArtifactStore, listings []*models.Listing, a *models.Artifact) error {
	if pub, ok := store.(storage.DatasetPublisher); ok {
		return pub.Publish(listings, a)
	}
	return store.Save(a)
}

func (e *appEnv) formOptions(p *services.Predictor, store storage.ArtifactStore) *models.FormOptions {
	live, err := e.liveListings(store)
	if err != nil {
		e.logger.Error("[serve] Live dataset unavailable: %v", err)
		return nil
	}
	if stale, fp := services.CheckStaleness(p.Artifact(), live); stale {
		e.logger.Warn("[serve] Live dataset (%s) differs from the training dataset (%s); retrain to pick up new data",
			short(fp), short(p.Artifact().DatasetFingerprint))
	}
	opts, err := services.NewInsightService(e.logger).FormOptions(p.Encoder(), live)
	if err != nil {
		e.logger.Error("[serve] Cannot compute input ranges: %v", err)
		return nil
	}
	return opts
}

func (e *appEnv) serve(c *cli.Context) error {
	p, store, closeStore, err := e.loadPredictor()
	defer closeStore()
	if err != nil {
		return err
	}
	opts := e.formOptions(p, store)

	srv := &http.Server{
		Addr:              c.String("addr"),
		Handler:           api.NewRouter(p, opts, e.metrics, e.logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("[serve] Listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	e.logger.Info("[serve] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (e *appEnv) predict(c *cli.Context) error {
	p, _, closeStore, err := e.loadPredictor()
	defer closeStore()
	if err != nil {
		return err
	}

	req := &models.PredictionRequest{
		Year:         c.Float64(models.ColumnYear),
		KmDriven:     c.Float64(models.ColumnKmDriven),
		Mileage:      c.Float64(models.ColumnMileage),
		Engine:       c.Float64(models.ColumnEngine),
		MaxPower:     c.Float64(models.ColumnMaxPower),
		Seats:        c.Float64(models.ColumnSeats),
		Brand:        c.String("brand"),
		Fuel:         c.String(models.ColumnFuel),
		SellerType:   c.String(models.ColumnSellerType),
		Transmission: c.String(models.ColumnTransmission),
		Owner:        c.String(models.ColumnOwner),
	}

	session := services.NewSession(p)
	if _, err := session.Predict(req); err != nil {
		if errors.Is(err, services.ErrUnknownCategory) {
			return cli.Exit(err.Error(), 3)
		}
		return err
	}
	pred := session.Collect()

	fmt.Printf("Predicted selling price: ₹%s\n", pred.Price.StringFixed(0))
	if pred.Floored {
		fmt.Printf("(model output %.0f was below the ₹%.0f floor)\n", pred.Raw, services.MinPrice)
	}
	return nil
}

func (e *appEnv) batch(c *cli.Context) error {
	p, _, closeStore, err := e.loadPredictor()
	defer closeStore()
	if err != nil {
		return err
	}

	rows, err := storage.OpenSource(c.String("in"), false).ReadRaw()
	if err != nil {
		return err
	}

	cleaner := services.NewCleaner(e.logger, e.metrics)
	results := services.NewBatchPredictor(p, cleaner, e.logger, c.Int("workers")).Run(rows)

	w, err := storage.OpenResultWriter(c.String("out"))
	if err != nil {
		return err
	}
	if err := w.WriteResults(results); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	e.logger.Info("[batch] Results written to %s", c.String("out"))
	return nil
}

func (e *appEnv) options(c *cli.Context) error {
	p, store, closeStore, err := e.loadPredictor()
	defer closeStore()
	if err != nil {
		return err
	}

	live, err := e.liveListings(store)
	if err != nil {
		return err
	}
	insights := services.NewInsightService(e.logger)
	opts, err := insights.FormOptions(p.Encoder(), live)
	if err != nil {
		return err
	}
	insights.Print(os.Stdout, insights.Summarize(live), opts)

	for _, col := range models.CategoricalColumns {
		fmt.Printf("  %-13s %v\n", col, opts.Categories[col])
	}
	return nil
}

func short(fingerprint string) string {
	if len(fingerprint) > 12 {
		return fingerprint[:12]
	}
	return fingerprint
}
