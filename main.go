package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"smart-price/config"
	"smart-price/metrics"
	"smart-price/services"
	"smart-price/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)
	m := metrics.New(services.ErrUnknownCategory, services.ErrInvalidRequest)

	env := &appEnv{cfg: cfg, logger: logger, metrics: m}

	app := &cli.App{
		Name:  "smart-price",
		Usage: "train and serve a used-car resale price model",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data", Value: cfg.DatasetPath, Usage: "dataset file (.tsv/.csv tab-separated, or .xlsx)"},
			&cli.StringFlag{Name: "artifact", Value: cfg.ArtifactPath, Usage: "trained artifact file (file backend)"},
			&cli.StringFlag{Name: "backend", Value: cfg.StoreBackend, Usage: "storage backend: file or postgres"},
		},
		Before: func(c *cli.Context) error {
			cfg.DatasetPath = c.String("data")
			cfg.ArtifactPath = c.String("artifact")
			cfg.StoreBackend = c.String("backend")
			if cfg.StoreBackend != config.BackendFile && cfg.StoreBackend != config.BackendPostgres {
				return cli.Exit(fmt.Sprintf("unknown backend %q", cfg.StoreBackend), 2)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "train",
				Usage: "clean the dataset, fit the model and persist the artifact",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "lambda", Value: cfg.RidgeLambda, Usage: "ridge penalty on standardized features"},
					&cli.StringFlag{Name: "export-clean", Usage: "also write the cleaned dataset to this TSV file"},
				},
				Action: env.train,
			},
			{
				Name:  "serve",
				Usage: "serve predictions over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Value: cfg.HTTPAddr, Usage: "listen address"},
				},
				Action: env.serve,
			},
			{
				Name:   "predict",
				Usage:  "estimate the price of one car",
				Flags:  predictFlags(),
				Action: env.predict,
			},
			{
				Name:  "batch",
				Usage: "estimate prices for every row of a request file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Required: true, Usage: "request file (.tsv or .xlsx)"},
					&cli.StringFlag{Name: "out", Required: true, Usage: "result file (.tsv or .xlsx)"},
					&cli.IntFlag{Name: "workers", Value: cfg.BatchWorkers, Usage: "concurrent predictions"},
				},
				Action: env.batch,
			},
			{
				Name:   "options",
				Usage:  "print dataset overview, input ranges and category choices",
				Action: env.options,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
