package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"smart-price/models"
	"smart-price/utils"
)

// PostgresStore persists cleaned listings and trained artifacts.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, retrying the initial
// ping, runs schema migrations and returns a ready-to-use store.
func NewPostgresStore(dsn string, maxRetries int, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: maxRetries, BaseDelay: time.Second, Logger: logger}
	if err := retry.Do("postgres ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS car_listings (
			id            SERIAL PRIMARY KEY,
			name          TEXT          NOT NULL,
			brand         TEXT          NOT NULL,
			year          INTEGER       NOT NULL,
			km_driven     INTEGER       NOT NULL CHECK (km_driven >= 0),
			fuel          TEXT          NOT NULL,
			seller_type   TEXT          NOT NULL,
			transmission  TEXT          NOT NULL,
			owner         TEXT          NOT NULL,
			mileage       DOUBLE PRECISION NOT NULL,
			engine        DOUBLE PRECISION NOT NULL,
			max_power     DOUBLE PRECISION NOT NULL,
			seats         INTEGER       NOT NULL CHECK (seats >= 1),
			selling_price DOUBLE PRECISION,
			created_at    TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_car_listings_brand ON car_listings(brand);
		CREATE INDEX IF NOT EXISTS idx_car_listings_year  ON car_listings(year);

		CREATE TABLE IF NOT EXISTS model_artifacts (
			id         UUID        PRIMARY KEY,
			trained_at TIMESTAMPTZ NOT NULL,
			row_count  INTEGER     NOT NULL,
			r_squared  DOUBLE PRECISION NOT NULL,
			body       JSONB       NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_model_artifacts_trained_at ON model_artifacts(trained_at);
	`)
	return err
}

// Publish replaces the stored dataset and stores the artifact trained on it
// in one transaction, so the table never holds rows newer than the latest
// artifact.
func (ps *PostgresStore) Publish(listings []*models.Listing, a *models.Artifact) error {
	return ps.inTx(func(tx *sql.Tx) error {
		if len(listings) > 0 {
			if err := replaceListings(tx, listings); err != nil {
				return err
			}
		}
		return insertArtifact(tx, a)
	})
}

func (ps *PostgresStore) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := ps.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func replaceListings(tx *sql.Tx, listings []*models.Listing) error {
	if _, err := tx.Exec("DELETE FROM car_listings"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	const batchSize = 200
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := insertBatch(tx, listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

const listingColumns = 14

func insertBatch(tx *sql.Tx, batch []*models.Listing) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*listingColumns)

	for idx, l := range batch {
		base := idx * listingColumns
		placeholders := make([]string, listingColumns)
		for k := range placeholders {
			placeholders[k] = fmt.Sprintf("$%d", base+k+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		var price interface{}
		if l.HasPrice {
			price = l.SellingPrice
		}
		valueArgs = append(valueArgs,
			l.Name, l.Brand, l.Year, l.KmDriven, l.Fuel, l.SellerType, l.Transmission,
			l.Owner, l.Mileage, l.Engine, l.MaxPower, l.Seats, price, l.CreatedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO car_listings (name, brand, year, km_driven, fuel, seller_type, transmission,
			owner, mileage, engine, max_power, seats, selling_price, created_at)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := tx.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

// FetchAll retrieves all stored listings in insertion order.
func (ps *PostgresStore) FetchAll() ([]*models.Listing, error) {
	rows, err := ps.db.Query(`
		SELECT id, name, brand, year, km_driven, fuel, seller_type, transmission,
			owner, mileage, engine, max_power, seats, selling_price, created_at
		FROM car_listings
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		var price sql.NullFloat64
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Brand, &l.Year, &l.KmDriven, &l.Fuel, &l.SellerType,
			&l.Transmission, &l.Owner, &l.Mileage, &l.Engine, &l.MaxPower, &l.Seats,
			&price, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		l.SellingPrice = price.Float64
		l.HasPrice = price.Valid
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// Save stores an artifact. Artifacts are immutable, so a repeated ID is an error.
func (ps *PostgresStore) Save(a *models.Artifact) error {
	return insertArtifact(ps.db, a)
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func insertArtifact(db execer, a *models.Artifact) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("postgres: encode artifact: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO model_artifacts (id, trained_at, row_count, r_squared, body)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID.String(), a.TrainedAt, a.Rows, a.RSquared, body)
	if err != nil {
		return fmt.Errorf("postgres: save artifact: %w", err)
	}
	return nil
}

// Load returns the most recently trained artifact.
func (ps *PostgresStore) Load() (*models.Artifact, error) {
	var body []byte
	err := ps.db.QueryRow(`
		SELECT body FROM model_artifacts ORDER BY trained_at DESC LIMIT 1
	`).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("postgres: no trained artifact stored")
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: load artifact: %w", err)
	}
	var a models.Artifact
	if err := json.Unmarshal(body, &a); err != nil {
		return nil, fmt.Errorf("postgres: decode artifact: %w", err)
	}
	return &a, nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
