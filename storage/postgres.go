package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bizradar/config"
	"bizradar/models"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore archives completed job results. Jobs themselves stay
// in-memory; this is a write-behind record archive, not the job registry.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(cfg config.Config) (*PostgresStore, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBSSLMode,
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := &PostgresStore{db: db}
	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer schemaCancel()
	if err := store.ensureSchema(schemaCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// SaveRecords upserts one job's records keyed by source link, returning how
// many rows were written.
func (s *PostgresStore) SaveRecords(ctx context.Context, jobID string, records []models.BusinessRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO businesses (job_id, name, website, phone, address, email, rating, review_count, source_link, completeness_score, quality_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (source_link) DO UPDATE
		SET
			job_id = EXCLUDED.job_id,
			name = EXCLUDED.name,
			website = EXCLUDED.website,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			email = EXCLUDED.email,
			rating = EXCLUDED.rating,
			review_count = EXCLUDED.review_count,
			completeness_score = EXCLUDED.completeness_score,
			quality_score = EXCLUDED.quality_score,
			updated_at = NOW()`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert statement: %w", err)
	}
	defer stmt.Close()

	total := 0
	for _, record := range records {
		if record.SourceLink == "" {
			continue
		}
		quality := 0
		if record.Audit != nil {
			quality = record.Audit.QualityScore
		}
		if _, err = stmt.ExecContext(
			ctx,
			jobID,
			record.Name,
			record.Website,
			record.Phone,
			record.Address,
			record.Email,
			record.Reviews.Rating,
			record.Reviews.Count,
			record.SourceLink,
			record.CompletenessScore,
			quality,
		); err != nil {
			return 0, fmt.Errorf("insert business %q: %w", record.SourceLink, err)
		}
		total++
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return total, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS businesses (
			id BIGSERIAL PRIMARY KEY,
			job_id TEXT NOT NULL,
			name TEXT NOT NULL,
			website TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			rating TEXT NOT NULL DEFAULT '',
			review_count TEXT NOT NULL DEFAULT '',
			source_link TEXT NOT NULL UNIQUE,
			completeness_score INT NOT NULL DEFAULT 0,
			quality_score INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_businesses_job ON businesses(job_id);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
