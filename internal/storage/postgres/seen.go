package postgres

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"

	"jobherald/internal/domain"
)

// Each category gets its own table, seen_jobs_<category>, with a uniqueness
// constraint on job_id. Category names are interpolated into SQL, so they are
// restricted to a safe identifier alphabet.
var validCategory = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// SeenStore is the durable identity store. A row's existence is the sole
// dedup signal; rows are never updated or deleted.
type SeenStore struct {
	db *sqlx.DB
}

func NewSeenStore(db *sqlx.DB) *SeenStore {
	return &SeenStore{db: db}
}

func tableName(category string) (string, error) {
	if !validCategory.MatchString(category) {
		return "", fmt.Errorf("invalid category name %q", category)
	}
	return "seen_jobs_" + category, nil
}

// EnsureSchema creates any missing per-category tables. Idempotent; safe to
// run on every startup alongside the committed migrations.
func (s *SeenStore) EnsureSchema(ctx context.Context, categories []string) error {
	for _, category := range categories {
		table, err := tableName(category)
		if err != nil {
			return err
		}

		query := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id BIGSERIAL PRIMARY KEY,
				job_id TEXT NOT NULL UNIQUE,
				job_title TEXT NOT NULL,
				company_name TEXT NOT NULL,
				company_url TEXT NOT NULL,
				application_url TEXT NOT NULL,
				location TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, table)

		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("ensure table %s: %w", table, err)
		}
	}
	return nil
}

func (s *SeenStore) HasSeen(ctx context.Context, category, identity string) (bool, error) {
	table, err := tableName(category)
	if err != nil {
		return false, err
	}

	var seen bool
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE job_id = $1)", table)
	if err := s.db.GetContext(ctx, &seen, query, identity); err != nil {
		return false, fmt.Errorf("check seen: %w", err)
	}
	return seen, nil
}

// MarkSeen inserts the record in a single atomic write. Returns
// domain.ErrAlreadySeen if the identity is already recorded for the category.
func (s *SeenStore) MarkSeen(ctx context.Context, category string, rec domain.SeenRecord) error {
	table, err := tableName(category)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (job_id, job_title, company_name, company_url, application_url, location)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (job_id) DO NOTHING`, table)

	result, err := s.db.ExecContext(ctx, query,
		rec.Identity,
		rec.Title,
		rec.Company,
		rec.CompanyURL,
		rec.ApplicationURL,
		rec.Location,
	)
	if err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrAlreadySeen
	}

	return nil
}
