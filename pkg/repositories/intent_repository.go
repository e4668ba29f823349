// Package repositories provides data access for persisted keyword
// intents.
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/seolens/seolens-engine/pkg/database"
	"github.com/seolens/seolens-engine/pkg/models"
)

// IntentRepository is the persistence adapter for keyword intents. The
// store is the durable system of record: it is the only state other
// sessions and future uploads observe.
type IntentRepository interface {
	// EnsureSchema idempotently creates the intent table if absent.
	EnsureSchema(ctx context.Context) error

	// FetchAll bulk-reads every stored intent, keyed by case-folded
	// keyword.
	FetchAll(ctx context.Context) (map[string]models.Intent, error)

	// UpsertMany bulk-writes records with last-write-wins semantics and
	// a refreshed timestamp. Records with an Unknown or empty intent are
	// skipped: Unknown is the absence-of-data sentinel, never a stored
	// value. Returns the number of rows written. One call is one
	// transaction.
	UpsertMany(ctx context.Context, records []models.IntentRecord) (int, error)
}

type intentRepository struct {
	db *database.DB
}

// NewIntentRepository creates an IntentRepository backed by Postgres.
func NewIntentRepository(db *database.DB) IntentRepository {
	return &intentRepository{db: db}
}

var _ IntentRepository = (*intentRepository)(nil)

func (r *intentRepository) EnsureSchema(ctx context.Context) error {
	// mirrors migration 001; kept because the store may be a bare
	// database the operator never migrated
	query := `
		CREATE TABLE IF NOT EXISTS seo_keyword_intents (
			top_query TEXT PRIMARY KEY,
			keyword_intent VARCHAR(50) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure intent table: %w", err)
	}
	return nil
}

func (r *intentRepository) FetchAll(ctx context.Context) (map[string]models.Intent, error) {
	query := `SELECT top_query, keyword_intent FROM seo_keyword_intents`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stored intents: %w", err)
	}
	defer rows.Close()

	intents := make(map[string]models.Intent)
	for rows.Next() {
		var keyword, label string
		if err := rows.Scan(&keyword, &label); err != nil {
			return nil, fmt.Errorf("failed to scan stored intent: %w", err)
		}
		intent := models.ParseIntent(label)
		if !intent.Known() {
			continue
		}
		intents[models.FoldKey(keyword)] = intent
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stored intents: %w", err)
	}

	return intents, nil
}

func (r *intentRepository) UpsertMany(ctx context.Context, records []models.IntentRecord) (int, error) {
	query := `
		INSERT INTO seo_keyword_intents (top_query, keyword_intent, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (top_query) DO UPDATE SET
			keyword_intent = EXCLUDED.keyword_intent,
			updated_at = EXCLUDED.updated_at`

	now := time.Now().UTC()

	batch := &pgx.Batch{}
	for _, rec := range records {
		if !rec.Intent.Known() {
			continue
		}
		batch.Queue(query, models.FoldKey(rec.Keyword), string(rec.Intent), now)
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck
			return 0, fmt.Errorf("failed to upsert intent: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to close upsert batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit upsert transaction: %w", err)
	}

	return batch.Len(), nil
}
