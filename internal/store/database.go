package store

import (
	"context"
	"fmt"

	"iam-assistant-backend/internal/db"
)

// DatabaseStore stores interactions in PostgreSQL
type DatabaseStore struct {
	db *db.DB
}

// NewDatabaseStore creates a new database store
func NewDatabaseStore(database *db.DB) *DatabaseStore {
	return &DatabaseStore{db: database}
}

func (ds *DatabaseStore) Record(ctx context.Context, in Interaction) error {
	in = stamp(in)

	query := `
		INSERT INTO assistant_interactions
			(id, message, response, category, source, rule, fallback_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := ds.db.ExecContext(ctx, query,
		in.ID,
		in.Message,
		in.Response,
		in.Category,
		in.Source,
		in.Rule,
		in.FallbackReason,
		in.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save interaction: %w", err)
	}

	return nil
}

// CountByCategory returns how many interactions were recorded per category.
func (ds *DatabaseStore) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := ds.db.QueryContext(ctx, `
		SELECT category, COUNT(*)
		FROM assistant_interactions
		GROUP BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count interactions: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("failed to scan interaction count: %w", err)
		}
		out[category] = n
	}
	return out, rows.Err()
}
