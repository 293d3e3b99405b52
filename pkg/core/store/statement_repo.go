package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sec_insights/pkg/core/errs"
	"sec_insights/pkg/core/ingest"
	"sec_insights/pkg/core/processor"
)

// StatementSnapshot is a processed statement as saved at a point in time.
type StatementSnapshot struct {
	ID        uuid.UUID            `json:"id"`
	CIK       string               `json:"cik"`
	Kind      processor.Kind       `json:"kind"`
	CreatedAt time.Time            `json:"created_at"`
	Statement *processor.Statement `json:"statement"`
}

// SaveStatement stores a snapshot of a processed statement and returns its id.
func (r *Repository) SaveStatement(ctx context.Context, cik string, st *processor.Statement) (uuid.UUID, error) {
	norm, err := ingest.NormalizeCIK(cik)
	if err != nil {
		return uuid.Nil, err
	}

	data, err := json.Marshal(st)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal statement: %w", err)
	}

	id := uuid.New()
	_, err = r.pool.Exec(ctx,
		`INSERT INTO statement_snapshots (id, cik, kind, data, created_at) VALUES ($1, $2, $3, $4, NOW())`,
		id, norm, string(st.Kind), data,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save statement: %w", err)
	}
	return id, nil
}

// LatestStatement loads the most recent snapshot of a statement kind.
func (r *Repository) LatestStatement(ctx context.Context, cik string, kind processor.Kind) (*StatementSnapshot, error) {
	norm, err := ingest.NormalizeCIK(cik)
	if err != nil {
		return nil, err
	}

	var snap StatementSnapshot
	var data []byte
	var kindStr string
	err = r.pool.QueryRow(ctx, `
		SELECT id, cik, kind, data, created_at
		FROM statement_snapshots
		WHERE cik = $1 AND kind = $2
		ORDER BY created_at DESC
		LIMIT 1`, norm, string(kind),
	).Scan(&snap.ID, &snap.CIK, &kindStr, &data, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no %s saved for %s", errs.ErrNotFound, kind, norm)
		}
		return nil, fmt.Errorf("failed to load statement: %w", err)
	}
	snap.Kind = processor.Kind(kindStr)

	var st processor.Statement
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statement: %w", err)
	}
	snap.Statement = &st
	return &snap, nil
}
