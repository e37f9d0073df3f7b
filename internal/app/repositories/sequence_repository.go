package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tyilmaz/registrar/internal/app/models"
	"github.com/tyilmaz/registrar/internal/pkg/apperrors"
	"github.com/tyilmaz/registrar/internal/pkg/logger"
)

// SequenceRepository issues monotonically increasing identifiers from named
// counter rows.
type SequenceRepository struct {
	db *pgxpool.Pool
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *pgxpool.Pool) *SequenceRepository {
	return &SequenceRepository{
		db: db,
	}
}

// Next atomically increments the named counter and returns the new value,
// creating the counter at 1 when it does not exist yet. The increment is a
// single statement, so concurrent callers can never observe the same value.
// On failure the caller gets a storage error and no identifier; a partial or
// default identifier is never issued.
func (r *SequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	query := `
		INSERT INTO counters (name, value)
		VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		RETURNING value
	`

	var value int64
	if err := r.db.QueryRow(ctx, query, name).Scan(&value); err != nil {
		logger.Error().Err(err).Str("sequence", name).Msg("Error incrementing counter")
		return 0, fmt.Errorf("%w: incrementing sequence %q: %v", apperrors.ErrStorageUnavailable, name, err)
	}

	return value, nil
}

// Current returns the counter row for a sequence, or ErrResourceNotFound when
// no identifier has been issued from it yet.
func (r *SequenceRepository) Current(ctx context.Context, name string) (*models.Counter, error) {
	var counter models.Counter
	err := r.db.QueryRow(ctx, `SELECT name, value FROM counters WHERE name = $1`, name).
		Scan(&counter.Name, &counter.Value)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("sequence %q has not issued any identifiers", name))
		}
		return nil, fmt.Errorf("%w: reading sequence %q: %v", apperrors.ErrStorageUnavailable, name, err)
	}

	return &counter, nil
}
