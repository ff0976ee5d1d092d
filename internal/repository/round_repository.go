package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/venuehub/allocation-api/internal/models"
	appErrors "github.com/venuehub/allocation-api/pkg/errors"
)

// RoundRepository reads application rounds and their reservation units.
type RoundRepository struct {
	db *sqlx.DB
}

// NewRoundRepository builds repository.
func NewRoundRepository(db *sqlx.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

// GetByPk fetches one application round.
func (r *RoundRepository) GetByPk(ctx context.Context, pk int64) (*models.ApplicationRound, error) {
	const query = `SELECT pk, name, status, allocation_started, allocation_finished
FROM application_rounds WHERE pk = $1`

	var round models.ApplicationRound
	if err := r.db.GetContext(ctx, &round, query, pk); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application round not found")
		}
		return nil, fmt.Errorf("get application round: %w", err)
	}
	return &round, nil
}

// GetUnit fetches one reservation unit within a round.
func (r *RoundRepository) GetUnit(ctx context.Context, roundPk, unitPk int64) (*models.ReservationUnit, error) {
	const query = `SELECT pk, application_round_pk, name
FROM reservation_units WHERE pk = $1 AND application_round_pk = $2`

	var unit models.ReservationUnit
	if err := r.db.GetContext(ctx, &unit, query, unitPk, roundPk); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reservation unit not found")
		}
		return nil, fmt.Errorf("get reservation unit: %w", err)
	}
	return &unit, nil
}

// ListUnits returns all reservation units of a round ordered by name.
func (r *RoundRepository) ListUnits(ctx context.Context, roundPk int64) ([]models.ReservationUnit, error) {
	const query = `SELECT pk, application_round_pk, name
FROM reservation_units WHERE application_round_pk = $1 ORDER BY name ASC`

	var units []models.ReservationUnit
	if err := r.db.SelectContext(ctx, &units, query, roundPk); err != nil {
		return nil, fmt.Errorf("list reservation units: %w", err)
	}
	return units, nil
}
