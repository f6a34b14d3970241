package repositories

import (
	"context"
	"fmt"

	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FeeRepo struct {
	db DB
}

func NewFeeRepo(pool *pgxpool.Pool) *FeeRepo {
	return &FeeRepo{db: pool}
}

// GetActive returns the active setting for a charge name, or nil when the
// charge is disabled. A disabled charge contributes zero, not an error.
func (r *FeeRepo) GetActive(ctx context.Context, name string) (*models.FeeSetting, error) {
	var f models.FeeSetting
	var value string
	err := r.db.QueryRow(ctx, `
		SELECT id, name, type, value::text, active, updated_at
		FROM fee_settings
		WHERE name = $1 AND active = true
	`, name).Scan(&f.ID, &f.Name, &f.Type, &value, &f.Active, &f.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if f.Value, err = parseDecimal(value); err != nil {
		return nil, fmt.Errorf("parse value: %w", err)
	}
	return &f, nil
}

func (r *FeeRepo) List(ctx context.Context) ([]models.FeeSetting, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, type, value::text, active, updated_at
		FROM fee_settings ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []models.FeeSetting
	for rows.Next() {
		var f models.FeeSetting
		var value string
		if err := rows.Scan(&f.ID, &f.Name, &f.Type, &value, &f.Active, &f.UpdatedAt); err != nil {
			return nil, err
		}
		if f.Value, err = parseDecimal(value); err != nil {
			return nil, fmt.Errorf("parse value: %w", err)
		}
		settings = append(settings, f)
	}
	return settings, rows.Err()
}
