package repositories

import (
	"context"
	"fmt"

	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const revenueCols = `
	id, order_id, withdrawal_id, revenue_type, amount::text,
	calculation_type, calculation_value::text, base_amount::text,
	status, created_at, updated_at`

type RevenueRepo struct {
	db DB
}

func NewRevenueRepo(pool *pgxpool.Pool) *RevenueRepo {
	return &RevenueRepo{db: pool}
}

func (r *RevenueRepo) WithTx(tx pgx.Tx) *RevenueRepo {
	return &RevenueRepo{db: tx}
}

func scanRevenue(rw row) (*models.PlatformRevenue, error) {
	var p models.PlatformRevenue
	var amount, calcValue, base string
	err := rw.Scan(
		&p.ID, &p.OrderID, &p.WithdrawalID, &p.RevenueType, &amount,
		&p.CalculationType, &calcValue, &base,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Amount, err = parseDecimal(amount); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	if p.CalculationValue, err = parseDecimal(calcValue); err != nil {
		return nil, fmt.Errorf("parse calculation_value: %w", err)
	}
	if p.BaseAmount, err = parseDecimal(base); err != nil {
		return nil, fmt.Errorf("parse base_amount: %w", err)
	}
	return &p, nil
}

func (r *RevenueRepo) Create(ctx context.Context, p *models.PlatformRevenue) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO platform_revenues (order_id, withdrawal_id, revenue_type, amount,
		                               calculation_type, calculation_value, base_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, p.OrderID, p.WithdrawalID, p.RevenueType, p.Amount,
		p.CalculationType, p.CalculationValue, p.BaseAmount, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *RevenueRepo) UpdateStatusByOrder(ctx context.Context, orderID uuid.UUID, status string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE platform_revenues SET status = $1, updated_at = now() WHERE order_id = $2
	`, status, orderID)
	return err
}

func (r *RevenueRepo) UpdateStatusByWithdrawal(ctx context.Context, withdrawalID uuid.UUID, status string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE platform_revenues SET status = $1, updated_at = now() WHERE withdrawal_id = $2
	`, status, withdrawalID)
	return err
}

func (r *RevenueRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PlatformRevenue, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+revenueCols+` FROM platform_revenues WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revenues []models.PlatformRevenue
	for rows.Next() {
		p, err := scanRevenue(rows)
		if err != nil {
			return nil, err
		}
		revenues = append(revenues, *p)
	}
	return revenues, rows.Err()
}
