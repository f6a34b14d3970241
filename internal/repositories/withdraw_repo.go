package repositories

import (
	"context"
	"fmt"

	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const withdrawalCols = `
	id, user_id, payout_method_ref, amount::text, fee::text, fee_type,
	status, admin_note, processed_at, created_at, updated_at`

type WithdrawRepo struct {
	db DB
}

func NewWithdrawRepo(pool *pgxpool.Pool) *WithdrawRepo {
	return &WithdrawRepo{db: pool}
}

func (r *WithdrawRepo) WithTx(tx pgx.Tx) *WithdrawRepo {
	return &WithdrawRepo{db: tx}
}

func scanWithdrawal(rw row) (*models.SellerWithdrawal, error) {
	var w models.SellerWithdrawal
	var amount, fee string
	err := rw.Scan(
		&w.ID, &w.UserID, &w.PayoutMethodRef, &amount, &fee, &w.FeeType,
		&w.Status, &w.AdminNote, &w.ProcessedAt, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if w.Amount, err = parseDecimal(amount); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	if w.Fee, err = parseDecimal(fee); err != nil {
		return nil, fmt.Errorf("parse fee: %w", err)
	}
	return &w, nil
}

func (r *WithdrawRepo) Create(ctx context.Context, w *models.SellerWithdrawal) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO seller_withdrawals (user_id, payout_method_ref, amount, fee, fee_type, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, w.UserID, w.PayoutMethodRef, w.Amount, w.Fee, w.FeeType, w.Status,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
}

func (r *WithdrawRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SellerWithdrawal, error) {
	w, err := scanWithdrawal(r.db.QueryRow(ctx,
		`SELECT `+withdrawalCols+` FROM seller_withdrawals WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrWithdrawalNotFound
	}
	return w, err
}

// GetByIDForUpdate locks the request row so two admins cannot resolve it
// concurrently.
func (r *WithdrawRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.SellerWithdrawal, error) {
	w, err := scanWithdrawal(r.db.QueryRow(ctx,
		`SELECT `+withdrawalCols+` FROM seller_withdrawals WHERE id = $1 FOR UPDATE`, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrWithdrawalNotFound
	}
	return w, err
}

func (r *WithdrawRepo) Resolve(ctx context.Context, id uuid.UUID, status string, adminNote *string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE seller_withdrawals
		SET status = $1, admin_note = $2, processed_at = now(), updated_at = now()
		WHERE id = $3
	`, status, adminNote, id)
	return err
}

type WithdrawalFilter struct {
	UserID *uuid.UUID
	Status *string
	Limit  int
	Offset int
}

func (r *WithdrawRepo) List(ctx context.Context, f WithdrawalFilter) ([]models.SellerWithdrawal, error) {
	query := `SELECT ` + withdrawalCols + ` FROM seller_withdrawals WHERE true`
	args := []any{}
	argIdx := 1

	if f.UserID != nil {
		query += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, *f.UserID)
		argIdx++
	}
	if f.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *f.Status)
		argIdx++
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var withdrawals []models.SellerWithdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, *w)
	}
	return withdrawals, rows.Err()
}
