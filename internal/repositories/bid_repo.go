package repositories

import (
	"context"
	"fmt"

	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BidRepo struct {
	db DB
}

func NewBidRepo(pool *pgxpool.Pool) *BidRepo {
	return &BidRepo{db: pool}
}

func (r *BidRepo) WithTx(tx pgx.Tx) *BidRepo {
	return &BidRepo{db: tx}
}

func scanBid(rw row) (*models.Bid, error) {
	var b models.Bid
	var amount string
	err := rw.Scan(&b.ID, &b.ProductID, &b.BidderID, &amount, &b.IsWinning, &b.ReserveMet, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if b.Amount, err = parseDecimal(amount); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	return &b, nil
}

// GetWinningForUpdate locks the current winning bid row so two concurrent
// bids on the same product serialize. Returns nil when there is no bid yet.
func (r *BidRepo) GetWinningForUpdate(ctx context.Context, productID uuid.UUID) (*models.Bid, error) {
	b, err := scanBid(r.db.QueryRow(ctx, `
		SELECT id, product_id, bidder_id, amount::text, is_winning, reserve_met, created_at
		FROM bids
		WHERE product_id = $1 AND is_winning
		FOR UPDATE
	`, productID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func (r *BidRepo) ClearWinning(ctx context.Context, productID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE bids SET is_winning = false WHERE product_id = $1 AND is_winning`, productID)
	return err
}

func (r *BidRepo) Create(ctx context.Context, b *models.Bid) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO bids (product_id, bidder_id, amount, is_winning, reserve_met)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, b.ProductID, b.BidderID, b.Amount, b.IsWinning, b.ReserveMet).Scan(&b.ID, &b.CreatedAt)
}

func (r *BidRepo) ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]models.Bid, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, bidder_id, amount::text, is_winning, reserve_met, created_at
		FROM bids
		WHERE product_id = $1
		ORDER BY amount DESC, created_at ASC
		LIMIT $2 OFFSET $3
	`, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, *b)
	}
	return bids, rows.Err()
}
