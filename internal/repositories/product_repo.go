package repositories

import (
	"context"
	"fmt"

	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepo struct {
	db DB
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{db: pool}
}

func scanProduct(rw row) (*models.Product, error) {
	var p models.Product
	var price, starting, increment string
	var reserve *string
	err := rw.Scan(
		&p.ID, &p.SellerID, &p.Title, &price, &p.LocalPickup,
		&p.IsAuction, &starting, &increment, &reserve, &p.BiddingEndsAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Price, err = parseDecimal(price); err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	if p.StartingPrice, err = parseDecimal(starting); err != nil {
		return nil, fmt.Errorf("parse starting_price: %w", err)
	}
	if p.BidIncrement, err = parseDecimal(increment); err != nil {
		return nil, fmt.Errorf("parse bid_increment: %w", err)
	}
	if reserve != nil {
		d, err := parseDecimal(*reserve)
		if err != nil {
			return nil, fmt.Errorf("parse reserve_price: %w", err)
		}
		p.ReservePrice = &d
	}
	return &p, nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT id, seller_id, title, price::text, local_pickup,
		       is_auction, starting_price::text, bid_increment::text, reserve_price::text,
		       bidding_ends_at, created_at
		FROM products WHERE id = $1 AND deleted_at IS NULL
	`, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrProductNotFound
	}
	return p, err
}
