package services

import (
	"context"
	"time"

	"github.com/Aman0246jploft/kudsun-backend/internal/events"
	"github.com/Aman0246jploft/kudsun-backend/internal/metrics"
	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/Aman0246jploft/kudsun-backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type BidService struct {
	pool        *pgxpool.Pool
	bidRepo     *repositories.BidRepo
	productRepo *repositories.ProductRepo
	publisher   events.Publisher
	log         *zap.Logger
	metrics     *metrics.Metrics
}

func NewBidService(
	pool *pgxpool.Pool,
	bidRepo *repositories.BidRepo,
	productRepo *repositories.ProductRepo,
	publisher events.Publisher,
	log *zap.Logger,
	m *metrics.Metrics,
) *BidService {
	return &BidService{
		pool:        pool,
		bidRepo:     bidRepo,
		productRepo: productRepo,
		publisher:   publisher,
		log:         log,
		metrics:     m,
	}
}

// ValidateBid applies the pure bid rules: the auction must be open, the
// bidder must not own the product and the amount must clear the minimum.
func ValidateBid(p *models.Product, bidderID uuid.UUID, amount decimal.Decimal, highest *decimal.Decimal, now time.Time) error {
	if !p.IsAuction {
		return models.ErrAuctionEnded
	}
	if p.BiddingEndsAt != nil && !now.Before(*p.BiddingEndsAt) {
		return models.ErrAuctionEnded
	}
	if p.SellerID == bidderID {
		return models.ErrSelfBid
	}
	if amount.LessThan(models.MinimumNextBid(highest, p.BidIncrement, p.StartingPrice)) {
		return models.ErrBelowMinimum
	}
	return nil
}

// PlaceBid validates and records a bid, flipping the winning flag to the
// new bid under a row lock so concurrent bids on the same product
// serialize. Superseded bids are kept with is_winning false.
func (s *BidService) PlaceBid(ctx context.Context, productID, bidderID uuid.UUID, amount decimal.Decimal) (*models.Bid, error) {
	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	bids := s.bidRepo.WithTx(tx)
	current, err := bids.GetWinningForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	var highest *decimal.Decimal
	if current != nil {
		highest = &current.Amount
	}
	if err := ValidateBid(p, bidderID, amount, highest, time.Now()); err != nil {
		return nil, err
	}

	if err := bids.ClearWinning(ctx, productID); err != nil {
		return nil, err
	}
	b := &models.Bid{
		ProductID:  productID,
		BidderID:   bidderID,
		Amount:     amount,
		IsWinning:  true,
		ReserveMet: p.ReservePrice == nil || !amount.LessThan(*p.ReservePrice),
	}
	if err := bids.Create(ctx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.metrics.BidsPlacedTotal.Inc()
	if err := s.publisher.Publish(ctx, events.StreamBids, events.Event{
		Type: events.EventBidPlaced,
		Payload: map[string]any{
			"product_id":  productID.String(),
			"bidder_id":   bidderID.String(),
			"amount":      amount.String(),
			"reserve_met": b.ReserveMet,
		},
	}); err != nil {
		s.log.Warn("failed to publish bid event", zap.Error(err))
	}
	return b, nil
}

// WinningBid returns the current winning bid, nil when the product has no
// bids yet.
func (s *BidService) WinningBid(ctx context.Context, productID uuid.UUID) (*models.Bid, error) {
	bids, err := s.bidRepo.ListByProduct(ctx, productID, 1, 0)
	if err != nil {
		return nil, err
	}
	for _, b := range bids {
		if b.IsWinning {
			return &b, nil
		}
	}
	return nil, nil
}

func (s *BidService) ListBids(ctx context.Context, productID uuid.UUID, limit, offset int) ([]models.Bid, error) {
	return s.bidRepo.ListByProduct(ctx, productID, limit, offset)
}
