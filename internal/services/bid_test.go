package services

import (
	"errors"
	"testing"
	"time"

	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func auctionProduct(seller uuid.UUID, endsAt *time.Time) *models.Product {
	return &models.Product{
		ID:            uuid.New(),
		SellerID:      seller,
		IsAuction:     true,
		StartingPrice: dec("100"),
		BidIncrement:  dec("10"),
		BiddingEndsAt: endsAt,
	}
}

func TestValidateBid(t *testing.T) {
	seller := uuid.New()
	bidder := uuid.New()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)
	highest := dec("150")

	tests := []struct {
		name    string
		product *models.Product
		bidder  uuid.UUID
		amount  string
		highest *decimal.Decimal
		wantErr error
	}{
		{"first bid at starting price", auctionProduct(seller, &future), bidder, "100", nil, nil},
		{"first bid below starting price", auctionProduct(seller, &future), bidder, "99.99", nil, models.ErrBelowMinimum},
		{"outbid by increment", auctionProduct(seller, &future), bidder, "160", &highest, nil},
		{"outbid below increment", auctionProduct(seller, &future), bidder, "155", &highest, models.ErrBelowMinimum},
		{"equal to current highest", auctionProduct(seller, &future), bidder, "150", &highest, models.ErrBelowMinimum},
		{"auction ended", auctionProduct(seller, &past), bidder, "200", &highest, models.ErrAuctionEnded},
		{"ends exactly now", auctionProduct(seller, &now), bidder, "200", &highest, models.ErrAuctionEnded},
		{"seller bids on own product", auctionProduct(seller, &future), seller, "200", &highest, models.ErrSelfBid},
		{"not an auction", &models.Product{SellerID: seller}, bidder, "200", nil, models.ErrAuctionEnded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBid(tt.product, tt.bidder, dec(tt.amount), tt.highest, now)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateBid() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMinimumNextBid(t *testing.T) {
	increment := dec("10")
	starting := dec("100")

	if got := models.MinimumNextBid(nil, increment, starting); !got.Equal(starting) {
		t.Errorf("no bids: minimum = %s, want %s", got, starting)
	}

	low := dec("85")
	if got := models.MinimumNextBid(&low, increment, starting); !got.Equal(starting) {
		t.Errorf("highest below start: minimum = %s, want %s", got, starting)
	}

	high := dec("150")
	if got := models.MinimumNextBid(&high, increment, starting); !got.Equal(dec("160")) {
		t.Errorf("minimum = %s, want 160", got)
	}
}
