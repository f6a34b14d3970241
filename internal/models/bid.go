package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid rows are never deleted; superseded bids keep their history with
// is_winning flipped to false. At most one bid per product holds
// is_winning = true at any instant (partial unique index + row lock).
type Bid struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	BidderID   uuid.UUID       `json:"bidder_id"`
	Amount     decimal.Decimal `json:"amount"`
	IsWinning  bool            `json:"is_winning"`
	ReserveMet bool            `json:"reserve_met"`
	CreatedAt  time.Time       `json:"created_at"`
}

// MinimumNextBid returns the lowest acceptable bid amount given the current
// highest bid (nil when no bids yet), the configured increment and the
// starting price: max(highest + increment, startingPrice).
func MinimumNextBid(highest *decimal.Decimal, increment, startingPrice decimal.Decimal) decimal.Decimal {
	if highest == nil {
		return startingPrice
	}
	next := highest.Add(increment)
	if next.LessThan(startingPrice) {
		return startingPrice
	}
	return next
}
