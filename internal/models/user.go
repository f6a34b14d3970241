package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User roles
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// Users are authenticated externally; the core keeps the minimum it needs
// for foreign keys and role checks.
type User struct {
	ID          uuid.UUID `json:"id"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Product carries only what checkout and the bid arbiter need; the catalog
// itself lives in an external service.
type Product struct {
	ID            uuid.UUID        `json:"id"`
	SellerID      uuid.UUID        `json:"seller_id"`
	Title         string           `json:"title"`
	Price         decimal.Decimal  `json:"price"`
	LocalPickup   bool             `json:"local_pickup"`
	IsAuction     bool             `json:"is_auction"`
	StartingPrice decimal.Decimal  `json:"starting_price"`
	BidIncrement  decimal.Decimal  `json:"bid_increment"`
	ReservePrice  *decimal.Decimal `json:"reserve_price,omitempty"`
	BiddingEndsAt *time.Time       `json:"bidding_ends_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}
