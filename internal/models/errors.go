package models

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrDisputeNotFound     = errors.New("dispute not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrWithdrawalNotFound  = errors.New("withdrawal request not found")
	ErrNotAuthorized       = errors.New("actor is not allowed to perform this action")
	ErrDisputeUnresolved   = errors.New("order has an unresolved dispute")
	ErrDuplicatePayout     = errors.New("a completed credit already exists for this order")
	ErrAlreadyProcessed    = errors.New("withdrawal request already resolved")
	ErrInsufficientBalance = errors.New("insufficient available balance")
	ErrWindowExpired       = errors.New("dispute window has expired")
	ErrDuplicateDispute    = errors.New("order already has an unresolved dispute")
	ErrAuctionEnded        = errors.New("bidding has ended for this product")
	ErrSelfBid             = errors.New("bidder owns this product")
	ErrBelowMinimum        = errors.New("bid amount is below the minimum")
)

// InvalidTransitionError identifies both sides of a rejected status move so
// handlers and the sweep can report it without string matching.
type InvalidTransitionError struct {
	Actor string
	From  string
	To    string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s for actor %s", e.From, e.To, e.Actor)
}

func NewInvalidTransition(actor, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{Actor: actor, From: from, To: to}
}
