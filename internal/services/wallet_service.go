package services

import (
	"context"
	"fmt"

	"github.com/Aman0246jploft/kudsun-backend/internal/clients"
	"github.com/Aman0246jploft/kudsun-backend/internal/metrics"
	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/Aman0246jploft/kudsun-backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type WalletService struct {
	pool         *pgxpool.Pool
	walletRepo   *repositories.WalletRepo
	withdrawRepo *repositories.WithdrawRepo
	revenueRepo  *repositories.RevenueRepo
	feeRepo      *repositories.FeeRepo
	notifier     clients.NotificationClient
	log          *zap.Logger
	metrics      *metrics.Metrics
}

func NewWalletService(
	pool *pgxpool.Pool,
	walletRepo *repositories.WalletRepo,
	withdrawRepo *repositories.WithdrawRepo,
	revenueRepo *repositories.RevenueRepo,
	feeRepo *repositories.FeeRepo,
	notifier clients.NotificationClient,
	log *zap.Logger,
	m *metrics.Metrics,
) *WalletService {
	return &WalletService{
		pool:         pool,
		walletRepo:   walletRepo,
		withdrawRepo: withdrawRepo,
		revenueRepo:  revenueRepo,
		feeRepo:      feeRepo,
		notifier:     notifier,
		log:          log,
		metrics:      m,
	}
}

// CreditInTx records a completed credit entry and adds the net amount to the
// seller's available balance, inside the caller's transaction. The wallet
// row is locked first; a completed credit already present for the order
// returns ErrDuplicatePayout.
func (s *WalletService) CreditInTx(ctx context.Context, tx pgx.Tx, userID, orderID uuid.UUID, b SettlementBreakdown) (*models.WalletLedgerEntry, error) {
	wallets := s.walletRepo.WithTx(tx)

	dup, err := wallets.HasCompletedCreditForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, models.ErrDuplicatePayout
	}

	if _, err := wallets.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}
	w, err := wallets.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := &models.WalletLedgerEntry{
		UserID:        userID,
		OrderID:       &orderID,
		Kind:          models.LedgerKindCredit,
		GrossAmount:   b.Base,
		NetAmount:     b.Net,
		ServiceCharge: b.ServiceCharge,
		TaxCharge:     b.TaxCharge,
		Status:        models.LedgerStatusCompleted,
	}
	if b.ServiceSetting != nil {
		entry.ServiceChargeType = &b.ServiceSetting.Type
	}
	if b.TaxSetting != nil {
		entry.TaxChargeType = &b.TaxSetting.Type
	}
	if err := wallets.InsertLedgerEntry(ctx, entry); err != nil {
		return nil, err
	}
	if err := wallets.SetBalances(ctx, userID, w.Available.Add(b.Net), w.Frozen); err != nil {
		return nil, err
	}
	return entry, nil
}

// ReserveForWithdrawal creates a pending withdrawal request. The fee is read
// from the active withdrawal_fee setting and locked onto the request row;
// amount plus fee moves from available to frozen in the same transaction.
func (s *WalletService) ReserveForWithdrawal(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, payoutMethodRef string) (*models.SellerWithdrawal, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("withdrawal amount must be positive")
	}
	if payoutMethodRef == "" {
		return nil, fmt.Errorf("payout method is required")
	}

	feeSetting, err := s.feeRepo.GetActive(ctx, models.FeeWithdrawal)
	if err != nil {
		return nil, fmt.Errorf("load withdrawal fee: %w", err)
	}
	fee := ComputeFee(amount, feeSetting)
	total := amount.Add(fee)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	wallets := s.walletRepo.WithTx(tx)
	if _, err := wallets.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}
	w, err := wallets.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if total.GreaterThan(w.Available) {
		return nil, models.ErrInsufficientBalance
	}

	req := &models.SellerWithdrawal{
		UserID:          userID,
		PayoutMethodRef: payoutMethodRef,
		Amount:          amount,
		Fee:             fee,
		Status:          models.WithdrawalStatusPending,
	}
	if feeSetting != nil {
		req.FeeType = &feeSetting.Type
	}
	if err := s.withdrawRepo.WithTx(tx).Create(ctx, req); err != nil {
		return nil, err
	}

	entry := &models.WalletLedgerEntry{
		UserID:       userID,
		WithdrawalID: &req.ID,
		Kind:         models.LedgerKindWithdrawal,
		GrossAmount:  total,
		NetAmount:    amount,
		Status:       models.LedgerStatusPending,
	}
	if err := wallets.InsertLedgerEntry(ctx, entry); err != nil {
		return nil, err
	}

	if !fee.IsZero() && feeSetting != nil {
		if err := s.revenueRepo.WithTx(tx).Create(ctx, &models.PlatformRevenue{
			WithdrawalID:     &req.ID,
			RevenueType:      models.FeeWithdrawal,
			Amount:           fee,
			CalculationType:  feeSetting.Type,
			CalculationValue: feeSetting.Value,
			BaseAmount:       amount,
			Status:           models.RevenueStatusPending,
		}); err != nil {
			return nil, err
		}
	}

	if err := wallets.SetBalances(ctx, userID, w.Available.Sub(total), w.Frozen.Add(total)); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return req, nil
}

// ResolveWithdrawal is the admin decision on a pending request. Approval
// releases the frozen amount out of the system; rejection restores it to
// available using the fee stored on the request, not the current setting.
func (s *WalletService) ResolveWithdrawal(ctx context.Context, requestID uuid.UUID, approve bool, adminNote *string) (*models.SellerWithdrawal, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	withdrawals := s.withdrawRepo.WithTx(tx)
	wallets := s.walletRepo.WithTx(tx)
	revenues := s.revenueRepo.WithTx(tx)

	req, err := withdrawals.GetByIDForUpdate(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.WithdrawalStatusPending {
		return nil, models.ErrAlreadyProcessed
	}

	w, err := wallets.GetForUpdate(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	total := req.Amount.Add(req.Fee)

	entry, err := wallets.GetLedgerEntryByWithdrawal(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("ledger entry for withdrawal %s: %w", req.ID, err)
	}

	outcome := models.WithdrawalStatusRejected
	if approve {
		outcome = models.WithdrawalStatusApproved
		if err := wallets.SetBalances(ctx, req.UserID, w.Available, w.Frozen.Sub(total)); err != nil {
			return nil, err
		}
		if err := wallets.UpdateLedgerStatus(ctx, entry.ID, models.LedgerStatusCompleted); err != nil {
			return nil, err
		}
		if err := revenues.UpdateStatusByWithdrawal(ctx, req.ID, models.RevenueStatusCompleted); err != nil {
			return nil, err
		}
	} else {
		if err := wallets.SetBalances(ctx, req.UserID, w.Available.Add(total), w.Frozen.Sub(total)); err != nil {
			return nil, err
		}
		if err := wallets.UpdateLedgerStatus(ctx, entry.ID, models.LedgerStatusRejected); err != nil {
			return nil, err
		}
		if err := revenues.UpdateStatusByWithdrawal(ctx, req.ID, models.RevenueStatusCancelled); err != nil {
			return nil, err
		}
	}
	if err := withdrawals.Resolve(ctx, req.ID, outcome, adminNote); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	req.Status = outcome
	req.AdminNote = adminNote
	s.metrics.WithdrawalsResolvedTotal.WithLabelValues(outcome).Inc()
	s.notifier.Notify(ctx, req.UserID, "withdrawal_"+outcome, "Withdrawal "+outcome,
		fmt.Sprintf("Your withdrawal of %s was %s", req.Amount.StringFixed(2), outcome),
		map[string]any{"withdrawal_id": req.ID.String()})
	return req, nil
}

func (s *WalletService) Balance(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	return s.walletRepo.GetOrCreate(ctx, userID)
}

func (s *WalletService) ListEntries(ctx context.Context, userID uuid.UUID, f repositories.LedgerFilter) ([]models.WalletLedgerEntry, error) {
	return s.walletRepo.ListLedgerEntries(ctx, userID, f)
}

func (s *WalletService) ListWithdrawals(ctx context.Context, f repositories.WithdrawalFilter) ([]models.SellerWithdrawal, error) {
	return s.withdrawRepo.List(ctx, f)
}
