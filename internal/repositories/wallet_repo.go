package repositories

import (
	"context"
	"fmt"

	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const ledgerCols = `
	id, user_id, order_id, withdrawal_id, kind,
	gross_amount::text, net_amount::text,
	service_charge::text, service_charge_type, tax_charge::text, tax_charge_type,
	status, created_at, updated_at`

type WalletRepo struct {
	db DB
}

func NewWalletRepo(pool *pgxpool.Pool) *WalletRepo {
	return &WalletRepo{db: pool}
}

func (r *WalletRepo) WithTx(tx pgx.Tx) *WalletRepo {
	return &WalletRepo{db: tx}
}

func scanWallet(rw row) (*models.Wallet, error) {
	var w models.Wallet
	var available, frozen string
	if err := rw.Scan(&w.ID, &w.UserID, &available, &frozen, &w.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if w.Available, err = parseDecimal(available); err != nil {
		return nil, fmt.Errorf("parse available: %w", err)
	}
	if w.Frozen, err = parseDecimal(frozen); err != nil {
		return nil, fmt.Errorf("parse frozen: %w", err)
	}
	return &w, nil
}

// GetOrCreate returns the user's wallet, creating a zeroed one on first use.
func (r *WalletRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	return scanWallet(r.db.QueryRow(ctx, `
		INSERT INTO wallets (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, available::text, frozen::text, updated_at
	`, userID))
}

// GetForUpdate locks the wallet row; callers must be inside a transaction.
// The upsert above guarantees the row exists before any balance move.
func (r *WalletRepo) GetForUpdate(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	return scanWallet(r.db.QueryRow(ctx, `
		SELECT id, user_id, available::text, frozen::text, updated_at
		FROM wallets WHERE user_id = $1
		FOR UPDATE
	`, userID))
}

func (r *WalletRepo) SetBalances(ctx context.Context, userID uuid.UUID, available, frozen decimal.Decimal) error {
	_, err := r.db.Exec(ctx, `
		UPDATE wallets SET available = $1, frozen = $2, updated_at = now()
		WHERE user_id = $3
	`, available, frozen, userID)
	return err
}

// --- Ledger entries ---

func scanLedgerEntry(rw row) (*models.WalletLedgerEntry, error) {
	var e models.WalletLedgerEntry
	var gross, net, service, tax string
	err := rw.Scan(
		&e.ID, &e.UserID, &e.OrderID, &e.WithdrawalID, &e.Kind,
		&gross, &net,
		&service, &e.ServiceChargeType, &tax, &e.TaxChargeType,
		&e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if e.GrossAmount, err = parseDecimal(gross); err != nil {
		return nil, fmt.Errorf("parse gross_amount: %w", err)
	}
	if e.NetAmount, err = parseDecimal(net); err != nil {
		return nil, fmt.Errorf("parse net_amount: %w", err)
	}
	if e.ServiceCharge, err = parseDecimal(service); err != nil {
		return nil, fmt.Errorf("parse service_charge: %w", err)
	}
	if e.TaxCharge, err = parseDecimal(tax); err != nil {
		return nil, fmt.Errorf("parse tax_charge: %w", err)
	}
	return &e, nil
}

func (r *WalletRepo) InsertLedgerEntry(ctx context.Context, e *models.WalletLedgerEntry) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO wallet_ledger_entries (
			user_id, order_id, withdrawal_id, kind,
			gross_amount, net_amount,
			service_charge, service_charge_type, tax_charge, tax_charge_type,
			status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, e.UserID, e.OrderID, e.WithdrawalID, e.Kind,
		e.GrossAmount, e.NetAmount,
		e.ServiceCharge, e.ServiceChargeType, e.TaxCharge, e.TaxChargeType,
		e.Status,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *WalletRepo) UpdateLedgerStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE wallet_ledger_entries SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

// HasCompletedCreditForOrder is the pre-check for double payouts; the partial
// unique index backs it up under concurrent sweeps.
func (r *WalletRepo) HasCompletedCreditForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM wallet_ledger_entries
			WHERE order_id = $1 AND kind = $2 AND status = $3
		)
	`, orderID, models.LedgerKindCredit, models.LedgerStatusCompleted).Scan(&exists)
	return exists, err
}

func (r *WalletRepo) GetLedgerEntryByWithdrawal(ctx context.Context, withdrawalID uuid.UUID) (*models.WalletLedgerEntry, error) {
	return scanLedgerEntry(r.db.QueryRow(ctx,
		`SELECT `+ledgerCols+` FROM wallet_ledger_entries WHERE withdrawal_id = $1`, withdrawalID))
}

type LedgerFilter struct {
	Kind   *string
	Status *string
	Limit  int
	Offset int
}

func (r *WalletRepo) ListLedgerEntries(ctx context.Context, userID uuid.UUID, f LedgerFilter) ([]models.WalletLedgerEntry, error) {
	query := `SELECT ` + ledgerCols + ` FROM wallet_ledger_entries WHERE user_id = $1`
	args := []any{userID}
	argIdx := 2

	if f.Kind != nil {
		query += fmt.Sprintf(" AND kind = $%d", argIdx)
		args = append(args, *f.Kind)
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

	var entries []models.WalletLedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
