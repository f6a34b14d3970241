package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const disputeCols = `
	id, order_id, raised_by, seller_id, claim_type, claim_description, evidence_urls,
	response_type, response_description, response_attachments, responded_at,
	decision, refund_percent, decision_note, resolved_by, resolved_at,
	status, created_at, updated_at`

type DisputeRepo struct {
	db DB
}

func NewDisputeRepo(pool *pgxpool.Pool) *DisputeRepo {
	return &DisputeRepo{db: pool}
}

func (r *DisputeRepo) WithTx(tx pgx.Tx) *DisputeRepo {
	return &DisputeRepo{db: tx}
}

func scanDispute(rw row) (*models.Dispute, error) {
	var d models.Dispute
	var evidence, attachments []byte
	err := rw.Scan(
		&d.ID, &d.OrderID, &d.RaisedBy, &d.SellerID, &d.ClaimType, &d.ClaimDescription, &evidence,
		&d.ResponseType, &d.ResponseDescription, &attachments, &d.RespondedAt,
		&d.Decision, &d.RefundPercent, &d.DecisionNote, &d.ResolvedBy, &d.ResolvedAt,
		&d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if evidence != nil {
		_ = json.Unmarshal(evidence, &d.EvidenceURLs)
	}
	if attachments != nil {
		_ = json.Unmarshal(attachments, &d.ResponseAttachments)
	}
	return &d, nil
}

func (r *DisputeRepo) Create(ctx context.Context, d *models.Dispute) error {
	evidence, _ := json.Marshal(d.EvidenceURLs)
	return r.db.QueryRow(ctx, `
		INSERT INTO disputes (order_id, raised_by, seller_id, claim_type, claim_description, evidence_urls, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, d.OrderID, d.RaisedBy, d.SellerID, d.ClaimType, d.ClaimDescription, evidence, d.Status,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *DisputeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	d, err := scanDispute(r.db.QueryRow(ctx,
		`SELECT `+disputeCols+` FROM disputes WHERE id = $1 AND deleted_at IS NULL`, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrDisputeNotFound
	}
	return d, err
}

func (r *DisputeRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	d, err := scanDispute(r.db.QueryRow(ctx,
		`SELECT `+disputeCols+` FROM disputes WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrDisputeNotFound
	}
	return d, err
}

// GetUnresolvedByOrder returns the one dispute still blocking the order, or
// pgx.ErrNoRows wrapped as nil,nil when the order has none.
func (r *DisputeRepo) GetUnresolvedByOrder(ctx context.Context, orderID uuid.UUID) (*models.Dispute, error) {
	d, err := scanDispute(r.db.QueryRow(ctx, `
		SELECT `+disputeCols+` FROM disputes
		WHERE order_id = $1 AND status IN ($2, $3) AND deleted_at IS NULL
	`, orderID, models.DisputeStatusPending, models.DisputeStatusUnderReview))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return d, err
}

func (r *DisputeRepo) SetResponse(ctx context.Context, d *models.Dispute) error {
	attachments, _ := json.Marshal(d.ResponseAttachments)
	_, err := r.db.Exec(ctx, `
		UPDATE disputes
		SET response_type = $1, response_description = $2, response_attachments = $3,
		    responded_at = now(), status = $4, updated_at = now()
		WHERE id = $5
	`, d.ResponseType, d.ResponseDescription, attachments, d.Status, d.ID)
	return err
}

func (r *DisputeRepo) SetDecision(ctx context.Context, d *models.Dispute) error {
	_, err := r.db.Exec(ctx, `
		UPDATE disputes
		SET decision = $1, refund_percent = $2, decision_note = $3,
		    resolved_by = $4, resolved_at = now(), status = $5, updated_at = now()
		WHERE id = $6
	`, d.Decision, d.RefundPercent, d.DecisionNote, d.ResolvedBy, d.Status, d.ID)
	return err
}

func (r *DisputeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE disputes SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

type DisputeFilter struct {
	OrderID  *uuid.UUID
	RaisedBy *uuid.UUID
	SellerID *uuid.UUID
	Status   *string
	Limit    int
	Offset   int
}

func (r *DisputeRepo) List(ctx context.Context, f DisputeFilter) ([]models.Dispute, error) {
	query := `SELECT ` + disputeCols + ` FROM disputes WHERE deleted_at IS NULL`
	args := []any{}
	argIdx := 1

	if f.OrderID != nil {
		query += fmt.Sprintf(" AND order_id = $%d", argIdx)
		args = append(args, *f.OrderID)
		argIdx++
	}
	if f.RaisedBy != nil {
		query += fmt.Sprintf(" AND raised_by = $%d", argIdx)
		args = append(args, *f.RaisedBy)
		argIdx++
	}
	if f.SellerID != nil {
		query += fmt.Sprintf(" AND seller_id = $%d", argIdx)
		args = append(args, *f.SellerID)
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

	var disputes []models.Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		disputes = append(disputes, *d)
	}
	return disputes, rows.Err()
}
