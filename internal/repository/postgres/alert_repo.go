package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jls/financesuite/finance-backend/internal/domain"
)

// AlertRepository implements domain.AlertSink on a PostgreSQL table. The
// table holds one row per scheduled reminder; delivery workers poll it.
type AlertRepository struct {
	pool *pgxpool.Pool
}

// NewAlertRepository creates a new AlertRepository
func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

// ReplaceBatch drops every scheduled alert for the company and installs the
// new batch. Delete and inserts share one transaction, so readers never see
// a half-replaced schedule.
func (r *AlertRepository) ReplaceBatch(companyID int32, alerts []*domain.Alert) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM alerts WHERE company_id = $1`, companyID); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, a := range alerts {
		batch.Queue(
			`INSERT INTO alerts (company_id, loan_id, emi_number, kind, trigger_at, title, body)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			companyID, a.LoanID, a.EMINumber, string(a.Kind), a.TriggerAt, a.Title, a.Body)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// GetScheduled returns the company's scheduled alerts ordered by trigger time
func (r *AlertRepository) GetScheduled(companyID int32) ([]*domain.Alert, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT id, company_id, loan_id, emi_number, kind, trigger_at, title, body, created_at
		 FROM alerts WHERE company_id = $1 ORDER BY trigger_at, id`,
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*domain.Alert
	for rows.Next() {
		var a domain.Alert
		var kind string
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.LoanID, &a.EMINumber, &kind,
			&a.TriggerAt, &a.Title, &a.Body, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Kind = domain.AlertKind(kind)
		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}
