package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jls/financesuite/finance-backend/internal/domain"
)

// PartnerTransactionRepository implements domain.PartnerTransactionRepository
// using PostgreSQL.
type PartnerTransactionRepository struct {
	pool *pgxpool.Pool
}

// NewPartnerTransactionRepository creates a new PartnerTransactionRepository
func NewPartnerTransactionRepository(pool *pgxpool.Pool) *PartnerTransactionRepository {
	return &PartnerTransactionRepository{pool: pool}
}

func scanPartnerTx(row pgx.Row) (*domain.PartnerTransaction, error) {
	var t domain.PartnerTransaction
	var companyID pgtype.Int4
	var txType string
	var amount pgtype.Numeric
	var date pgtype.Date
	if err := row.Scan(&t.ID, &companyID, &txType, &t.PartnerName, &amount, &date, &t.CreatedAt); err != nil {
		return nil, err
	}
	if companyID.Valid {
		t.CompanyID = companyID.Int32
	}
	t.Type = domain.PartnerTransactionType(txType)
	t.Amount = pgNumericToDecimal(amount)
	t.Date = date.Time
	return &t, nil
}

// Create records a partner investment or withdrawal
func (r *PartnerTransactionRepository) Create(tx *domain.PartnerTransaction) (*domain.PartnerTransaction, error) {
	amount, err := decimalToPgNumeric(tx.Amount)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO partner_transactions (company_id, type, partner_name, amount, date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, company_id, type, partner_name, amount, date, created_at`,
		tx.CompanyID, string(tx.Type), tx.PartnerName, amount,
		pgtype.Date{Time: tx.Date, Valid: true})
	return scanPartnerTx(row)
}

// GetAllByCompany retrieves all partner transactions of a company
func (r *PartnerTransactionRepository) GetAllByCompany(companyID int32) ([]*domain.PartnerTransaction, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT id, company_id, type, partner_name, amount, date, created_at
		 FROM partner_transactions WHERE company_id = $1 ORDER BY date DESC, id DESC`,
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*domain.PartnerTransaction
	for rows.Next() {
		tx, err := scanPartnerTx(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// Delete removes a partner transaction
func (r *PartnerTransactionRepository) Delete(companyID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM partner_transactions WHERE company_id = $1 AND id = $2`,
		companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPartnerTxNotFound
	}
	return nil
}
