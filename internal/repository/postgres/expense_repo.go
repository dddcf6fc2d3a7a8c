package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jls/financesuite/finance-backend/internal/domain"
)

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var e domain.Expense
	var companyID pgtype.Int4
	var amount pgtype.Numeric
	var date pgtype.Date
	if err := row.Scan(&e.ID, &companyID, &e.Description, &amount, &date, &e.CreatedAt); err != nil {
		return nil, err
	}
	if companyID.Valid {
		e.CompanyID = companyID.Int32
	}
	e.Amount = pgNumericToDecimal(amount)
	e.Date = date.Time
	return &e, nil
}

// Create records an operating expense
func (r *ExpenseRepository) Create(expense *domain.Expense) (*domain.Expense, error) {
	amount, err := decimalToPgNumeric(expense.Amount)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO expenses (company_id, description, amount, date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, company_id, description, amount, date, created_at`,
		expense.CompanyID, expense.Description, amount,
		pgtype.Date{Time: expense.Date, Valid: true})
	return scanExpense(row)
}

// GetAllByCompany retrieves all expenses of a company
func (r *ExpenseRepository) GetAllByCompany(companyID int32) ([]*domain.Expense, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT id, company_id, description, amount, date, created_at
		 FROM expenses WHERE company_id = $1 ORDER BY date DESC, id DESC`,
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*domain.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

// Delete removes an expense
func (r *ExpenseRepository) Delete(companyID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM expenses WHERE company_id = $1 AND id = $2`,
		companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}
