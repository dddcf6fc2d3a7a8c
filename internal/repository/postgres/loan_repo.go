package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jls/financesuite/finance-backend/internal/domain"
)

// LoanRepository implements domain.LoanRepository using PostgreSQL
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, company_id, customer_id, amount, interest_rate, tenure_months,
	processing_fee_pct, processing_fee, emi, status, disbursal_date, created_at, updated_at`

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var l domain.Loan
	var companyID pgtype.Int4
	var amount, rate, feePct, fee, emi pgtype.Numeric
	var status string
	var disbursalDate pgtype.Date
	err := row.Scan(&l.ID, &companyID, &l.CustomerID, &amount, &rate, &l.TenureMonths,
		&feePct, &fee, &emi, &status, &disbursalDate, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if companyID.Valid {
		l.CompanyID = companyID.Int32
	}
	l.Amount = pgNumericToDecimal(amount)
	l.InterestRate = pgNumericToDecimal(rate)
	l.ProcessingFeePct = pgNumericToDecimal(feePct)
	l.ProcessingFee = pgNumericToDecimal(fee)
	l.EMI = pgNumericToDecimal(emi)
	l.Status = domain.LoanStatus(status)
	l.DisbursalDate = pgDateToPtr(disbursalDate)
	return &l, nil
}

// Create allocates a loan ID from the counter and inserts the loan in one
// transaction. The counter row is locked so two concurrent creates cannot
// observe the same last_id.
func (r *LoanRepository) Create(loan *domain.Loan) (*domain.Loan, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var lastID int64
	err = tx.QueryRow(ctx,
		`SELECT last_id FROM counters WHERE name = 'loan_id' FOR UPDATE`).Scan(&lastID)
	if err != nil {
		return nil, err
	}
	newID := lastID + 10

	if _, err := tx.Exec(ctx,
		`UPDATE counters SET last_id = $1 WHERE name = 'loan_id'`, newID); err != nil {
		return nil, err
	}

	amount, err := decimalToPgNumeric(loan.Amount)
	if err != nil {
		return nil, err
	}
	rate, err := decimalToPgNumeric(loan.InterestRate)
	if err != nil {
		return nil, err
	}
	feePct, err := decimalToPgNumeric(loan.ProcessingFeePct)
	if err != nil {
		return nil, err
	}
	fee, err := decimalToPgNumeric(loan.ProcessingFee)
	if err != nil {
		return nil, err
	}
	emi, err := decimalToPgNumeric(loan.EMI)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO loans (id, company_id, customer_id, amount, interest_rate, tenure_months,
			processing_fee_pct, processing_fee, emi, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+loanColumns,
		newID, loan.CompanyID, loan.CustomerID, amount, rate, loan.TenureMonths,
		feePct, fee, emi, string(loan.Status))
	created, err := scanLoan(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a loan with its schedule and foreclosure, if any
func (r *LoanRepository) GetByID(companyID int32, id int64) (*domain.Loan, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+loanColumns+` FROM loans WHERE company_id = $1 AND id = $2`,
		companyID, id)
	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	if err := r.attachDetails(context.Background(), []*domain.Loan{loan}); err != nil {
		return nil, err
	}
	return loan, nil
}

// GetAllByCompany retrieves all loans of a company with their schedules
func (r *LoanRepository) GetAllByCompany(companyID int32) ([]*domain.Loan, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+loanColumns+` FROM loans WHERE company_id = $1 ORDER BY created_at DESC, id DESC`,
		companyID)
	if err != nil {
		return nil, err
	}
	loans, err := collectLoans(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachDetails(context.Background(), loans); err != nil {
		return nil, err
	}
	return loans, nil
}

// GetByCustomer retrieves all loans of one customer within a company
func (r *LoanRepository) GetByCustomer(companyID int32, customerID int32) ([]*domain.Loan, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+loanColumns+` FROM loans
		 WHERE company_id = $1 AND customer_id = $2
		 ORDER BY created_at DESC, id DESC`,
		companyID, customerID)
	if err != nil {
		return nil, err
	}
	loans, err := collectLoans(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachDetails(context.Background(), loans); err != nil {
		return nil, err
	}
	return loans, nil
}

func collectLoans(rows pgx.Rows) ([]*domain.Loan, error) {
	defer rows.Close()
	var loans []*domain.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

// attachDetails loads schedules and foreclosures for the given loans
func (r *LoanRepository) attachDetails(ctx context.Context, loans []*domain.Loan) error {
	if len(loans) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Loan, len(loans))
	ids := make([]int64, 0, len(loans))
	for _, l := range loans {
		byID[l.ID] = l
		ids = append(ids, l.ID)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, loan_id, emi_number, amount, due_date, status, payment_date
		 FROM installments WHERE loan_id = ANY($1) ORDER BY loan_id, emi_number`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var inst domain.Installment
		var amount pgtype.Numeric
		var dueDate pgtype.Date
		var status string
		var paymentDate pgtype.Date
		if err := rows.Scan(&inst.ID, &inst.LoanID, &inst.EMINumber, &amount,
			&dueDate, &status, &paymentDate); err != nil {
			rows.Close()
			return err
		}
		inst.Amount = pgNumericToDecimal(amount)
		inst.DueDate = dueDate.Time
		inst.Status = domain.InstallmentStatus(status)
		inst.PaymentDate = pgDateToPtr(paymentDate)
		if loan, ok := byID[inst.LoanID]; ok {
			loan.Schedule = append(loan.Schedule, inst)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	fcRows, err := r.pool.Query(ctx,
		`SELECT loan_id, settled_amount, amount_received, date
		 FROM foreclosures WHERE loan_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	defer fcRows.Close()
	for fcRows.Next() {
		var fc domain.Foreclosure
		var settled pgtype.Numeric
		var date pgtype.Date
		if err := fcRows.Scan(&fc.LoanID, &settled, &fc.AmountReceived, &date); err != nil {
			return err
		}
		fc.SettledAmount = pgNumericToDecimal(settled)
		fc.Date = date.Time
		if loan, ok := byID[fc.LoanID]; ok {
			loan.Foreclosure = &fc
		}
	}
	return fcRows.Err()
}

// UpdateStatus updates the stored status cache of a loan
func (r *LoanRepository) UpdateStatus(companyID int32, id int64, status domain.LoanStatus) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE loans SET status = $3, updated_at = now()
		 WHERE company_id = $1 AND id = $2`,
		companyID, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

// SetDisbursed marks a loan disbursed and writes its repayment schedule
// in the same transaction.
func (r *LoanRepository) SetDisbursed(companyID int32, id int64, disbursalDate time.Time, schedule []domain.Installment) (*domain.Loan, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE loans SET status = $3, disbursal_date = $4, updated_at = now()
		 WHERE company_id = $1 AND id = $2`,
		companyID, id, string(domain.LoanStatusDisbursed),
		pgtype.Date{Time: disbursalDate, Valid: true})
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrLoanNotFound
	}

	batch := &pgx.Batch{}
	for _, inst := range schedule {
		amount, err := decimalToPgNumeric(inst.Amount)
		if err != nil {
			return nil, err
		}
		batch.Queue(
			`INSERT INTO installments (loan_id, emi_number, amount, due_date, status)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, inst.EMINumber, amount,
			pgtype.Date{Time: inst.DueDate, Valid: true},
			string(domain.InstallmentStatusPending))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(companyID, id)
}

// MarkInstallmentPaid moves one installment from Pending to Paid. A second
// payment of the same installment fails with ErrInstallmentNotPending.
func (r *LoanRepository) MarkInstallmentPaid(companyID int32, loanID int64, emiNumber int32, paymentDate time.Time) (*domain.Installment, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`UPDATE installments i
		 SET status = $5, payment_date = $6
		 FROM loans l
		 WHERE i.loan_id = l.id AND l.company_id = $1 AND i.loan_id = $2
		   AND i.emi_number = $3 AND i.status = $4
		 RETURNING i.id, i.loan_id, i.emi_number, i.amount, i.due_date, i.status, i.payment_date`,
		companyID, loanID, emiNumber,
		string(domain.InstallmentStatusPending), string(domain.InstallmentStatusPaid),
		pgtype.Date{Time: paymentDate, Valid: true})

	var inst domain.Installment
	var amount pgtype.Numeric
	var dueDate pgtype.Date
	var status string
	var paidOn pgtype.Date
	err := row.Scan(&inst.ID, &inst.LoanID, &inst.EMINumber, &amount, &dueDate, &status, &paidOn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyInstallmentMiss(ctx, companyID, loanID, emiNumber)
		}
		return nil, err
	}
	inst.Amount = pgNumericToDecimal(amount)
	inst.DueDate = dueDate.Time
	inst.Status = domain.InstallmentStatus(status)
	inst.PaymentDate = pgDateToPtr(paidOn)
	return &inst, nil
}

// classifyInstallmentMiss distinguishes a missing installment from one that
// exists but is no longer pending.
func (r *LoanRepository) classifyInstallmentMiss(ctx context.Context, companyID int32, loanID int64, emiNumber int32) error {
	var status string
	err := r.pool.QueryRow(ctx,
		`SELECT i.status FROM installments i
		 JOIN loans l ON l.id = i.loan_id
		 WHERE l.company_id = $1 AND i.loan_id = $2 AND i.emi_number = $3`,
		companyID, loanID, emiNumber).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrInstallmentNotFound
		}
		return err
	}
	return domain.ErrInstallmentNotPending
}

// CreateForeclosure records an early settlement and cancels the loan's
// pending installments in the same transaction.
func (r *LoanRepository) CreateForeclosure(companyID int32, fc *domain.Foreclosure) (*domain.Foreclosure, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM foreclosures f
		 JOIN loans l ON l.id = f.loan_id
		 WHERE l.company_id = $1 AND f.loan_id = $2)`,
		companyID, fc.LoanID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrForeclosureAlreadySet
	}

	settled, err := decimalToPgNumeric(fc.SettledAmount)
	if err != nil {
		return nil, err
	}
	tag, err := tx.Exec(ctx,
		`INSERT INTO foreclosures (loan_id, settled_amount, amount_received, date)
		 SELECT l.id, $3, $4, $5 FROM loans l WHERE l.company_id = $1 AND l.id = $2`,
		companyID, fc.LoanID, settled, fc.AmountReceived,
		pgtype.Date{Time: fc.Date, Valid: true})
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrLoanNotFound
	}

	if _, err := tx.Exec(ctx,
		`UPDATE installments SET status = $2
		 WHERE loan_id = $1 AND status = $3`,
		fc.LoanID, string(domain.InstallmentStatusCancelled),
		string(domain.InstallmentStatusPending)); err != nil {
		return nil, err
	}

	if fc.AmountReceived {
		if _, err := tx.Exec(ctx,
			`UPDATE loans SET status = $3, updated_at = now()
			 WHERE company_id = $1 AND id = $2`,
			companyID, fc.LoanID, string(domain.LoanStatusCompleted)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return fc, nil
}

// Delete removes a loan; installments and any foreclosure cascade
func (r *LoanRepository) Delete(companyID int32, id int64) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM loans WHERE company_id = $1 AND id = $2`,
		companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}
