package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jls/financesuite/finance-backend/internal/domain"
)

// CompanyRepository implements domain.CompanyRepository using PostgreSQL
type CompanyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

const companyColumns = `id, owner_id, name, owner_email, address, phone, gstin, upi_id, created_at, updated_at`

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var c domain.Company
	var address, phone, gstin, upiID pgtype.Text
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.OwnerEmail, &address, &phone, &gstin, &upiID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Address = pgTextToPtr(address)
	c.Phone = pgTextToPtr(phone)
	c.GSTIN = pgTextToPtr(gstin)
	c.UPIID = pgTextToPtr(upiID)
	return &c, nil
}

// GetByID retrieves a company by ID
func (r *CompanyRepository) GetByID(id int32) (*domain.Company, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	company, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, err
	}
	return company, nil
}

// GetByOwnerID retrieves the company owned by a user
func (r *CompanyRepository) GetByOwnerID(ownerID uuid.UUID) (*domain.Company, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+companyColumns+` FROM companies WHERE owner_id = $1`, ownerID)
	company, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, err
	}
	return company, nil
}

// GetByOwnerAuth0ID retrieves the company owned by an Auth0 user
func (r *CompanyRepository) GetByOwnerAuth0ID(auth0ID string) (*domain.Company, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT c.id, c.owner_id, c.name, c.owner_email, c.address, c.phone, c.gstin, c.upi_id, c.created_at, c.updated_at
		 FROM companies c
		 JOIN users u ON u.id = c.owner_id
		 WHERE u.auth0_id = $1`, auth0ID)
	company, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, err
	}
	return company, nil
}

// GetAll retrieves every company. Used by the alert worker only.
func (r *CompanyRepository) GetAll() ([]*domain.Company, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+companyColumns+` FROM companies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []*domain.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

// Create creates a new company
func (r *CompanyRepository) Create(company *domain.Company) (*domain.Company, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO companies (owner_id, name, owner_email, address, phone, gstin, upi_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+companyColumns,
		company.OwnerID, company.Name, company.OwnerEmail,
		ptrToPgText(company.Address), ptrToPgText(company.Phone),
		ptrToPgText(company.GSTIN), ptrToPgText(company.UPIID))
	return scanCompany(row)
}

// Update updates a company's profile fields
func (r *CompanyRepository) Update(company *domain.Company) (*domain.Company, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE companies
		 SET name = $2, address = $3, phone = $4, gstin = $5, upi_id = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING `+companyColumns,
		company.ID, company.Name,
		ptrToPgText(company.Address), ptrToPgText(company.Phone),
		ptrToPgText(company.GSTIN), ptrToPgText(company.UPIID))
	updated, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, err
	}
	return updated, nil
}

// CountOrphans counts records with no company foreign key
func (r *CompanyRepository) CountOrphans() (domain.OrphanCounts, error) {
	var counts domain.OrphanCounts
	err := r.pool.QueryRow(context.Background(),
		`SELECT
			(SELECT COUNT(*) FROM customers WHERE company_id IS NULL),
			(SELECT COUNT(*) FROM loans WHERE company_id IS NULL),
			(SELECT COUNT(*) FROM expenses WHERE company_id IS NULL),
			(SELECT COUNT(*) FROM partner_transactions WHERE company_id IS NULL)`,
	).Scan(&counts.Customers, &counts.Loans, &counts.Expenses, &counts.PartnerTransactions)
	if err != nil {
		return domain.OrphanCounts{}, err
	}
	return counts, nil
}

// AdoptOrphans assigns all orphaned records to a company in one transaction
func (r *CompanyRepository) AdoptOrphans(companyID int32) (domain.OrphanCounts, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.OrphanCounts{}, err
	}
	defer tx.Rollback(ctx)

	var counts domain.OrphanCounts

	tag, err := tx.Exec(ctx, `UPDATE customers SET company_id = $1 WHERE company_id IS NULL`, companyID)
	if err != nil {
		return domain.OrphanCounts{}, err
	}
	counts.Customers = tag.RowsAffected()

	tag, err = tx.Exec(ctx, `UPDATE loans SET company_id = $1 WHERE company_id IS NULL`, companyID)
	if err != nil {
		return domain.OrphanCounts{}, err
	}
	counts.Loans = tag.RowsAffected()

	tag, err = tx.Exec(ctx, `UPDATE expenses SET company_id = $1 WHERE company_id IS NULL`, companyID)
	if err != nil {
		return domain.OrphanCounts{}, err
	}
	counts.Expenses = tag.RowsAffected()

	tag, err = tx.Exec(ctx, `UPDATE partner_transactions SET company_id = $1 WHERE company_id IS NULL`, companyID)
	if err != nil {
		return domain.OrphanCounts{}, err
	}
	counts.PartnerTransactions = tag.RowsAffected()

	if err := tx.Commit(ctx); err != nil {
		return domain.OrphanCounts{}, err
	}
	return counts, nil
}
