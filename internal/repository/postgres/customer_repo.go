package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jls/financesuite/finance-backend/internal/domain"
)

// CustomerRepository implements domain.CustomerRepository using PostgreSQL
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

const customerColumns = `id, company_id, name, phone, email, address, aadhaar, pan,
	guarantor_name, guarantor_phone, guarantor_address, photo_key, created_at, updated_at`

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	var companyID pgtype.Int4
	var email, address, aadhaar, pan, gName, gPhone, gAddress, photoKey pgtype.Text
	err := row.Scan(&c.ID, &companyID, &c.Name, &c.Phone, &email, &address, &aadhaar, &pan,
		&gName, &gPhone, &gAddress, &photoKey, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if companyID.Valid {
		c.CompanyID = companyID.Int32
	}
	c.Email = pgTextToPtr(email)
	c.Address = pgTextToPtr(address)
	c.Aadhaar = pgTextToPtr(aadhaar)
	c.PAN = pgTextToPtr(pan)
	c.PhotoKey = pgTextToPtr(photoKey)
	if gName.Valid || gPhone.Valid || gAddress.Valid {
		c.Guarantor = &domain.Guarantor{
			Name:    gName.String,
			Phone:   gPhone.String,
			Address: gAddress.String,
		}
	}
	return &c, nil
}

func guarantorFields(g *domain.Guarantor) (pgtype.Text, pgtype.Text, pgtype.Text) {
	if g == nil {
		return pgtype.Text{}, pgtype.Text{}, pgtype.Text{}
	}
	return pgtype.Text{String: g.Name, Valid: true},
		pgtype.Text{String: g.Phone, Valid: true},
		pgtype.Text{String: g.Address, Valid: true}
}

// Create creates a new customer
func (r *CustomerRepository) Create(customer *domain.Customer) (*domain.Customer, error) {
	gName, gPhone, gAddress := guarantorFields(customer.Guarantor)
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO customers (company_id, name, phone, email, address, aadhaar, pan,
			guarantor_name, guarantor_phone, guarantor_address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+customerColumns,
		customer.CompanyID, customer.Name, customer.Phone,
		ptrToPgText(customer.Email), ptrToPgText(customer.Address),
		ptrToPgText(customer.Aadhaar), ptrToPgText(customer.PAN),
		gName, gPhone, gAddress)
	return scanCustomer(row)
}

// GetByID retrieves a customer by ID within a company
func (r *CustomerRepository) GetByID(companyID int32, id int32) (*domain.Customer, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+customerColumns+` FROM customers WHERE company_id = $1 AND id = $2`,
		companyID, id)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

// GetAllByCompany retrieves all customers belonging to a company
func (r *CustomerRepository) GetAllByCompany(companyID int32) ([]*domain.Customer, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+customerColumns+` FROM customers WHERE company_id = $1 ORDER BY name, id`,
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}

// Update updates a customer's identity and KYC fields
func (r *CustomerRepository) Update(customer *domain.Customer) (*domain.Customer, error) {
	gName, gPhone, gAddress := guarantorFields(customer.Guarantor)
	row := r.pool.QueryRow(context.Background(),
		`UPDATE customers
		 SET name = $3, phone = $4, email = $5, address = $6, aadhaar = $7, pan = $8,
		     guarantor_name = $9, guarantor_phone = $10, guarantor_address = $11,
		     updated_at = now()
		 WHERE company_id = $1 AND id = $2
		 RETURNING `+customerColumns,
		customer.CompanyID, customer.ID, customer.Name, customer.Phone,
		ptrToPgText(customer.Email), ptrToPgText(customer.Address),
		ptrToPgText(customer.Aadhaar), ptrToPgText(customer.PAN),
		gName, gPhone, gAddress)
	updated, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return updated, nil
}

// UpdatePhotoKey stores the object storage key of a customer's photo
func (r *CustomerRepository) UpdatePhotoKey(companyID int32, id int32, photoKey string) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE customers SET photo_key = $3, updated_at = now()
		 WHERE company_id = $1 AND id = $2`,
		companyID, id, photoKey)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

// Delete removes a customer
func (r *CustomerRepository) Delete(companyID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM customers WHERE company_id = $1 AND id = $2`,
		companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}
