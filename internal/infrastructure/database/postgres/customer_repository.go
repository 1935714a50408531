package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"minibank/internal/domain/customer"
	"minibank/internal/infrastructure/monitoring"
	"minibank/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

const customerColumns = "id, first_name, middle_name, last_name, ssn, phone_number, birth_date, join_date"

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.logger.InfoContext(ctx, "Attempting to insert new customer")
	start := time.Now()

	query := `
        INSERT INTO customers (first_name, middle_name, last_name, ssn, phone_number, birth_date, join_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`

	err := r.db.QueryRow(ctx, query,
		cust.FirstName,
		cust.MiddleName,
		cust.LastName,
		cust.SSN,
		cust.PhoneNumber,
		cust.BirthDate,
		cust.JoinDate,
	).Scan(&cust.ID)
	monitoring.RecordDBQuery("insert_customer", time.Since(start))

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrDuplicateIdentity) {
			r.logger.WarnContext(ctx, "Failed to insert customer due to unique constraint violation", slog.Any("error", err))
			return translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert customer: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.ID))
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, customerColumns)
	return r.findOne(ctx, query, customerID)
}

func (r *CustomerRepository) FindBySSN(ctx context.Context, ssn string) (*customer.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE ssn = $1`, customerColumns)
	return r.findOne(ctx, query, ssn)
}

func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE phone_number = $1`, customerColumns)
	return r.findOne(ctx, query, phone)
}

func (r *CustomerRepository) FindByName(ctx context.Context, firstName, middleName, lastName string) (*customer.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE first_name = $1 AND middle_name = $2 AND last_name = $3`, customerColumns)
	return r.findOne(ctx, query, firstName, middleName, lastName)
}

func (r *CustomerRepository) findOne(ctx context.Context, query string, args ...any) (*customer.Customer, error) {
	start := time.Now()
	var cust customer.Customer
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&cust.ID,
		&cust.FirstName,
		&cust.MiddleName,
		&cust.LastName,
		&cust.SSN,
		&cust.PhoneNumber,
		&cust.BirthDate,
		&cust.JoinDate,
	)
	monitoring.RecordDBQuery("select_customer", time.Since(start))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan customer", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer: %w", apperrors.ErrDatabase, err)
	}

	return &cust, nil
}

func (r *CustomerRepository) ListNames(ctx context.Context) ([]*customer.Customer, error) {
	r.logger.InfoContext(ctx, "Attempting to list customer names")

	query := `
        SELECT id, first_name, middle_name, last_name
        FROM customers
        ORDER BY id ASC`

	start := time.Now()
	rows, err := r.db.Query(ctx, query)
	monitoring.RecordDBQuery("list_customer_names", time.Since(start))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customer names", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query customer names: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		var cust customer.Customer
		err := rows.Scan(
			&cust.ID,
			&cust.FirstName,
			&cust.MiddleName,
			&cust.LastName,
		)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer name row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan customer name row: %w", apperrors.ErrDatabase, err)
		}
		customers = append(customers, &cust)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer name rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating customer name rows: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Finished listing customer names", slog.Int("count", len(customers)))
	return customers, nil
}
