package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"minibank/internal/domain/loan"
	"minibank/internal/infrastructure/monitoring"
	"minibank/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	if db == nil {
		panic("DBPool cannot be nil for LoanRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewLoanRepository, using default stderr handler")
	}
	return &LoanRepository{
		db:     db,
		logger: logger.With("component", "LoanRepository"),
	}
}

const loanColumns = "id, account_id, customer_id, value, total_interest_rate, creation_date, expiry_date, cancellation_date"

func (r *LoanRepository) Save(ctx context.Context, ln *loan.Loan) error {
	if ln == nil {
		return fmt.Errorf("%w: loan cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.logger.InfoContext(ctx, "Attempting to insert new loan", slog.Int64("accountID", ln.AccountID))
	start := time.Now()

	query := `
        INSERT INTO loans (account_id, customer_id, value, total_interest_rate, creation_date, expiry_date, cancellation_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`

	err := r.db.QueryRow(ctx, query,
		ln.AccountID,
		ln.CustomerID,
		ln.Value,
		ln.TotalInterestRate,
		ln.CreationDate,
		ln.ExpiryDate,
		ln.CancellationDate,
	).Scan(&ln.ID)
	monitoring.RecordDBQuery("insert_loan", time.Since(start))

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", slog.Any("error", err))
		return translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "Loan inserted successfully", slog.Int64("loanID", ln.ID))
	return nil
}

func (r *LoanRepository) FindByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	query := fmt.Sprintf(`SELECT %s FROM loans WHERE id = $1`, loanColumns)

	start := time.Now()
	var ln loan.Loan
	err := r.db.QueryRow(ctx, query, loanID).Scan(
		&ln.ID,
		&ln.AccountID,
		&ln.CustomerID,
		&ln.Value,
		&ln.TotalInterestRate,
		&ln.CreationDate,
		&ln.ExpiryDate,
		&ln.CancellationDate,
	)
	monitoring.RecordDBQuery("select_loan", time.Since(start))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan loan", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get loan: %w", apperrors.ErrDatabase, err)
	}

	return &ln, nil
}

func (r *LoanRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*loan.Loan, error) {
	query := fmt.Sprintf(`SELECT %s FROM loans WHERE customer_id = $1 ORDER BY id ASC`, loanColumns)
	return r.list(ctx, "list_loans_by_customer", query, customerID)
}

func (r *LoanRepository) ListByAccount(ctx context.Context, accountID int64) ([]*loan.Loan, error) {
	query := fmt.Sprintf(`SELECT %s FROM loans WHERE account_id = $1 ORDER BY id ASC`, loanColumns)
	return r.list(ctx, "list_loans_by_account", query, accountID)
}

func (r *LoanRepository) ListByCustomerAndAccount(ctx context.Context, customerID, accountID int64) ([]*loan.Loan, error) {
	query := fmt.Sprintf(`SELECT %s FROM loans WHERE customer_id = $1 AND account_id = $2 ORDER BY id ASC`, loanColumns)
	return r.list(ctx, "list_loans_by_customer_and_account", query, customerID, accountID)
}

func (r *LoanRepository) list(ctx context.Context, queryName, query string, args ...any) ([]*loan.Loan, error) {
	start := time.Now()
	rows, err := r.db.Query(ctx, query, args...)
	monitoring.RecordDBQuery(queryName, time.Since(start))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loans", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query loans: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	loans := make([]*loan.Loan, 0)
	for rows.Next() {
		var ln loan.Loan
		err := rows.Scan(
			&ln.ID,
			&ln.AccountID,
			&ln.CustomerID,
			&ln.Value,
			&ln.TotalInterestRate,
			&ln.CreationDate,
			&ln.ExpiryDate,
			&ln.CancellationDate,
		)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan loan row: %w", apperrors.ErrDatabase, err)
		}
		loans = append(loans, &ln)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating loan rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating loan rows: %w", apperrors.ErrDatabase, err)
	}

	return loans, nil
}

func (r *LoanRepository) CountByCustomer(ctx context.Context, customerID int64) (int, error) {
	query := `SELECT COUNT(*) FROM loans WHERE customer_id = $1`

	start := time.Now()
	var count int
	err := r.db.QueryRow(ctx, query, customerID).Scan(&count)
	monitoring.RecordDBQuery("count_loans", time.Since(start))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count loans", slog.Any("error", err))
		return 0, fmt.Errorf("%w: failed to count loans: %w", apperrors.ErrDatabase, err)
	}
	return count, nil
}

// SumValueByCustomer totals loan principals. COALESCE keeps the empty
// set a zero, not a NULL scan failure.
func (r *LoanRepository) SumValueByCustomer(ctx context.Context, customerID int64) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(value), 0) FROM loans WHERE customer_id = $1`

	start := time.Now()
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, query, customerID).Scan(&total)
	monitoring.RecordDBQuery("sum_loan_values", time.Since(start))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to sum loan values", slog.Any("error", err))
		return decimal.Zero, fmt.Errorf("%w: failed to sum loan values: %w", apperrors.ErrDatabase, err)
	}
	return total, nil
}

func (r *LoanRepository) CountActiveExpiredBefore(ctx context.Context, t time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM loans WHERE cancellation_date IS NULL AND expiry_date < $1`

	start := time.Now()
	var count int64
	err := r.db.QueryRow(ctx, query, t).Scan(&count)
	monitoring.RecordDBQuery("count_expired_loans", time.Since(start))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count expired loans", slog.Any("error", err))
		return 0, fmt.Errorf("%w: failed to count expired loans: %w", apperrors.ErrDatabase, err)
	}
	return count, nil
}
