package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"minibank/internal/domain/account"
	"minibank/internal/infrastructure/monitoring"
	"minibank/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type AccountRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ account.Repository = (*AccountRepository)(nil)

func NewAccountRepository(db DBPool, logger *slog.Logger) *AccountRepository {
	if db == nil {
		panic("DBPool cannot be nil for AccountRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewAccountRepository, using default stderr handler")
	}
	return &AccountRepository{
		db:     db,
		logger: logger.With("component", "AccountRepository"),
	}
}

func (r *AccountRepository) Save(ctx context.Context, acct *account.Account) error {
	if acct == nil {
		return fmt.Errorf("%w: account cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.logger.InfoContext(ctx, "Attempting to insert new account", slog.Int64("customerID", acct.CustomerID))
	start := time.Now()

	query := `
        INSERT INTO accounts (customer_id, credit, active, password)
        VALUES ($1, $2, $3, $4)
        RETURNING id`

	err := r.db.QueryRow(ctx, query,
		acct.CustomerID,
		acct.Credit,
		acct.Active,
		acct.Password,
	).Scan(&acct.ID)
	monitoring.RecordDBQuery("insert_account", time.Since(start))

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert account", slog.Any("error", err))
		return translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "Account inserted successfully", slog.Int64("accountID", acct.ID))
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, accountID int64) (*account.Account, error) {
	query := `
        SELECT id, customer_id, credit, active, password
        FROM accounts
        WHERE id = $1`
	return r.findOne(ctx, query, accountID)
}

func (r *AccountRepository) FindByIDAndPassword(ctx context.Context, accountID int64, password string) (*account.Account, error) {
	query := `
        SELECT id, customer_id, credit, active, password
        FROM accounts
        WHERE id = $1 AND password = $2`
	return r.findOne(ctx, query, accountID, password)
}

func (r *AccountRepository) findOne(ctx context.Context, query string, args ...any) (*account.Account, error) {
	start := time.Now()
	var acct account.Account
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&acct.ID,
		&acct.CustomerID,
		&acct.Credit,
		&acct.Active,
		&acct.Password,
	)
	monitoring.RecordDBQuery("select_account", time.Since(start))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan account", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get account: %w", apperrors.ErrDatabase, err)
	}

	return &acct, nil
}

func (r *AccountRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*account.Account, error) {
	r.logger.InfoContext(ctx, "Attempting to list accounts by customer", slog.Int64("customerID", customerID))

	query := `
        SELECT id, customer_id, credit, active, password
        FROM accounts
        WHERE customer_id = $1
        ORDER BY id ASC`

	start := time.Now()
	rows, err := r.db.Query(ctx, query, customerID)
	monitoring.RecordDBQuery("list_accounts", time.Since(start))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query accounts", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query accounts: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	accounts := make([]*account.Account, 0)
	for rows.Next() {
		var acct account.Account
		err := rows.Scan(
			&acct.ID,
			&acct.CustomerID,
			&acct.Credit,
			&acct.Active,
			&acct.Password,
		)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan account row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan account row: %w", apperrors.ErrDatabase, err)
		}
		accounts = append(accounts, &acct)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating account rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating account rows: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Finished listing accounts", slog.Int("count", len(accounts)))
	return accounts, nil
}

func (r *AccountRepository) CountByCustomer(ctx context.Context, customerID int64) (int, error) {
	query := `SELECT COUNT(*) FROM accounts WHERE customer_id = $1`

	start := time.Now()
	var count int
	err := r.db.QueryRow(ctx, query, customerID).Scan(&count)
	monitoring.RecordDBQuery("count_accounts", time.Since(start))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count accounts", slog.Any("error", err))
		return 0, fmt.Errorf("%w: failed to count accounts: %w", apperrors.ErrDatabase, err)
	}
	return count, nil
}

// ApplyBalanceDelta moves the balance in a single conditional UPDATE so
// two concurrent movements cannot interleave between read and write. The
// WHERE guard keeps the credit non-negative; zero rows back means the
// guard rejected the delta.
func (r *AccountRepository) ApplyBalanceDelta(ctx context.Context, accountID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	r.logger.InfoContext(ctx, "Applying balance delta",
		slog.Int64("accountID", accountID), slog.String("delta", delta.String()))

	query := `
        UPDATE accounts
        SET credit = credit + $1
        WHERE id = $2 AND credit + $1 >= 0
        RETURNING credit`

	start := time.Now()
	var newBalance decimal.Decimal
	err := r.db.QueryRow(ctx, query, delta, accountID).Scan(&newBalance)
	monitoring.RecordDBQuery("apply_balance_delta", time.Since(start))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the account is gone or the guard rejected the delta.
			// Disambiguate with a plain existence probe.
			if _, findErr := r.FindByID(ctx, accountID); findErr != nil {
				return decimal.Zero, findErr
			}
			r.logger.WarnContext(ctx, "Balance delta rejected, would overdraw account")
			return decimal.Zero, apperrors.ErrInsufficientFunds
		}
		r.logger.ErrorContext(ctx, "Failed to apply balance delta", slog.Any("error", err))
		return decimal.Zero, fmt.Errorf("%w: failed to apply balance delta: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Balance delta applied", slog.String("newBalance", newBalance.String()))
	return newBalance, nil
}
