package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	"minibank/internal/domain/customer"
	"minibank/internal/event"
	"minibank/internal/infrastructure/monitoring"
	"minibank/internal/pkg/apperrors"
	"minibank/internal/pkg/clock"
	"minibank/internal/pkg/locking"
)

// AccountService carries the money-movement ledger operations. Deposit
// and Withdraw are serialized per account: the read-check-write on
// credit never interleaves for the same account ID.
type AccountService interface {
	OpenAccount(ctx context.Context, customerID int64, credential string) (*Account, error)

	// Deposit authenticates, adds amount to the balance and returns the
	// new balance.
	Deposit(ctx context.Context, accountID int64, credential string, amount decimal.Decimal) (decimal.Decimal, error)

	// Withdraw authenticates, subtracts amount from the balance and
	// returns the new balance. Amounts above the balance are rejected
	// whole; there is no partial withdrawal.
	Withdraw(ctx context.Context, accountID int64, credential string, amount decimal.Decimal) (decimal.Decimal, error)

	GetAccount(ctx context.Context, accountID int64, credential string) (*Account, error)

	ListByCustomer(ctx context.Context, customerID int64) ([]*Account, error)

	CountByCustomer(ctx context.Context, customerID int64) (int, error)
}

var _ AccountService = (*accountService)(nil)

type accountService struct {
	repo      Repository
	customers customer.CustomerRepository
	auth      Authenticator
	locks     *locking.KeyedMutex
	pub       event.Publisher
	clk       clock.Clock
	logger    *slog.Logger
}

func NewAccountService(repo Repository, customers customer.CustomerRepository, auth Authenticator, locks *locking.KeyedMutex, pub event.Publisher, clk clock.Clock, logger *slog.Logger) AccountService {
	if repo == nil {
		panic("account repository cannot be nil")
	}
	if customers == nil {
		panic("customer repository cannot be nil")
	}
	if auth == nil {
		panic("authenticator cannot be nil")
	}
	if locks == nil {
		locks = locking.NewKeyedMutex()
	}
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewAccountService, using default stderr handler")
	}

	return &accountService{
		repo:      repo,
		customers: customers,
		auth:      auth,
		locks:     locks,
		pub:       pub,
		clk:       clk,
		logger:    logger.With(slog.String("component", "accountService")),
	}
}

func (s *accountService) OpenAccount(ctx context.Context, customerID int64, credential string) (*Account, error) {
	s.logger.InfoContext(ctx, "Attempting to open account", slog.Int64("customerID", customerID))

	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Cannot open account for unknown customer")
			return nil, apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding owning customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to verify owning customer %d: %w", customerID, err)
	}

	acct, err := NewAccount(customerID, credential)
	if err != nil {
		s.logger.WarnContext(ctx, "Account validation failed", slog.Any("error", err))
		return nil, err
	}

	if err := s.repo.Save(ctx, acct); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save new account", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new account: %w", err)
	}

	monitoring.RecordAccountOpened()
	s.logger.InfoContext(ctx, "Successfully opened account", slog.Int64("accountID", acct.ID))

	if s.pub != nil {
		opened := event.AccountOpenedEvent{
			Timestamp: s.clk.Now(),
			Payload: event.AccountEventPayload{
				AccountID:  acct.ID,
				CustomerID: acct.CustomerID,
				Active:     acct.Active,
			},
		}
		if pubErr := s.pub.PublishAccountOpened(ctx, opened); pubErr != nil {
			s.logger.ErrorContext(ctx, "Account opened, but FAILED to publish event", slog.Any("error", pubErr))
		}
	}

	return acct, nil
}

func (s *accountService) Deposit(ctx context.Context, accountID int64, credential string, amount decimal.Decimal) (decimal.Decimal, error) {
	s.logger.InfoContext(ctx, "Attempting deposit", slog.Int64("accountID", accountID))

	if amount.LessThanOrEqual(decimal.Zero) {
		monitoring.RecordDeposit("failure_amount")
		s.logger.WarnContext(ctx, "Deposit rejected, non-positive amount", slog.String("amount", amount.String()))
		return decimal.Zero, apperrors.ErrInvalidAmount
	}

	if _, err := s.auth.AuthenticateAccount(ctx, accountID, credential); err != nil {
		monitoring.RecordDeposit("failure_auth")
		s.logger.WarnContext(ctx, "Deposit rejected, authentication failed")
		return decimal.Zero, err
	}

	unlock := s.locks.Lock(accountID)
	defer unlock()

	newBalance, err := s.repo.ApplyBalanceDelta(ctx, accountID, amount)
	if err != nil {
		monitoring.RecordDeposit("failure_internal")
		s.logger.ErrorContext(ctx, "Repository failed to apply deposit", slog.Any("error", err))
		return decimal.Zero, fmt.Errorf("failed to apply deposit to account %d: %w", accountID, err)
	}

	monitoring.RecordDeposit("success")
	s.logger.InfoContext(ctx, "Deposit successful", slog.Int64("accountID", accountID), slog.String("newBalance", newBalance.String()))
	return newBalance, nil
}

func (s *accountService) Withdraw(ctx context.Context, accountID int64, credential string, amount decimal.Decimal) (decimal.Decimal, error) {
	s.logger.InfoContext(ctx, "Attempting withdrawal", slog.Int64("accountID", accountID))

	if amount.LessThanOrEqual(decimal.Zero) {
		monitoring.RecordWithdrawal("failure_amount")
		s.logger.WarnContext(ctx, "Withdrawal rejected, non-positive amount", slog.String("amount", amount.String()))
		return decimal.Zero, apperrors.ErrInvalidAmount
	}

	acct, err := s.auth.AuthenticateAccount(ctx, accountID, credential)
	if err != nil {
		monitoring.RecordWithdrawal("failure_auth")
		s.logger.WarnContext(ctx, "Withdrawal rejected, authentication failed")
		return decimal.Zero, err
	}

	unlock := s.locks.Lock(accountID)
	defer unlock()

	// Re-read under the lock; the authenticated snapshot may be stale.
	current, err := s.repo.FindByID(ctx, acct.ID)
	if err != nil {
		monitoring.RecordWithdrawal("failure_internal")
		s.logger.ErrorContext(ctx, "Repository error re-reading account", slog.Any("error", err))
		return decimal.Zero, fmt.Errorf("failed to read account %d: %w", accountID, err)
	}

	if amount.GreaterThan(current.Credit) {
		monitoring.RecordWithdrawal("failure_funds")
		s.logger.WarnContext(ctx, "Withdrawal rejected, insufficient funds",
			slog.String("amount", amount.String()), slog.String("credit", current.Credit.String()))
		return decimal.Zero, apperrors.ErrInsufficientFunds
	}

	newBalance, err := s.repo.ApplyBalanceDelta(ctx, accountID, amount.Neg())
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			// Storage-level guard tripped despite the lock; surface it as-is.
			monitoring.RecordWithdrawal("failure_funds")
			return decimal.Zero, err
		}
		monitoring.RecordWithdrawal("failure_internal")
		s.logger.ErrorContext(ctx, "Repository failed to apply withdrawal", slog.Any("error", err))
		return decimal.Zero, fmt.Errorf("failed to apply withdrawal to account %d: %w", accountID, err)
	}

	monitoring.RecordWithdrawal("success")
	s.logger.InfoContext(ctx, "Withdrawal successful", slog.Int64("accountID", accountID), slog.String("newBalance", newBalance.String()))
	return newBalance, nil
}

func (s *accountService) GetAccount(ctx context.Context, accountID int64, credential string) (*Account, error) {
	s.logger.InfoContext(ctx, "Attempting authenticated account lookup", slog.Int64("accountID", accountID))
	return s.auth.AuthenticateAccount(ctx, accountID, credential)
}

func (s *accountService) ListByCustomer(ctx context.Context, customerID int64) ([]*Account, error) {
	s.logger.InfoContext(ctx, "Listing accounts by customer", slog.Int64("customerID", customerID))

	accounts, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing accounts", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list accounts for customer %d: %w", customerID, err)
	}
	return accounts, nil
}

func (s *accountService) CountByCustomer(ctx context.Context, customerID int64) (int, error) {
	s.logger.InfoContext(ctx, "Counting accounts by customer", slog.Int64("customerID", customerID))

	count, err := s.repo.CountByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error counting accounts", slog.Any("error", err))
		return 0, fmt.Errorf("failed to count accounts for customer %d: %w", customerID, err)
	}
	return count, nil
}
