package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"minibank/internal/domain/account"
	"minibank/internal/event"
	"minibank/internal/infrastructure/monitoring"
	"minibank/internal/pkg/apperrors"
	"minibank/internal/pkg/clock"
	"minibank/internal/pkg/locking"
)

type LoanService interface {
	// IssueLoan authenticates the account, runs the eligibility chain
	// and persists the loan. Preconditions are checked in a fixed order
	// and the first failure wins: account active, credit >= 1000,
	// 0 < value <= credit/2, 0 <= rate <= 100, expiry in the future.
	// A non-zero customerID that is not the account's owner fails with
	// ErrOwnerMismatch. Issuance never changes the account balance.
	IssueLoan(ctx context.Context, accountID int64, credential string, customerID int64, value, interestRate decimal.Decimal, expiry time.Time) (*Loan, error)

	GetLoan(ctx context.Context, loanID int64) (*Loan, error)

	ListByCustomer(ctx context.Context, customerID int64) ([]*Loan, error)

	ListByAccount(ctx context.Context, accountID int64, credential string) ([]*Loan, error)

	ListByCustomerAndAccount(ctx context.Context, customerID, accountID int64, credential string) ([]*Loan, error)

	// TotalBorrowed sums the principal of all the customer's loans.
	// A customer with no loans borrows zero, not an error.
	TotalBorrowed(ctx context.Context, customerID int64) (decimal.Decimal, error)

	CountByCustomer(ctx context.Context, customerID int64) (int, error)
}

var _ LoanService = (*loanService)(nil)

// AccountGateway is the slice of the identity registry the loan service
// depends on: authentication plus a fresh read under the issuance lock.
type AccountGateway interface {
	account.Authenticator
	account.Reader
}

type loanService struct {
	repo   Repository
	auth   AccountGateway
	locks  *locking.KeyedMutex
	pub    event.Publisher
	clk    clock.Clock
	logger *slog.Logger
}

func NewLoanService(repo Repository, auth AccountGateway, locks *locking.KeyedMutex, pub event.Publisher, clk clock.Clock, logger *slog.Logger) LoanService {
	if repo == nil {
		panic("loan repository cannot be nil")
	}
	if auth == nil {
		panic("account gateway cannot be nil")
	}
	if locks == nil {
		locks = locking.NewKeyedMutex()
	}
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewLoanService, using default stderr handler")
	}

	return &loanService{
		repo:   repo,
		auth:   auth,
		locks:  locks,
		pub:    pub,
		clk:    clk,
		logger: logger.With(slog.String("component", "loanService")),
	}
}

func (s *loanService) IssueLoan(ctx context.Context, accountID int64, credential string, customerID int64, value, interestRate decimal.Decimal, expiry time.Time) (*Loan, error) {
	s.logger.InfoContext(ctx, "Attempting to issue loan", slog.Int64("accountID", accountID))

	acct, err := s.auth.AuthenticateAccount(ctx, accountID, credential)
	if err != nil {
		monitoring.RecordLoanIssued("failure_auth")
		s.logger.WarnContext(ctx, "Loan issuance rejected, authentication failed")
		return nil, err
	}

	if customerID != 0 && customerID != acct.CustomerID {
		monitoring.RecordLoanIssued("failure_owner")
		s.logger.WarnContext(ctx, "Loan issuance rejected, customer does not own account",
			slog.Int64("customerID", customerID), slog.Int64("ownerID", acct.CustomerID))
		return nil, apperrors.ErrOwnerMismatch
	}

	// Serialize with deposits/withdrawals so the collateral check sees
	// a balance no concurrent mutation can invalidate mid-flight.
	unlock := s.locks.Lock(accountID)
	defer unlock()

	// Re-read under the lock; the authenticated snapshot may be stale.
	current, err := s.auth.FindAccount(ctx, accountID)
	if err != nil {
		monitoring.RecordLoanIssued("failure_internal")
		s.logger.ErrorContext(ctx, "Repository error re-reading account", slog.Any("error", err))
		return nil, fmt.Errorf("failed to read account %d: %w", accountID, err)
	}

	ln, err := s.checkEligibility(ctx, current, value, interestRate, expiry)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, ln); err != nil {
		monitoring.RecordLoanIssued("failure_internal")
		s.logger.ErrorContext(ctx, "Repository failed to save loan", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}

	monitoring.RecordLoanIssued("success")
	s.logger.InfoContext(ctx, "Loan issued successfully",
		slog.Int64("loanID", ln.ID), slog.Int64("accountID", accountID), slog.String("value", ln.Value.String()))

	if s.pub != nil {
		issued := event.LoanIssuedEvent{
			Timestamp: s.clk.Now(),
			Payload: event.LoanEventPayload{
				LoanID:            ln.ID,
				AccountID:         ln.AccountID,
				CustomerID:        ln.CustomerID,
				Value:             ln.Value.String(),
				TotalInterestRate: ln.TotalInterestRate.String(),
				ExpiryDate:        ln.ExpiryDate,
			},
		}
		if pubErr := s.pub.PublishLoanIssued(ctx, issued); pubErr != nil {
			s.logger.ErrorContext(ctx, "Loan issued, but FAILED to publish event", slog.Any("error", pubErr))
		}
	}

	return ln, nil
}

// checkEligibility runs the ordered precondition chain against a fresh
// read of the account and builds the loan record on success.
func (s *loanService) checkEligibility(ctx context.Context, acct *account.Account, value, interestRate decimal.Decimal, expiry time.Time) (*Loan, error) {
	if !acct.Active {
		monitoring.RecordLoanIssued("failure_inactive")
		s.logger.WarnContext(ctx, "Loan issuance rejected, account inactive", slog.Int64("accountID", acct.ID))
		return nil, apperrors.ErrAccountInactive
	}

	if acct.Credit.LessThan(MinCollateral) {
		monitoring.RecordLoanIssued("failure_collateral")
		s.logger.WarnContext(ctx, "Loan issuance rejected, insufficient collateral",
			slog.String("credit", acct.Credit.String()))
		return nil, apperrors.ErrInsufficientCollateral
	}

	maxValue := acct.Credit.Div(decimal.NewFromInt(2))
	if value.LessThanOrEqual(decimal.Zero) || value.GreaterThan(maxValue) {
		monitoring.RecordLoanIssued("failure_value")
		s.logger.WarnContext(ctx, "Loan issuance rejected, value out of range",
			slog.String("value", value.String()), slog.String("maxValue", maxValue.String()))
		return nil, apperrors.ErrLoanTooLarge
	}

	if interestRate.IsNegative() || interestRate.GreaterThan(maxInterestRate) {
		monitoring.RecordLoanIssued("failure_rate")
		s.logger.WarnContext(ctx, "Loan issuance rejected, interest rate out of range",
			slog.String("interestRate", interestRate.String()))
		return nil, apperrors.ErrInvalidInterestRate
	}

	now := s.clk.Now()
	if !expiry.After(now) {
		monitoring.RecordLoanIssued("failure_expiry")
		s.logger.WarnContext(ctx, "Loan issuance rejected, expiry not in the future",
			slog.Time("expiry", expiry))
		return nil, apperrors.ErrInvalidExpiry
	}

	return &Loan{
		AccountID:         acct.ID,
		CustomerID:        acct.CustomerID,
		Value:             value,
		TotalInterestRate: interestRate,
		CreationDate:      now,
		ExpiryDate:        expiry,
	}, nil
}

func (s *loanService) GetLoan(ctx context.Context, loanID int64) (*Loan, error) {
	s.logger.InfoContext(ctx, "Getting loan", slog.Int64("loanID", loanID))

	ln, err := s.repo.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found")
			return nil, apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding loan", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get loan %d: %w", loanID, err)
	}
	return ln, nil
}

func (s *loanService) ListByCustomer(ctx context.Context, customerID int64) ([]*Loan, error) {
	s.logger.InfoContext(ctx, "Listing loans by customer", slog.Int64("customerID", customerID))

	loans, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing loans by customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list loans for customer %d: %w", customerID, err)
	}
	return loans, nil
}

func (s *loanService) ListByAccount(ctx context.Context, accountID int64, credential string) ([]*Loan, error) {
	s.logger.InfoContext(ctx, "Listing loans by account", slog.Int64("accountID", accountID))

	if _, err := s.auth.AuthenticateAccount(ctx, accountID, credential); err != nil {
		return nil, err
	}

	loans, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing loans by account", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list loans for account %d: %w", accountID, err)
	}
	return loans, nil
}

func (s *loanService) ListByCustomerAndAccount(ctx context.Context, customerID, accountID int64, credential string) ([]*Loan, error) {
	s.logger.InfoContext(ctx, "Listing loans by customer and account",
		slog.Int64("customerID", customerID), slog.Int64("accountID", accountID))

	if _, err := s.auth.AuthenticateAccount(ctx, accountID, credential); err != nil {
		return nil, err
	}

	loans, err := s.repo.ListByCustomerAndAccount(ctx, customerID, accountID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing loans by customer and account", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list loans for customer %d and account %d: %w", customerID, accountID, err)
	}
	return loans, nil
}

func (s *loanService) TotalBorrowed(ctx context.Context, customerID int64) (decimal.Decimal, error) {
	s.logger.InfoContext(ctx, "Summing total borrowed by customer", slog.Int64("customerID", customerID))

	total, err := s.repo.SumValueByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error summing loan values", slog.Any("error", err))
		return decimal.Zero, fmt.Errorf("failed to sum loans for customer %d: %w", customerID, err)
	}
	return total, nil
}

func (s *loanService) CountByCustomer(ctx context.Context, customerID int64) (int, error) {
	s.logger.InfoContext(ctx, "Counting loans by customer", slog.Int64("customerID", customerID))

	count, err := s.repo.CountByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error counting loans", slog.Any("error", err))
		return 0, fmt.Errorf("failed to count loans for customer %d: %w", customerID, err)
	}
	return count, nil
}
