package loan_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"minibank/internal/domain/account"
	"minibank/internal/domain/loan"
	"minibank/internal/pkg/apperrors"
	"minibank/internal/pkg/clock"
	"minibank/internal/pkg/locking"
)

type mockAccountGateway struct {
	mock.Mock
}

var _ loan.AccountGateway = (*mockAccountGateway)(nil)

func (m *mockAccountGateway) AuthenticateAccount(ctx context.Context, accountID int64, credential string) (*account.Account, error) {
	args := m.Called(ctx, accountID, credential)
	if acct, ok := args.Get(0).(*account.Account); ok {
		return acct, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountGateway) FindAccount(ctx context.Context, accountID int64) (*account.Account, error) {
	args := m.Called(ctx, accountID)
	if acct, ok := args.Get(0).(*account.Account); ok {
		return acct, args.Error(1)
	}
	return nil, args.Error(1)
}

var issueNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func setupTest() (*loan.MockRepository, *mockAccountGateway, loan.LoanService) {
	mockRepo := new(loan.MockRepository)
	mockAuth := new(mockAccountGateway)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := loan.NewLoanService(mockRepo, mockAuth, locking.NewKeyedMutex(), nil, clock.Fixed(issueNow), logger)
	return mockRepo, mockAuth, service
}

func eligibleAccount() *account.Account {
	return &account.Account{
		ID:         100,
		CustomerID: 7,
		Credit:     decimal.NewFromInt(2000),
		Active:     true,
	}
}

func TestLoanService_IssueLoan(t *testing.T) {
	ctx := context.Background()
	credential := "secret-password"
	expiry := issueNow.AddDate(1, 0, 0)

	t.Run("Success", func(t *testing.T) {
		mockRepo, mockAuth, service := setupTest()
		acct := eligibleAccount()
		expectedLoanID := int64(55)

		mockAuth.On("AuthenticateAccount", ctx, acct.ID, credential).Return(acct, nil).Once()
		mockAuth.On("FindAccount", ctx, acct.ID).Return(acct, nil).Once()
		mockRepo.On("Save", ctx, mock.MatchedBy(func(l *loan.Loan) bool {
			match := l.AccountID == acct.ID && l.CustomerID == acct.CustomerID &&
				l.Value.Equal(decimal.NewFromInt(500)) &&
				l.TotalInterestRate.Equal(decimal.NewFromInt(5)) &&
				l.CreationDate.Equal(issueNow) && l.ExpiryDate.Equal(expiry) &&
				l.CancellationDate == nil
			if match {
				l.ID = expectedLoanID
			}
			return match
		})).Return(nil).Once()

		ln, err := service.IssueLoan(ctx, acct.ID, credential, 0, decimal.NewFromInt(500), decimal.NewFromInt(5), expiry)

		assert.NoError(t, err)
		assert.Equal(t, expectedLoanID, ln.ID)
		assert.Equal(t, acct.CustomerID, ln.CustomerID)
		mockRepo.AssertExpectations(t)
		mockAuth.AssertExpectations(t)
	})

	t.Run("Error - Authentication Failed", func(t *testing.T) {
		mockRepo, mockAuth, service := setupTest()

		mockAuth.On("AuthenticateAccount", ctx, int64(100), credential).
			Return(nil, apperrors.ErrNotAuthorized).Once()

		_, err := service.IssueLoan(ctx, 100, credential, 0, decimal.NewFromInt(500), decimal.NewFromInt(5), expiry)

		assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Error - Owner Mismatch", func(t *testing.T) {
		mockRepo, mockAuth, service := setupTest()
		acct := eligibleAccount()

		mockAuth.On("AuthenticateAccount", ctx, acct.ID, credential).Return(acct, nil).Once()

		_, err := service.IssueLoan(ctx, acct.ID, credential, 999, decimal.NewFromInt(500), decimal.NewFromInt(5), expiry)

		assert.ErrorIs(t, err, apperrors.ErrOwnerMismatch)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("matching owner ID is accepted", func(t *testing.T) {
		mockRepo, mockAuth, service := setupTest()
		acct := eligibleAccount()

		mockAuth.On("AuthenticateAccount", ctx, acct.ID, credential).Return(acct, nil).Once()
		mockAuth.On("FindAccount", ctx, acct.ID).Return(acct, nil).Once()
		mockRepo.On("Save", ctx, mock.AnythingOfType("*loan.Loan")).Return(nil).Once()

		_, err := service.IssueLoan(ctx, acct.ID, credential, acct.CustomerID, decimal.NewFromInt(500), decimal.NewFromInt(5), expiry)

		assert.NoError(t, err)
	})

	t.Run("Error - Account Inactive", func(t *testing.T) {
		mockRepo, mockAuth, service := setupTest()
		acct := eligibleAccount()
		acct.Active = false

		mockAuth.On("AuthenticateAccount", ctx, acct.ID, credential).Return(acct, nil).Once()
		mockAuth.On("FindAccount", ctx, acct.ID).Return(acct, nil).Once()

		_, err := service.IssueLoan(ctx, acct.ID, credential, 0, decimal.NewFromInt(500), decimal.NewFromInt(5), expiry)

		assert.ErrorIs(t, err, apperrors.ErrAccountInactive)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Error - Insufficient Collateral", func(t *testing.T) {
		mockRepo, mockAuth, service := setupTest()
		acct := eligibleAccount()
		acct.Credit = decimal.NewFromInt(999)

		mockAuth.On("AuthenticateAccount", ctx, acct.ID, credential).Return(acct, nil).Once()
		mockAuth.On("FindAccount", ctx, acct.ID).Return(acct, nil).Once()

		_, err := service.IssueLoan(ctx, acct.ID, credential, 0, decimal.NewFromInt(100), decimal.NewFromInt(5), expiry)

		assert.ErrorIs(t, err, apperrors.ErrInsufficientCollateral)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("value of exactly half the credit is accepted", func(t *testing.T) {
		mockRepo, mockAuth, service := setupTest()
		acct := eligibleAccount()

		mockAuth.On("AuthenticateAccount", ctx, acct.ID, credential).Return(acct, nil).Once()
		mockAuth.On("FindAccount", ctx, acct.ID).Return(acct, nil).Once()
		mockRepo.On("Save", ctx, mock.AnythingOfType("*loan.Loan")).Return(nil).Once()

		_, err := service.IssueLoan(ctx, acct.ID, credential, 0, decimal.NewFromInt(1000), decimal.NewFromInt(5), expiry)

		assert.NoError(t, err)
	})

	t.Run("Error - Value Above Half the Credit", func(t *testing.T) {
		mockRepo, mockAuth, service := setupTest()
		acct := eligibleAccount()

		mockAuth.On("AuthenticateAccount", ctx, acct.ID, credential).Return(acct, nil).Once()
		mockAuth.On("FindAccount", ctx, acct.ID).Return(acct, nil).Once()

		_, err := service.IssueLoan(ctx, acct.ID, credential, 0, decimal.NewFromFloat(1000.01), decimal.NewFromInt(5), expiry)

		assert.ErrorIs(t, err, apperrors.ErrLoanTooLarge)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Error - Non-Positive Value", func(t *testing.T) {
		_, mockAuth, service := setupTest()
		acct := eligibleAccount()

		mockAuth.On("AuthenticateAccount", ctx, acct.ID, credential).Return(acct, nil).Once()
		mockAuth.On("FindAccount", ctx, acct.ID).Return(acct, nil).Once()

		_, err := service.IssueLoan(ctx, acct.ID, credential, 0, decimal.Zero, decimal.NewFromInt(5), expiry)

		assert.ErrorIs(t, err, apperrors.ErrLoanTooLarge)
	})

	t.Run("Error - Negative Interest Rate", func(t *testing.T) {
		_, mockAuth, service := setupTest()
		acct := eligibleAccount()

		mockAuth.On("AuthenticateAccount", ctx, acct.ID, credential).Return(acct, nil).Once()
		mockAuth.On("FindAccount", ctx, acct.ID).Return(acct, nil).Once()

		_, err := service.IssueLoan(ctx, acct.ID, credential, 0, decimal.NewFromInt(500), decimal.NewFromInt(-1), expiry)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInterestRate)
	})

	t.Run("Error - Interest Rate Above 100", func(t *testing.T) {
		_, mockAuth, service := setupTest()
		acct := eligibleAccount()

		mockAuth.On("AuthenticateAccount", ctx, acct.ID, credential).Return(acct, nil).Once()
		mockAuth.On("FindAccount", ctx, acct.ID).Return(acct, nil).Once()

		_, err := service.IssueLoan(ctx, acct.ID, credential, 0, decimal.NewFromInt(500), decimal.NewFromInt(101), expiry)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInterestRate)
	})

	t.Run("Error - Expiry Not In The Future", func(t *testing.T) {
		mockRepo, mockAuth, service := setupTest()
		acct := eligibleAccount()

		mockAuth.On("AuthenticateAccount", ctx, acct.ID, credential).Return(acct, nil).Twice()
		mockAuth.On("FindAccount", ctx, acct.ID).Return(acct, nil).Twice()

		_, err := service.IssueLoan(ctx, acct.ID, credential, 0, decimal.NewFromInt(500), decimal.NewFromInt(5), issueNow)
		assert.ErrorIs(t, err, apperrors.ErrInvalidExpiry)

		_, err = service.IssueLoan(ctx, acct.ID, credential, 0, decimal.NewFromInt(500), decimal.NewFromInt(5), issueNow.Add(-time.Hour))
		assert.ErrorIs(t, err, apperrors.ErrInvalidExpiry)

		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Error - Re-Read Failed", func(t *testing.T) {
		mockRepo, mockAuth, service := setupTest()
		acct := eligibleAccount()

		mockAuth.On("AuthenticateAccount", ctx, acct.ID, credential).Return(acct, nil).Once()
		mockAuth.On("FindAccount", ctx, acct.ID).Return(nil, apperrors.ErrDatabase).Once()

		_, err := service.IssueLoan(ctx, acct.ID, credential, 0, decimal.NewFromInt(500), decimal.NewFromInt(5), expiry)

		assert.ErrorIs(t, err, apperrors.ErrDatabase)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

// fakeLoanGateway fronts a single mutable account the way the registry
// fronts the database. Its authReturned and proceed channels let a test
// interleave a balance change between the authentication read and the
// lock acquisition inside IssueLoan.
type fakeLoanGateway struct {
	mu           sync.Mutex
	acct         account.Account
	authReturned chan struct{}
	proceed      chan struct{}
}

var _ loan.AccountGateway = (*fakeLoanGateway)(nil)

func newFakeLoanGateway(acct account.Account) *fakeLoanGateway {
	return &fakeLoanGateway{
		acct:         acct,
		authReturned: make(chan struct{}),
		proceed:      make(chan struct{}),
	}
}

func (f *fakeLoanGateway) AuthenticateAccount(_ context.Context, accountID int64, credential string) (*account.Account, error) {
	f.mu.Lock()
	if accountID != f.acct.ID || credential != f.acct.Password {
		f.mu.Unlock()
		return nil, apperrors.ErrNotAuthorized
	}
	snapshot := f.acct
	f.mu.Unlock()

	close(f.authReturned)
	<-f.proceed
	return &snapshot, nil
}

func (f *fakeLoanGateway) FindAccount(_ context.Context, accountID int64) (*account.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if accountID != f.acct.ID {
		return nil, apperrors.ErrNotFound
	}
	snapshot := f.acct
	return &snapshot, nil
}

func (f *fakeLoanGateway) withdraw(amount decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acct.Credit = f.acct.Credit.Sub(amount)
}

// A withdrawal that lands between the authentication read and the lock
// must not leave a loan issued against collateral that is gone; the
// eligibility chain has to run on the balance re-read under the lock.
func TestLoanService_IssueLoanRechecksCollateralUnderLock(t *testing.T) {
	ctx := context.Background()
	gateway := newFakeLoanGateway(account.Account{
		ID:         100,
		CustomerID: 7,
		Password:   "secret-password",
		Credit:     decimal.NewFromInt(2000),
		Active:     true,
	})
	mockRepo := new(loan.MockRepository)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := loan.NewLoanService(mockRepo, gateway, locking.NewKeyedMutex(), nil, clock.Fixed(issueNow), logger)

	errCh := make(chan error, 1)
	go func() {
		_, err := service.IssueLoan(ctx, 100, "secret-password", 0,
			decimal.NewFromInt(1000), decimal.NewFromInt(5), issueNow.AddDate(1, 0, 0))
		errCh <- err
	}()

	<-gateway.authReturned
	gateway.withdraw(decimal.NewFromInt(1900))
	close(gateway.proceed)

	assert.ErrorIs(t, <-errCh, apperrors.ErrInsufficientCollateral)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLoanService_GetLoan(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		expected := &loan.Loan{ID: 55, AccountID: 100, CustomerID: 7}

		mockRepo.On("FindByID", ctx, int64(55)).Return(expected, nil).Once()

		ln, err := service.GetLoan(ctx, 55)

		assert.NoError(t, err)
		assert.Equal(t, expected, ln)
	})

	t.Run("Error - Not Found", func(t *testing.T) {
		mockRepo, _, service := setupTest()

		mockRepo.On("FindByID", ctx, int64(55)).Return(nil, apperrors.ErrNotFound).Once()

		ln, err := service.GetLoan(ctx, 55)

		assert.Nil(t, ln)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestLoanService_Lists(t *testing.T) {
	ctx := context.Background()
	credential := "secret-password"

	t.Run("ListByCustomer", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		expected := []*loan.Loan{{ID: 1, CustomerID: 7}}

		mockRepo.On("ListByCustomer", ctx, int64(7)).Return(expected, nil).Once()

		loans, err := service.ListByCustomer(ctx, 7)

		assert.NoError(t, err)
		assert.Equal(t, expected, loans)
	})

	t.Run("ListByAccount requires authentication", func(t *testing.T) {
		mockRepo, mockAuth, service := setupTest()

		mockAuth.On("AuthenticateAccount", ctx, int64(100), credential).
			Return(nil, apperrors.ErrNotAuthorized).Once()

		loans, err := service.ListByAccount(ctx, 100, credential)

		assert.Nil(t, loans)
		assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)
		mockRepo.AssertNotCalled(t, "ListByAccount", mock.Anything, mock.Anything)
	})

	t.Run("ListByAccount success", func(t *testing.T) {
		mockRepo, mockAuth, service := setupTest()
		expected := []*loan.Loan{{ID: 1, AccountID: 100}}

		mockAuth.On("AuthenticateAccount", ctx, int64(100), credential).
			Return(eligibleAccount(), nil).Once()
		mockRepo.On("ListByAccount", ctx, int64(100)).Return(expected, nil).Once()

		loans, err := service.ListByAccount(ctx, 100, credential)

		assert.NoError(t, err)
		assert.Equal(t, expected, loans)
	})

	t.Run("ListByCustomerAndAccount success", func(t *testing.T) {
		mockRepo, mockAuth, service := setupTest()
		expected := []*loan.Loan{{ID: 1, AccountID: 100, CustomerID: 7}}

		mockAuth.On("AuthenticateAccount", ctx, int64(100), credential).
			Return(eligibleAccount(), nil).Once()
		mockRepo.On("ListByCustomerAndAccount", ctx, int64(7), int64(100)).Return(expected, nil).Once()

		loans, err := service.ListByCustomerAndAccount(ctx, 7, 100, credential)

		assert.NoError(t, err)
		assert.Equal(t, expected, loans)
	})
}

func TestLoanService_Aggregations(t *testing.T) {
	ctx := context.Background()

	t.Run("TotalBorrowed is zero for a customer with no loans", func(t *testing.T) {
		mockRepo, _, service := setupTest()

		mockRepo.On("SumValueByCustomer", ctx, int64(7)).Return(decimal.Zero, nil).Once()

		total, err := service.TotalBorrowed(ctx, 7)

		assert.NoError(t, err)
		assert.True(t, total.IsZero())
	})

	t.Run("TotalBorrowed sums principals", func(t *testing.T) {
		mockRepo, _, service := setupTest()

		mockRepo.On("SumValueByCustomer", ctx, int64(7)).Return(decimal.NewFromInt(1500), nil).Once()

		total, err := service.TotalBorrowed(ctx, 7)

		assert.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(1500)))
	})

	t.Run("CountByCustomer", func(t *testing.T) {
		mockRepo, _, service := setupTest()

		mockRepo.On("CountByCustomer", ctx, int64(7)).Return(3, nil).Once()

		count, err := service.CountByCustomer(ctx, 7)

		assert.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}
