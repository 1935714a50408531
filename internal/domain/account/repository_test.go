package account

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

var _ Repository = (*MockRepository)(nil)

func (m *MockRepository) Save(ctx context.Context, acct *Account) error {
	args := m.Called(ctx, acct)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, accountID int64) (*Account, error) {
	args := m.Called(ctx, accountID)
	if acct, ok := args.Get(0).(*Account); ok {
		return acct, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) FindByIDAndPassword(ctx context.Context, accountID int64, password string) (*Account, error) {
	args := m.Called(ctx, accountID, password)
	if acct, ok := args.Get(0).(*Account); ok {
		return acct, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*Account, error) {
	args := m.Called(ctx, customerID)
	if accounts, ok := args.Get(0).([]*Account); ok {
		return accounts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) CountByCustomer(ctx context.Context, customerID int64) (int, error) {
	args := m.Called(ctx, customerID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ApplyBalanceDelta(ctx context.Context, accountID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, delta)
	if balance, ok := args.Get(0).(decimal.Decimal); ok {
		return balance, args.Error(1)
	}
	return decimal.Zero, args.Error(1)
}

type MockAuthenticator struct {
	mock.Mock
}

var _ Authenticator = (*MockAuthenticator)(nil)

func (m *MockAuthenticator) AuthenticateAccount(ctx context.Context, accountID int64, credential string) (*Account, error) {
	args := m.Called(ctx, accountID, credential)
	if acct, ok := args.Get(0).(*Account); ok {
		return acct, args.Error(1)
	}
	return nil, args.Error(1)
}
