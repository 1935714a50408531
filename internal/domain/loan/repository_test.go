package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

var _ Repository = (*MockRepository)(nil)

func (m *MockRepository) Save(ctx context.Context, ln *Loan) error {
	args := m.Called(ctx, ln)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, loanID int64) (*Loan, error) {
	args := m.Called(ctx, loanID)
	if ln, ok := args.Get(0).(*Loan); ok {
		return ln, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*Loan, error) {
	args := m.Called(ctx, customerID)
	if loans, ok := args.Get(0).([]*Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) ListByAccount(ctx context.Context, accountID int64) ([]*Loan, error) {
	args := m.Called(ctx, accountID)
	if loans, ok := args.Get(0).([]*Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) ListByCustomerAndAccount(ctx context.Context, customerID, accountID int64) ([]*Loan, error) {
	args := m.Called(ctx, customerID, accountID)
	if loans, ok := args.Get(0).([]*Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) CountByCustomer(ctx context.Context, customerID int64) (int, error) {
	args := m.Called(ctx, customerID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) SumValueByCustomer(ctx context.Context, customerID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, customerID)
	if total, ok := args.Get(0).(decimal.Decimal); ok {
		return total, args.Error(1)
	}
	return decimal.Zero, args.Error(1)
}

func (m *MockRepository) CountActiveExpiredBefore(ctx context.Context, t time.Time) (int64, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(int64), args.Error(1)
}
