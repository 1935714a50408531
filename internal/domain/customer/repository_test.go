package customer

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockCustomerRepository struct {
	mock.Mock
}

var _ CustomerRepository = (*MockCustomerRepository)(nil)

func (m *MockCustomerRepository) Save(ctx context.Context, cust *Customer) error {
	args := m.Called(ctx, cust)
	return args.Error(0)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, customerID int64) (*Customer, error) {
	args := m.Called(ctx, customerID)
	if cust, ok := args.Get(0).(*Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerRepository) FindBySSN(ctx context.Context, ssn string) (*Customer, error) {
	args := m.Called(ctx, ssn)
	if cust, ok := args.Get(0).(*Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerRepository) FindByPhone(ctx context.Context, phone string) (*Customer, error) {
	args := m.Called(ctx, phone)
	if cust, ok := args.Get(0).(*Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerRepository) FindByName(ctx context.Context, firstName, middleName, lastName string) (*Customer, error) {
	args := m.Called(ctx, firstName, middleName, lastName)
	if cust, ok := args.Get(0).(*Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerRepository) ListNames(ctx context.Context) ([]*Customer, error) {
	args := m.Called(ctx)
	if customers, ok := args.Get(0).([]*Customer); ok {
		return customers, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRegistrar struct {
	mock.Mock
}

var _ Registrar = (*MockRegistrar)(nil)

func (m *MockRegistrar) RegisterCustomer(ctx context.Context, cand *Customer) error {
	args := m.Called(ctx, cand)
	return args.Error(0)
}

func (m *MockRegistrar) FindCustomerBySSN(ctx context.Context, ssn string) (*Customer, error) {
	args := m.Called(ctx, ssn)
	if cust, ok := args.Get(0).(*Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRegistrar) FindCustomerByPhone(ctx context.Context, phone string) (*Customer, error) {
	args := m.Called(ctx, phone)
	if cust, ok := args.Get(0).(*Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRegistrar) FindCustomerByName(ctx context.Context, firstName, middleName, lastName string) (*Customer, error) {
	args := m.Called(ctx, firstName, middleName, lastName)
	if cust, ok := args.Get(0).(*Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}
