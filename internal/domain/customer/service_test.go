package customer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"minibank/internal/domain/customer"
	"minibank/internal/pkg/apperrors"
	"minibank/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var (
	serviceNow   = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	serviceBirth = time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)
)

func setupTest() (*customer.MockCustomerRepository, *customer.MockRegistrar, customer.CustomerService) {
	mockRepo := new(customer.MockCustomerRepository)
	mockRegistrar := new(customer.MockRegistrar)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := customer.NewCustomerService(mockRepo, mockRegistrar, nil, clock.Fixed(serviceNow), logger)
	return mockRepo, mockRegistrar, service
}

func TestCustomerService_CreateCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo, mockRegistrar, service := setupTest()
		expectedCustomerID := int64(1)

		mockRegistrar.On("RegisterCustomer", ctx, mock.MatchedBy(func(c *customer.Customer) bool {
			match := c.FirstName == "John" && c.MiddleName == "Fitzgerald" && c.LastName == "Doe" &&
				c.SSN == "123456789" && c.PhoneNumber == "15551234567" && c.JoinDate.Equal(serviceNow)
			if match {
				c.ID = expectedCustomerID
			}
			return match
		})).Return(nil).Once()

		created, err := service.CreateCustomer(ctx, " John ", "Fitzgerald", "Doe", "123456789", "15551234567", serviceBirth)

		assert.NoError(t, err)
		assert.NotNil(t, created)
		if created != nil {
			assert.Equal(t, expectedCustomerID, created.ID)
			assert.Equal(t, serviceNow, created.JoinDate)
		}
		mockRegistrar.AssertExpectations(t)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Error - Invalid SSN", func(t *testing.T) {
		_, mockRegistrar, service := setupTest()

		_, err := service.CreateCustomer(ctx, "John", "Fitzgerald", "Doe", "1234", "15551234567", serviceBirth)

		assert.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		mockRegistrar.AssertNotCalled(t, "RegisterCustomer", mock.Anything, mock.Anything)
	})

	t.Run("Error - Duplicate Identity", func(t *testing.T) {
		_, mockRegistrar, service := setupTest()

		mockRegistrar.On("RegisterCustomer", ctx, mock.AnythingOfType("*customer.Customer")).
			Return(apperrors.ErrDuplicateIdentity).Once()

		created, err := service.CreateCustomer(ctx, "John", "Fitzgerald", "Doe", "123456789", "15551234567", serviceBirth)

		assert.Nil(t, created)
		assert.ErrorIs(t, err, apperrors.ErrDuplicateIdentity)
		mockRegistrar.AssertExpectations(t)
	})

	t.Run("Error - Registry Failure", func(t *testing.T) {
		_, mockRegistrar, service := setupTest()
		dbError := errors.New("database connection failed")

		mockRegistrar.On("RegisterCustomer", ctx, mock.AnythingOfType("*customer.Customer")).
			Return(dbError).Once()

		created, err := service.CreateCustomer(ctx, "John", "Fitzgerald", "Doe", "123456789", "15551234567", serviceBirth)

		assert.Nil(t, created)
		assert.ErrorIs(t, err, dbError)
		assert.Contains(t, err.Error(), "failed to register customer")
		mockRegistrar.AssertExpectations(t)
	})
}

func TestCustomerService_GetCustomer(t *testing.T) {
	ctx := context.Background()
	customerID := int64(42)

	t.Run("Success", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		expectedCustomer := &customer.Customer{ID: customerID, FirstName: "John"}

		mockRepo.On("FindByID", ctx, customerID).Return(expectedCustomer, nil).Once()

		cust, err := service.GetCustomer(ctx, customerID)

		assert.NoError(t, err)
		assert.Equal(t, expectedCustomer, cust)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - Not Found", func(t *testing.T) {
		mockRepo, _, service := setupTest()

		mockRepo.On("FindByID", ctx, customerID).Return(nil, apperrors.ErrNotFound).Once()

		cust, err := service.GetCustomer(ctx, customerID)

		assert.Nil(t, cust)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		mockRepo.AssertExpectations(t)
	})
}

func TestCustomerService_KeyedLookups(t *testing.T) {
	ctx := context.Background()
	expected := &customer.Customer{ID: 42, FirstName: "John", MiddleName: "Fitzgerald", LastName: "Doe"}

	t.Run("GetCustomerBySSN", func(t *testing.T) {
		_, mockRegistrar, service := setupTest()

		mockRegistrar.On("FindCustomerBySSN", ctx, "123456789").Return(expected, nil).Once()

		cust, err := service.GetCustomerBySSN(ctx, "123456789")

		assert.NoError(t, err)
		assert.Equal(t, expected, cust)
		mockRegistrar.AssertExpectations(t)
	})

	t.Run("GetCustomerByPhone miss", func(t *testing.T) {
		_, mockRegistrar, service := setupTest()

		mockRegistrar.On("FindCustomerByPhone", ctx, "15551234567").Return(nil, apperrors.ErrNotFound).Once()

		cust, err := service.GetCustomerByPhone(ctx, "15551234567")

		assert.Nil(t, cust)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("GetCustomerByName", func(t *testing.T) {
		_, mockRegistrar, service := setupTest()

		mockRegistrar.On("FindCustomerByName", ctx, "John", "Fitzgerald", "Doe").Return(expected, nil).Once()

		cust, err := service.GetCustomerByName(ctx, "John", "Fitzgerald", "Doe")

		assert.NoError(t, err)
		assert.Equal(t, expected, cust)
	})

	t.Run("registry failure is wrapped", func(t *testing.T) {
		_, mockRegistrar, service := setupTest()
		dbError := errors.New("connection refused")

		mockRegistrar.On("FindCustomerBySSN", ctx, "123456789").Return(nil, dbError).Once()

		_, err := service.GetCustomerBySSN(ctx, "123456789")

		assert.ErrorIs(t, err, dbError)
		assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestCustomerService_ListCustomerNames(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		expected := []*customer.Customer{
			{ID: 1, FirstName: "John", MiddleName: "Fitzgerald", LastName: "Doe"},
			{ID: 2, FirstName: "Jane", MiddleName: "Marie", LastName: "Roe"},
		}

		mockRepo.On("ListNames", ctx).Return(expected, nil).Once()

		names, err := service.ListCustomerNames(ctx)

		assert.NoError(t, err)
		assert.Len(t, names, 2)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - Repository Failure", func(t *testing.T) {
		mockRepo, _, service := setupTest()

		mockRepo.On("ListNames", ctx).Return(nil, errors.New("boom")).Once()

		names, err := service.ListCustomerNames(ctx)

		assert.Nil(t, names)
		assert.Error(t, err)
		mockRepo.AssertExpectations(t)
	})
}
