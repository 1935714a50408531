package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"minibank/internal/event"
	"minibank/internal/infrastructure/monitoring"
	"minibank/internal/pkg/apperrors"
	"minibank/internal/pkg/clock"
)

// Registrar is the slice of the identity registry the customer service
// needs: serialized, uniqueness-checked persistence of a new customer,
// plus the keyed lookups over the same identity fields.
type Registrar interface {
	RegisterCustomer(ctx context.Context, cand *Customer) error

	FindCustomerBySSN(ctx context.Context, ssn string) (*Customer, error)
	FindCustomerByPhone(ctx context.Context, phone string) (*Customer, error)
	FindCustomerByName(ctx context.Context, firstName, middleName, lastName string) (*Customer, error)
}

type CustomerService interface {
	// CreateCustomer validates the typed identity fields, enforces
	// SSN/phone/name uniqueness through the registry and returns the
	// persisted customer with its assigned ID.
	CreateCustomer(ctx context.Context, firstName, middleName, lastName, ssn, phone string, birthDate time.Time) (*Customer, error)

	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)

	// Keyed lookups over the unique identity fields. A miss is
	// apperrors.ErrNotFound, never a partial match.
	GetCustomerBySSN(ctx context.Context, ssn string) (*Customer, error)
	GetCustomerByPhone(ctx context.Context, phone string) (*Customer, error)
	GetCustomerByName(ctx context.Context, firstName, middleName, lastName string) (*Customer, error)

	ListCustomerNames(ctx context.Context) ([]*Customer, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo      CustomerRepository
	registrar Registrar
	pub       event.Publisher
	clk       clock.Clock
	logger    *slog.Logger
}

func NewCustomerService(repo CustomerRepository, registrar Registrar, pub event.Publisher, clk clock.Clock, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if registrar == nil {
		panic("registrar cannot be nil")
	}
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	return &customerService{
		repo:      repo,
		registrar: registrar,
		pub:       pub,
		clk:       clk,
		logger:    logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, firstName, middleName, lastName, ssn, phone string, birthDate time.Time) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to register new customer")

	cand, err := NewCustomer(firstName, middleName, lastName, ssn, phone, birthDate, s.clk.Now())
	if err != nil {
		s.logger.WarnContext(ctx, "Customer validation failed", slog.Any("error", err))
		return nil, err
	}

	if err := s.registrar.RegisterCustomer(ctx, cand); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateIdentity) {
			s.logger.WarnContext(ctx, "Registration rejected, identity field already in use", slog.Any("error", err))
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Registry failed to register customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to register customer: %w", err)
	}

	monitoring.RecordCustomerRegistered()
	s.logger.InfoContext(ctx, "Successfully registered customer", slog.Int64("customerID", cand.ID))

	if s.pub != nil {
		registered := event.CustomerRegisteredEvent{
			Timestamp: s.clk.Now(),
			Payload:   newCustomerEventPayload(cand),
		}
		if pubErr := s.pub.PublishCustomerRegistered(ctx, registered); pubErr != nil {
			s.logger.ErrorContext(ctx, "Customer registered, but FAILED to publish registration event", slog.Any("error", pubErr))
		}
	}

	return cand, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to get customer by ID", slog.Int64("customerID", customerID))

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository")
			return nil, apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	return cust, nil
}

func (s *customerService) GetCustomerBySSN(ctx context.Context, ssn string) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to get customer by SSN")
	return s.lookup(ctx, "ssn", func(ctx context.Context) (*Customer, error) {
		return s.registrar.FindCustomerBySSN(ctx, ssn)
	})
}

func (s *customerService) GetCustomerByPhone(ctx context.Context, phone string) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to get customer by phone number")
	return s.lookup(ctx, "phoneNumber", func(ctx context.Context) (*Customer, error) {
		return s.registrar.FindCustomerByPhone(ctx, phone)
	})
}

func (s *customerService) GetCustomerByName(ctx context.Context, firstName, middleName, lastName string) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to get customer by name")
	return s.lookup(ctx, "name", func(ctx context.Context) (*Customer, error) {
		return s.registrar.FindCustomerByName(ctx, firstName, middleName, lastName)
	})
}

func (s *customerService) lookup(ctx context.Context, field string, find func(context.Context) (*Customer, error)) (*Customer, error) {
	cust, err := find(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by registry lookup", slog.String("field", field))
			return nil, apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Registry error during customer lookup", slog.String("field", field), slog.Any("error", err))
		return nil, fmt.Errorf("failed to look up customer by %s: %w", field, err)
	}
	return cust, nil
}

func (s *customerService) ListCustomerNames(ctx context.Context) ([]*Customer, error) {
	s.logger.InfoContext(ctx, "Listing customer names")

	customers, err := s.repo.ListNames(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customer names", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customer names: %w", err)
	}

	return customers, nil
}

func newCustomerEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID:  cust.ID,
		FirstName:   cust.FirstName,
		MiddleName:  cust.MiddleName,
		LastName:    cust.LastName,
		PhoneNumber: cust.PhoneNumber,
		JoinDate:    cust.JoinDate,
	}
}
