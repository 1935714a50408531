package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"minibank/internal/domain/account"
	"minibank/internal/domain/customer"
	"minibank/internal/pkg/apperrors"
)

// Registry enforces global uniqueness over customer identity fields and
// answers keyed lookups, independent of the storage engine behind it.
//
// Registration is serialized by a process-wide mutex so two concurrent
// registrations cannot both pass the SSN/phone/name checks; the storage
// layer's unique constraints remain the backstop for multi-instance
// deployments.
type Registry struct {
	customers customer.CustomerRepository
	accounts  account.Repository
	mu        sync.Mutex
	logger    *slog.Logger
}

var _ customer.Registrar = (*Registry)(nil)
var _ account.Authenticator = (*Registry)(nil)
var _ account.Reader = (*Registry)(nil)

func NewRegistry(customers customer.CustomerRepository, accounts account.Repository, logger *slog.Logger) *Registry {
	if customers == nil {
		panic("customer repository cannot be nil")
	}
	if accounts == nil {
		panic("account repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewRegistry, using default stderr handler")
	}

	return &Registry{
		customers: customers,
		accounts:  accounts,
		logger:    logger.With(slog.String("component", "identityRegistry")),
	}
}

// RegisterCustomer persists cand after checking that its SSN, exact name
// triple and phone number are all unused. The first collision wins and
// names the offending field.
func (r *Registry) RegisterCustomer(ctx context.Context, cand *customer.Customer) error {
	if cand == nil {
		return fmt.Errorf("%w: candidate customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnused(ctx, "ssn", func(ctx context.Context) (*customer.Customer, error) {
		return r.customers.FindBySSN(ctx, cand.SSN)
	}); err != nil {
		return err
	}
	if err := r.checkUnused(ctx, "name", func(ctx context.Context) (*customer.Customer, error) {
		return r.customers.FindByName(ctx, cand.FirstName, cand.MiddleName, cand.LastName)
	}); err != nil {
		return err
	}
	if err := r.checkUnused(ctx, "phoneNumber", func(ctx context.Context) (*customer.Customer, error) {
		return r.customers.FindByPhone(ctx, cand.PhoneNumber)
	}); err != nil {
		return err
	}

	if err := r.customers.Save(ctx, cand); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateIdentity) {
			r.logger.WarnContext(ctx, "Unique constraint rejected customer insert", slog.Any("error", err))
			return err
		}
		r.logger.ErrorContext(ctx, "Failed to persist new customer", slog.Any("error", err))
		return fmt.Errorf("failed to persist customer: %w", err)
	}

	return nil
}

func (r *Registry) checkUnused(ctx context.Context, field string, find func(context.Context) (*customer.Customer, error)) error {
	_, err := find(ctx)
	if err == nil {
		r.logger.WarnContext(ctx, "Registration rejected, identity field already registered", slog.String("field", field))
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicateIdentity, field)
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	r.logger.ErrorContext(ctx, "Repository error during uniqueness check", slog.String("field", field), slog.Any("error", err))
	return fmt.Errorf("uniqueness check on %s failed: %w", field, err)
}

func (r *Registry) FindCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	return r.customers.FindByID(ctx, customerID)
}

func (r *Registry) FindCustomerBySSN(ctx context.Context, ssn string) (*customer.Customer, error) {
	return r.customers.FindBySSN(ctx, ssn)
}

func (r *Registry) FindCustomerByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	return r.customers.FindByPhone(ctx, phone)
}

func (r *Registry) FindCustomerByName(ctx context.Context, firstName, middleName, lastName string) (*customer.Customer, error) {
	return r.customers.FindByName(ctx, firstName, middleName, lastName)
}

// AuthenticateAccount returns the account when accountID exists and the
// stored credential equals the supplied one. A missing account and a
// wrong credential both come back as ErrNotAuthorized; callers must not
// learn which field was wrong.
func (r *Registry) AuthenticateAccount(ctx context.Context, accountID int64, credential string) (*account.Account, error) {
	acct, err := r.accounts.FindByIDAndPassword(ctx, accountID, credential)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			r.logger.WarnContext(ctx, "Account authentication failed", slog.Int64("accountID", accountID))
			return nil, apperrors.ErrNotAuthorized
		}
		r.logger.ErrorContext(ctx, "Repository error during account authentication", slog.Any("error", err))
		return nil, fmt.Errorf("failed to authenticate account %d: %w", accountID, err)
	}
	return acct, nil
}

// FindAccount returns the account without checking a credential.
func (r *Registry) FindAccount(ctx context.Context, accountID int64) (*account.Account, error) {
	return r.accounts.FindByID(ctx, accountID)
}

// AccountsOf returns every account owned by the customer, in no
// particular order.
func (r *Registry) AccountsOf(ctx context.Context, customerID int64) ([]*account.Account, error) {
	return r.accounts.ListByCustomer(ctx, customerID)
}
