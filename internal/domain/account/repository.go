package account

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository is the storage collaborator contract for accounts.
// Lookup misses surface as apperrors.ErrNotFound.
type Repository interface {
	Save(ctx context.Context, acct *Account) error

	FindByID(ctx context.Context, accountID int64) (*Account, error)

	// FindByIDAndPassword returns the account only when both the ID
	// exists and the stored credential matches exactly. A miss on either
	// is apperrors.ErrNotFound so callers cannot tell which field was
	// wrong.
	FindByIDAndPassword(ctx context.Context, accountID int64, password string) (*Account, error)

	ListByCustomer(ctx context.Context, customerID int64) ([]*Account, error)

	CountByCustomer(ctx context.Context, customerID int64) (int, error)

	// ApplyBalanceDelta atomically adds delta to the account's credit,
	// guarded so the balance never goes negative, and returns the new
	// balance. A failed guard surfaces as apperrors.ErrInsufficientFunds.
	ApplyBalanceDelta(ctx context.Context, accountID int64, delta decimal.Decimal) (decimal.Decimal, error)
}

// Authenticator authorizes account-scoped operations. The identity
// registry implements it; services depend on this narrow slice so the
// account package never imports the registry.
type Authenticator interface {
	AuthenticateAccount(ctx context.Context, accountID int64, credential string) (*Account, error)
}

// Reader serves credential-free point reads. Callers holding the
// per-account lock use it to refresh an authenticated snapshot before
// acting on the balance.
type Reader interface {
	FindAccount(ctx context.Context, accountID int64) (*Account, error)
}
