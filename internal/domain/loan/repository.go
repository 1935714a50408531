package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository is the storage collaborator contract for loans. Lookup
// misses surface as apperrors.ErrNotFound; aggregations over an empty
// set succeed with zero values.
type Repository interface {
	Save(ctx context.Context, ln *Loan) error

	FindByID(ctx context.Context, loanID int64) (*Loan, error)

	ListByCustomer(ctx context.Context, customerID int64) ([]*Loan, error)

	ListByAccount(ctx context.Context, accountID int64) ([]*Loan, error)

	ListByCustomerAndAccount(ctx context.Context, customerID, accountID int64) ([]*Loan, error)

	CountByCustomer(ctx context.Context, customerID int64) (int, error)

	// SumValueByCustomer returns the sum of loan principals for the
	// customer; zero when the customer has no loans.
	SumValueByCustomer(ctx context.Context, customerID int64) (decimal.Decimal, error)

	// CountActiveExpiredBefore counts uncancelled loans whose expiry
	// date is before t.
	CountActiveExpiredBefore(ctx context.Context, t time.Time) (int64, error)
}
