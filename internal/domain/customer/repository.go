package customer

import (
	"context"
)

// CustomerRepository is the storage collaborator contract for customers.
// Implementations must return apperrors.ErrNotFound on a lookup miss and
// apperrors.ErrDuplicateIdentity when a unique constraint rejects a save.
type CustomerRepository interface {
	Save(ctx context.Context, cust *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	FindBySSN(ctx context.Context, ssn string) (*Customer, error)

	FindByPhone(ctx context.Context, phone string) (*Customer, error)

	FindByName(ctx context.Context, firstName, middleName, lastName string) (*Customer, error)

	// ListNames returns every customer with only the ID and name triple
	// populated, for pick-list style callers.
	ListNames(ctx context.Context) ([]*Customer, error)
}
