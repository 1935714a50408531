package account

import (
	"fmt"

	"github.com/shopspring/decimal"

	"minibank/internal/pkg/apperrors"
)

// MinCredentialLength is the minimum length of an account credential.
const MinCredentialLength = 9

// Account is a credit balance owned by exactly one customer and guarded
// by a plaintext credential. Credit never goes negative.
type Account struct {
	ID         int64           `json:"accountId"`
	CustomerID int64           `json:"customerId"`
	Credit     decimal.Decimal `json:"credit"`
	Active     bool            `json:"active"`
	Password   string          `json:"-"`
}

func NewAccount(customerID int64, password string) (*Account, error) {
	if customerID <= 0 {
		return nil, fmt.Errorf("%w: owning customer ID must be positive", apperrors.ErrInvalidArgument)
	}
	if len(password) < MinCredentialLength {
		return nil, fmt.Errorf("%w: credential must be at least %d characters", apperrors.ErrWeakCredential, MinCredentialLength)
	}

	return &Account{
		CustomerID: customerID,
		Credit:     decimal.Zero,
		Active:     true,
		Password:   password,
	}, nil
}

// Deposit adds amount to the credit balance.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return apperrors.ErrInvalidAmount
	}
	a.Credit = a.Credit.Add(amount)
	return nil
}

// Withdraw subtracts amount from the credit balance. The balance is left
// untouched when amount exceeds it; there is no partial withdrawal.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return apperrors.ErrInvalidAmount
	}
	if amount.GreaterThan(a.Credit) {
		return apperrors.ErrInsufficientFunds
	}
	a.Credit = a.Credit.Sub(amount)
	return nil
}
