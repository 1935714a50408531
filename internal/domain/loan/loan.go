package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// MinCollateral is the credit an account must hold before any loan can
// be issued against it.
var MinCollateral = decimal.NewFromInt(1000)

var maxInterestRate = decimal.NewFromInt(100)

// Loan is a borrowed sum tied to one account. The customer reference is
// copied from the account's owner at issuance and never set on its own,
// so the two cannot drift apart.
//
// Issuing a loan does not move funds; the record only fixes the terms.
type Loan struct {
	ID                int64           `json:"loanId"`
	AccountID         int64           `json:"accountId"`
	CustomerID        int64           `json:"customerId"`
	Value             decimal.Decimal `json:"value"`
	TotalInterestRate decimal.Decimal `json:"totalInterestRate"`
	CreationDate      time.Time       `json:"creationDate"`
	ExpiryDate        time.Time       `json:"expiryDate"`
	CancellationDate  *time.Time      `json:"cancellationDate,omitempty"`
}

// Cancelled reports whether a cancellation timestamp has been set.
// No in-scope operation sets one; the field exists for a future
// cancellation flow.
func (l *Loan) Cancelled() bool {
	return l.CancellationDate != nil
}
