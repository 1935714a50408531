package event

import (
	"context"
	"time"
)

type CustomerEventPayload struct {
	CustomerID  int64     `json:"customerId"`
	FirstName   string    `json:"firstName"`
	MiddleName  string    `json:"middleName"`
	LastName    string    `json:"lastName"`
	PhoneNumber string    `json:"phoneNumber"`
	JoinDate    time.Time `json:"joinDate"`
}

type AccountEventPayload struct {
	AccountID  int64 `json:"accountId"`
	CustomerID int64 `json:"customerId"`
	Active     bool  `json:"active"`
}

type LoanEventPayload struct {
	LoanID            int64     `json:"loanId"`
	AccountID         int64     `json:"accountId"`
	CustomerID        int64     `json:"customerId"`
	Value             string    `json:"value"`
	TotalInterestRate string    `json:"totalInterestRate"`
	ExpiryDate        time.Time `json:"expiryDate"`
}

type CustomerRegisteredEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type AccountOpenedEvent struct {
	Timestamp time.Time           `json:"timestamp"`
	Payload   AccountEventPayload `json:"payload"`
}

type LoanIssuedEvent struct {
	Timestamp time.Time        `json:"timestamp"`
	Payload   LoanEventPayload `json:"payload"`
}

// Publisher fans domain events out to interested consumers. Publish
// failures are logged by callers and never fail the ledger operation.
type Publisher interface {
	PublishCustomerRegistered(ctx context.Context, event CustomerRegisteredEvent) error
	PublishAccountOpened(ctx context.Context, event AccountOpenedEvent) error
	PublishLoanIssued(ctx context.Context, event LoanIssuedEvent) error
}
