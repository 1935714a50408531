package dto

import (
	"fmt"
	"time"

	"minibank/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type IssueLoanRequest struct {
	Password     string          `json:"password"`
	CustomerID   int64           `json:"customerId,omitempty"`
	Value        decimal.Decimal `json:"value"`
	InterestRate decimal.Decimal `json:"interestRate"`
	ExpiryDate   time.Time       `json:"expiryDate"`
}

func (r *IssueLoanRequest) Validate() error {
	if r.Password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if r.Value.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("value must be positive")
	}
	if r.ExpiryDate.IsZero() {
		return fmt.Errorf("expiryDate is required")
	}
	return nil
}

type ListLoansRequest struct {
	Password   string `json:"password"`
	CustomerID int64  `json:"customerId,omitempty"`
}

func (r *ListLoansRequest) Validate() error {
	if r.Password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if r.CustomerID < 0 {
		return fmt.Errorf("customerId cannot be negative")
	}
	return nil
}

type LoanResponse struct {
	LoanID            int64           `json:"loanId"`
	AccountID         int64           `json:"accountId"`
	CustomerID        int64           `json:"customerId"`
	Value             decimal.Decimal `json:"value"`
	TotalInterestRate decimal.Decimal `json:"totalInterestRate"`
	CreationDate      time.Time       `json:"creationDate"`
	ExpiryDate        time.Time       `json:"expiryDate"`
	CancellationDate  *time.Time      `json:"cancellationDate,omitempty"`
}

func NewLoanResponse(ln *loan.Loan) LoanResponse {
	if ln == nil {
		return LoanResponse{}
	}
	return LoanResponse{
		LoanID:            ln.ID,
		AccountID:         ln.AccountID,
		CustomerID:        ln.CustomerID,
		Value:             ln.Value,
		TotalInterestRate: ln.TotalInterestRate,
		CreationDate:      ln.CreationDate,
		ExpiryDate:        ln.ExpiryDate,
		CancellationDate:  ln.CancellationDate,
	}
}

func NewLoanListResponse(loans []*loan.Loan) []LoanResponse {
	resp := make([]LoanResponse, len(loans))
	for i, ln := range loans {
		resp[i] = NewLoanResponse(ln)
	}
	return resp
}

type TotalBorrowedResponse struct {
	CustomerID int64           `json:"customerId"`
	Total      decimal.Decimal `json:"total"`
}

type LoanCountResponse struct {
	CustomerID int64 `json:"customerId"`
	Count      int   `json:"count"`
}
