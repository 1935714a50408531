package dto

import (
	"fmt"

	"minibank/internal/domain/account"

	"github.com/shopspring/decimal"
)

type OpenAccountRequest struct {
	CustomerID int64  `json:"customerId"`
	Password   string `json:"password"`
}

func (r *OpenAccountRequest) Validate() error {
	if r.CustomerID <= 0 {
		return fmt.Errorf("customerId must be a positive number")
	}
	if r.Password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	return nil
}

// MoneyMovementRequest carries a deposit or withdrawal. The amount is a
// decimal string so callers never lose precision to float parsing.
type MoneyMovementRequest struct {
	Password string          `json:"password"`
	Amount   decimal.Decimal `json:"amount"`
}

func (r *MoneyMovementRequest) Validate() error {
	if r.Password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("amount must be positive")
	}
	return nil
}

type AccountResponse struct {
	AccountID  int64           `json:"accountId"`
	CustomerID int64           `json:"customerId"`
	Credit     decimal.Decimal `json:"credit"`
	Active     bool            `json:"active"`
}

func NewAccountResponse(acct *account.Account) AccountResponse {
	if acct == nil {
		return AccountResponse{}
	}
	return AccountResponse{
		AccountID:  acct.ID,
		CustomerID: acct.CustomerID,
		Credit:     acct.Credit,
		Active:     acct.Active,
	}
}

type BalanceResponse struct {
	AccountID int64           `json:"accountId"`
	Credit    decimal.Decimal `json:"credit"`
}

type AccountCountResponse struct {
	CustomerID int64 `json:"customerId"`
	Count      int   `json:"count"`
}
