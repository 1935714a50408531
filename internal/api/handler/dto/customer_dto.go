package dto

import (
	"fmt"
	"strings"
	"time"

	"minibank/internal/domain/customer"
)

type RegisterCustomerRequest struct {
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName"`
	LastName    string `json:"lastName"`
	SSN         string `json:"ssn"`
	PhoneNumber string `json:"phoneNumber"`
	BirthDate   string `json:"birthDate"`
}

func (r *RegisterCustomerRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.MiddleName) == "" || strings.TrimSpace(r.LastName) == "" {
		return fmt.Errorf("firstName, middleName and lastName cannot be empty")
	}
	if strings.TrimSpace(r.SSN) == "" {
		return fmt.Errorf("ssn cannot be empty")
	}
	if strings.TrimSpace(r.PhoneNumber) == "" {
		return fmt.Errorf("phoneNumber cannot be empty")
	}
	if _, err := r.ParseBirthDate(); err != nil {
		return fmt.Errorf("birthDate must be a valid YYYY-MM-DD date")
	}
	return nil
}

func (r *RegisterCustomerRequest) ParseBirthDate() (time.Time, error) {
	return time.Parse(time.DateOnly, r.BirthDate)
}

type CustomerResponse struct {
	CustomerID  int64     `json:"customerId"`
	FirstName   string    `json:"firstName"`
	MiddleName  string    `json:"middleName"`
	LastName    string    `json:"lastName"`
	SSN         string    `json:"ssn"`
	PhoneNumber string    `json:"phoneNumber"`
	BirthDate   time.Time `json:"birthDate"`
	JoinDate    time.Time `json:"joinDate"`
	Age         int64     `json:"age"`
}

func NewCustomerResponse(cust *customer.Customer, now time.Time) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}

	return CustomerResponse{
		CustomerID:  cust.ID,
		FirstName:   cust.FirstName,
		MiddleName:  cust.MiddleName,
		LastName:    cust.LastName,
		SSN:         cust.SSN,
		PhoneNumber: cust.PhoneNumber,
		BirthDate:   cust.BirthDate,
		JoinDate:    cust.JoinDate,
		Age:         cust.AgeInYears(now),
	}
}

type CustomerNameResponse struct {
	CustomerID int64  `json:"customerId"`
	FullName   string `json:"fullName"`
}

func NewCustomerNameResponse(cust *customer.Customer) CustomerNameResponse {
	if cust == nil {
		return CustomerNameResponse{}
	}
	return CustomerNameResponse{
		CustomerID: cust.ID,
		FullName:   cust.FullName(),
	}
}
