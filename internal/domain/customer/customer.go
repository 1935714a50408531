package customer

import (
	"fmt"
	"strings"
	"time"

	"minibank/internal/pkg/apperrors"
)

const ssnLength = 9

// Customer is the identity root of the ledger. All fields are set at
// registration time and never change afterwards.
type Customer struct {
	ID          int64     `json:"customerId"`
	FirstName   string    `json:"firstName"`
	MiddleName  string    `json:"middleName"`
	LastName    string    `json:"lastName"`
	SSN         string    `json:"ssn"`
	PhoneNumber string    `json:"phoneNumber"`
	BirthDate   time.Time `json:"birthDate"`
	JoinDate    time.Time `json:"joinDate"`
}

// NewCustomer validates the identity fields and stamps the join date.
// Uniqueness of SSN, phone and the name triple is the registry's job,
// not the entity's.
func NewCustomer(firstName, middleName, lastName, ssn, phone string, birthDate, now time.Time) (*Customer, error) {
	firstName = strings.TrimSpace(firstName)
	middleName = strings.TrimSpace(middleName)
	lastName = strings.TrimSpace(lastName)

	if firstName == "" || middleName == "" || lastName == "" {
		return nil, apperrors.NewValidationError("name", "first, middle and last name must all be non-empty")
	}
	if !isDigits(ssn) || len(ssn) != ssnLength {
		return nil, apperrors.NewValidationError("ssn", fmt.Sprintf("must be exactly %d digits", ssnLength))
	}
	if phone == "" || !isDigits(phone) {
		return nil, apperrors.NewValidationError("phoneNumber", "must be a non-empty numeric string")
	}
	if birthDate.IsZero() || !birthDate.Before(now) {
		return nil, apperrors.NewValidationError("birthDate", "must be in the past")
	}

	return &Customer{
		FirstName:   firstName,
		MiddleName:  middleName,
		LastName:    lastName,
		SSN:         ssn,
		PhoneNumber: phone,
		BirthDate:   birthDate,
		JoinDate:    now,
	}, nil
}

// AgeInYears derives the customer's age as whole 365-day years.
// Leap days are ignored on purpose; the value is display-only.
func (c *Customer) AgeInYears(now time.Time) int64 {
	elapsed := now.Sub(c.BirthDate)
	if elapsed < 0 {
		return 0
	}
	return int64(elapsed.Hours() / 24 / 365)
}

// FullName renders the (first, middle, last) triple for pick-lists.
func (c *Customer) FullName() string {
	return fmt.Sprintf("%s %s %s", c.FirstName, c.MiddleName, c.LastName)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
