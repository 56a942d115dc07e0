package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleClient }

// NormalizeEmail trims and case-folds an address. Stored and looked-up
// emails both go through it, so matching does not depend on the database's
// lower().
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentSelfEmployed EmploymentStatus = "self-employed"
	EmploymentContractor   EmploymentStatus = "contractor"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
	EmploymentRetired      EmploymentStatus = "retired"
)

// Valid accepts the empty value, meaning not provided.
func (e EmploymentStatus) Valid() bool {
	switch e {
	case "", EmploymentEmployed, EmploymentSelfEmployed, EmploymentContractor,
		EmploymentUnemployed, EmploymentRetired:
		return true
	}
	return false
}

type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string // argon2id PHC string
	Role         Role

	Name             string
	Phone            string
	Address          string
	EmploymentStatus EmploymentStatus
	AnnualIncome     *int64 // whole currency units

	CreatedAt time.Time
	UpdatedAt time.Time
}
