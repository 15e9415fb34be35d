package auth

import (
	"time"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// Account is the credential view of an employee.
type Account struct {
	EmployeeID   int64
	Email        string
	PasswordHash string
	Role         shared.Role
	IsActive     bool
}

// Token is an issued bearer token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
