// Package sin implements the SIN Vault: encrypted storage of social insurance
// numbers with role-gated retrieval and an access audit trail.
package sin

import (
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// AccessType selects the view requested on retrieve.
type AccessType string

const (
	AccessStandard   AccessType = "STANDARD_VIEW"
	AccessPrivileged AccessType = "PRIVILEGED_VIEW"
)

// ParseAccessType validates a caller supplied access type. An empty value
// defaults to the standard view.
func ParseAccessType(value string) (AccessType, error) {
	switch AccessType(strings.ToUpper(strings.TrimSpace(value))) {
	case "", AccessStandard:
		return AccessStandard, nil
	case AccessPrivileged:
		return AccessPrivileged, nil
	default:
		return "", shared.Validation("INVALID_ACCESS_TYPE", "access type must be STANDARD_VIEW or PRIVILEGED_VIEW")
	}
}

// AccessLevel is persisted with every record. It is informational only.
type AccessLevel string

const (
	LevelEmployee AccessLevel = "EMPLOYEE"
	LevelManager  AccessLevel = "MANAGER"
)

// Envelope is the persisted ciphertext bundle; every field is base64.
type Envelope struct {
	IV      string `json:"iv"`
	Content string `json:"content"`
	AuthTag string `json:"authTag"`
}

// Record is a stored identifier including its secret material.
type Record struct {
	ID          int64
	EmployeeID  int64
	Ciphertext  Envelope
	Last3       string
	SearchHash  string
	AccessLevel AccessLevel
	CreatedAt   time.Time
}

// PublicRecord is the caller facing view of a Record.
type PublicRecord struct {
	ID          int64       `json:"id"`
	EmployeeID  int64       `json:"employeeId"`
	Last3       string      `json:"last3"`
	AccessLevel AccessLevel `json:"accessLevel"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Public strips secret material from r.
func (r Record) Public() PublicRecord {
	return PublicRecord{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		Last3:       r.Last3,
		AccessLevel: r.AccessLevel,
		CreatedAt:   r.CreatedAt,
	}
}

// AccessLogEntry is one row of the access audit trail.
type AccessLogEntry struct {
	ID           int64      `json:"id"`
	EmployeeID   int64      `json:"employeeId"`
	ActingUserID int64      `json:"actingUserId"`
	AccessType   AccessType `json:"accessType"`
	SourceIP     string     `json:"sourceIp"`
	Granted      bool       `json:"granted"`
	AccessedAt   time.Time  `json:"accessedAt"`
}

// RetrieveInput describes a read request against the vault.
type RetrieveInput struct {
	ActorID    int64
	EmployeeID int64
	AccessType AccessType
	SourceIP   string
}

// StoreRequest is the HTTP payload for storing an identifier.
type StoreRequest struct {
	SIN string `json:"sin" validate:"required"`
}
