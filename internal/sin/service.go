package sin

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

var (
	ErrInvalidSIN       = shared.Validation("INVALID_SIN", "SIN must be 9 digits with a valid checksum")
	ErrDuplicateSIN     = shared.Validation("SIN_ALREADY_REGISTERED", "SIN is already registered")
	ErrEmployeeHasSIN   = shared.Validation("SIN_ALREADY_STORED", "employee already has a SIN on file")
	ErrSINNotFound      = shared.NotFound("SIN_NOT_FOUND", "SIN not found for employee")
	ErrEmployeeNotFound = shared.NotFound("EMPLOYEE_NOT_FOUND", "employee not found")
	ErrAccessDenied     = shared.Forbidden("ACCESS_DENIED", "Access denied")
	ErrIntegrityFailure = &shared.Error{Kind: shared.KindDatabase, Code: "SIN_INTEGRITY_FAILURE", Message: "stored SIN could not be decrypted"}
)

// Directory resolves employees referenced by the vault.
type Directory interface {
	EmployeeExists(ctx context.Context, id int64) (bool, error)
	EmployeeRole(ctx context.Context, id int64) (shared.Role, error)
}

// Recorder receives read outcomes for metrics.
type Recorder interface {
	ObserveSINRead(accessType, outcome string)
}

// Vault stores and discloses social insurance numbers.
type Vault struct {
	repo      Repository
	directory Directory
	cipher    *Cipher
	salt      string
	logger    *slog.Logger
	metrics   Recorder
	now       func() time.Time
}

// NewVault validates key material and constructs the vault. A missing or
// malformed key, or an empty salt, is a startup error.
func NewVault(repo Repository, directory Directory, keyB64, salt string, logger *slog.Logger) (*Vault, error) {
	c, err := NewCipher(keyB64)
	if err != nil {
		return nil, err
	}
	if salt == "" {
		return nil, errors.New("sin: hash salt is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Vault{
		repo:      repo,
		directory: directory,
		cipher:    c,
		salt:      salt,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// WithMetrics attaches a read outcome recorder.
func (v *Vault) WithMetrics(r Recorder) *Vault {
	v.metrics = r
	return v
}

// WithNow overrides the clock used for audit timestamps.
func (v *Vault) WithNow(now func() time.Time) *Vault {
	if now != nil {
		v.now = now
	}
	return v
}

// Store encrypts and persists the identifier for an employee.
func (v *Vault) Store(ctx context.Context, employeeID int64, plaintext string) (PublicRecord, error) {
	if !ValidLuhn(plaintext) {
		return PublicRecord{}, ErrInvalidSIN
	}
	exists, err := v.directory.EmployeeExists(ctx, employeeID)
	if err != nil {
		return PublicRecord{}, err
	}
	if !exists {
		return PublicRecord{}, ErrEmployeeNotFound
	}
	hash := SearchHash(plaintext, v.salt)
	envelope, err := v.cipher.Seal(plaintext)
	if err != nil {
		return PublicRecord{}, shared.Database(err, "sin: encrypt")
	}

	var stored Record
	err = v.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		dup, err := tx.SearchHashExists(ctx, hash)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicateSIN
		}
		has, err := tx.EmployeeHasRecord(ctx, employeeID)
		if err != nil {
			return err
		}
		if has {
			return ErrEmployeeHasSIN
		}
		stored, err = tx.Insert(ctx, Record{
			EmployeeID:  employeeID,
			Ciphertext:  envelope,
			Last3:       plaintext[len(plaintext)-3:],
			SearchHash:  hash,
			AccessLevel: LevelEmployee,
		})
		return err
	})
	if err != nil {
		return PublicRecord{}, shared.Database(err, "sin: store")
	}
	v.logger.Info("sin stored", slog.Int64("employee_id", employeeID))
	return stored.Public(), nil
}

// Retrieve returns the display string the actor is allowed to see.
func (v *Vault) Retrieve(ctx context.Context, in RetrieveInput) (string, error) {
	if in.AccessType != AccessStandard && in.AccessType != AccessPrivileged {
		return "", shared.Validation("INVALID_ACCESS_TYPE", "access type must be STANDARD_VIEW or PRIVILEGED_VIEW")
	}
	rec, err := v.repo.GetByEmployee(ctx, in.EmployeeID)
	if err != nil {
		return "", err
	}
	role, err := v.directory.EmployeeRole(ctx, in.ActorID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			v.audit(ctx, in, false)
			v.observe(in.AccessType, "denied")
			return "", ErrAccessDenied
		}
		return "", err
	}
	manager := role.IsManager()

	switch {
	case in.AccessType == AccessPrivileged && manager:
		v.audit(ctx, in, true)
		plain, err := v.cipher.Open(rec.Ciphertext)
		if err != nil {
			v.logger.Error("sin integrity failure", slog.Int64("employee_id", in.EmployeeID))
			v.observe(in.AccessType, "integrity_failure")
			return "", ErrIntegrityFailure
		}
		v.observe(in.AccessType, "decrypted")
		return Format(plain), nil
	case in.ActorID == in.EmployeeID || manager:
		v.audit(ctx, in, true)
		v.observe(in.AccessType, "masked")
		return Mask(rec.Last3), nil
	default:
		v.audit(ctx, in, false)
		v.observe(in.AccessType, "denied")
		return "", ErrAccessDenied
	}
}

// ListAccessLogs returns a page of the audit trail for an employee.
func (v *Vault) ListAccessLogs(ctx context.Context, employeeID int64, page, limit int) (shared.Page[AccessLogEntry], error) {
	page, limit, err := shared.NormalizePage(page, limit)
	if err != nil {
		return shared.Page[AccessLogEntry]{}, err
	}
	items, total, err := v.repo.ListAccessLogs(ctx, employeeID, limit, shared.Offset(page, limit))
	if err != nil {
		return shared.Page[AccessLogEntry]{}, err
	}
	if items == nil {
		items = []AccessLogEntry{}
	}
	return shared.Page[AccessLogEntry]{Data: items, Pagination: shared.NewPagination(page, limit, total)}, nil
}

// audit is best effort; a failed write never blocks the read path.
func (v *Vault) audit(ctx context.Context, in RetrieveInput, granted bool) {
	err := v.repo.InsertAccessLog(ctx, AccessLogEntry{
		EmployeeID:   in.EmployeeID,
		ActingUserID: in.ActorID,
		AccessType:   in.AccessType,
		SourceIP:     in.SourceIP,
		Granted:      granted,
		AccessedAt:   v.now().UTC(),
	})
	if err != nil {
		v.logger.Warn("sin access log write failed",
			slog.Int64("employee_id", in.EmployeeID),
			slog.Int64("actor_id", in.ActorID),
			slog.Any("error", err))
	}
}

func (v *Vault) observe(accessType AccessType, outcome string) {
	if v.metrics != nil {
		v.metrics.ObserveSINRead(string(accessType), outcome)
	}
}
