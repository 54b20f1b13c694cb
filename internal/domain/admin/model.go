package admin

import (
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for provisioned fields.
const (
	MaxEmailLength    = 254
	MaxNameLength     = 120
	MaxQuestionLength = 300
	MinPINLength      = 4
	MaxPINLength      = 6
)

// RoleAdmin is the only role an AdminAccount can hold.
const RoleAdmin = "admin"

// Lockout defaults. Overridable through configuration.
const (
	DefaultLockoutThreshold = 5
	DefaultLockoutDuration  = 15 * time.Minute
)

// HashCost is the bcrypt cost used for answers and PINs. Tests lower it.
var HashCost = 12

// Domain errors
var (
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmailTooLong     = errors.New("email cannot exceed 254 characters")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrEmptyQuestion    = errors.New("security question cannot be empty")
	ErrQuestionTooLong  = errors.New("security question cannot exceed 300 characters")
	ErrEmptyAnswer      = errors.New("security answer cannot be empty")
	ErrInvalidPIN       = errors.New("PIN must be 4 to 6 digits")
	ErrInvalidRole      = errors.New("role must be admin")
	ErrNoPermissions    = errors.New("at least one permission is required")
	ErrWrongCredentials = errors.New("answer or PIN does not match")
)

// Account is a provisioned administrator identity.
type Account struct {
	ID             string
	Email          string // stored normalised (lower case)
	Name           string
	Question       string
	AnswerHash     string
	PINHash        string
	Role           string
	Permissions    []Permission
	CreatedAt      time.Time
	FailedVerifies int
	LockedUntil    time.Time
}

// Profile is the public projection of an Account handed to a signed-in client.
type Profile struct {
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Role        string       `json:"role"`
	Permissions []Permission `json:"permissions"`
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeAnswer folds case and collapses whitespace so "  Blue  Whale" matches "blue whale".
func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.Join(strings.Fields(answer), " "))
}

// SanitizePIN keeps only digits and truncates to MaxPINLength, mirroring the sign-in form.
func SanitizePIN(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if b.Len() >= MaxPINLength {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmptyEmail
	}
	if len(a.Email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(a.Question) == "" {
		return ErrEmptyQuestion
	}
	if len(a.Question) > MaxQuestionLength {
		return ErrQuestionTooLong
	}
	if a.Role != RoleAdmin {
		return ErrInvalidRole
	}
	if len(a.Permissions) == 0 {
		return ErrNoPermissions
	}
	return nil
}

// SetAnswer hashes and stores the security answer.
// PRE: answer is non-blank
// POST: AnswerHash holds a bcrypt hash of the normalised answer
func (a *Account) SetAnswer(answer string) error {
	norm := normalizeAnswer(answer)
	if norm == "" {
		return ErrEmptyAnswer
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(norm), HashCost)
	if err != nil {
		return err
	}
	a.AnswerHash = string(hash)
	return nil
}

// SetPIN hashes and stores the numeric PIN.
// PRE: pin is 4-6 ASCII digits
// POST: PINHash holds a bcrypt hash of the PIN
func (a *Account) SetPIN(pin string) error {
	if len(pin) < MinPINLength || len(pin) > MaxPINLength {
		return ErrInvalidPIN
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrInvalidPIN
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), HashCost)
	if err != nil {
		return err
	}
	a.PINHash = string(hash)
	return nil
}

// CheckCredentials verifies answer and PIN together.
// Both hashes are always compared so the response time does not reveal which factor failed.
// INVARIANT: Account fields are not mutated
func (a *Account) CheckCredentials(answer, pin string) error {
	answerErr := compareHash(a.AnswerHash, normalizeAnswer(answer))
	pinErr := compareHash(a.PINHash, pin)
	if answerErr != nil || pinErr != nil {
		return ErrWrongCredentials
	}
	return nil
}

func compareHash(hash, plaintext string) error {
	if hash == "" || plaintext == "" {
		// Burn a comparison anyway to keep timing flat.
		_ = bcrypt.CompareHashAndPassword(DummyHash(), []byte(plaintext))
		return ErrWrongCredentials
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// DummyHash returns a bcrypt hash at HashCost that matches nothing a user can type.
// Lookups for unknown emails compare against it so they cost the same as real ones.
func DummyHash() []byte {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("techday:no-account"), HashCost)
	})
	return dummyHash
}

// IsLocked returns true while the account is in a lockout window.
// INVARIANT: Account fields are not mutated
func (a *Account) IsLocked(now time.Time) bool {
	if a.LockedUntil.IsZero() {
		return false
	}
	return now.Before(a.LockedUntil)
}

// RecordFailedVerify counts a failed verification and starts a lockout at the threshold.
// POST: FailedVerifies incremented; LockedUntil set once threshold is reached
func (a *Account) RecordFailedVerify(now time.Time, threshold int, lockout time.Duration) {
	a.FailedVerifies++
	if threshold > 0 && a.FailedVerifies >= threshold {
		a.LockedUntil = now.Add(lockout)
		a.FailedVerifies = 0
	}
}

// ResetFailedVerifies clears the failure counter and any lock.
func (a *Account) ResetFailedVerifies() {
	a.FailedVerifies = 0
	a.LockedUntil = time.Time{}
}

// HasPermission reports whether the account may manage the given area.
func (a *Account) HasPermission(p Permission) bool {
	for _, have := range a.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

// Profile returns the public projection of the account.
func (a *Account) Profile() Profile {
	perms := make([]Permission, len(a.Permissions))
	copy(perms, a.Permissions)
	return Profile{
		Name:        a.Name,
		Email:       a.Email,
		Role:        a.Role,
		Permissions: perms,
	}
}
