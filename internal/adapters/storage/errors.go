package storage

import (
	"errors"
	"strings"
)

// Store errors shared by every adapter.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("version conflict")
)

// IsUniqueViolation reports whether err came from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}
