package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Error taxonomy. Routes map these onto HTTP statuses: validation 400,
// forbidden 403 (404 on negotiation detail views, so the existence of
// another party's record is not leaked), conflict 409, not found 404.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("access denied")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("invalid input")
)

// isDuplicateKey reports whether err comes from a unique-constraint
// violation. Pre-checks alone cannot rule out a check-then-insert race,
// the database index is the authority.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
