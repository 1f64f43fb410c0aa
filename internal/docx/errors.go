package docx

import (
	"errors"
	"fmt"
)

var (
	// ErrMainPartMissing is returned when the container has no word/document.xml.
	ErrMainPartMissing = errors.New("main document part not found")

	// ErrUnknownUnitType is returned for interchange records with an unrecognised type.
	ErrUnknownUnitType = errors.New("unknown unit type")

	// ErrInvalidUnit is returned for interchange records missing address fields.
	ErrInvalidUnit = errors.New("invalid text unit")
)

// ResolveError reports a unit whose stored address does not resolve against
// the re-parsed package. It is per-unit and never aborts a reinsertion.
type ResolveError struct {
	UnitID int
	Type   UnitType
	Reason string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("unit %d (%s): %s", e.UnitID, e.Type, e.Reason)
}

func resolveErrorf(u TextUnit, format string, args ...interface{}) *ResolveError {
	return &ResolveError{UnitID: u.ID, Type: u.Type(), Reason: fmt.Sprintf(format, args...)}
}
