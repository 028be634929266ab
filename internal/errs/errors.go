package errs

import (
	"errors"
	"strings"
)

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrInvalid  = errors.New("invalid")
	ErrConflict = errors.New("conflict")
	// ErrUnauthorizedActor indicates an entryBy value outside the clerk
	// whitelist (HTTP 403).
	ErrUnauthorizedActor = errors.New("unauthorized_actor")
	// ErrUnauthorized indicates failed login credentials (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrImmutable indicates an attempt to change an entry's kind or other
	// fields fixed at creation.
	ErrImmutable = errors.New("immutable")
)

// Validation reports a request rejected before it reached storage. Fields
// lists the offending field names; Allowed lists the accepted values when the
// failure is a bad enum. It unwraps to ErrInvalid so callers can match with
// errors.Is.
type Validation struct {
	Msg     string
	Fields  []string
	Allowed []string
}

func (v *Validation) Error() string {
	if len(v.Fields) > 0 {
		return v.Msg + ": " + strings.Join(v.Fields, ", ")
	}
	return v.Msg
}

func (v *Validation) Unwrap() error { return ErrInvalid }

// MissingFields builds the 400 error for absent required fields.
func MissingFields(fields ...string) error {
	return &Validation{Msg: "Missing required fields", Fields: fields}
}

// BadEnum builds the 400 error for a value outside an enumerated set.
func BadEnum(field string, allowed []string) error {
	return &Validation{Msg: "Invalid " + field + " value", Fields: []string{field}, Allowed: allowed}
}
