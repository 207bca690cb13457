package models

import "errors"

// Error kinds shared by every layer. Callers wrap them with fmt.Errorf("...: %w", ErrX)
// and test with errors.Is.
var (
	ErrNotFound    = errors.New("not found")
	ErrParse       = errors.New("malformed record")
	ErrReference   = errors.New("dangling reference")
	ErrValidation  = errors.New("validation failed")
	ErrUnsupported = errors.New("unsupported operation")
	ErrBackend     = errors.New("backend error")
	ErrInvalidID   = errors.New("invalid identifier")
)

// Kind returns a short machine-readable name for the kind of err,
// or "internal" when err does not wrap one of the known kinds.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, ErrParse):
		return "parse_error"
	case errors.Is(err, ErrReference):
		return "reference_error"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrUnsupported):
		return "unsupported_operation"
	case errors.Is(err, ErrBackend):
		return "backend_error"
	default:
		return "internal"
	}
}
