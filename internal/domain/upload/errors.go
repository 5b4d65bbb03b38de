package upload

import "errors"

var (
	ErrMissingFile  = errors.New("missing file")
	ErrInvalidFile  = errors.New("invalid file")
	ErrFileTooLarge = errors.New("file too large")
	ErrStorage      = errors.New("storage error")
	ErrPersistence  = errors.New("persistence error")
)

// Error is a pipeline failure. Class is one of the sentinels above and
// Message is safe to show to the client.
type Error struct {
	Class   error
	Message string
	Err     error
}

func newError(class error, message string, cause error) *Error {
	return &Error{Class: class, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Class.Error() + ": " + e.Err.Error()
	}
	return e.Class.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Class}
	}
	return []error{e.Class, e.Err}
}

// IsClientError reports whether err belongs to the validation class.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingFile) || errors.Is(err, ErrInvalidFile) || errors.Is(err, ErrFileTooLarge)
}

// resultLabel maps an error to the metrics result label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingFile):
		return "missing_file"
	case errors.Is(err, ErrInvalidFile):
		return "invalid_file"
	case errors.Is(err, ErrFileTooLarge):
		return "too_large"
	case errors.Is(err, ErrStorage):
		return "storage_error"
	case errors.Is(err, ErrPersistence):
		return "persistence_error"
	default:
		return "error"
	}
}
