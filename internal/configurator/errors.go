package configurator

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFamily      = errors.New("unknown product family")
	ErrUnknownCategory    = errors.New("unknown option category")
	ErrOptionUnavailable  = errors.New("option is not available for current selection")
	ErrVariantUnsupported = errors.New("variant is not supported by product family")
)

// ValidationError: ошибка, которую показываем покупателю как есть.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation отличает ошибки ввода от внутренних.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
