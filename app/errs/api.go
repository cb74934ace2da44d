package errs

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Common error sentinel values
var (
	ErrBadRequest      = errors.New("malformed request")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("resource conflict")
	ErrInternal        = errors.New("internal server error")
	ErrTooManyRequests = errors.New("too many requests")
	ErrInvalidField    = errors.New("invalid field")
	ErrInvalidJSON     = errors.New("invalid JSON")
)

type ApiErr struct {
	StatusCode int
	err        error
	sentinel   error
	Details    string // extra context shown to the client
	Field      string // form field that failed validation
	Cause      error
}

func NewApiErr(statusCode int, message string) *ApiErr {
	return &ApiErr{
		StatusCode: statusCode,
		err:        errors.New(message),
	}
}

func (e *ApiErr) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.err.Error(), e.Details)
	}
	return e.err.Error()
}

// Message is the error text without details.
func (e *ApiErr) Message() string {
	return e.err.Error()
}

// GetFullError returns the message followed by the chain of causes.
func (e *ApiErr) GetFullError() string {
	msg := e.Error()
	if e.Cause != nil {
		var apiErr *ApiErr
		if errors.As(e.Cause, &apiErr) {
			msg = fmt.Sprintf("%s -> %s", msg, apiErr.GetFullError())
		} else {
			msg = fmt.Sprintf("%s -> %s", msg, e.Cause.Error())
		}
	}
	return msg
}

// Unwrap lets errors.Is match the sentinel the error was built from.
func (e *ApiErr) Unwrap() error {
	if e.sentinel != nil {
		return e.sentinel
	}
	return e.err
}

func newKindError(status int, sentinel error, message string) *ApiErr {
	return &ApiErr{StatusCode: status, err: errors.New(message), sentinel: sentinel}
}

func NewNotFoundError(message string) *ApiErr {
	return newKindError(http.StatusNotFound, ErrNotFound, message)
}

func NewBadRequestError(message string) *ApiErr {
	return newKindError(http.StatusBadRequest, ErrBadRequest, message)
}

func NewUnauthorizedError(message string) *ApiErr {
	return newKindError(http.StatusUnauthorized, ErrUnauthorized, message)
}

func NewConflictError(message string) *ApiErr {
	return newKindError(http.StatusConflict, ErrConflict, message)
}

func NewTooManyRequestsError(message string) *ApiErr {
	return newKindError(http.StatusTooManyRequests, ErrTooManyRequests, message)
}

func NewInternalErrorWithCause(message string, cause error) *ApiErr {
	e := newKindError(http.StatusInternalServerError, ErrInternal, message)
	e.Cause = cause
	return e
}

func NewValidationError(field, message string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidField,
		Details:    message,
		Field:      field,
	}
}

func NewInvalidJSONError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidJSON,
		Details:    "Invalid JSON format",
		Cause:      cause,
		Field:      "json",
	}
}

// FromValidation converts the first validator failure into a field error.
// Other errors become a plain bad request.
func FromValidation(err error) *ApiErr {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return NewValidationError(lowerFirst(fe.Field()), validationMessage(fe))
	}
	return NewBadRequestError(err.Error())
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", lowerFirst(fe.Field()))
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest) || errors.Is(err, ErrInvalidField) || errors.Is(err, ErrInvalidJSON)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
