package patient

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// DomainError is a caller-fault failure with a fixed client-facing message.
// Wrap it with %w to attach detail for logs; the payload never changes.
type DomainError struct {
	message string
}

func (e *DomainError) Error() string { return e.message }

func (e *DomainError) StatusCode() int { return http.StatusBadRequest }

func (e *DomainError) Payload() map[string]string {
	return map[string]string{"message": e.message}
}

func (e *DomainError) LogLevel() zerolog.Level { return zerolog.WarnLevel }

var (
	// ErrEmailAlreadyExists is returned when another record already owns the email.
	ErrEmailAlreadyExists = &DomainError{message: "email already exists"}
	// ErrPatientNotFound is returned when the referenced record does not exist.
	ErrPatientNotFound = &DomainError{message: "patient you searched for could not be found in system"}
)

// ValidationError carries one message per invalid request field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

func (e *ValidationError) Payload() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for k, v := range e.Fields {
		out[k] = v
	}
	return out
}

func (e *ValidationError) LogLevel() zerolog.Level { return zerolog.DebugLevel }

func fieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
