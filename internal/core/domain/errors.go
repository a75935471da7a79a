package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type ErrorKind string

const (
	ErrInvalidArgument        ErrorKind = "invalid_argument"
	ErrPolicyViolation        ErrorKind = "policy_violation"
	ErrSlotConflict           ErrorKind = "slot_conflict"
	ErrInvalidStateTransition ErrorKind = "invalid_state_transition"
	ErrNotFound               ErrorKind = "not_found"
	ErrBusy                   ErrorKind = "busy"
)

// Error — типизированная доменная ошибка.
// Code — событийный ключ в точечной нотации, как в логах (booking.slot.conflict).
type Error struct {
	Kind   ErrorKind
	Code   string
	Fields map[string]interface{}
	Err    error
}

func NewError(kind ErrorKind, code string) *Error {
	return &Error{
		Kind:   kind,
		Code:   code,
		Fields: make(map[string]interface{}),
	}
}

func (e *Error) WithField(key string, value interface{}) *Error {
	e.Fields[key] = value
	return e
}

func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Code)

	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Fields[k]))
		}
		b.WriteString(" {")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("}")
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf возвращает вид доменной ошибки или пустую строку для чужих ошибок.
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
