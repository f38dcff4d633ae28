package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidUser  = errors.New("invalid user")
	ErrUserNotFound = errors.New("user not found")
	ErrNoUsers      = errors.New("no users found")
	ErrPersistence  = errors.New("persistence failure")
)

// UserError tags a failure with one of the sentinel kinds above so callers can
// use errors.Is while the underlying cause stays reachable through Unwrap.
type UserError struct {
	Kind    error
	ID      int64
	Message string
	Cause   error
}

func (e *UserError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *UserError) Is(target error) bool { return e.Kind == target }
func (e *UserError) Unwrap() error         { return e.Cause }

func InvalidUser(message string) error {
	return &UserError{Kind: ErrInvalidUser, Message: message}
}

func NotFound(id int64) error {
	return &UserError{Kind: ErrUserNotFound, ID: id, Message: fmt.Sprintf("user with id %d not found", id)}
}

func NoUsers() error {
	return &UserError{Kind: ErrNoUsers, Message: "no users have been registered yet"}
}

// PersistenceFailure wraps a store error. op describes what was attempted, e.g. "save user".
func PersistenceFailure(op string, cause error) error {
	return &UserError{Kind: ErrPersistence, Message: "could not " + op, Cause: cause}
}

// PublicMessage returns the text that may be shown to clients. Persistence
// causes are replaced by a generic message.
func PublicMessage(err error) string {
	var ue *UserError
	if errors.As(err, &ue) {
		if ue.Kind == ErrPersistence {
			return "internal server error"
		}
		return ue.Error()
	}
	return "internal server error"
}
