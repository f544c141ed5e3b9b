package services

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failures the ledger reports to callers.
type ErrorKind string

const (
	KindValidation          ErrorKind = "ValidationError"
	KindPermissionDenied    ErrorKind = "PermissionDenied"
	KindInsufficientBalance ErrorKind = "InsufficientBalance"
	KindNotFound            ErrorKind = "NotFound"
	KindStoreFailure        ErrorKind = "StoreFailure"
)

// ErrLedgerCorrupted means a stored balance no longer equals the sum of its
// transactions. It is a bug, never a business condition.
var ErrLedgerCorrupted = errors.New("ledger: balance diverges from transaction sum")

// Error carries one ErrorKind and a message that is safe to show to the caller.
// Err holds the internal cause and is only logged.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err. Errors that did not come from this package
// are reported as store failures.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreFailure
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// IsTimeout reports whether err was caused by a store deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

func validationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func permissionDenied(message string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: message}
}

func notFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func insufficientBalance(err error) *Error {
	return &Error{Kind: KindInsufficientBalance, Message: "insufficient balance", Err: err}
}

func storeFailure(message string, err error) *Error {
	if IsTimeout(err) {
		message = "ledger store timed out"
	}
	return &Error{Kind: KindStoreFailure, Message: message, Err: err}
}
