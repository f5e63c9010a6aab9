// Package apperr defines the error taxonomy shared by the client core.
//
// Every failure that reaches a caller is an *Error carrying a Kind. Transport
// and application failures come from the network boundary; shape failures are
// recovered by callers that can degrade to empty values; permission and
// validation failures are raised locally before any request is made.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindTransport   Kind = "transport"
	KindApplication Kind = "application"
	KindShape       Kind = "shape"
	KindPermission  Kind = "permission"
	KindValidation  Kind = "validation"
)

type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Op != "" {
		b.WriteString(" ")
		b.WriteString(e.Op)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func Transport(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Message: "connection failed", Err: err}
}

func Application(op string, status int, message string) *Error {
	if strings.TrimSpace(message) == "" {
		message = "request failed"
	}
	return &Error{Kind: KindApplication, Op: op, Status: status, Message: message}
}

func Shape(op, detail string) *Error {
	return &Error{Kind: KindShape, Op: op, Message: detail}
}

func Permission(op, reason string) *Error {
	return &Error{Kind: KindPermission, Op: op, Message: reason}
}

func Validation(op, reason string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: reason}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there
// is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Display renders err as a single line fit for a status bar.
func Display(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	switch e.Kind {
	case KindTransport:
		return "network unavailable, try again"
	case KindApplication, KindPermission, KindValidation:
		return e.Message
	case KindShape:
		return "feature unavailable"
	default:
		return e.Error()
	}
}
