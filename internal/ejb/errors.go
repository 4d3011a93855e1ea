package ejb

import (
	"errors"
	"fmt"
)

// Kind classifies container errors.
type Kind int

const (
	KindEJB Kind = iota
	KindNoSuchEJB
	KindNoSuchObject
	KindTransactionRequired
	KindTransactionRolledback
	KindAccessDenied
	KindComponentUnavailable
	KindConcurrentAccessTimeout
	KindRemote
)

var kindNames = map[Kind]string{
	KindEJB:                     "EJB",
	KindNoSuchEJB:               "NO_SUCH_EJB",
	KindNoSuchObject:            "NO_SUCH_OBJECT",
	KindTransactionRequired:     "TRANSACTION_REQUIRED",
	KindTransactionRolledback:   "TRANSACTION_ROLLEDBACK",
	KindAccessDenied:            "ACCESS_DENIED",
	KindComponentUnavailable:    "COMPONENT_UNAVAILABLE",
	KindConcurrentAccessTimeout: "CONCURRENT_ACCESS_TIMEOUT",
	KindRemote:                  "REMOTE",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseKind maps a kind name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return KindEJB, false
}

// Family is the error family a caller sees. Errors raised inside the
// container belong to FamilyContainer; the exception transformation stage
// rewrites them into the local or remote family of the calling view.
type Family int

const (
	FamilyAny Family = iota
	FamilyContainer
	FamilyLocal
	FamilyRemote
)

func (f Family) String() string {
	switch f {
	case FamilyContainer:
		return "container"
	case FamilyLocal:
		return "local"
	case FamilyRemote:
		return "remote"
	default:
		return "any"
	}
}

// Error is a container error.
type Error struct {
	Kind    Kind
	Family  Family
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s (%s): %s", e.Kind, e.Family, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error with the same kind. A target family of
// FamilyAny matches every family.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Family == FamilyAny || t.Family == e.Family
}

// Sentinels for errors.Is; they match any family.
var (
	ErrEJB                     = &Error{Kind: KindEJB}
	ErrNoSuchEJB               = &Error{Kind: KindNoSuchEJB}
	ErrNoSuchObject            = &Error{Kind: KindNoSuchObject}
	ErrTransactionRequired     = &Error{Kind: KindTransactionRequired}
	ErrTransactionRolledback   = &Error{Kind: KindTransactionRolledback}
	ErrAccessDenied            = &Error{Kind: KindAccessDenied}
	ErrComponentUnavailable    = &Error{Kind: KindComponentUnavailable}
	ErrConcurrentAccessTimeout = &Error{Kind: KindConcurrentAccessTimeout}
	ErrRemote                  = &Error{Kind: KindRemote}
)

// NewError returns a container-family error.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Family: FamilyContainer, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a container-family error wrapping cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Family: FamilyContainer, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// AsError extracts the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsContainerError reports whether err is an *Error raised by the container
// and not yet translated for a view.
func IsContainerError(err error) bool {
	e, ok := AsError(err)
	return ok && e.Family == FamilyContainer
}
