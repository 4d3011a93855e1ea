package management

import (
	"errors"
	"fmt"
)

// Failure codes recorded in an operation's failure description.
const (
	CodeUnknownOperation  = "KRNCTL0031"
	CodeServiceNotStarted = "KRNCTL0098"
	CodeInterrupted       = "KRNCTL0099"
	CodeReadFailed        = "KRNCTL0158"
	CodeUnknownAttribute  = "KRNCTL0201"
	CodeUnknownResource   = "KRNCTL0216"
	CodeInvalidParameter  = "KRNCTL0097"
)

// Failure is a coded management failure.
type Failure struct {
	Code    string
	Message string
	Cause   error
}

// Error renders "CODE: message".
func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// Unwrap returns the underlying cause.
func (f *Failure) Unwrap() error {
	return f.Cause
}

// Is matches any *Failure with the same code.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return f.Code == t.Code
}

// Sentinels for errors.Is.
var (
	ErrUnknownOperation  = &Failure{Code: CodeUnknownOperation, Message: "unknown operation"}
	ErrServiceNotStarted = &Failure{Code: CodeServiceNotStarted, Message: "service not started"}
	ErrInterrupted       = &Failure{Code: CodeInterrupted, Message: "interrupted"}
	ErrReadFailed        = &Failure{Code: CodeReadFailed, Message: "read failed"}
	ErrUnknownAttribute  = &Failure{Code: CodeUnknownAttribute, Message: "unknown attribute"}
	ErrUnknownResource   = &Failure{Code: CodeUnknownResource, Message: "unknown resource"}
	ErrInvalidParameter  = &Failure{Code: CodeInvalidParameter, Message: "invalid parameter"}
)

// UnknownOperation reports an operation name the resource does not support.
func UnknownOperation(name string) *Failure {
	return &Failure{Code: CodeUnknownOperation, Message: fmt.Sprintf("unknown operation '%s'", name)}
}

// UnknownAttribute reports an attribute name that is not defined.
func UnknownAttribute(name string) *Failure {
	return &Failure{Code: CodeUnknownAttribute, Message: fmt.Sprintf("unknown attribute '%s'", name)}
}

// UnknownResource reports an address with no registered resource.
func UnknownResource(addr Address) *Failure {
	return &Failure{Code: CodeUnknownResource, Message: fmt.Sprintf("resource %s not found", addr)}
}

// ServiceNotStarted reports that the service backing a runtime attribute
// could not be brought up.
func ServiceNotStarted(service string, cause error) *Failure {
	return &Failure{Code: CodeServiceNotStarted, Message: fmt.Sprintf("service '%s' is not started", service), Cause: cause}
}

// Interrupted reports a read abandoned because its context ended.
// The cause is kept so errors.Is(err, context.Canceled) still holds.
func Interrupted(cause error) *Failure {
	return &Failure{Code: CodeInterrupted, Message: "operation interrupted", Cause: cause}
}

// ReadFailed reports an attribute read that failed for another reason.
func ReadFailed(attr string, cause error) *Failure {
	msg := fmt.Sprintf("failed to read '%s'", attr)
	if cause != nil {
		msg += ": " + cause.Error()
	}
	return &Failure{Code: CodeReadFailed, Message: msg, Cause: cause}
}

// InvalidParameter reports a missing or malformed operation parameter.
func InvalidParameter(name, reason string) *Failure {
	return &Failure{Code: CodeInvalidParameter, Message: fmt.Sprintf("parameter '%s' %s", name, reason)}
}

// AsFailure converts err into a *Failure. Non-failure errors become
// read failures of attr.
func AsFailure(attr string, err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return ReadFailed(attr, err)
}
