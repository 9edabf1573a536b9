// Package failure holds the error kinds shared by every stage of a launch.
package failure

import (
	"errors"
	"fmt"
)

// Launcher-originated kinds. Match them with errors.Is.
var (
	ErrMainClassNotSpecified   = errors.New("main class not specified")
	ErrInvalidDirectory        = errors.New("invalid directory")
	ErrScan                    = errors.New("scan failure")
	ErrPathConversion          = errors.New("path conversion failure")
	ErrMainClassNotFound       = errors.New("main class not found")
	ErrMainMethodNotFound      = errors.New("main method not found")
	ErrMainMethodNotAccessible = errors.New("main method not accessible")
	ErrMainMethodNotStatic     = errors.New("main method not static")
	ErrMainMethodNotVoid       = errors.New("main method not void")
	ErrInvocationSetup         = errors.New("invocation setup failure")
)

// Error is a launcher failure. Message is the one-line diagnostic shown to
// the user; Name is the offending directory, module or symbol.
type Error struct {
	Kind    error
	Name    string
	Message string
	Err     error
}

// New builds an Error of the given kind.
func New(kind error, name, message string) *Error {
	return &Error{Kind: kind, Name: name, Message: message}
}

// Wrap builds an Error of the given kind around cause.
func Wrap(kind error, name, message string, cause error) *Error {
	return &Error{Kind: kind, Name: name, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Name != "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Name)
	}
	return fmt.Sprint(e.Kind)
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Application carries a panic raised by the launched application. It is
// never reported as a launcher failure; the translator re-raises Value.
type Application struct {
	Value any
	Stack []byte
}

func (a *Application) Error() string {
	return fmt.Sprintf("application panic: %v", a.Value)
}

// AsApplication reports whether err carries an application failure.
func AsApplication(err error) (*Application, bool) {
	var app *Application
	if errors.As(err, &app) {
		return app, true
	}
	return nil, false
}
