package ember

import (
	"fmt"
	"strings"
)

// DiscoveryError reports a failed source scan. Always fatal; bootstrap aborts
// before classification.
type DiscoveryError struct {
	Dir string
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery failed for %s: %v", e.Dir, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// TypeSafetyError aggregates every issue found by the type-safety gate into a
// single error. Whether it is fatal depends on the configured severity.
type TypeSafetyError struct {
	Issues []string
}

func (e *TypeSafetyError) Error() string {
	return fmt.Sprintf("type check found %d issue(s):\n%s", len(e.Issues), strings.Join(e.Issues, "\n"))
}

// RegistrationError reports an invalid or rejected entity registration.
type RegistrationError struct {
	Entity string
	Reason string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("cannot register %s: %s", e.Entity, e.Reason)
}

// ValidationError reports a provider cross-check failure after injection.
type ValidationError struct {
	Provider string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("provider %s failed validation: %v", e.Provider, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// InjectionError reports an unresolved or unassignable dependency.
type InjectionError struct {
	Target string
	Field  string
	Err    error
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("failed to inject %s.%s: %v", e.Target, e.Field, e.Err)
}

func (e *InjectionError) Unwrap() error {
	return e.Err
}

// HTTPError represents an HTTP error with status code and message
type HTTPError struct {
	Code     int                    `json:"code"`
	Message  string                 `json:"message"`
	Internal error                  `json:"-"`
	Context  map[string]interface{} `json:"context,omitempty"`
}

func (e *HTTPError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}

// ErrorHandler renders handler errors onto the response
type ErrorHandler struct {
	debug bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(debug bool) *ErrorHandler {
	return &ErrorHandler{debug: debug}
}

// Handle writes an error response for the given context
func (eh *ErrorHandler) Handle(c Context, err error) {
	if httpErr, ok := err.(*HTTPError); ok {
		if eh.debug && httpErr.Internal != nil {
			c.JSON(httpErr.Code, map[string]interface{}{
				"error":  httpErr.Message,
				"detail": httpErr.Internal.Error(),
			})
			return
		}
		c.JSON(httpErr.Code, map[string]interface{}{"error": httpErr.Message})
		return
	}

	Error("Unhandled request error", map[string]interface{}{
		"error": err.Error(),
		"path":  c.Path(),
	})

	if eh.debug {
		c.JSON(500, map[string]interface{}{"error": err.Error()})
		return
	}
	c.JSON(500, map[string]interface{}{"error": "Internal Server Error"})
}
