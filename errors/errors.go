// Package errors classifies failures into transient, invalid, and fatal
// classes and provides the wrapping helpers used across the module.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorClass drives how a caller reacts to a failure: retry it, reject
// the input, or stop processing.
type ErrorClass int

const (
	// ErrorTransient marks temporary failures worth retrying.
	ErrorTransient ErrorClass = iota
	// ErrorInvalid marks bad input or configuration; retrying cannot help.
	ErrorInvalid
	// ErrorFatal marks unrecoverable failures that should stop processing.
	ErrorFatal
)

func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Sentinel errors for common conditions across the module.
var (
	// Component lifecycle
	ErrAlreadyStarted = errors.New("component already started")
	ErrNotStarted     = errors.New("component not started")
	ErrShuttingDown   = errors.New("component is shutting down")

	// Connectivity
	ErrNoConnection       = errors.New("no connection available")
	ErrConnectionLost     = errors.New("connection lost")
	ErrConnectionTimeout  = errors.New("connection timeout")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Triple and payload handling
	ErrInvalidData   = errors.New("invalid data format")
	ErrInvalidTriple = errors.New("invalid triple")
	ErrDataCorrupted = errors.New("data corrupted")
	ErrParsingFailed = errors.New("parsing failed")

	// Configuration
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")

	// Reasoning
	ErrRuleNotFound   = errors.New("rule not found")
	ErrRuleFailed     = errors.New("rule application failed")
	ErrUnknownProfile = errors.New("unknown rule profile")

	// Resources
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrRateLimited       = errors.New("rate limited")
)

// sentinelClasses assigns a class to every sentinel that implies one.
// Sentinels absent here fall through to the message heuristics.
var sentinelClasses = map[error]ErrorClass{
	ErrConnectionLost:        ErrorTransient,
	ErrConnectionTimeout:     ErrorTransient,
	ErrStorageUnavailable:    ErrorTransient,
	ErrRateLimited:           ErrorTransient,
	context.DeadlineExceeded: ErrorTransient,
	context.Canceled:         ErrorTransient,

	ErrInvalidData:    ErrorInvalid,
	ErrInvalidTriple:  ErrorInvalid,
	ErrParsingFailed:  ErrorInvalid,
	ErrRuleNotFound:   ErrorInvalid,
	ErrUnknownProfile: ErrorInvalid,

	ErrInvalidConfig:     ErrorFatal,
	ErrMissingConfig:     ErrorFatal,
	ErrDataCorrupted:     ErrorFatal,
	ErrResourceExhausted: ErrorFatal,
}

// Message heuristics for errors that arrive unclassified from third-party
// code. Fatal patterns are checked before transient ones.
var (
	fatalPatterns = []string{
		"fatal", "panic", "corrupted", "invalid config", "missing config",
		"out of memory", "disk full",
	}
	transientPatterns = []string{
		"timeout", "connection", "network", "temporary", "unavailable",
		"busy", "retry",
	}
)

// ClassifiedError attaches a class and origin to a wrapped error.
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// classOf resolves the class of err, reporting whether the resolution was
// explicit (classified wrapper or known sentinel) rather than heuristic.
func classOf(err error) (ErrorClass, bool) {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class, true
	}

	for sentinel, class := range sentinelClasses {
		if errors.Is(err, sentinel) {
			return class, true
		}
	}

	message := strings.ToLower(err.Error())
	for _, pattern := range fatalPatterns {
		if strings.Contains(message, pattern) {
			return ErrorFatal, false
		}
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(message, pattern) {
			return ErrorTransient, false
		}
	}

	// Unknown errors default to transient so callers err toward retrying.
	return ErrorTransient, false
}

// Classify returns the class of err. nil classifies as transient.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransient
	}
	class, _ := classOf(err)
	return class
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	class, _ := classOf(err)
	return class == ErrorTransient
}

// IsInvalid reports whether err stems from bad input. Unlike the other
// predicates this never guesses from message text: only a classified
// wrapper or an invalid-class sentinel qualifies.
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}
	class, explicit := classOf(err)
	return explicit && class == ErrorInvalid
}

// IsFatal reports whether err is unrecoverable and processing should stop.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	class, _ := classOf(err)
	return class == ErrorFatal
}

// Wrap adds "component.method: action failed" context to err. A nil err
// stays nil.
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

func wrapClassified(class ErrorClass, err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return &ClassifiedError{
		Class:     class,
		Err:       wrapped,
		Message:   wrapped.Error(),
		Component: component,
		Operation: method,
	}
}

// WrapTransient wraps err with context and marks it retryable.
func WrapTransient(err error, component, method, action string) error {
	return wrapClassified(ErrorTransient, err, component, method, action)
}

// WrapInvalid wraps err with context and marks it as a caller mistake.
func WrapInvalid(err error, component, method, action string) error {
	return wrapClassified(ErrorInvalid, err, component, method, action)
}

// WrapFatal wraps err with context and marks it unrecoverable.
func WrapFatal(err error, component, method, action string) error {
	return wrapClassified(ErrorFatal, err, component, method, action)
}
