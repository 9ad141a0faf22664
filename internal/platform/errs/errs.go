package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes application errors for HTTP status mapping.
type Kind int

const (
	// Unknown represents an unclassified error.
	Unknown Kind = iota
	// InvalidInput indicates the request was malformed (HTTP 400).
	InvalidInput
	// Timeout indicates the target took too long to respond (HTTP 504).
	Timeout
	// ConnectionRefused indicates the target actively refused the connection (HTTP 502).
	ConnectionRefused
	// DNSFailure indicates the target host could not be resolved (HTTP 502).
	DNSFailure
	// NetworkError is any other transport failure (HTTP 502).
	NetworkError
	// BackendUnavailable indicates the browser backend cannot run. It is
	// never returned to callers; the engine falls back to simulation.
	BackendUnavailable
)

var kindNames = map[Kind]string{
	Unknown:            "unknown",
	InvalidInput:       "invalid_input",
	Timeout:            "timeout",
	ConnectionRefused:  "connection_error",
	DNSFailure:         "dns_failure",
	NetworkError:       "network_error",
	BackendUnavailable: "backend_unavailable",
}

// String returns the stable identifier used in JSON error bodies.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[Unknown]
}

// AppError carries a category, a user-facing message and the underlying cause.
type AppError struct {
	Kind           Kind
	UpstreamStatus int // HTTP status code returned by the target domain
	Message        string
	Cause          error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// KindOf reports the Kind of err, or Unknown when err is not an *AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unknown
}
