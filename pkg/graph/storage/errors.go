package storage

import (
	"fmt"
	"strings"
)

// ConnectionErrorKind classifies connection failures for the caller to
// pick an HTTP-equivalent status.
type ConnectionErrorKind string

const (
	ConnAuthFailed         ConnectionErrorKind = "auth_failed"
	ConnNetworkUnavailable ConnectionErrorKind = "network_unavailable"
	ConnUnknown            ConnectionErrorKind = "unknown"
)

// ConnectionError reports a failure to reach or authenticate with the
// graph store.
type ConnectionError struct {
	Kind ConnectionErrorKind
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("graph store connection failed (%s): %v", e.Kind, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError reports a failed query execution. Transient errors get one
// silent retry; permanent ones (auth, malformed query) never do.
type QueryError struct {
	Transient bool
	Err       error
}

func (e *QueryError) Error() string {
	if e.Transient {
		return fmt.Sprintf("transient query failure: %v", e.Err)
	}
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Neo4j status code prefixes used for classification.
const (
	codeSecurityPrefix  = "Neo.ClientError.Security"
	codeTransientPrefix = "Neo.TransientError"
	codeSyntaxError     = "Neo.ClientError.Statement.SyntaxError"
)

func classifyConnectionError(err error) *ConnectionError {
	msg := err.Error()
	switch {
	case strings.Contains(msg, codeSecurityPrefix),
		strings.Contains(msg, "authentication"),
		strings.Contains(msg, "unauthorized"):
		return &ConnectionError{Kind: ConnAuthFailed, Err: err}
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no route to host"),
		strings.Contains(msg, "i/o timeout"),
		strings.Contains(msg, "ConnectivityError"):
		return &ConnectionError{Kind: ConnNetworkUnavailable, Err: err}
	default:
		return &ConnectionError{Kind: ConnUnknown, Err: err}
	}
}

func classifyQueryError(err error) *QueryError {
	msg := err.Error()
	if strings.Contains(msg, codeSecurityPrefix) || strings.Contains(msg, codeSyntaxError) {
		return &QueryError{Transient: false, Err: err}
	}
	if strings.Contains(msg, codeTransientPrefix) ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "i/o timeout") {
		return &QueryError{Transient: true, Err: err}
	}
	return &QueryError{Transient: false, Err: err}
}
