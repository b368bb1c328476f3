package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors classifying request failures. Callers branch with
// errors.Is; the concrete error carries endpoint and message detail.
var (
	// ErrNotAuthenticated indicates a missing or rejected credential.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionExpired indicates the refresh path was exhausted and local
	// session state has been cleared. The user must sign in again.
	ErrSessionExpired = errors.New("session expired, sign in again")
	// ErrForbidden indicates the account may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited indicates the backend rejected the request for quota.
	ErrRateLimited = errors.New("rate limited")
	// ErrServer indicates a backend-side (5xx) failure.
	ErrServer = errors.New("server error")
	// ErrInvalidResponse indicates a response body that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrEncoding indicates a request body that could not be serialized.
	ErrEncoding = errors.New("encoding failure")
)

// StatusError is a non-2xx response from the backend. It unwraps to the
// sentinel matching its status class so callers can branch without
// inspecting codes.
type StatusError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s returned %d", e.Endpoint, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return ErrNotAuthenticated
	case e.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.StatusCode >= 500:
		return ErrServer
	default:
		return nil
	}
}

// ConnectivityError is a transport-level failure: timeout, refused
// connection, DNS failure. The replay layer routes these to the offline
// queue instead of surfacing them.
type ConnectivityError struct {
	Endpoint string
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s unreachable: %v", e.Endpoint, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// IsConnectivity reports whether err represents a transport failure that
// should be queued for later replay.
func IsConnectivity(err error) bool {
	var connErr *ConnectivityError
	return errors.As(err, &connErr)
}
