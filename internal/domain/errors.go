package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Credential storage errors
	ErrMsgCredentialNotFound = "no credential stored"
	ErrMsgDecryptionFailed   = "credential decryption failed"
	ErrMsgStorage            = "credential storage failed"

	// Authorization flow errors
	ErrMsgInvalidState = "invalid authorization state"

	// Token refresh errors
	ErrMsgRefreshFailed         = "token refresh rejected"
	ErrMsgAuthenticationExpired = "authentication expired"

	// Ingestion errors
	ErrMsgRunnerBusy = "ingestion cycle already running"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// ErrCredentialNotFound means no credential was ever stored.
	// Recoverable by running the authorization flow.
	ErrCredentialNotFound = errors.New(ErrMsgCredentialNotFound)

	// ErrDecryptionFailed means the passphrase is wrong or the record is
	// corrupted. Recoverable only by reset + re-authorization.
	ErrDecryptionFailed = errors.New(ErrMsgDecryptionFailed)

	// ErrStorage means the record could not be written (directory missing,
	// not writable, disk full).
	ErrStorage = errors.New(ErrMsgStorage)

	// ErrInvalidState means the authorization state token was forged,
	// malformed, or expired. Recoverable by restarting the flow.
	ErrInvalidState = errors.New(ErrMsgInvalidState)

	// ErrRefreshFailed means the remote rejected the refresh token.
	// Terminal for automated retry - a human must re-authorize.
	ErrRefreshFailed = errors.New(ErrMsgRefreshFailed)

	// ErrAuthenticationExpired means a request failed 401 even after a
	// refresh. Same terminal semantics as ErrRefreshFailed.
	ErrAuthenticationExpired = errors.New(ErrMsgAuthenticationExpired)

	// ErrRunnerBusy is returned when a trigger arrives while a cycle holds
	// the single-flight lock.
	ErrRunnerBusy = errors.New(ErrMsgRunnerBusy)

	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)

// RateLimitedError is returned when the platform throttled us and the local
// retry budget is exhausted. ResumeAt tells the caller when requests may be
// attempted again, so it can persist a backoff window instead of busy-retrying.
type RateLimitedError struct {
	ResumeAt time.Time
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited until %s", e.ResumeAt.Format(time.RFC3339))
}

// Is allows errors.Is() to work with RateLimitedError
func (e RateLimitedError) Is(target error) bool {
	_, ok := target.(RateLimitedError)
	return ok
}

// RemoteRequestError is any non-retried HTTP failure from the platform.
// Carries enough context to diagnose without logging secret material.
type RemoteRequestError struct {
	StatusCode int
	Message    string
}

func (e RemoteRequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote request failed: status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote request failed: status %d: %s", e.StatusCode, e.Message)
}

// Is allows errors.Is() to work with RemoteRequestError
func (e RemoteRequestError) Is(target error) bool {
	_, ok := target.(RemoteRequestError)
	return ok
}
