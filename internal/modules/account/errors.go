package account

import (
	"fmt"
	"net/http"
)

// DomainError is a structured, self-describing domain error used across the
// account module. It carries RFC 7807-friendly metadata so a shared formatter
// can convert any domain error into a Problem response without enumerating
// error types.
type DomainError struct {
	// Code is a stable, machine-readable business code (e.g., "ErrInvalidCode").
	Code string

	// HTTPStatus is the HTTP status suggested for this error.
	HTTPStatus int

	// Title is a short human summary; if empty the formatter defaults to
	// StatusText(HTTPStatus).
	Title string

	// Message is a human-readable message primarily for logs. When Detail is
	// empty, this is used as the public detail.
	Message string

	// Detail is a user-friendly, safe explanation for clients.
	Detail string

	// TypeURI is an RFC 7807 type URI, e.g. "urn:problem:account/err-suspended".
	TypeURI string

	// Context is an optional extension payload for clients (e.g., reason codes,
	// remaining attempt counts) so the UI can branch without parsing prose.
	Context any

	cause error
}

func (e *DomainError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Message
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap provides compatibility for Go's errors.Is and errors.As functions.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is enables errors.Is comparisons based on the stable Code rather than pointer
// identity, so copies created via WithCause match their sentinel counterpart.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the DomainError wrapping the provided cause.
func (e *DomainError) WithCause(err error) *DomainError {
	if err == nil {
		return e
	}
	cp := *e
	cp.cause = err
	return &cp
}

// WithDetail sets a public-friendly detail message for clients.
func (e *DomainError) WithDetail(detail string) *DomainError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithContext attaches an extension payload for clients.
func (e *DomainError) WithContext(ctx any) *DomainError {
	cp := *e
	cp.Context = ctx
	return &cp
}

// --- RFC 7807 mapping accessors (satisfy httpx.DomainProblem) ---

func (e *DomainError) ProblemCode() string { return e.Code }
func (e *DomainError) ProblemStatus() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}
func (e *DomainError) ProblemTitle() string { return e.Title }
func (e *DomainError) ProblemDetail() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}
func (e *DomainError) ProblemTypeURI() string { return e.TypeURI }
func (e *DomainError) ProblemContext() any    { return e.Context }

// --- Pre-defined Domain Errors ---

var (
	// Resource & identity
	ErrNotFound = &DomainError{
		Code:       "ErrNotFound",
		HTTPStatus: http.StatusNotFound,
		Title:      "Not Found",
		Message:    "account not found",
		TypeURI:    "urn:problem:account/err-not-found",
	}

	ErrUnauthenticated = &DomainError{
		Code:       "ErrUnauthenticated",
		HTTPStatus: http.StatusUnauthorized,
		Title:      "Unauthorized",
		Message:    "authentication required",
		TypeURI:    "urn:problem:account/err-unauthenticated",
		Context:    map[string]any{"reason": "unauthenticated"},
	}

	ErrInvalidCredentials = &DomainError{
		Code:       "ErrInvalidCredentials",
		HTTPStatus: http.StatusUnauthorized,
		Title:      "Unauthorized",
		Message:    "invalid email or password",
		TypeURI:    "urn:problem:account/err-invalid-credentials",
	}

	// Account-state gating. Suspended always takes precedence over inactive.
	ErrSuspended = &DomainError{
		Code:       "ErrSuspended",
		HTTPStatus: http.StatusForbidden,
		Title:      "Forbidden",
		Message:    "account is suspended",
		TypeURI:    "urn:problem:account/err-suspended",
		Context:    map[string]any{"reason": "suspended", "suspended": true},
	}

	ErrInactive = &DomainError{
		Code:       "ErrInactive",
		HTTPStatus: http.StatusForbidden,
		Title:      "Forbidden",
		Message:    "account is inactive",
		TypeURI:    "urn:problem:account/err-inactive",
		Context:    map[string]any{"reason": "inactive", "active": false, "needs_reactivation": true},
	}

	ErrPermissionDenied = &DomainError{
		Code:       "ErrPermissionDenied",
		HTTPStatus: http.StatusForbidden,
		Title:      "Forbidden",
		Message:    "missing required permission",
		TypeURI:    "urn:problem:account/err-permission-denied",
		Context:    map[string]any{"reason": "missing_permission"},
	}

	// Verification codes
	ErrCodeNotFound = &DomainError{
		Code:       "ErrCodeNotFound",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Bad Request",
		Message:    "no active verification code for this account",
		TypeURI:    "urn:problem:account/err-code-not-found",
	}

	ErrCodeExpired = &DomainError{
		Code:       "ErrCodeExpired",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Bad Request",
		Message:    "verification code has expired",
		TypeURI:    "urn:problem:account/err-code-expired",
	}

	ErrInvalidCode = &DomainError{
		Code:       "ErrInvalidCode",
		HTTPStatus: http.StatusUnprocessableEntity,
		Title:      "Unprocessable Entity",
		Message:    "verification code does not match",
		TypeURI:    "urn:problem:account/err-invalid-code",
	}

	ErrTooManyAttempts = &DomainError{
		Code:       "ErrTooManyAttempts",
		HTTPStatus: http.StatusTooManyRequests,
		Title:      "Too Many Requests",
		Message:    "too many invalid attempts for this code",
		TypeURI:    "urn:problem:account/err-too-many-attempts",
	}

	ErrRateLimited = &DomainError{
		Code:       "ErrRateLimited",
		HTTPStatus: http.StatusTooManyRequests,
		Title:      "Too Many Requests",
		Message:    "daily code issuance limit reached",
		TypeURI:    "urn:problem:account/err-rate-limited",
	}

	// State machine
	ErrAlreadyActive = &DomainError{
		Code:       "ErrAlreadyActive",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Bad Request",
		Message:    "account is already active",
		TypeURI:    "urn:problem:account/err-already-active",
	}

	ErrAlreadyInactive = &DomainError{
		Code:       "ErrAlreadyInactive",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Bad Request",
		Message:    "account is already inactive",
		TypeURI:    "urn:problem:account/err-already-inactive",
	}

	ErrConfirmationMismatch = &DomainError{
		Code:       "ErrConfirmationMismatch",
		HTTPStatus: http.StatusUnprocessableEntity,
		Title:      "Unprocessable Entity",
		Message:    "confirmation phrase does not match",
		TypeURI:    "urn:problem:account/err-confirmation-mismatch",
	}

	ErrPasswordAlreadySet = &DomainError{
		Code:       "ErrPasswordAlreadySet",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Bad Request",
		Message:    "an initial password has already been set for this account",
		TypeURI:    "urn:problem:account/err-password-already-set",
	}

	// Registration
	ErrEmailExists = &DomainError{
		Code:       "ErrEmailExists",
		HTTPStatus: http.StatusUnprocessableEntity,
		Title:      "Unprocessable Entity",
		Message:    "an account with this email already exists",
		TypeURI:    "urn:problem:account/err-email-exists",
	}

	// OAuth
	ErrOAuthStateInvalid = &DomainError{
		Code:       "ErrOAuthStateInvalid",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Bad Request",
		Message:    "invalid oauth state",
		TypeURI:    "urn:problem:account/err-oauth-state-invalid",
	}

	ErrOAuthExchangeFailed = &DomainError{
		Code:       "ErrOAuthExchangeFailed",
		HTTPStatus: http.StatusUnauthorized,
		Title:      "Unauthorized",
		Message:    "oauth authentication failed",
		TypeURI:    "urn:problem:account/err-oauth-exchange-failed",
	}

	ErrOAuthEmailMissing = &DomainError{
		Code:       "ErrOAuthEmailMissing",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Bad Request",
		Message:    "email not provided by oauth provider",
		TypeURI:    "urn:problem:account/err-oauth-email-missing",
	}

	// Generic internal
	ErrInternal = &DomainError{
		Code:       "ErrInternal",
		HTTPStatus: http.StatusInternalServerError,
		Title:      "Internal Server Error",
		Message:    "internal server error",
		TypeURI:    "urn:problem:account/err-internal",
	}
)
