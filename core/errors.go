// ABOUTME: API error taxonomy: stable error codes, HTTP status mapping, and
// ABOUTME: localized message keys consumed by the web layer's error envelope.
package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code is a stable, machine-readable error code. The prefix before the first
// underscore names the owning module; the rest names the condition.
type Code string

const (
	CodeUnknown          Code = "COMMON_UNKNOWN_ERROR"
	CodeValidation       Code = "COMMON_VALIDATION_ERROR"
	CodeNotFound         Code = "COMMON_RESOURCE_NOT_FOUND"
	CodeAuthFailed       Code = "AUTH_INVALID_CREDENTIALS"
	CodeTokenInvalid     Code = "AUTH_TOKEN_EXPIRED"
	CodePermissionDenied Code = "AUTH_PERMISSION_DENIED"
	CodeDatabase         Code = "DB_UNKNOWN_ERROR"
	CodeUniqueViolation  Code = "DB_UNIQUE_VIOLATION"
	CodeForeignKey       Code = "DB_FOREIGN_KEY_VIOLATION"
	CodeBusiness         Code = "BIZ_GENERAL_ERROR"
)

// MessageKey derives the default i18n key for a code:
// AUTH_INVALID_CREDENTIALS -> "auth.errors.INVALID_CREDENTIALS".
func (c Code) MessageKey() string {
	s := string(c)
	idx := strings.IndexByte(s, '_')
	if idx < 0 {
		return "common.errors." + s
	}
	return strings.ToLower(s[:idx]) + ".errors." + s[idx+1:]
}

// APIError carries everything the web layer needs to answer a failed request:
// an HTTP status, a stable code, an i18n message key with substitution params,
// optional client-facing details, and the wrapped cause for logs.
type APIError struct {
	Status     int
	Code       Code
	MessageKey string
	Params     map[string]any
	Details    any
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

func (e *APIError) Unwrap() error { return e.Err }

// Key returns the i18n message key, falling back to the code's default.
func (e *APIError) Key() string {
	if e.MessageKey != "" {
		return e.MessageKey
	}
	return e.Code.MessageKey()
}

// NotFound builds the recoverable "no such resource" error. An empty
// messageKey uses the generic resource-not-found message.
func NotFound(messageKey string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: CodeNotFound, MessageKey: messageKey}
}

// Validation builds a 422 with per-field details.
func Validation(details map[string][]string) *APIError {
	return &APIError{Status: http.StatusUnprocessableEntity, Code: CodeValidation, Details: details}
}

// AuthFailed builds the generic bad-credentials 401. Deliberately carries no
// detail about which credential was wrong.
func AuthFailed() *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: CodeAuthFailed}
}

// TokenInvalid builds the expired-or-malformed-token 401.
func TokenInvalid() *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: CodeTokenInvalid}
}

// PermissionDenied builds the authenticated-but-not-allowed 403.
func PermissionDenied() *APIError {
	return &APIError{Status: http.StatusForbidden, Code: CodePermissionDenied}
}

// UniqueViolation builds the duplicate-record 409 with a constraint-specific
// message key.
func UniqueViolation(messageKey string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: CodeUniqueViolation, MessageKey: messageKey}
}

// ForeignKeyViolation builds the missing-parent-record 400.
func ForeignKeyViolation(messageKey string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: CodeForeignKey, MessageKey: messageKey}
}

// Database wraps an unexpected storage failure as a 500.
func Database(err error) *APIError {
	return &APIError{Status: http.StatusInternalServerError, Code: CodeDatabase, MessageKey: "db.errors.QUERY_FAILED", Err: err}
}

// Business builds a domain-rule violation as a 400 with a module-specific
// message key.
func Business(messageKey string, params map[string]any) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: CodeBusiness, MessageKey: messageKey, Params: params}
}

// AsAPIError extracts an *APIError from err, or wraps err as an unknown 500.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{Status: http.StatusInternalServerError, Code: CodeUnknown, Err: err}
}
