package proxy

import (
	"encoding/json"
	"fmt"
	"time"
)

// AuthError indicates the proxy rejected the bearer credential (HTTP 401).
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("proxy authentication failed: %s", e.Message)
}

// ForbiddenError indicates the proxy refused the operation (HTTP 403).
//
// The proxy blocks destructive actions pending explicit confirmation and
// signals that with a structured body naming the action and the target's
// display name. When that shape is detected, ConfirmationRequired is set
// and Message carries a pre-formatted prompt suitable for showing to a
// user verbatim. Any other 403 carries the proxy's raw reason.
type ForbiddenError struct {
	Message              string
	ConfirmationRequired bool

	// Action and Target are populated only for the confirmation case.
	Action string
	Target string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// NotFoundError indicates the requested calendar or event does not exist
// (HTTP 404).
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Message)
}

// RateLimitError indicates the proxy is throttling the caller (HTTP 429).
// RetryAfter is zero when the proxy gave no hint.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: %s (retry after %s)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limited: %s", e.Message)
}

// Error is the catch-all for proxy failures that do not fit a more
// specific kind: unexpected upstream statuses and transport-level
// failures such as connection refusal or timeout.
type Error struct {
	// StatusCode is the upstream HTTP status, zero for transport failures.
	StatusCode int

	// Body holds the upstream response body, truncated to bound error size.
	Body string

	// Connectivity is true when the request never produced an upstream
	// response (connection refused, DNS failure, timeout).
	Connectivity bool

	Err error
}

func (e *Error) Error() string {
	if e.Connectivity {
		return fmt.Sprintf("proxy unreachable: %v", e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("proxy error (%d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("proxy error (%d)", e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// maxErrorBody bounds how much of an upstream error body is retained.
const maxErrorBody = 512

// truncateBody trims an upstream body for inclusion in errors and logs.
func truncateBody(body []byte) string {
	if len(body) <= maxErrorBody {
		return string(body)
	}
	return string(body[:maxErrorBody]) + "...(truncated)"
}

// errorBody is the envelope the proxy uses for error responses. The
// detail field is either a plain string or, for blocked destructive
// actions, the structured confirmation shape.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

// confirmationDetail is the proxy's confirmation-required shape. This is
// a versioned contract with the proxy: only bodies matching it imply
// confirmation semantics, never the 403 status alone.
type confirmationDetail struct {
	ConfirmationRequired bool   `json:"confirmation_required"`
	Action               string `json:"action"`
	Target               string `json:"target"`
}

// parseErrorMessage extracts a human-readable message from an error
// body, falling back to the provided default.
func parseErrorMessage(body []byte, fallback string) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return fallback
	}
	if len(eb.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(eb.Detail, &detail); err == nil && detail != "" {
			return detail
		}
	}
	if eb.Message != "" {
		return eb.Message
	}
	return fallback
}

// parseForbidden builds the ForbiddenError for a 403 body, detecting the
// confirmation shape.
func parseForbidden(body []byte) *ForbiddenError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && len(eb.Detail) > 0 {
		var cd confirmationDetail
		if err := json.Unmarshal(eb.Detail, &cd); err == nil && cd.ConfirmationRequired {
			return &ForbiddenError{
				ConfirmationRequired: true,
				Action:               cd.Action,
				Target:               cd.Target,
				Message: fmt.Sprintf(
					"This action requires confirmation: %s %q. Re-issue the request with explicit confirmation to proceed.",
					cd.Action, cd.Target),
			}
		}
	}
	return &ForbiddenError{
		Message: parseErrorMessage(body, "Operation forbidden or requires confirmation"),
	}
}
