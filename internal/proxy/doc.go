// Package proxy implements the transport layer for the calendar API
// proxy, the authenticated intermediary in front of the calendar
// backend.
//
// Every failed call carries exactly one error from a small taxonomy:
// AuthError (401), ForbiddenError (403, including the
// confirmation-required sub-case for blocked destructive actions),
// NotFoundError (404), RateLimitError (429) and Error for everything
// else, with transport failures tagged as connectivity errors. Callers
// dispatch on the error kind with errors.As.
//
// The client performs no retries. Retry policy, if any, belongs to the
// caller and must never apply to destructive operations awaiting
// confirmation.
package proxy
