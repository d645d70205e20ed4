package agent

import (
	"errors"
	"fmt"

	"github.com/privcal/calagent/internal/llm"
	"github.com/privcal/calagent/internal/proxy"
	"github.com/privcal/calagent/internal/schedule"
)

// formatError renders a failure as the human-readable string carried in
// response envelopes, dispatching on the error taxonomy.
func formatError(err error) string {
	var authErr *proxy.AuthError
	if errors.As(err, &authErr) {
		return fmt.Sprintf("Authentication error: %s", authErr.Message)
	}

	var forbiddenErr *proxy.ForbiddenError
	if errors.As(err, &forbiddenErr) {
		// Confirmation prompts reach the orchestrator verbatim so it can
		// re-issue the request with explicit confirmation.
		if forbiddenErr.ConfirmationRequired {
			return forbiddenErr.Message
		}
		return fmt.Sprintf("Operation blocked: %s", forbiddenErr.Message)
	}

	var notFoundErr *proxy.NotFoundError
	if errors.As(err, &notFoundErr) {
		return fmt.Sprintf("Not found: %s", notFoundErr.Message)
	}

	var rateLimitErr *proxy.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return fmt.Sprintf("Rate limited: %s", rateLimitErr.Error())
	}

	var proxyErr *proxy.Error
	if errors.As(err, &proxyErr) {
		return fmt.Sprintf("Proxy error: %s", proxyErr.Error())
	}

	var genErr *llm.GenerationError
	if errors.As(err, &genErr) {
		return fmt.Sprintf("Generation error: %s", genErr.Message)
	}

	var validationErr *schedule.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}

	return err.Error()
}
