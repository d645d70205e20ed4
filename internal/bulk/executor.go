package bulk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/privcal/calagent/internal/logging"
	"github.com/privcal/calagent/internal/proxy"
)

// Kind identifies the mutation a bulk operation performs.
type Kind string

const (
	KindUpdate Kind = "update"
	KindPatch  Kind = "patch"
	KindDelete Kind = "delete"
)

// Operation is one mutation within a batch. Operations are independent:
// none may depend on the outcome of an earlier one in the same batch.
type Operation struct {
	Kind        Kind           `json:"action"`
	CalendarID  string         `json:"calendar_id"`
	EventID     string         `json:"event_id"`
	Body        map[string]any `json:"body,omitempty"`
	SendUpdates string         `json:"send_updates,omitempty"`
}

// Result reports the outcome of one operation. The executor emits
// exactly one result per input operation, in input order.
type Result struct {
	EventID string `json:"event_id"`
	Kind    Kind   `json:"action"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Counts derives the aggregate tallies from a result list. Deriving
// them guarantees successCount+errorCount always equals the input
// length.
func Counts(results []Result) (successCount, errorCount int) {
	for _, r := range results {
		if r.Success {
			successCount++
		} else {
			errorCount++
		}
	}
	return successCount, errorCount
}

// Mutator is the slice of the proxy client the executor needs.
type Mutator interface {
	UpdateEvent(ctx context.Context, calendarID, eventID string, body map[string]any, opts proxy.WriteOptions) (*calendar.Event, error)
	PatchEvent(ctx context.Context, calendarID, eventID string, body map[string]any, opts proxy.WriteOptions) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string, opts proxy.WriteOptions) error
}

// Executor runs batches of mutations against the proxy, isolating
// per-item failures. A failing operation is captured in its own result
// and the batch carries on; the executor never short-circuits and never
// confirms a blocked destructive action on its own.
type Executor struct {
	client      Mutator
	concurrency int
	logger      *slog.Logger
}

// NewExecutor creates an executor. concurrency bounds how many
// operations are in flight at once; values below 2 mean strictly
// sequential execution.
func NewExecutor(client Mutator, concurrency int, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Executor{
		client:      client,
		concurrency: concurrency,
		logger:      logging.WithComponent(logger, "bulk"),
	}
}

// Execute runs every operation and returns one result per operation in
// the input order, regardless of completion order.
//
// Cancelling ctx stops new operations from being dispatched; operations
// already in flight finish and report their own outcomes. Results for
// never-dispatched operations record the cancellation as their error.
func (e *Executor) Execute(ctx context.Context, ops []Operation) []Result {
	results := make([]Result, len(ops))

	if e.concurrency < 2 {
		for i, op := range ops {
			results[i] = e.run(ctx, op)
		}
		return results
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.concurrency)

	for i, op := range ops {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, op Operation) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = e.run(ctx, op)
		}(i, op)
	}

	wg.Wait()
	return results
}

// run dispatches a single operation to the proxy by kind.
func (e *Executor) run(ctx context.Context, op Operation) Result {
	result := Result{EventID: op.EventID, Kind: op.Kind}

	if err := ctx.Err(); err != nil {
		result.Error = fmt.Sprintf("batch canceled before dispatch: %v", err)
		return result
	}
	if err := validate(op); err != nil {
		result.Error = err.Error()
		return result
	}

	opts := proxy.WriteOptions{SendUpdates: op.SendUpdates}

	var err error
	switch op.Kind {
	case KindUpdate:
		_, err = e.client.UpdateEvent(ctx, op.CalendarID, op.EventID, op.Body, opts)
	case KindPatch:
		_, err = e.client.PatchEvent(ctx, op.CalendarID, op.EventID, op.Body, opts)
	case KindDelete:
		err = e.client.DeleteEvent(ctx, op.CalendarID, op.EventID, opts)
	}

	if err != nil {
		// A confirmation-required refusal reaches the caller verbatim so
		// the orchestrator can re-issue with explicit confirmation.
		result.Error = err.Error()
		e.logger.Debug("bulk operation failed",
			logging.Operation(string(op.Kind)),
			logging.Calendar(op.CalendarID),
			logging.EventID(op.EventID),
			logging.Err(err))
		return result
	}

	result.Success = true
	return result
}

// validate rejects operations the proxy could never apply.
func validate(op Operation) error {
	if op.CalendarID == "" {
		return fmt.Errorf("calendar_id is required")
	}
	if op.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	switch op.Kind {
	case KindUpdate, KindPatch:
		if len(op.Body) == 0 {
			return fmt.Errorf("%s requires a non-empty body", op.Kind)
		}
	case KindDelete:
	default:
		return fmt.Errorf("unknown action %q, must be update, patch or delete", op.Kind)
	}
	return nil
}
