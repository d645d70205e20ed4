package bulk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"

	"github.com/privcal/calagent/internal/proxy"
)

// fakeMutator records calls and fails the event ids it is told to fail.
type fakeMutator struct {
	mu       sync.Mutex
	calls    []string
	failWith map[string]error
}

func (f *fakeMutator) record(kind, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, kind+":"+eventID)
	if err, ok := f.failWith[eventID]; ok {
		return err
	}
	return nil
}

func (f *fakeMutator) UpdateEvent(ctx context.Context, calendarID, eventID string, body map[string]any, opts proxy.WriteOptions) (*calendar.Event, error) {
	if err := f.record("update", eventID); err != nil {
		return nil, err
	}
	return &calendar.Event{Id: eventID}, nil
}

func (f *fakeMutator) PatchEvent(ctx context.Context, calendarID, eventID string, body map[string]any, opts proxy.WriteOptions) (*calendar.Event, error) {
	if err := f.record("patch", eventID); err != nil {
		return nil, err
	}
	return &calendar.Event{Id: eventID}, nil
}

func (f *fakeMutator) DeleteEvent(ctx context.Context, calendarID, eventID string, opts proxy.WriteOptions) error {
	return f.record("delete", eventID)
}

func op(kind Kind, eventID string) Operation {
	o := Operation{Kind: kind, CalendarID: "primary", EventID: eventID}
	if kind != KindDelete {
		o.Body = map[string]any{"summary": "x"}
	}
	return o
}

func TestExecuteAllSucceed(t *testing.T) {
	mutator := &fakeMutator{}
	executor := NewExecutor(mutator, 1, nil)

	ops := []Operation{
		op(KindUpdate, "e1"),
		op(KindPatch, "e2"),
		op(KindDelete, "e3"),
	}

	results := executor.Execute(context.Background(), ops)

	require.Len(t, results, 3)
	for i, r := range results {
		assert.True(t, r.Success, "result %d", i)
		assert.Empty(t, r.Error)
		assert.Equal(t, ops[i].EventID, r.EventID)
		assert.Equal(t, ops[i].Kind, r.Kind)
	}

	successCount, errorCount := Counts(results)
	assert.Equal(t, 3, successCount)
	assert.Equal(t, 0, errorCount)
}

func TestExecuteFailureDoesNotShortCircuit(t *testing.T) {
	const n = 6
	failAt := "e2"

	mutator := &fakeMutator{failWith: map[string]error{
		failAt: errors.New("backend exploded"),
	}}
	executor := NewExecutor(mutator, 1, nil)

	var ops []Operation
	for i := 0; i < n; i++ {
		ops = append(ops, op(KindPatch, fmt.Sprintf("e%d", i)))
	}

	results := executor.Execute(context.Background(), ops)

	require.Len(t, results, n)
	for i, r := range results {
		if ops[i].EventID == failAt {
			assert.False(t, r.Success)
			assert.Contains(t, r.Error, "backend exploded")
		} else {
			assert.True(t, r.Success, "operation %d should have run despite earlier failure", i)
		}
	}

	successCount, errorCount := Counts(results)
	assert.Equal(t, n, successCount+errorCount)
	assert.Equal(t, 1, errorCount)

	// Every operation was actually dispatched.
	assert.Len(t, mutator.calls, n)
}

func TestExecuteConfirmationRequiredSurfacedVerbatim(t *testing.T) {
	confirmErr := &proxy.ForbiddenError{
		ConfirmationRequired: true,
		Action:               "delete",
		Target:               "Team Meeting",
		Message:              `This action requires confirmation: delete "Team Meeting". Re-issue the request with explicit confirmation to proceed.`,
	}

	mutator := &fakeMutator{failWith: map[string]error{"e1": confirmErr}}
	executor := NewExecutor(mutator, 1, nil)

	results := executor.Execute(context.Background(), []Operation{
		op(KindDelete, "e1"),
		op(KindDelete, "e2"),
	})

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Equal(t, confirmErr.Message, results[0].Error)
	assert.True(t, results[1].Success)

	// The blocked delete was attempted exactly once, never auto-confirmed.
	assert.Equal(t, []string{"delete:e1", "delete:e2"}, mutator.calls)
}

func TestExecutePerItemValidation(t *testing.T) {
	mutator := &fakeMutator{}
	executor := NewExecutor(mutator, 1, nil)

	results := executor.Execute(context.Background(), []Operation{
		{Kind: KindUpdate, CalendarID: "primary", EventID: "e1"}, // empty body
		{Kind: KindPatch, CalendarID: "primary", EventID: "e2"},  // empty body
		{Kind: Kind("archive"), CalendarID: "primary", EventID: "e3"},
		{Kind: KindDelete, CalendarID: "", EventID: "e4"},
		{Kind: KindDelete, CalendarID: "primary", EventID: ""},
		op(KindDelete, "e6"),
	})

	require.Len(t, results, 6)
	assert.Contains(t, results[0].Error, "non-empty body")
	assert.Contains(t, results[1].Error, "non-empty body")
	assert.Contains(t, results[2].Error, "unknown action")
	assert.Contains(t, results[3].Error, "calendar_id")
	assert.Contains(t, results[4].Error, "event_id")
	assert.True(t, results[5].Success)

	// Invalid operations never reach the proxy.
	assert.Equal(t, []string{"delete:e6"}, mutator.calls)
}

func TestExecuteConcurrentPreservesOrder(t *testing.T) {
	const n = 40

	mutator := &fakeMutator{failWith: map[string]error{
		"e7":  errors.New("boom"),
		"e23": errors.New("boom"),
	}}
	executor := NewExecutor(mutator, 8, nil)

	var ops []Operation
	for i := 0; i < n; i++ {
		ops = append(ops, op(KindPatch, fmt.Sprintf("e%d", i)))
	}

	results := executor.Execute(context.Background(), ops)

	require.Len(t, results, n)
	for i, r := range results {
		assert.Equal(t, ops[i].EventID, r.EventID, "result %d out of order", i)
	}

	successCount, errorCount := Counts(results)
	assert.Equal(t, n, successCount+errorCount)
	assert.Equal(t, 2, errorCount)
}

func TestExecuteCanceledContextReportsEveryOperation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mutator := &fakeMutator{}
	executor := NewExecutor(mutator, 1, nil)

	results := executor.Execute(ctx, []Operation{
		op(KindDelete, "e1"),
		op(KindDelete, "e2"),
	})

	// One result per input even when nothing was dispatched.
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.Success)
		assert.Contains(t, r.Error, "canceled")
	}
	assert.Empty(t, mutator.calls)
}

func TestCountsAlwaysSumToLength(t *testing.T) {
	results := []Result{
		{Success: true},
		{Success: false, Error: "x"},
		{Success: true},
	}
	successCount, errorCount := Counts(results)
	assert.Equal(t, 2, successCount)
	assert.Equal(t, 1, errorCount)
	assert.Equal(t, len(results), successCount+errorCount)
}
