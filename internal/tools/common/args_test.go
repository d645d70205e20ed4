package common

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestGetCalendarIDFromArgs(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"explicit", map[string]any{"calendar_id": "team@example.com"}, "team@example.com"},
		{"missing", map[string]any{}, "primary"},
		{"empty", map[string]any{"calendar_id": ""}, "primary"},
		{"wrong type", map[string]any{"calendar_id": 42}, "primary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCalendarIDFromArgs(tt.args); got != tt.want {
				t.Errorf("GetCalendarIDFromArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequireStringArg(t *testing.T) {
	if _, err := RequireStringArg(map[string]any{}, "event_id"); err == nil {
		t.Error("expected error for missing argument")
	}
	if _, err := RequireStringArg(map[string]any{"event_id": ""}, "event_id"); err == nil {
		t.Error("expected error for empty argument")
	}

	got, err := RequireStringArg(map[string]any{"event_id": "evt_1"}, "event_id")
	if err != nil {
		t.Fatalf("RequireStringArg() error = %v", err)
	}
	if got != "evt_1" {
		t.Errorf("RequireStringArg() = %q, want %q", got, "evt_1")
	}
}

func TestGetIntArg(t *testing.T) {
	// JSON decoding yields float64 for all numbers
	if got := GetIntArg(map[string]any{"max_results": float64(50)}, "max_results"); got != 50 {
		t.Errorf("GetIntArg(float64) = %d, want 50", got)
	}
	if got := GetIntArg(map[string]any{"max_results": 25}, "max_results"); got != 25 {
		t.Errorf("GetIntArg(int) = %d, want 25", got)
	}
	if got := GetIntArg(map[string]any{}, "max_results"); got != 0 {
		t.Errorf("GetIntArg(missing) = %d, want 0", got)
	}
}

func TestGetTimeArg(t *testing.T) {
	got, err := GetTimeArg(map[string]any{"time_min": "2026-03-02T09:00:00Z"}, "time_min")
	if err != nil {
		t.Fatalf("GetTimeArg() error = %v", err)
	}
	want := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("GetTimeArg() = %v, want %v", got, want)
	}

	got, err = GetTimeArg(map[string]any{}, "time_min")
	if err != nil {
		t.Fatalf("GetTimeArg(missing) error = %v", err)
	}
	if !got.IsZero() {
		t.Errorf("GetTimeArg(missing) = %v, want zero time", got)
	}

	if _, err := GetTimeArg(map[string]any{"time_min": "tomorrow"}, "time_min"); err == nil {
		t.Error("expected error for non-RFC3339 value")
	}
}

func TestRequireTimeArg(t *testing.T) {
	if _, err := RequireTimeArg(map[string]any{}, "time_min"); err == nil {
		t.Error("expected error for missing argument")
	}

	got, err := RequireTimeArg(map[string]any{"time_min": "2026-03-02T09:00:00Z"}, "time_min")
	if err != nil {
		t.Fatalf("RequireTimeArg() error = %v", err)
	}
	if got.IsZero() {
		t.Error("expected non-zero time")
	}
}

func TestGetStringSliceArg(t *testing.T) {
	// JSON arrays arrive as []any
	got := GetStringSliceArg(map[string]any{"event_ids": []any{"e1", "e2", 3, ""}}, "event_ids")
	if len(got) != 2 || got[0] != "e1" || got[1] != "e2" {
		t.Errorf("GetStringSliceArg([]any) = %v, want [e1 e2]", got)
	}

	got = GetStringSliceArg(map[string]any{"event_ids": "e1"}, "event_ids")
	if len(got) != 1 || got[0] != "e1" {
		t.Errorf("GetStringSliceArg(string) = %v, want [e1]", got)
	}

	if got := GetStringSliceArg(map[string]any{}, "event_ids"); got != nil {
		t.Errorf("GetStringSliceArg(missing) = %v, want nil", got)
	}
}

func TestGetMapArg(t *testing.T) {
	body := map[string]any{"summary": "Updated"}
	got := GetMapArg(map[string]any{"body": body}, "body")
	if got == nil || got["summary"] != "Updated" {
		t.Errorf("GetMapArg() = %v, want %v", got, body)
	}

	if got := GetMapArg(map[string]any{"body": "not a map"}, "body"); got != nil {
		t.Errorf("GetMapArg(wrong type) = %v, want nil", got)
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("result content is %T, want text", result.Content[0])
	}
	return text.Text
}

func TestJSONResult(t *testing.T) {
	result, err := JSONResult(map[string]any{"success": true, "count": 2})
	if err != nil {
		t.Fatalf("JSONResult() error = %v", err)
	}
	if result.IsError {
		t.Fatal("expected non-error result")
	}

	text := resultText(t, result)
	var decoded map[string]any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if decoded["success"] != true {
		t.Errorf("decoded success = %v, want true", decoded["success"])
	}
	if !strings.Contains(text, "\n") {
		t.Error("expected indented JSON output")
	}
}
