package common

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// GetCalendarIDFromArgs extracts the calendar_id argument, defaulting to
// the primary calendar when the orchestrator omits it.
func GetCalendarIDFromArgs(args map[string]any) string {
	if calendarID, ok := args["calendar_id"].(string); ok && calendarID != "" {
		return calendarID
	}
	return "primary"
}

// GetStringArg extracts a string argument, returning "" when absent.
func GetStringArg(args map[string]any, key string) string {
	if value, ok := args[key].(string); ok {
		return value
	}
	return ""
}

// RequireStringArg extracts a string argument that must be present and
// non-empty.
func RequireStringArg(args map[string]any, key string) (string, error) {
	value, ok := args[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

// GetBoolArg extracts a boolean argument, returning the fallback when
// absent.
func GetBoolArg(args map[string]any, key string, fallback bool) bool {
	if value, ok := args[key].(bool); ok {
		return value
	}
	return fallback
}

// GetIntArg extracts a numeric argument. JSON decoding yields float64,
// but tests and direct callers may pass int, so both are accepted.
func GetIntArg(args map[string]any, key string) int {
	switch value := args[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	case int64:
		return int(value)
	}
	return 0
}

// GetTimeArg parses an RFC3339 timestamp argument. An absent or empty
// argument yields the zero time without error.
func GetTimeArg(args map[string]any, key string) (time.Time, error) {
	raw, ok := args[key].(string)
	if !ok || raw == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format: %w", key, err)
	}
	return parsed, nil
}

// RequireTimeArg parses an RFC3339 timestamp argument that must be
// present.
func RequireTimeArg(args map[string]any, key string) (time.Time, error) {
	raw, err := RequireStringArg(args, key)
	if err != nil {
		return time.Time{}, err
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format: %w", key, err)
	}
	return parsed, nil
}

// GetStringSliceArg extracts a list-of-strings argument. Both JSON
// arrays and single strings are accepted; non-string elements are
// skipped.
func GetStringSliceArg(args map[string]any, key string) []string {
	switch value := args[key].(type) {
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return value
	case string:
		if value == "" {
			return nil
		}
		return []string{value}
	}
	return nil
}

// GetMapArg extracts an object argument, returning nil when absent.
func GetMapArg(args map[string]any, key string) map[string]any {
	if value, ok := args[key].(map[string]any); ok {
		return value
	}
	return nil
}

// JSONResult marshals a response envelope into a tool result. Envelopes
// are plain structs, so a marshal failure indicates a programming error
// and is surfaced as a tool error.
func JSONResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
