// Package resources provides MCP resources for exposing agent state.
// Resources are read-only data sources that MCP clients can fetch, such
// as the sanitized runtime configuration and the reachable calendars.
package resources
