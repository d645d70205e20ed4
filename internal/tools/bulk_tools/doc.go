// Package bulk_tools provides the MCP tool for batched event mutations.
// It is registered only when the server runs in write mode.
package bulk_tools
