// Package calendar_tools provides the MCP tools for calendar and event
// operations.
//
// All tools call the calendar agent and return its JSON envelope: event
// responses carry the metadata view only, never descriptions or raw
// bodies. Mutating tools (update, patch, delete) are registered only
// when the server runs in write mode.
package calendar_tools
