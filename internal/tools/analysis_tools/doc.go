// Package analysis_tools provides the MCP tools backed by the local
// generation service: event summaries, question answering, free-time
// search, schedule analysis, and briefings.
//
// Raw event bodies flow only into the local provider. Responses carry
// generated text and deterministic slot data, never the underlying
// descriptions.
package analysis_tools
