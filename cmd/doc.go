// Package cmd implements the command-line interface for calagent.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio or streamable HTTP
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
