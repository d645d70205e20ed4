package calendar_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/privcal/calagent/internal/server"
)

// RegisterCalendarTools registers all calendar tools with the MCP server
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Register calendar list tools
	if err := RegisterCalendarListTools(s, sc); err != nil {
		return fmt.Errorf("failed to register calendar list tools: %w", err)
	}

	// Register event tools
	if err := RegisterEventTools(s, sc, sc.ReadOnly()); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}

	return nil
}
