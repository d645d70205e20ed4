package bulk_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/privcal/calagent/internal/bulk"
	"github.com/privcal/calagent/internal/instrumentation"
	"github.com/privcal/calagent/internal/server"
	"github.com/privcal/calagent/internal/tools/common"
)

// RegisterBulkTools registers the bulk mutation tool with the MCP
// server. The tool is only available in write mode.
func RegisterBulkTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if readOnly {
		return nil
	}

	bulkActionsTool := mcp.NewTool("calendar_bulk_actions",
		mcp.WithDescription("Execute multiple update/patch/delete operations in one request. "+
			"Each operation reports its own outcome; a failure never aborts the batch."),
		mcp.WithArray("operations",
			mcp.Required(),
			mcp.Description("Operations to execute. Each needs 'action' ('update', 'patch' or 'delete'), "+
				"'calendar_id' and 'event_id'; update/patch also need 'body'. Optional 'send_updates'."),
		),
	)

	s.AddTool(bulkActionsTool, common.InstrumentedToolHandler(
		"calendar_bulk_actions", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBulkActions(ctx, request, sc)
		}))

	return nil
}

func handleBulkActions(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	ops, err := decodeOperations(args["operations"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp := sc.Agent().BulkActions(ctx, ops)

	// One bulk_operations_total sample per item, success and failure alike.
	if metrics := sc.Metrics(); metrics != nil {
		for _, r := range resp.Results {
			status := instrumentation.StatusSuccess
			if !r.Success {
				status = instrumentation.StatusError
			}
			metrics.RecordBulkOperation(ctx, string(r.Kind), status)
		}
	}

	return common.JSONResult(resp)
}

// decodeOperations converts the raw tool argument into typed operations
// via a JSON round trip, so the wire field names stay in one place.
func decodeOperations(raw any) ([]bulk.Operation, error) {
	if raw == nil {
		return nil, fmt.Errorf("operations is required")
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid operations: %w", err)
	}

	var ops []bulk.Operation
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("invalid operations: %w", err)
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("at least one operation is required")
	}
	return ops, nil
}
