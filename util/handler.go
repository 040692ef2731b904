package util

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// LegacyHandler is the map-argument tool handler shape used throughout
// the tools package.
type LegacyHandler func(arguments map[string]interface{}) (*mcp.CallToolResult, error)

// AdaptLegacyHandler lifts a LegacyHandler into the server's
// context-aware handler signature.
func AdaptLegacyHandler(handler LegacyHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handler(request.Params.Arguments)
	}
}

// ErrorGuard converts panics inside a tool handler into tool error
// results so a single bad request cannot take the server down.
func ErrorGuard(handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				result = mcp.NewToolResultError(fmt.Sprintf("panic in tool handler: %v\n%s", r, debug.Stack()))
				err = nil
			}
		}()
		return handler(ctx, request)
	}
}
