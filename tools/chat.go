package tools

import (
	"context"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/graphlens/graphlens/pkg/graph/chat"
	"github.com/graphlens/graphlens/services"
	"github.com/graphlens/graphlens/util"
)

const chatTimeout = 2 * time.Minute

// defaultPipeline is shared across requests so session history survives
// between tool calls for the lifetime of the process.
var defaultPipeline = sync.OnceValue(func() *chat.Pipeline {
	completer := chat.NewOpenAICompleter(services.DefaultOpenAIClient(), services.OpenAIModel())
	return chat.NewPipeline(services.DefaultGraphStore(), completer, chat.DefaultRetainedExchanges)
})

func RegisterChatTools(s *server.MCPServer) {
	chatTool := mcp.NewTool("graph_chat",
		mcp.WithDescription("Ask a natural-language question about the ownership graph. The question is translated to a read-only Cypher query, executed, and answered from the results; the answer reports its provenance (DB, DB_EMPTY, LLM or ERROR)"),
		mcp.WithString("message", mcp.Required(), mcp.Description("The question")),
		mcp.WithString("session_id", mcp.Description("Conversation session id; a new one is created and returned when omitted")),
		mcp.WithString("context_node_id", mcp.Description("Identifier of a currently selected node to ground the question")),
	)
	s.AddTool(chatTool, util.ErrorGuard(util.AdaptLegacyHandler(graphChatHandler)))

	resetTool := mcp.NewTool("graph_chat_reset",
		mcp.WithDescription("Clear the conversation history of a chat session"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation session id")),
	)
	s.AddTool(resetTool, util.ErrorGuard(util.AdaptLegacyHandler(graphChatResetHandler)))
}

func graphChatHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	message, ok := arguments["message"].(string)
	if !ok || message == "" {
		return mcp.NewToolResultError("message must be a non-empty string"), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
	defer cancel()

	resp := defaultPipeline().Ask(ctx, chat.Request{
		SessionID:     stringArg(arguments, "session_id"),
		Message:       message,
		ContextNodeID: stringArg(arguments, "context_node_id"),
	})
	return jsonResult(resp)
}

func graphChatResetHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	sessionID, ok := arguments["session_id"].(string)
	if !ok || sessionID == "" {
		return mcp.NewToolResultError("session_id must be a non-empty string"), nil
	}

	defaultPipeline().Reset(sessionID)
	return jsonResult(map[string]string{"session_id": sessionID, "status": "reset"})
}
