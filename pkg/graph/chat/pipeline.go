// Package chat implements the natural-language query pipeline: a bounded
// per-session dialogue state, Cypher generation from a schema card,
// read-only execution, and grounded answer composition with explicit
// fallbacks when generation or execution fails.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/graphlens/graphlens/pkg/graph"
	"github.com/graphlens/graphlens/pkg/graph/metrics"
	"github.com/graphlens/graphlens/pkg/graph/storage"
)

// Answer sources. The caller uses these to render provenance: DB-backed
// answers, empty-result answers, ungrounded model guesses, and failures.
const (
	SourceDB      = "DB"
	SourceDBEmpty = "DB_EMPTY"
	SourceLLM     = "LLM"
	SourceError   = "ERROR"
)

// LLMCaveatPrefix visibly flags answers that are model guesses because
// no query could be generated.
const LLMCaveatPrefix = "⚠️ Not grounded in database results: "

// User-facing failure messages.
const (
	msgTokenLimit = "The conversation or query results are too long for the model. Please shorten your question or reset the conversation."
	msgGeneric    = "The assistant could not produce an answer right now. Please try again."
)

// GraphQuerier is the read-only gateway slice the pipeline needs.
// *storage.Neo4jStore satisfies it.
type GraphQuerier interface {
	Execute(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error)
	NodeByID(ctx context.Context, id, idProperty string) (*storage.NodeRecord, error)
	Relationships(ctx context.Context, id, idProperty string, direction storage.Direction, limit int) ([]graph.RawRow, error)
}

// Request is one chat invocation.
type Request struct {
	SessionID     string
	Message       string
	ContextNodeID string
}

// Response is the pipeline outcome. Source is always set; the pipeline
// converts every internal failure into a normal Response so the chat
// surface never crashes on a model or store outage.
type Response struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
	Source    string `json:"source"`
	Query     string `json:"query,omitempty"`
	RowCount  int    `json:"row_count"`
}

// Pipeline drives the START → GENERATE_QUERY → EXECUTE → COMPOSE_ANSWER
// state machine for each request.
type Pipeline struct {
	store     GraphQuerier
	completer Completer
	sessions  *SessionStore
	logger    *logrus.Logger
}

// NewPipeline wires the pipeline. retainedExchanges bounds per-session
// history (N pairs, 2×N entries).
func NewPipeline(store GraphQuerier, completer Completer, retainedExchanges int) *Pipeline {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Pipeline{
		store:     store,
		completer: completer,
		sessions:  NewSessionStore(retainedExchanges),
		logger:    logger,
	}
}

// Reset clears the session's conversation state.
func (p *Pipeline) Reset(sessionID string) {
	p.sessions.Reset(sessionID)
}

// History exposes a copy of a session's turns.
func (p *Pipeline) History(sessionID string) []Turn {
	return p.sessions.History(sessionID)
}

// Ask runs one full pipeline invocation. The returned Response always
// has a valid session id; history is only mutated on a non-ERROR
// completion.
func (p *Pipeline) Ask(ctx context.Context, req Request) Response {
	sessionID := p.sessions.EnsureSession(req.SessionID)

	start := time.Now()
	resp := p.run(ctx, sessionID, req)
	metrics.ChatPipelineDuration.WithLabelValues(resp.Source).Observe(time.Since(start).Seconds())
	metrics.ChatRequests.WithLabelValues(resp.Source).Inc()
	if resp.Source != SourceError {
		p.sessions.AppendExchange(sessionID, req.Message, resp.Answer)
	}
	return resp
}

func (p *Pipeline) run(ctx context.Context, sessionID string, req Request) Response {
	// GENERATE_QUERY
	query := p.generateQuery(ctx, req)

	// EXECUTE — failures are "no results", never pipeline failures.
	var rows []map[string]interface{}
	if query != "" {
		var err error
		rows, err = p.store.Execute(ctx, query, nil)
		if err != nil {
			p.logger.WithError(err).WithField("session", sessionID).Warn("generated query failed, answering without results")
			rows = nil
		}
	}

	// COMPOSE_ANSWER
	answer, err := p.composeAnswer(ctx, sessionID, req.Message, rows)
	if err != nil {
		p.logger.WithError(err).WithField("session", sessionID).Error("answer composition failed")
		msg := msgGeneric
		if IsTokenLimitError(err) {
			msg = msgTokenLimit
		}
		return Response{SessionID: sessionID, Answer: msg, Source: SourceError, Query: query}
	}

	switch {
	case query == "":
		return Response{SessionID: sessionID, Answer: LLMCaveatPrefix + answer, Source: SourceLLM}
	case len(rows) == 0:
		return Response{SessionID: sessionID, Answer: answer, Source: SourceDBEmpty, Query: query}
	default:
		return Response{SessionID: sessionID, Answer: answer, Source: SourceDB, Query: query, RowCount: len(rows)}
	}
}

// generateQuery builds the schema-grounded generation prompt and
// extracts a query from the model output. An empty result switches the
// pipeline to the LLM-only answer path; it never aborts the request.
func (p *Pipeline) generateQuery(ctx context.Context, req Request) string {
	contextNote := p.contextNote(ctx, req.ContextNodeID)

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: generateSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: buildGenerationPrompt(req.Message, contextNote)},
	}

	output, err := p.completer.Complete(ctx, messages, 0, 512)
	if err != nil {
		p.logger.WithError(err).Warn("query generation failed, falling back to LLM-only answer")
		return ""
	}
	return ExtractQuery(output)
}

// contextNote enriches the prompt with the selected node's identity and
// relationship count. Lookup failures degrade to no annotation.
func (p *Pipeline) contextNote(ctx context.Context, nodeID string) string {
	if nodeID == "" {
		return ""
	}

	idProperty := graph.PropBizno
	record, err := p.store.NodeByID(ctx, nodeID, idProperty)
	if err == nil && record == nil {
		idProperty = graph.PropPersonID
		record, err = p.store.NodeByID(ctx, nodeID, idProperty)
	}
	if err != nil || record == nil {
		return contextNodeNote(nodeID, 0)
	}

	rels, err := p.store.Relationships(ctx, nodeID, idProperty, storage.DirectionBoth, 50)
	if err != nil {
		rels = nil
	}
	return contextNodeNote(nodeID, len(rels))
}

func (p *Pipeline) composeAnswer(ctx context.Context, sessionID, question string, rows []map[string]interface{}) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2*DefaultRetainedExchanges+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleSystem, Content: answerSystemPrompt,
	})
	for _, turn := range p.sessions.History(sessionID) {
		role := openai.ChatMessageRoleUser
		if turn.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: buildAnswerPrompt(question, renderRows(rows)),
	})

	answer, err := p.completer.Complete(ctx, messages, 0, 1024)
	if err != nil {
		return "", fmt.Errorf("answer composition: %w", err)
	}
	return answer, nil
}
