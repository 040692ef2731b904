package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlens/graphlens/pkg/graph"
	"github.com/graphlens/graphlens/pkg/graph/storage"
)

// scriptedCompleter replays canned responses in call order.
type scriptedCompleter struct {
	responses []string
	errs      []error
	calls     int
	received  [][]openai.ChatCompletionMessage
}

func (c *scriptedCompleter) Complete(_ context.Context, messages []openai.ChatCompletionMessage, _ float32, _ int) (string, error) {
	c.received = append(c.received, messages)
	i := c.calls
	c.calls++
	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	var resp string
	if i < len(c.responses) {
		resp = c.responses[i]
	}
	return resp, err
}

type fakeStore struct {
	rows       []map[string]interface{}
	execErr    error
	lastQuery  string
	nodeRecord *storage.NodeRecord
	rels       []graph.RawRow
}

func (s *fakeStore) Execute(_ context.Context, query string, _ map[string]interface{}) ([]map[string]interface{}, error) {
	s.lastQuery = query
	if s.execErr != nil {
		return nil, s.execErr
	}
	return s.rows, nil
}

func (s *fakeStore) NodeByID(_ context.Context, _, _ string) (*storage.NodeRecord, error) {
	return s.nodeRecord, nil
}

func (s *fakeStore) Relationships(_ context.Context, _, _ string, _ storage.Direction, _ int) ([]graph.RawRow, error) {
	return s.rels, nil
}

func TestPipelineGroundedAnswer(t *testing.T) {
	store := &fakeStore{rows: []map[string]interface{}{{"stockName": "Kim", "stockRatio": 12.5}}}
	completer := &scriptedCompleter{responses: []string{
		"```cypher\nMATCH (p:Person)-[h:HOLDS_SHARES]->(c:Company) RETURN p.stockName, h.stockRatio\n```",
		"Kim holds 12.5% of the company.",
	}}
	p := NewPipeline(store, completer, 5)

	resp := p.Ask(context.Background(), Request{SessionID: "s1", Message: "who owns Acme?"})

	assert.Equal(t, SourceDB, resp.Source)
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, "Kim holds 12.5% of the company.", resp.Answer)
	assert.Equal(t, 1, resp.RowCount)
	assert.Contains(t, resp.Query, "HOLDS_SHARES")
	assert.Equal(t, resp.Query, store.lastQuery)

	// the exchange is recorded
	history := p.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, "who owns Acme?", history[0].Content)
	assert.Equal(t, resp.Answer, history[1].Content)

	// results are rendered into the answer prompt
	answerMessages := completer.received[1]
	last := answerMessages[len(answerMessages)-1]
	assert.Contains(t, last.Content, "Kim")
	assert.Contains(t, last.Content, "12.5")
}

func TestPipelineEmptyResults(t *testing.T) {
	store := &fakeStore{rows: nil}
	completer := &scriptedCompleter{responses: []string{
		"```cypher\nMATCH (c:Company {bizno: '000'}) RETURN c\n```",
		"No company with that registration number exists in the data.",
	}}
	p := NewPipeline(store, completer, 5)

	resp := p.Ask(context.Background(), Request{SessionID: "s1", Message: "who owns bizno 000?"})

	assert.Equal(t, SourceDBEmpty, resp.Source)
	assert.Zero(t, resp.RowCount)
	assert.NotEmpty(t, resp.Query)
	assert.NotContains(t, resp.Answer, LLMCaveatPrefix)
}

func TestPipelineExecutionFailureDegradesToEmpty(t *testing.T) {
	store := &fakeStore{execErr: errors.New("Neo.ClientError.Statement.SyntaxError: bad query")}
	completer := &scriptedCompleter{responses: []string{
		"```cypher\nMATCH (n RETURN n\n```",
		"I could not find that in the data.",
	}}
	p := NewPipeline(store, completer, 5)

	resp := p.Ask(context.Background(), Request{SessionID: "s1", Message: "anything"})

	// a failed query is treated as no results, not as a pipeline error
	assert.Equal(t, SourceDBEmpty, resp.Source)
	assert.Len(t, p.History("s1"), 2)
}

func TestPipelineGenerationFailureFallsBackToLLM(t *testing.T) {
	store := &fakeStore{}
	completer := &scriptedCompleter{
		responses: []string{"", "Acme Holdings is generally majority-owned by its founder."},
		errs:      []error{errors.New("model unavailable"), nil},
	}
	p := NewPipeline(store, completer, 5)

	resp := p.Ask(context.Background(), Request{SessionID: "s1", Message: "who owns Acme?"})

	assert.Equal(t, SourceLLM, resp.Source)
	assert.True(t, strings.HasPrefix(resp.Answer, LLMCaveatPrefix), "ungrounded answers must carry the caveat prefix")
	assert.Empty(t, resp.Query)
	assert.Empty(t, store.lastQuery, "no query must reach the store")
}

func TestPipelineCompositionFailure(t *testing.T) {
	store := &fakeStore{rows: []map[string]interface{}{{"x": 1}}}
	completer := &scriptedCompleter{
		responses: []string{"```cypher\nMATCH (n) RETURN n\n```", ""},
		errs:      []error{nil, errors.New("upstream down")},
	}
	p := NewPipeline(store, completer, 5)

	resp := p.Ask(context.Background(), Request{SessionID: "s1", Message: "hello"})

	assert.Equal(t, SourceError, resp.Source)
	assert.Equal(t, msgGeneric, resp.Answer)
	// failed exchanges never pollute the history
	assert.Empty(t, p.History("s1"))
}

func TestPipelineTokenLimitMessage(t *testing.T) {
	store := &fakeStore{rows: []map[string]interface{}{{"x": 1}}}
	completer := &scriptedCompleter{
		responses: []string{"```cypher\nMATCH (n) RETURN n\n```", ""},
		errs:      []error{nil, errors.New("This model's maximum context length is 128000 tokens")},
	}
	p := NewPipeline(store, completer, 5)

	resp := p.Ask(context.Background(), Request{SessionID: "s1", Message: "hello"})

	assert.Equal(t, SourceError, resp.Source)
	assert.Equal(t, msgTokenLimit, resp.Answer)
}

func TestPipelineGeneratesSessionID(t *testing.T) {
	store := &fakeStore{}
	completer := &scriptedCompleter{responses: []string{"MATCH (n) RETURN n", "fine"}}
	p := NewPipeline(store, completer, 5)

	resp := p.Ask(context.Background(), Request{Message: "hi"})

	require.NotEmpty(t, resp.SessionID)
	assert.Len(t, p.History(resp.SessionID), 2)
}

func TestPipelineHistoryFlowsIntoAnswerPrompt(t *testing.T) {
	store := &fakeStore{rows: []map[string]interface{}{{"x": 1}}}
	completer := &scriptedCompleter{responses: []string{
		"MATCH (n) RETURN n", "first answer",
		"MATCH (n) RETURN n", "second answer",
	}}
	p := NewPipeline(store, completer, 5)

	p.Ask(context.Background(), Request{SessionID: "s1", Message: "first question"})
	p.Ask(context.Background(), Request{SessionID: "s1", Message: "second question"})

	// call 3 is the second compose: system + 2 history turns + question
	require.Len(t, completer.received, 4)
	messages := completer.received[3]
	require.Len(t, messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	assert.Equal(t, "first question", messages[1].Content)
	assert.Equal(t, openai.ChatMessageRoleAssistant, messages[2].Role)
	assert.Equal(t, "first answer", messages[2].Content)
}

func TestPipelineContextNodeAnnotation(t *testing.T) {
	store := &fakeStore{
		rows:       []map[string]interface{}{{"x": 1}},
		nodeRecord: &storage.NodeRecord{Properties: map[string]interface{}{"bizno": "100"}},
		rels:       []graph.RawRow{{HasRel: true}, {HasRel: true}},
	}
	completer := &scriptedCompleter{responses: []string{"MATCH (n) RETURN n", "answer"}}
	p := NewPipeline(store, completer, 5)

	p.Ask(context.Background(), Request{SessionID: "s1", Message: "what about this one?", ContextNodeID: "100"})

	genMessages := completer.received[0]
	userPrompt := genMessages[len(genMessages)-1].Content
	assert.Contains(t, userPrompt, "node 100")
	assert.Contains(t, userPrompt, "2 relationships")
}

func TestPipelineReset(t *testing.T) {
	store := &fakeStore{rows: []map[string]interface{}{{"x": 1}}}
	completer := &scriptedCompleter{responses: []string{"MATCH (n) RETURN n", "a"}}
	p := NewPipeline(store, completer, 5)

	p.Ask(context.Background(), Request{SessionID: "s1", Message: "q"})
	require.NotEmpty(t, p.History("s1"))

	p.Reset("s1")
	assert.Empty(t, p.History("s1"))
}
