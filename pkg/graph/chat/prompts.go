package chat

import (
	"encoding/json"
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// schemaDescription is the fixed schema card fed to query generation. It
// names the node categories, key properties, relationship types and the
// unit conventions of the stored data.
const schemaDescription = `Graph schema:
- (:Company {bizno, companyName, companyNameNormalized}) — bizno is the unique registration number.
- (:Person {personId, stockName, stockNameNormalized}) — personId is unique.
- Additional labels: Stockholder, LegalEntity, Active, Closed, MajorShareholder.
- (a)-[:HOLDS_SHARES {stockRatio, stockCount, votingPower, baseDate}]->(b) — stockRatio is a percentage (12.5 means 12.5%).
- (a)-[:HAS_COMPENSATION {baseDate}]->(b) — compensation amounts are in KRW.`

const generateSystemPrompt = `You are a Neo4j Cypher expert for a corporate ownership graph.
Translate the user's question into one read-only Cypher query against the schema below.
Reply with only the query inside a fenced code block. Never use CREATE, MERGE, SET, DELETE or REMOVE.

` + schemaDescription

const answerSystemPrompt = `You are a corporate ownership analyst answering questions from graph query results.
Lead with the key figures. Format share ratios as percentages with one decimal place (e.g. 12.5%).
Format KRW amounts with thousands separators. When the data contains no answer, say so explicitly.
Base the answer only on the provided query results and conversation context.`

// resultTokenBudget caps the rendered query results included in the
// answer prompt.
const resultTokenBudget = 1500

func buildGenerationPrompt(question, contextNote string) string {
	if contextNote == "" {
		return question
	}
	return fmt.Sprintf("%s\n\nContext: %s", question, contextNote)
}

func buildAnswerPrompt(question, rendered string) string {
	if rendered == "" {
		return fmt.Sprintf("Question: %s\n\nNo query results are available. Answer from general knowledge and say the database was not consulted.", question)
	}
	return fmt.Sprintf("Question: %s\n\nQuery results:\n%s", question, rendered)
}

// renderRows serializes result rows for the answer prompt, truncated to
// the token budget. Rendering never fails: marshal errors fall back to
// a plain fmt rendering, tokenizer errors to a rune cap.
func renderRows(rows []map[string]interface{}) string {
	if len(rows) == 0 {
		return ""
	}

	raw, err := json.Marshal(rows)
	text := string(raw)
	if err != nil {
		text = fmt.Sprintf("%v", rows)
	}
	return truncateToTokens(text, resultTokenBudget)
}

func truncateToTokens(text string, budget int) string {
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		// tokenizer data unavailable, fall back to a rune cap
		runes := []rune(text)
		if len(runes) > budget*4 {
			return string(runes[:budget*4]) + "…(truncated)"
		}
		return text
	}

	tokens := encoding.Encode(text, nil, nil)
	if len(tokens) <= budget {
		return text
	}
	return encoding.Decode(tokens[:budget]) + "…(truncated)"
}

// contextNodeNote renders the optional selected-node annotation.
func contextNodeNote(nodeID string, relationshipCount int) string {
	if nodeID == "" {
		return ""
	}
	return fmt.Sprintf("the user has node %s selected (%d relationships)", nodeID, relationshipCount)
}
