package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractQuery(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "cypher fence",
			text: "Here is the query:\n```cypher\nMATCH (n:Company) RETURN n LIMIT 5\n```",
			want: "MATCH (n:Company) RETURN n LIMIT 5",
		},
		{
			name: "bare fence",
			text: "```\nMATCH (n) RETURN count(n)\n```",
			want: "MATCH (n) RETURN count(n)",
		},
		{
			name: "sql fence",
			text: "```sql\nMATCH (n) RETURN n\n```",
			want: "MATCH (n) RETURN n",
		},
		{
			name: "multiline fence keeps the whole query",
			text: "```cypher\nMATCH (p:Person)-[h:HOLDS_SHARES]->(c:Company)\nRETURN p, h, c\n```",
			want: "MATCH (p:Person)-[h:HOLDS_SHARES]->(c:Company)\nRETURN p, h, c",
		},
		{
			name: "single keyword line",
			text: "MATCH (n:Person) RETURN n.stockName",
			want: "MATCH (n:Person) RETURN n.stockName",
		},
		{
			name: "keyword line amid prose",
			text: "Sure, this should work:\nMATCH (n:Company) RETURN n.companyName\nLet me know if you need more.",
			want: "MATCH (n:Company) RETURN n.companyName",
		},
		{
			name: "lowercase keyword recognized",
			text: "match (n) return n",
			want: "match (n) return n",
		},
		{
			name: "no keyword returns trimmed text",
			text: "  I cannot answer that.  ",
			want: "I cannot answer that.",
		},
		{
			name: "empty input",
			text: "   \n  ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractQuery(tt.text))
		})
	}
}

func TestStartsWithQueryKeyword(t *testing.T) {
	assert.True(t, startsWithQueryKeyword("MATCH (n) RETURN n"))
	assert.True(t, startsWithQueryKeyword("  optional match (n) return n"))
	assert.True(t, startsWithQueryKeyword("RETURN"))
	assert.False(t, startsWithQueryKeyword("MATCHING the schema above"))
	assert.False(t, startsWithQueryKeyword("The query is:"))
}
