package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFetchQuery(t *testing.T) {
	query, params := buildFetchQuery(FetchSpec{Limit: 100, Skip: 200})

	assert.Contains(t, query, "MATCH (n)-[r:HOLDS_SHARES|HAS_COMPENSATION]->(m)")
	assert.Contains(t, query, "ORDER BY id(r)")
	assert.Contains(t, query, "SKIP $skip LIMIT $limit")
	assert.NotContains(t, query, "WHERE")

	assert.Equal(t, 100, params["limit"])
	assert.Equal(t, 200, params["skip"])
	assert.NotContains(t, params, "node_labels")
}

func TestBuildFetchQueryLabelFilter(t *testing.T) {
	query, params := buildFetchQuery(FetchSpec{
		Limit:      50,
		NodeLabels: []string{"Company", "Person"},
	})

	// inclusive-OR across both endpoints
	assert.Contains(t, query, "any(l IN labels(n) WHERE l IN $node_labels)")
	assert.Contains(t, query, "OR any(l IN labels(m) WHERE l IN $node_labels)")
	assert.Equal(t, []string{"Company", "Person"}, params["node_labels"])
}

func TestBuildFetchQueryCustomRelTypes(t *testing.T) {
	query, _ := buildFetchQuery(FetchSpec{
		Limit:    10,
		RelTypes: []string{"HOLDS_SHARES"},
	})
	assert.Contains(t, query, "[r:HOLDS_SHARES]")
	assert.NotContains(t, query, "HAS_COMPENSATION")
}

func TestSanitizeRelTypes(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "valid tokens pass",
			in:   []string{"HOLDS_SHARES", "custom_rel"},
			want: []string{"HOLDS_SHARES", "custom_rel"},
		},
		{
			name: "injection attempt dropped, default restored",
			in:   []string{"X]->() DETACH DELETE n //"},
			want: []string{"HOLDS_SHARES", "HAS_COMPENSATION"},
		},
		{
			name: "empty input restores default",
			in:   nil,
			want: []string{"HOLDS_SHARES", "HAS_COMPENSATION"},
		},
		{
			name: "partial survivors keep only survivors",
			in:   []string{"HOLDS_SHARES", "bad token"},
			want: []string{"HOLDS_SHARES"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeRelTypes(tt.in))
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	query, params := buildSearchQuery("acme", 50, nil)

	assert.Contains(t, query, "toLower(toString(n.companyName)) CONTAINS toLower($search_term)")
	assert.Contains(t, query, "n.personId")
	assert.Contains(t, query, "ORDER BY id(n)")
	assert.Equal(t, "acme", params["search_term"])
	assert.Equal(t, 50, params["limit"])
}

func TestBuildSearchQueryPropertyAllowList(t *testing.T) {
	query, _ := buildSearchQuery("x", 10, []string{"bizno", "password) RETURN n //"})

	assert.Contains(t, query, "n.bizno")
	assert.NotContains(t, query, "password")
	// only the surviving property appears
	assert.Equal(t, 1, strings.Count(query, "CONTAINS"))
}

func TestBuildNodeByIDQuery(t *testing.T) {
	assert.Contains(t, buildNodeByIDQuery("bizno"), "n.bizno = $node_id")
	// unknown property coerced to the generic id, never interpolated
	assert.Contains(t, buildNodeByIDQuery("evil`) DETACH DELETE n"), "n.id = $node_id")
}

func TestBuildRelationshipsQuery(t *testing.T) {
	assert.Contains(t, buildRelationshipsQuery("bizno", DirectionOut), "(n)-[r]->(m)")
	assert.Contains(t, buildRelationshipsQuery("bizno", DirectionIn), "(m)-[r]->(n)")
	assert.Contains(t, buildRelationshipsQuery("bizno", DirectionBoth), "(n)-[r]-(m)")

	query := buildRelationshipsQuery("bizno", DirectionBoth)
	assert.Contains(t, query, "ORDER BY id(r)")
	assert.Contains(t, query, "LIMIT $limit")
}

func TestBuildEgoQueryDepthClamp(t *testing.T) {
	assert.Contains(t, buildEgoQuery("bizno", 0), "[*1..1]")
	assert.Contains(t, buildEgoQuery("bizno", 2), "[*1..2]")
	assert.Contains(t, buildEgoQuery("bizno", 9), "[*1..3]")

	query := buildEgoQuery("bizno", 1)
	require.Contains(t, query, "center.bizno = $node_id")
	assert.Contains(t, query, "UNWIND relationships(path) AS r")
	assert.Contains(t, query, "RETURN startNode(r) AS n, r, endNode(r) AS m")
}
