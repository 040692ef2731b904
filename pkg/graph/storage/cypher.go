package storage

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/graphlens/graphlens/pkg/graph"
)

// relTypeToken guards relationship type names interpolated into query
// text. Types are schema constants in practice, but callers can supply
// their own.
var relTypeToken = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func sanitizeRelTypes(relTypes []string) []string {
	out := make([]string, 0, len(relTypes))
	for _, t := range relTypes {
		if relTypeToken.MatchString(t) {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		out = append(out, graph.DefaultRelationshipTypes...)
	}
	return out
}

// buildFetchQuery composes the paged relationship fetch. Rows are ordered
// by the store's internal relationship id so the skip/limit paging
// contract holds: consecutive pages on a static dataset are disjoint and
// their ordered union equals one larger page.
//
// The node-label predicate is inclusive-OR across both endpoints: a row
// qualifies when either endpoint carries at least one requested label.
func buildFetchQuery(spec FetchSpec) (string, map[string]interface{}) {
	relTypes := sanitizeRelTypes(spec.RelTypes)

	var b strings.Builder
	b.WriteString("MATCH (n)-[r:")
	b.WriteString(strings.Join(relTypes, "|"))
	b.WriteString("]->(m)\n")

	params := map[string]interface{}{
		"limit": spec.Limit,
		"skip":  spec.Skip,
	}
	if len(spec.NodeLabels) > 0 {
		b.WriteString("WHERE any(l IN labels(n) WHERE l IN $node_labels)\n")
		b.WriteString("   OR any(l IN labels(m) WHERE l IN $node_labels)\n")
		params["node_labels"] = spec.NodeLabels
	}

	b.WriteString("RETURN n, r, m\n")
	b.WriteString("ORDER BY id(r)\n")
	b.WriteString("SKIP $skip LIMIT $limit")
	return b.String(), params
}

func buildSearchQuery(term string, limit int, searchProperties []string) (string, map[string]interface{}) {
	props := make([]string, 0, len(searchProperties))
	for _, p := range searchProperties {
		if _, ok := graph.AllowedIDProperties[p]; ok {
			props = append(props, p)
		}
	}
	if len(props) == 0 {
		props = graph.DefaultSearchProperties
	}

	conditions := make([]string, 0, len(props))
	for _, p := range props {
		conditions = append(conditions,
			fmt.Sprintf("toLower(toString(n.%s)) CONTAINS toLower($search_term)", p))
	}

	query := fmt.Sprintf(`MATCH (n)
WHERE %s
RETURN n
ORDER BY id(n)
LIMIT $limit`, strings.Join(conditions, "\n   OR "))

	return query, map[string]interface{}{"search_term": term, "limit": limit}
}

func buildNodeByIDQuery(idProperty string) string {
	return fmt.Sprintf(`MATCH (n)
WHERE n.%s = $node_id
RETURN n
LIMIT 1`, graph.SanitizeIDProperty(idProperty))
}

func buildRelationshipsQuery(idProperty string, direction Direction) string {
	var pattern string
	switch direction {
	case DirectionIn:
		pattern = "(m)-[r]->(n)"
	case DirectionOut:
		pattern = "(n)-[r]->(m)"
	default:
		pattern = "(n)-[r]-(m)"
	}

	return fmt.Sprintf(`MATCH (n)
WHERE n.%s = $node_id
MATCH %s
RETURN n, r, m
ORDER BY id(r)
LIMIT $limit`, graph.SanitizeIDProperty(idProperty), pattern)
}

func buildEgoQuery(idProperty string, depth int) string {
	if depth < 1 {
		depth = 1
	}
	if depth > 3 {
		depth = 3
	}

	return fmt.Sprintf(`MATCH (center)
WHERE center.%s = $node_id
MATCH path = (center)-[*1..%d]-(connected)
UNWIND relationships(path) AS r
WITH DISTINCT r
RETURN startNode(r) AS n, r, endNode(r) AS m
ORDER BY id(r)
LIMIT $limit`, graph.SanitizeIDProperty(idProperty), depth)
}

const statisticsQuery = `MATCH (n)
WITH count(n) AS total_nodes
OPTIONAL MATCH ()-[r]->()
WITH total_nodes, count(r) AS total_relationships
MATCH (n)
UNWIND labels(n) AS label
WITH total_nodes, total_relationships, label, count(*) AS count
RETURN total_nodes, total_relationships,
       collect({label: label, count: count}) AS label_counts`

// statisticsPersonQuery derives the extra count by business attribute
// rather than label; it is merged into the label counts under the
// IndividualShareholder synthetic label.
const statisticsPersonQuery = `MATCH (n)
WHERE n.shareholderType = 'PERSON'
RETURN count(n) AS individual_count`
