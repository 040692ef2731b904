package graph

import (
	"errors"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"
)

// errUnresolvableEndpoint enforces the invariant that an edge is only
// emitted with two resolved endpoint ids. ResolveNodeID currently ends
// at the "unknown" sentinel and never returns ""; this fires only if
// that chain changes.
var errUnresolvableEndpoint = errors.New("relationship endpoint did not resolve to a node id")

var builderLog = newLogger()

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}

// BuildGraphData normalizes raw gateway rows into one GraphData.
//
// Nodes are registered in first-seen order and deduplicated by resolved
// id; the first registration of an id wins, later rows never overwrite
// its properties. Relationships become edges with both endpoints resolved
// through the same identity chain; the stockRatio value, when present, is
// also exposed under its pct alias. A malformed row is skipped and never
// aborts the batch.
func BuildGraphData(rows []RawRow) GraphData {
	data := GraphData{
		Nodes: make([]GraphNode, 0, len(rows)),
		Edges: make([]GraphEdge, 0, len(rows)),
	}
	seen := mapset.NewThreadUnsafeSet[string]()

	for i, row := range rows {
		if err := buildRow(&data, seen, row); err != nil {
			builderLog.WithError(err).WithField("row", i).Warn("skipping unresolvable row")
		}
	}
	return data
}

func buildRow(data *GraphData, seen mapset.Set[string], row RawRow) error {
	registerNode(data, seen, row.Near, row.NearLabels, row.NearSurrogate)
	if row.Far != nil || len(row.FarLabels) > 0 || row.FarSurrogate != "" {
		registerNode(data, seen, row.Far, row.FarLabels, row.FarSurrogate)
	}

	if !row.HasRel {
		return nil
	}

	sourceID := ResolveNodeID(row.Near, row.NearLabels, row.NearSurrogate)
	targetID := ResolveNodeID(row.Far, row.FarLabels, row.FarSurrogate)
	if sourceID == "" || targetID == "" {
		return errUnresolvableEndpoint
	}

	relType := row.RelType
	if relType == "" {
		relType = RelFallback
	}

	props := make(map[string]interface{}, len(row.Rel)+1)
	for k, v := range row.Rel {
		props[k] = v
	}
	if ratio, ok := props[PropStockRatio]; ok {
		props[PropPct] = ratio
	}

	data.Edges = append(data.Edges, GraphEdge{
		ID:         row.RelID,
		Source:     sourceID,
		Target:     targetID,
		Label:      relType,
		Properties: props,
	})
	return nil
}

func registerNode(data *GraphData, seen mapset.Set[string], props map[string]interface{}, labels []string, surrogate string) {
	id := ResolveNodeID(props, labels, surrogate)
	if id == "" || seen.Contains(id) {
		return
	}

	nodeProps := make(map[string]interface{}, len(props)+2)
	for k, v := range props {
		nodeProps[k] = v
	}
	nodeProps[PropDisplayName] = DisplayName(props, labels)
	nodeProps[PropLabels] = labels

	data.Nodes = append(data.Nodes, GraphNode{
		ID:         id,
		Label:      ResolvePrimaryLabel(labels, props),
		Properties: nodeProps,
	})
	seen.Add(id)
}
