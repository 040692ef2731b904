package graph

// GraphNode is a single node in a normalized query result. ID is the
// externally stable identifier resolved by the identity chain, Label the
// primary category. Properties always carry "displayName" and the raw
// "labels" list alongside the source properties.
type GraphNode struct {
	ID         string                 `json:"id"`
	Label      string                 `json:"label"`
	Properties map[string]interface{} `json:"properties"`
}

// GraphEdge is a relationship between two resolved node ids. Source and
// Target always reference nodes present in the same GraphData once the
// consistency cap has been applied.
type GraphEdge struct {
	ID         string                 `json:"id,omitempty"`
	Source     string                 `json:"source"`
	Target     string                 `json:"target"`
	Label      string                 `json:"label"`
	Properties map[string]interface{} `json:"properties"`
}

// GraphData is an ordered node/edge set. Node order is first-seen order.
type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// NodeIDs returns the node ids in insertion order.
func (g *GraphData) NodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

// RawRow is the canonical shape of one result row coming out of the query
// gateway. Every backend record is adapted into this shape at the gateway
// boundary; nothing downstream branches on driver types.
//
// A row carries a "near" node and optionally a "far" node plus the
// relationship between them. Surrogate keys are the store's internal,
// row-local ids used as last-resort identity.
type RawRow struct {
	Near          map[string]interface{}
	NearLabels    []string
	NearSurrogate string

	Far          map[string]interface{}
	FarLabels    []string
	FarSurrogate string

	Rel     map[string]interface{}
	RelType string
	RelID   string
	HasRel  bool
}

// LabelCount is one per-label entry of the statistics aggregation.
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// Statistics is the aggregate view of the stored graph. LabelCounts also
// carries the synthetic IndividualShareholder entry derived from the
// shareholderType discriminator property.
type Statistics struct {
	TotalNodes         int64        `json:"total_nodes"`
	TotalRelationships int64        `json:"total_relationships"`
	LabelCounts        []LabelCount `json:"label_counts"`
}
