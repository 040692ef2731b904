package storage

import (
	"context"

	"github.com/graphlens/graphlens/pkg/graph"
)

// Direction selects which relationships of a node to traverse.
type Direction string

const (
	DirectionIn   Direction = "in"
	DirectionOut  Direction = "out"
	DirectionBoth Direction = "both"
)

// FetchSpec describes one page of a filtered relationship fetch. Rows are
// ordered by the store's internal relationship id, so increasing Skip
// with a fixed filter never skips or repeats a row on a static dataset.
type FetchSpec struct {
	Limit      int
	Skip       int
	NodeLabels []string
	RelTypes   []string
}

// NodeRecord is a single node lookup result.
type NodeRecord struct {
	Properties map[string]interface{}
	Labels     []string
	Surrogate  string
	IDProperty string
}

// GraphStore is the read-only query gateway consumed by the model builder
// and the conversational pipeline.
type GraphStore interface {
	FetchGraph(ctx context.Context, spec FetchSpec) ([]graph.RawRow, error)
	SearchNodes(ctx context.Context, term string, limit int, searchProperties []string) ([]graph.RawRow, error)
	NodeByID(ctx context.Context, id, idProperty string) (*NodeRecord, error)
	Relationships(ctx context.Context, id, idProperty string, direction Direction, limit int) ([]graph.RawRow, error)
	EgoGraph(ctx context.Context, id, idProperty string, depth, limit int) ([]graph.RawRow, error)
	Statistics(ctx context.Context) (*graph.Statistics, error)
	Execute(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}
