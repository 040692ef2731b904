package storage

import (
	"context"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/graphlens/graphlens/pkg/graph"
	"github.com/graphlens/graphlens/pkg/graph/metrics"
)

const (
	maxConnectAttempts = 3
	connectBackoffBase = 500 * time.Millisecond
)

// Neo4jStore implements GraphStore against an external Neo4j database.
// All operations run in read-only managed transactions; the driver owns
// pooling and releases connections on every exit path.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
	uri    string
	logger *logrus.Logger

	connMu    sync.Mutex
	connected bool
}

// NewNeo4jStore creates a store for the given bolt endpoint. The first
// query connects lazily; Connect can be called eagerly instead.
func NewNeo4jStore(uri, username, password string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Neo4j driver")
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Neo4jStore{driver: driver, uri: uri, logger: logger}, nil
}

// Connect verifies connectivity, retrying with exponential backoff up to
// maxConnectAttempts before giving up with a typed ConnectionError.
func (s *Neo4jStore) Connect(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt < maxConnectAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(connectBackoffBase << (attempt - 1)):
			case <-ctx.Done():
				return &ConnectionError{Kind: ConnNetworkUnavailable, Err: ctx.Err()}
			}
		}
		if lastErr = s.driver.VerifyConnectivity(ctx); lastErr == nil {
			s.logger.WithField("uri", s.uri).Info("connected to Neo4j")
			return nil
		}
		s.logger.WithError(lastErr).WithField("attempt", attempt+1).Warn("Neo4j connectivity check failed")
	}
	return classifyConnectionError(lastErr)
}

// ensureConnected runs the backoff connect before the store's first
// query. A failed attempt is not cached; the next caller retries, so a
// store outage at startup does not wedge the process.
func (s *Neo4jStore) ensureConnected(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.connected {
		return nil
	}
	if err := s.Connect(ctx); err != nil {
		return err
	}
	s.connected = true
	return nil
}

// VerifyConnectivity implements GraphStore.
func (s *Neo4jStore) VerifyConnectivity(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return classifyConnectionError(err)
	}
	return nil
}

// Close implements GraphStore.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// runRead executes a read transaction, retrying exactly once on a
// transient failure. Permanent failures (auth, syntax) return
// immediately.
func (s *Neo4jStore) runRead(ctx context.Context, operation, query string, params map[string]interface{}) ([]*neo4j.Record, error) {
	if err := s.ensureConnected(ctx); err != nil {
		return nil, err
	}

	timer := prometheus.NewTimer(metrics.GatewayQueryDuration.WithLabelValues(operation))
	defer timer.ObserveDuration()

	records, err := s.collect(ctx, query, params)
	if err == nil {
		return records, nil
	}

	qerr := classifyQueryError(err)
	if qerr.Transient {
		s.logger.WithError(err).WithField("operation", operation).Warn("transient query failure, retrying once")
		if records, retryErr := s.collect(ctx, query, params); retryErr == nil {
			return records, nil
		}
	}

	metrics.GatewayQueryErrors.WithLabelValues(operation, errorKind(qerr)).Inc()
	s.logger.WithError(err).WithField("operation", operation).Error("query failed")
	return nil, qerr
}

func errorKind(err *QueryError) string {
	if err.Transient {
		return "transient"
	}
	return "permanent"
}

func (s *Neo4jStore) collect(ctx context.Context, query string, params map[string]interface{}) ([]*neo4j.Record, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*neo4j.Record), nil
}

// FetchGraph implements GraphStore.
func (s *Neo4jStore) FetchGraph(ctx context.Context, spec FetchSpec) ([]graph.RawRow, error) {
	query, params := buildFetchQuery(spec)
	records, err := s.runRead(ctx, "fetch_graph", query, params)
	if err != nil {
		return nil, err
	}
	return rowsFromRecords(records), nil
}

// SearchNodes implements GraphStore.
func (s *Neo4jStore) SearchNodes(ctx context.Context, term string, limit int, searchProperties []string) ([]graph.RawRow, error) {
	query, params := buildSearchQuery(term, limit, searchProperties)
	records, err := s.runRead(ctx, "search_nodes", query, params)
	if err != nil {
		return nil, err
	}
	return rowsFromRecords(records), nil
}

// NodeByID implements GraphStore. A missing node is (nil, nil), not an
// error.
func (s *Neo4jStore) NodeByID(ctx context.Context, id, idProperty string) (*NodeRecord, error) {
	idProperty = graph.SanitizeIDProperty(idProperty)
	records, err := s.runRead(ctx, "node_by_id", buildNodeByIDQuery(idProperty), map[string]interface{}{"node_id": id})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	node, ok := nodeValue(records[0], "n")
	if !ok {
		return nil, nil
	}
	return &NodeRecord{
		Properties: node.Props,
		Labels:     node.Labels,
		Surrogate:  node.ElementId,
		IDProperty: idProperty,
	}, nil
}

// Relationships implements GraphStore.
func (s *Neo4jStore) Relationships(ctx context.Context, id, idProperty string, direction Direction, limit int) ([]graph.RawRow, error) {
	query := buildRelationshipsQuery(idProperty, direction)
	records, err := s.runRead(ctx, "relationships", query, map[string]interface{}{"node_id": id, "limit": limit})
	if err != nil {
		return nil, err
	}
	return rowsFromRecords(records), nil
}

// EgoGraph implements GraphStore.
func (s *Neo4jStore) EgoGraph(ctx context.Context, id, idProperty string, depth, limit int) ([]graph.RawRow, error) {
	query := buildEgoQuery(idProperty, depth)
	records, err := s.runRead(ctx, "ego_graph", query, map[string]interface{}{"node_id": id, "limit": limit})
	if err != nil {
		return nil, err
	}
	return rowsFromRecords(records), nil
}

// Statistics implements GraphStore. The property-predicate count is
// merged into the label counts under the IndividualShareholder label.
func (s *Neo4jStore) Statistics(ctx context.Context) (*graph.Statistics, error) {
	records, err := s.runRead(ctx, "statistics", statisticsQuery, nil)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &graph.Statistics{}, nil
	}

	stats := &graph.Statistics{}
	if v, ok := records[0].Get("total_nodes"); ok {
		stats.TotalNodes = asInt64(v)
	}
	if v, ok := records[0].Get("total_relationships"); ok {
		stats.TotalRelationships = asInt64(v)
	}
	if v, ok := records[0].Get("label_counts"); ok {
		if entries, ok := v.([]interface{}); ok {
			for _, entry := range entries {
				m, ok := entry.(map[string]interface{})
				if !ok {
					continue
				}
				label, _ := m["label"].(string)
				stats.LabelCounts = append(stats.LabelCounts, graph.LabelCount{
					Label: label,
					Count: asInt64(m["count"]),
				})
			}
		}
	}

	personRecords, err := s.runRead(ctx, "statistics", statisticsPersonQuery, nil)
	if err == nil && len(personRecords) > 0 {
		if v, ok := personRecords[0].Get("individual_count"); ok {
			stats.LabelCounts = append(stats.LabelCounts, graph.LabelCount{
				Label: graph.LabelIndividualShareholder,
				Count: asInt64(v),
			})
		}
	}

	return stats, nil
}

// Execute implements GraphStore. Queries run inside a read transaction,
// so write clauses are rejected by the server regardless of query text.
func (s *Neo4jStore) Execute(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error) {
	records, err := s.runRead(ctx, "execute", query, params)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		row := make(map[string]interface{}, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = simplifyValue(record.Values[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// rowsFromRecords adapts driver records into the canonical RawRow shape.
// This is the single point where driver types are visible.
func rowsFromRecords(records []*neo4j.Record) []graph.RawRow {
	rows := make([]graph.RawRow, 0, len(records))
	for _, record := range records {
		row := graph.RawRow{}

		if n, ok := nodeValue(record, "n"); ok {
			row.Near = n.Props
			row.NearLabels = n.Labels
			row.NearSurrogate = n.ElementId
		}
		if m, ok := nodeValue(record, "m"); ok {
			row.Far = m.Props
			row.FarLabels = m.Labels
			row.FarSurrogate = m.ElementId
		}
		if v, ok := record.Get("r"); ok {
			if rel, ok := v.(neo4j.Relationship); ok {
				row.Rel = rel.Props
				row.RelType = rel.Type
				row.RelID = rel.ElementId
				row.HasRel = true
			}
		}

		rows = append(rows, row)
	}
	return rows
}

func nodeValue(record *neo4j.Record, key string) (neo4j.Node, bool) {
	v, ok := record.Get(key)
	if !ok {
		return neo4j.Node{}, false
	}
	node, ok := v.(neo4j.Node)
	return node, ok
}

// simplifyValue flattens driver entities so generated-query results can
// be rendered as plain JSON.
func simplifyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case neo4j.Node:
		return val.Props
	case neo4j.Relationship:
		return val.Props
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = simplifyValue(item)
		}
		return out
	default:
		return v
	}
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
