package falkordb

import (
	"context"
	"fmt"

	"github.com/corelens/rca-engine/internal/causalgraph"
	"github.com/corelens/rca-engine/internal/logging"
	"github.com/corelens/rca-engine/internal/store"
)

// Store implements store.Store against FalkorDB.
type Store struct {
	client Client
	cache  *queryCache
	logger *logging.Logger
}

// New connects client and initializes the schema. cacheConfig's zero
// value falls back to DefaultCacheConfig.
func New(ctx context.Context, client Client, cacheConfig CacheConfig) (*Store, error) {
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	if err := client.InitializeSchema(ctx); err != nil {
		return nil, fmt.Errorf("falkordb: %w", err)
	}

	cache, err := newQueryCache(cacheConfig)
	if err != nil {
		return nil, fmt.Errorf("falkordb: %w", err)
	}

	return &Store{
		client: client,
		cache:  cache,
		logger: logging.GetLogger("store.falkordb"),
	}, nil
}

// SaveIncident implements store.Store.
func (s *Store) SaveIncident(ctx context.Context, incidentID string, record store.IncidentRecord) error {
	blob, err := marshalBlob(record)
	if err != nil {
		return err
	}
	_, err = s.client.Query(ctx,
		"MERGE (i:Incident {id: $id}) SET i.payload = $payload",
		map[string]interface{}{"id": incidentID, "payload": blob})
	return err
}

// SaveCausalGraph implements store.Store. Each node becomes a Service
// vertex scoped to the incident; each edge becomes a CAUSED
// relationship between two such vertices.
func (s *Store) SaveCausalGraph(ctx context.Context, incidentID string, graph causalgraph.Projection) error {
	for _, n := range graph.Nodes {
		_, err := s.client.Query(ctx,
			`MERGE (s:Service {incidentId: $incidentId, id: $id})
			 SET s.errorCount = $errorCount, s.firstError = $firstError, s.lastError = $lastError`,
			map[string]interface{}{
				"incidentId": incidentID,
				"id":         n.ID,
				"errorCount": n.ErrorCount,
				"firstError": n.FirstError,
				"lastError":  n.LastError,
			})
		if err != nil {
			return fmt.Errorf("falkordb: save node %s: %w", n.ID, err)
		}
	}

	for _, e := range graph.Edges {
		evidenceBlob, err := marshalBlob(e.Evidence)
		if err != nil {
			return err
		}
		_, err = s.client.Query(ctx,
			`MATCH (a:Service {incidentId: $incidentId, id: $from}), (b:Service {incidentId: $incidentId, id: $to})
			 MERGE (a)-[r:CAUSED]->(b)
			 SET r.confidence = $confidence, r.timeDeltaSeconds = $timeDeltaSeconds, r.evidence = $evidence`,
			map[string]interface{}{
				"incidentId":       incidentID,
				"from":             e.From,
				"to":               e.To,
				"confidence":       e.Confidence,
				"timeDeltaSeconds": e.TimeDeltaSeconds,
				"evidence":         evidenceBlob,
			})
		if err != nil {
			return fmt.Errorf("falkordb: save edge %s->%s: %w", e.From, e.To, err)
		}
	}

	return nil
}

// SaveAnalysisResult implements store.Store.
func (s *Store) SaveAnalysisResult(ctx context.Context, incidentID string, record store.AnalysisRecord) error {
	blob, err := marshalBlob(record)
	if err != nil {
		return err
	}
	if _, err := s.client.Query(ctx,
		"MERGE (a:AnalysisResult {incidentId: $incidentId}) SET a.payload = $payload",
		map[string]interface{}{"incidentId": incidentID, "payload": blob}); err != nil {
		return err
	}

	s.cache.invalidate(incidentID)
	return nil
}

// LoadAnalysisResult implements store.Store, consulting the read
// cache before querying FalkorDB.
func (s *Store) LoadAnalysisResult(ctx context.Context, incidentID string) (store.AnalysisRecord, bool, error) {
	if record, ok := s.cache.get(incidentID); ok {
		return record, true, nil
	}

	result, err := s.client.Query(ctx,
		"MATCH (a:AnalysisResult {incidentId: $incidentId}) RETURN a.payload",
		map[string]interface{}{"incidentId": incidentID})
	if err != nil {
		return store.AnalysisRecord{}, false, err
	}

	if !result.Next() {
		return store.AnalysisRecord{}, false, nil
	}
	blob, ok := result.Value()
	if !ok {
		return store.AnalysisRecord{}, false, nil
	}

	var record store.AnalysisRecord
	if err := unmarshalBlob(blob, &record); err != nil {
		return store.AnalysisRecord{}, false, fmt.Errorf("falkordb: decode analysis result: %w", err)
	}

	s.cache.put(incidentID, record)
	return record, true, nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return s.client.Close()
}

// QueryCacheHitRate returns the read cache's lifetime hit rate, for
// callers that export it as a metrics gauge.
func (s *Store) QueryCacheHitRate() float64 {
	return s.cache.hitRate()
}
