// Package memstore implements the default, process-local store.Store
// backend: three independently bounded LRU caches (incidents, causal
// graphs, analysis results), following the bounding strategy
// internal/store/falkordb/query_cache.go uses for cached Cypher results, scaled
// down to a much smaller per-incident schema.
package memstore

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/corelens/rca-engine/internal/causalgraph"
	"github.com/corelens/rca-engine/internal/store"
)

// DefaultCapacity is the number of incidents each of the three caches
// retains before evicting the least recently used entry.
const DefaultCapacity = 256

// Store is an in-memory store.Store backed by bounded LRU caches. It
// holds no connection and never returns an error from Save*; reads
// that miss simply report ok=false.
type Store struct {
	mu        sync.RWMutex
	incidents *lru.Cache[string, store.IncidentRecord]
	graphs    *lru.Cache[string, causalgraph.Projection]
	analyses  *lru.Cache[string, store.AnalysisRecord]
}

// New builds a Store whose caches each hold up to capacity entries.
// A capacity <= 0 falls back to DefaultCapacity.
func New(capacity int) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	incidents, err := lru.New[string, store.IncidentRecord](capacity)
	if err != nil {
		return nil, fmt.Errorf("memstore: incidents cache: %w", err)
	}
	graphs, err := lru.New[string, causalgraph.Projection](capacity)
	if err != nil {
		return nil, fmt.Errorf("memstore: graphs cache: %w", err)
	}
	analyses, err := lru.New[string, store.AnalysisRecord](capacity)
	if err != nil {
		return nil, fmt.Errorf("memstore: analyses cache: %w", err)
	}

	return &Store{incidents: incidents, graphs: graphs, analyses: analyses}, nil
}

// SaveIncident implements store.Store.
func (s *Store) SaveIncident(ctx context.Context, incidentID string, record store.IncidentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incidents.Add(incidentID, record)
	return nil
}

// SaveCausalGraph implements store.Store.
func (s *Store) SaveCausalGraph(ctx context.Context, incidentID string, graph causalgraph.Projection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs.Add(incidentID, graph)
	return nil
}

// SaveAnalysisResult implements store.Store.
func (s *Store) SaveAnalysisResult(ctx context.Context, incidentID string, record store.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses.Add(incidentID, record)
	return nil
}

// LoadAnalysisResult implements store.Store.
func (s *Store) LoadAnalysisResult(ctx context.Context, incidentID string) (store.AnalysisRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.analyses.Get(incidentID)
	return record, ok, nil
}

// Close implements store.Store. memstore holds no external resources.
func (s *Store) Close() error { return nil }
