package falkordb

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corelens/rca-engine/internal/causalgraph"
	"github.com/corelens/rca-engine/internal/store"
)

// fakeClient is an in-memory Client stand-in: queries are matched by
// substring, just enough to drive the Store's MERGE/MATCH statements
// without a real FalkorDB instance.
type fakeClient struct {
	connected bool
	rows      map[string]string // incidentId -> analysis result JSON blob
	queries   []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{rows: make(map[string]string)}
}

func (f *fakeClient) Connect(ctx context.Context) error { f.connected = true; return nil }
func (f *fakeClient) Close() error                      { return nil }
func (f *fakeClient) Ping(ctx context.Context) error    { return nil }
func (f *fakeClient) InitializeSchema(ctx context.Context) error { return nil }

func (f *fakeClient) Query(ctx context.Context, query string, params map[string]interface{}) (Result, error) {
	f.queries = append(f.queries, query)

	switch {
	case strings.Contains(query, "MERGE (a:AnalysisResult"):
		f.rows[params["incidentId"].(string)] = params["payload"].(string)
		return &fakeResult{}, nil
	case strings.HasPrefix(strings.TrimSpace(query), "MATCH (a:AnalysisResult"):
		blob, ok := f.rows[params["incidentId"].(string)]
		if !ok {
			return &fakeResult{}, nil
		}
		return &fakeResult{values: []string{blob}}, nil
	default:
		return &fakeResult{}, nil
	}
}

type fakeResult struct {
	values []string
	idx    int
}

func (r *fakeResult) Next() bool {
	if r.idx >= len(r.values) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeResult) Value() (string, bool) {
	if r.idx == 0 || r.idx > len(r.values) {
		return "", false
	}
	return r.values[r.idx-1], true
}

func newTestStore(t *testing.T) (*Store, *fakeClient) {
	t.Helper()
	client := newFakeClient()
	s, err := New(context.Background(), client, CacheConfig{})
	require.NoError(t, err)
	return s, client
}

func TestStore_SaveAndLoadAnalysisResultRoundTrips(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	record := store.AnalysisRecord{IncidentSummary: "checkout outage", EventCount: 42}
	require.NoError(t, s.SaveAnalysisResult(ctx, "inc-1", record))

	got, ok, err := s.LoadAnalysisResult(ctx, "inc-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "checkout outage", got.IncidentSummary)
	assert.Equal(t, 42, got.EventCount)
}

func TestStore_LoadAnalysisResultCachesSubsequentReads(t *testing.T) {
	s, client := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAnalysisResult(ctx, "inc-1", store.AnalysisRecord{IncidentSummary: "x"}))

	_, ok, err := s.LoadAnalysisResult(ctx, "inc-1")
	require.NoError(t, err)
	require.True(t, ok)
	queriesAfterFirstLoad := len(client.queries)

	_, ok, err = s.LoadAnalysisResult(ctx, "inc-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, queriesAfterFirstLoad, len(client.queries), "second load should be served from cache")
	assert.Greater(t, s.cache.hitRate(), 0.0)
}

func TestStore_SaveInvalidatesCache(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAnalysisResult(ctx, "inc-1", store.AnalysisRecord{IncidentSummary: "first"}))
	_, _, _ = s.LoadAnalysisResult(ctx, "inc-1")

	require.NoError(t, s.SaveAnalysisResult(ctx, "inc-1", store.AnalysisRecord{IncidentSummary: "second"}))

	got, ok, err := s.LoadAnalysisResult(ctx, "inc-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", got.IncidentSummary)
}

func TestStore_LoadMissingIncidentReportsNotOK(t *testing.T) {
	s, _ := newTestStore(t)
	_, ok, err := s.LoadAnalysisResult(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SaveCausalGraphIssuesNodeAndEdgeQueries(t *testing.T) {
	s, client := newTestStore(t)
	graph := causalgraph.Projection{
		Nodes: []causalgraph.ProjectedNode{{ID: "checkout"}, {ID: "inventory"}},
		Edges: []causalgraph.ProjectedEdge{{From: "inventory", To: "checkout", Confidence: 0.9}},
	}

	require.NoError(t, s.SaveCausalGraph(context.Background(), "inc-1", graph))

	var mergeServiceCount, mergeEdgeCount int
	for _, q := range client.queries {
		if strings.Contains(q, "MERGE (s:Service") {
			mergeServiceCount++
		}
		if strings.Contains(q, "MERGE (a)-[r:CAUSED]->(b)") {
			mergeEdgeCount++
		}
	}
	assert.Equal(t, 2, mergeServiceCount)
	assert.Equal(t, 1, mergeEdgeCount)
}

func TestStore_Close(t *testing.T) {
	s, _ := newTestStore(t)
	assert.NoError(t, s.Close())
}
