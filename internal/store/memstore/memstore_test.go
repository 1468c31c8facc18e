package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corelens/rca-engine/internal/causalgraph"
	"github.com/corelens/rca-engine/internal/store"
)

func TestStore_SaveAndLoadAnalysisResult(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)
	ctx := context.Background()

	record := store.AnalysisRecord{IncidentSummary: "checkout degraded", EventCount: 12}
	require.NoError(t, s.SaveAnalysisResult(ctx, "inc-1", record))

	got, ok, err := s.LoadAnalysisResult(ctx, "inc-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "checkout degraded", got.IncidentSummary)
	assert.Equal(t, 12, got.EventCount)
}

func TestStore_LoadMissingIncidentReportsNotOK(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)

	_, ok, err := s.LoadAnalysisResult(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_EvictsLeastRecentlyUsedBeyondCapacity(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.SaveAnalysisResult(ctx, "a", store.AnalysisRecord{IncidentSummary: "a"}))
	require.NoError(t, s.SaveAnalysisResult(ctx, "b", store.AnalysisRecord{IncidentSummary: "b"}))
	require.NoError(t, s.SaveAnalysisResult(ctx, "c", store.AnalysisRecord{IncidentSummary: "c"}))

	_, ok, _ := s.LoadAnalysisResult(ctx, "a")
	assert.False(t, ok, "oldest entry should have been evicted")

	_, ok, _ = s.LoadAnalysisResult(ctx, "c")
	assert.True(t, ok)
}

func TestStore_SaveIncidentAndCausalGraphDoNotError(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.SaveIncident(ctx, "inc-1", store.IncidentRecord{Services: []string{"checkout"}}))
	require.NoError(t, s.SaveCausalGraph(ctx, "inc-1", causalgraph.Projection{RootCauses: []string{"checkout"}}))
}

func TestStore_Close(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}
