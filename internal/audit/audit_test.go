package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corelens/rca-engine/internal/store"
)

func TestTrail_RecordWritesOneJSONLineWithTopAction(t *testing.T) {
	var buf bytes.Buffer
	trail := New(&buf)

	rec := store.AnalysisRecord{
		IncidentSummary: "checkout errors spiked",
		EventCount:      42,
		RecommendedActions: []store.ActionRecord{
			{Description: "monitor", Priority: 3, Category: "monitor"},
			{Description: "roll back deploy", Priority: 1, Category: "fix"},
		},
	}

	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	require.NoError(t, trail.Record(now, "incident-0", rec))

	var entry Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "incident-0", entry.IncidentID)
	assert.Equal(t, 42, entry.EventCount)
	assert.Equal(t, "roll back deploy", entry.TopAction)
	assert.Equal(t, "fix", entry.TopActionReason)
}

func TestTrail_RecordWithNoActionsLeavesTopActionEmpty(t *testing.T) {
	var buf bytes.Buffer
	trail := New(&buf)

	require.NoError(t, trail.Record(time.Now(), "incident-1", store.AnalysisRecord{}))

	var entry Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Empty(t, entry.TopAction)
}

func TestTrail_NilSinkIsANoOp(t *testing.T) {
	trail := New(nil)
	require.NoError(t, trail.Record(time.Now(), "incident-2", store.AnalysisRecord{}))
}

func TestTrail_RecordAppendsMultipleEntries(t *testing.T) {
	var buf bytes.Buffer
	trail := New(&buf)

	require.NoError(t, trail.Record(time.Now(), "incident-a", store.AnalysisRecord{}))
	require.NoError(t, trail.Record(time.Now(), "incident-b", store.AnalysisRecord{}))

	scanner := bufio.NewScanner(&buf)
	var lines int
	for scanner.Scan() {
		lines++
	}
	assert.Equal(t, 2, lines)
}
