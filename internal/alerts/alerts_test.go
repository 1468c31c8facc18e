package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelate_GroupsBySourceAndSeverity(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	input := []Alert{
		{ID: "1", Source: "prometheus", Severity: "critical", CreatedAt: base},
		{ID: "2", Source: "prometheus", Severity: "critical", CreatedAt: base.Add(time.Minute)},
		{ID: "3", Source: "prometheus", Severity: "critical", CreatedAt: base.Add(2 * time.Minute)},
	}
	rules := []Rule{{TimeWindow: 5 * time.Minute, GroupBySource: true, MinAlerts: 2}}

	groups := Correlate(input, rules)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Alerts, 3)
}

func TestCorrelate_SplitsOnGapBeyondWindow(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	input := []Alert{
		{ID: "1", Source: "prometheus", Severity: "critical", CreatedAt: base},
		{ID: "2", Source: "prometheus", Severity: "critical", CreatedAt: base.Add(time.Minute)},
		{ID: "3", Source: "prometheus", Severity: "critical", CreatedAt: base.Add(time.Hour)},
		{ID: "4", Source: "prometheus", Severity: "critical", CreatedAt: base.Add(time.Hour + time.Minute)},
	}
	rules := []Rule{{TimeWindow: 5 * time.Minute, GroupBySource: true, MinAlerts: 2}}

	groups := Correlate(input, rules)
	require.Len(t, groups, 2)
}

func TestCorrelate_MissingTagBecomesUnknown(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	input := []Alert{
		{ID: "1", Source: "a", Severity: "warn", Tags: map[string]string{"env": "prod"}, CreatedAt: base},
		{ID: "2", Source: "b", Severity: "warn", CreatedAt: base.Add(time.Minute)},
	}
	rules := []Rule{{TimeWindow: 5 * time.Minute, GroupByTags: []string{"env"}, MinAlerts: 1}}

	groups := Correlate(input, rules)
	require.Len(t, groups, 2)
}

func TestCorrelate_FiltersBelowMinAlerts(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	input := []Alert{
		{ID: "1", Source: "a", Severity: "warn", CreatedAt: base},
	}
	rules := []Rule{{TimeWindow: 5 * time.Minute, GroupBySource: true, MinAlerts: 2}}

	groups := Correlate(input, rules)
	assert.Empty(t, groups)
}

func TestSummarize_ComputesHistogramsAndDuration(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	g := Group{Alerts: []Alert{
		{ID: "1", Source: "a", Severity: "warn", CreatedAt: base},
		{ID: "2", Source: "a", Severity: "critical", CreatedAt: base.Add(time.Minute)},
	}}
	s := Summarize(g)
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, "a", s.DominantSource)
	assert.Equal(t, time.Minute, s.Duration)
}

func TestSuppress_KeepFirstRetainsEarliest(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	g := Group{Alerts: []Alert{
		{ID: "2", CreatedAt: base.Add(time.Minute)},
		{ID: "1", CreatedAt: base},
	}}
	suppressed := Suppress(g, true)
	assert.Equal(t, []string{"2"}, suppressed)
}

func TestSuppress_AllWhenNotKeepFirst(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	g := Group{Alerts: []Alert{
		{ID: "1", CreatedAt: base},
		{ID: "2", CreatedAt: base.Add(time.Minute)},
	}}
	suppressed := Suppress(g, false)
	assert.ElementsMatch(t, []string{"1", "2"}, suppressed)
}
