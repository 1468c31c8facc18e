package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corelens/rca-engine/internal/events"
	"github.com/corelens/rca-engine/internal/grouping"
	"github.com/corelens/rca-engine/internal/llm"
)

func ev(service string, t time.Time, level events.Level, message string) *events.Event {
	ts := t
	return &events.Event{Service: service, Timestamp: &ts, Level: level, Message: message}
}

func TestAnalyze_EmptyInputContract(t *testing.T) {
	r := Analyze(grouping.Group{})
	assert.Equal(t, "No events to analyze", r.IncidentSummary)
	assert.Empty(t, r.RootCauses)
	assert.Empty(t, r.RecommendedActions)
}

func TestAnalyze_RootCauseHypothesisForGraphSource(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	group := grouping.Group{
		Services: []string{"db", "api"},
		Severity: events.LevelCritical,
		Events: []*events.Event{
			ev("db", base, events.LevelCritical, "connection refused"),
			ev("api", base.Add(5*time.Second), events.LevelError, "upstream failure"),
		},
	}

	r := Analyze(group)
	require.NotEmpty(t, r.RootCauses)
	assert.Contains(t, r.RootCauses[0].Description, "db")
	assert.Equal(t, 0.8, r.RootCauses[0].Confidence)
}

func TestAnalyze_PatternHypothesisAboveThreshold(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var evs []*events.Event
	for i := 0; i < 6; i++ {
		evs = append(evs, ev("api", base.Add(time.Duration(i)*time.Second), events.LevelError, "timeout calling db"))
	}
	evs = append(evs, ev("api", base.Add(10*time.Second), events.LevelInfo, "ok"))

	group := grouping.Group{Services: []string{"api"}, Events: evs}
	r := Analyze(group)

	var found bool
	for _, rc := range r.RootCauses {
		if rc.Confidence == 0.5 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyze_FallsBackToGenericCascadingFailure(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	group := grouping.Group{
		Services: []string{"api"},
		Events: []*events.Event{
			ev("", base, events.LevelInfo, "something happened"),
		},
	}
	r := Analyze(group)
	require.Len(t, r.RootCauses, 1)
	assert.Equal(t, 0.3, r.RootCauses[0].Confidence)
}

func TestAnalyze_RecommendationsIncludeInvestigateForRootCause(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	group := grouping.Group{
		Services: []string{"db", "api"},
		Events: []*events.Event{
			ev("db", base, events.LevelError, "boom"),
			ev("api", base.Add(time.Second), events.LevelError, "upstream failure"),
		},
	}
	r := Analyze(group)
	require.NotEmpty(t, r.RecommendedActions)
	assert.Equal(t, 1, r.RecommendedActions[0].Priority)
	assert.Equal(t, CategoryInvestigate, r.RecommendedActions[0].Category)
}

type stubProvider struct {
	resp *llm.Response
	err  error
}

func (s *stubProvider) Chat(ctx context.Context, systemPrompt string, messages []llm.Message, tools []llm.ToolDefinition) (*llm.Response, error) {
	return s.resp, s.err
}
func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-model" }

func TestAnalyzeWithLLM_AddsNarrativeMetadata(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	group := grouping.Group{
		Services: []string{"db"},
		Events:   []*events.Event{ev("db", base, events.LevelError, "boom")},
	}
	provider := &stubProvider{resp: &llm.Response{Content: "db likely caused this"}}

	r := AnalyzeWithLLM(context.Background(), group, provider)
	meta, ok := r.Metadata["llm_analysis"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, meta["used"])
	assert.Equal(t, "db likely caused this", meta["narrative"])
}

func TestAnalyzeWithLLM_EmptyGroupSkipsProvider(t *testing.T) {
	provider := &stubProvider{}
	r := AnalyzeWithLLM(context.Background(), grouping.Group{}, provider)
	assert.Equal(t, "No events to analyze", r.IncidentSummary)
	_, ok := r.Metadata["llm_analysis"]
	assert.False(t, ok)
}
