// Package store defines the persistence facade: saving and loading
// the artifacts one incident's analysis produces (its member events,
// its causal graph, its final analysis result). Persistence is
// optional — the pipeline runs end-to-end with no Store configured at
// all — so implementations exist only to let a deployment keep a
// durable record, not to gate analysis on a working backend.
package store

import (
	"context"
	"time"

	"github.com/corelens/rca-engine/internal/analyzer"
	"github.com/corelens/rca-engine/internal/causalgraph"
	"github.com/corelens/rca-engine/internal/grouping"
)

// RootCauseRecord is the persisted form of one root-cause hypothesis.
type RootCauseRecord struct {
	Description string   `json:"description"`
	Confidence  float64  `json:"confidence"`
	Evidence    []string `json:"evidence"`
}

// ActionRecord is the persisted form of one recommended action.
type ActionRecord struct {
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Category    string `json:"category"`
}

// TimeRangeRecord is the persisted start/end instant pair.
type TimeRangeRecord struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AnalysisRecord is the stable, persisted shape of an analyzer.Result
// — the Analysis Result JSON projection's field set.
type AnalysisRecord struct {
	IncidentSummary    string                  `json:"incident_summary"`
	ProbableRootCauses []RootCauseRecord       `json:"probable_root_causes"`
	RecommendedActions []ActionRecord          `json:"recommended_actions"`
	AffectedServices   []string                `json:"affected_services"`
	EventCount         int                     `json:"event_count"`
	TimeRange          *TimeRangeRecord        `json:"time_range,omitempty"`
	CausalGraph        *causalgraph.Projection `json:"causal_graph,omitempty"`
	Metadata           map[string]interface{}  `json:"metadata,omitempty"`
}

// NewAnalysisRecord converts an analyzer.Result into its persisted
// form.
func NewAnalysisRecord(result analyzer.Result) AnalysisRecord {
	rec := AnalysisRecord{
		IncidentSummary:  result.IncidentSummary,
		AffectedServices: result.AffectedServices,
		EventCount:       result.EventCount,
		CausalGraph:      result.Graph,
		Metadata:         result.Metadata,
	}
	for _, rc := range result.RootCauses {
		rec.ProbableRootCauses = append(rec.ProbableRootCauses, RootCauseRecord{
			Description: rc.Description,
			Confidence:  rc.Confidence,
			Evidence:    rc.Evidence,
		})
	}
	for _, a := range result.RecommendedActions {
		rec.RecommendedActions = append(rec.RecommendedActions, ActionRecord{
			Description: a.Description,
			Priority:    a.Priority,
			Category:    string(a.Category),
		})
	}
	if result.TimeRange != nil {
		rec.TimeRange = &TimeRangeRecord{Start: result.TimeRange.Start, End: result.TimeRange.End}
	}
	return rec
}

// IncidentRecord is the persisted form of a grouping.Group: the raw
// member events that made up one incident, independent of whatever
// analysis was later run over them.
type IncidentRecord struct {
	Services  []string       `json:"services"`
	Severity  string         `json:"severity"`
	StartTime *time.Time     `json:"start_time,omitempty"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	Events    []*EventRecord `json:"events"`
}

// EventRecord is the persisted form of one events.Event.
type EventRecord struct {
	Timestamp *time.Time             `json:"timestamp,omitempty"`
	Service   string                 `json:"service,omitempty"`
	Level     string                 `json:"level,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewIncidentRecord converts a grouping.Group into its persisted
// form.
func NewIncidentRecord(group grouping.Group) IncidentRecord {
	rec := IncidentRecord{
		Services:  group.Services,
		Severity:  string(group.Severity),
		StartTime: group.StartTime,
		EndTime:   group.EndTime,
	}
	for _, ev := range group.Events {
		rec.Events = append(rec.Events, &EventRecord{
			Timestamp: ev.Timestamp,
			Service:   ev.Service,
			Level:     string(ev.Level),
			Message:   ev.Message,
			Metadata:  ev.Metadata,
		})
	}
	return rec
}

// Store is the persistence facade every backend implements.
type Store interface {
	// SaveIncident persists an incident's member events.
	SaveIncident(ctx context.Context, incidentID string, record IncidentRecord) error

	// SaveCausalGraph persists the causal graph built for an incident.
	SaveCausalGraph(ctx context.Context, incidentID string, graph causalgraph.Projection) error

	// SaveAnalysisResult persists the full analysis output for an
	// incident.
	SaveAnalysisResult(ctx context.Context, incidentID string, record AnalysisRecord) error

	// LoadAnalysisResult retrieves a previously saved analysis result.
	// ok is false if nothing is stored under incidentID.
	LoadAnalysisResult(ctx context.Context, incidentID string) (record AnalysisRecord, ok bool, err error)

	// Close releases any resources the backend holds.
	Close() error
}
