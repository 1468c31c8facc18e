// Package analyzer implements the heuristic root-cause analyzer: it
// turns an Incident Group and its Causal Graph into a prose summary,
// ranked root-cause hypotheses, and prioritized recommended actions,
// with an optional LLM-backed pass layered on top.
package analyzer

import (
	"fmt"
	"sort"
	"time"

	"github.com/corelens/rca-engine/internal/causalgraph"
	"github.com/corelens/rca-engine/internal/events"
	"github.com/corelens/rca-engine/internal/grouping"
	"github.com/corelens/rca-engine/internal/rcaconst"
)

// RootCause is a root-cause hypothesis.
type RootCause struct {
	Description string
	Confidence  float64
	Evidence    []string
}

// Category names the kind of action recommended.
type Category string

const (
	CategoryInvestigate Category = "investigate"
	CategoryFix         Category = "fix"
	CategoryMonitor     Category = "monitor"
	CategoryDocument    Category = "document"
)

// RecommendedAction is one prioritized next step.
type RecommendedAction struct {
	Description string
	Priority    int
	Category    Category
}

// TimeRange is an optional start/end instant pair.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Result is the analyzer's output for one Incident Group.
type Result struct {
	IncidentSummary    string
	RootCauses         []RootCause
	RecommendedActions []RecommendedAction
	AffectedServices   []string
	EventCount         int
	TimeRange          *TimeRange
	Graph              *causalgraph.Projection
	Metadata           map[string]interface{}
}

// ErrorPatternStats summarizes recurring error messages and levels
// across a group's events.
type ErrorPatternStats struct {
	MostCommonErrors []ErrorCount
	ErrorTypes       map[events.Level]int
}

// ErrorCount is one (message, count) pair.
type ErrorCount struct {
	Message string
	Count   int
}

// computeStats builds ErrorPatternStats from a group's events,
// counting only error-level (ERROR/CRITICAL/FATAL) messages for
// MostCommonErrors but all levels for ErrorTypes.
func computeStats(group grouping.Group) ErrorPatternStats {
	stats := ErrorPatternStats{ErrorTypes: make(map[events.Level]int)}

	counts := make(map[string]int)
	var order []string
	for _, ev := range group.Events {
		stats.ErrorTypes[ev.Level]++
		if !ev.Level.IsError() || ev.Message == "" {
			continue
		}
		if _, ok := counts[ev.Message]; !ok {
			order = append(order, ev.Message)
		}
		counts[ev.Message]++
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	for i, msg := range order {
		if i >= rcaconst.TopKErrors {
			break
		}
		stats.MostCommonErrors = append(stats.MostCommonErrors, ErrorCount{Message: msg, Count: counts[msg]})
	}

	return stats
}

// servicesByErrorCount returns a group's services sorted by
// descending error count, then lexicographically, using error counts
// derived from the causal graph's nodes.
func servicesByErrorCount(group grouping.Group, graph *causalgraph.Graph) []string {
	errorCount := make(map[string]int)
	for _, n := range graph.Nodes {
		errorCount[n.ID] = n.ErrorCount
	}

	services := append([]string(nil), group.Services...)
	sort.SliceStable(services, func(i, j int) bool {
		a, b := services[i], services[j]
		if errorCount[a] != errorCount[b] {
			return errorCount[a] > errorCount[b]
		}
		return a < b
	})
	return services
}

// Analyze produces the heuristic Analysis Result for an Incident
// Group. An empty group returns the empty-input contract: summary
// "No events to analyze" and empty lists.
func Analyze(group grouping.Group) Result {
	if len(group.Events) == 0 {
		return Result{IncidentSummary: "No events to analyze", Metadata: map[string]interface{}{}}
	}

	graph := causalgraph.Build(group)
	stats := computeStats(group)
	services := servicesByErrorCount(group, graph)
	roots := graph.RootCauses()

	result := Result{
		EventCount:       len(group.Events),
		AffectedServices: services,
		Metadata:         map[string]interface{}{"severity": string(group.Severity)},
	}
	if group.StartTime != nil && group.EndTime != nil {
		result.TimeRange = &TimeRange{Start: *group.StartTime, End: *group.EndTime}
	}
	projection := graph.Project()
	result.Graph = &projection

	result.IncidentSummary = summarize(group, services, roots)
	result.RootCauses = hypotheses(group, graph, stats, roots)
	result.RecommendedActions = recommend(services, roots, group)

	return result
}

func summarize(group grouping.Group, services []string, roots []*causalgraph.Node) string {
	shown := services
	suffix := ""
	if len(shown) > 3 {
		suffix = fmt.Sprintf(" (+%d more)", len(shown)-3)
		shown = shown[:3]
	}

	rootNames := make([]string, len(roots))
	for i, r := range roots {
		rootNames[i] = r.ID
	}

	return fmt.Sprintf(
		"%d event(s) across %d service(s) [%s]%s; root cause(s): %s; highest severity: %s",
		len(group.Events), len(services), joinStrings(shown), suffix, joinOrNone(rootNames), string(group.Severity),
	)
}

func joinStrings(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none identified"
	}
	return joinStrings(items)
}

func hypotheses(group grouping.Group, graph *causalgraph.Graph, stats ErrorPatternStats, roots []*causalgraph.Node) []RootCause {
	var result []RootCause

	for _, n := range roots {
		targets := graph.OutgoingTargets(n.ID)
		evidence := []string{
			fmt.Sprintf("%d error(s) observed", n.ErrorCount),
		}
		if !n.FirstError.IsZero() {
			evidence = append(evidence, fmt.Sprintf("first error at %s", n.FirstError.Format(time.RFC3339)))
		}
		if len(targets) > 0 {
			evidence = append(evidence, fmt.Sprintf("likely caused errors in %s", joinStrings(targets)))
		}
		result = append(result, RootCause{
			Description: fmt.Sprintf("%s service failure or degradation", n.ID),
			Confidence:  rcaconst.ConfidenceHigh,
			Evidence:    evidence,
		})
	}

	if len(stats.MostCommonErrors) > 0 && len(group.Events) > 0 {
		top := stats.MostCommonErrors[0]
		fraction := float64(top.Count) / float64(len(group.Events))
		if fraction >= rcaconst.RepeatedErrorThreshold {
			result = append(result, RootCause{
				Description: fmt.Sprintf("repeated error pattern: %q", top.Message),
				Confidence:  rcaconst.ConfidenceMedium,
				Evidence:    []string{fmt.Sprintf("%d occurrence(s), %.0f%% of events", top.Count, fraction*100)},
			})
		}
	}

	if len(result) == 0 {
		result = append(result, RootCause{
			Description: "generic cascading failure across observed services",
			Confidence:  rcaconst.ConfidenceLow,
			Evidence:    []string{"no dominant root-cause node or repeated error pattern identified"},
		})
	}

	return result
}

func recommend(services []string, roots []*causalgraph.Node, group grouping.Group) []RecommendedAction {
	var actions []RecommendedAction

	if len(roots) > 0 {
		names := make([]string, len(roots))
		for i, r := range roots {
			names[i] = r.ID
		}
		actions = append(actions, RecommendedAction{
			Description: fmt.Sprintf("investigate %s", joinStrings(names)),
			Priority:    rcaconst.PriorityCritical,
			Category:    CategoryInvestigate,
		})
	}

	for _, ev := range group.Events {
		if ev.Level == events.LevelCritical || ev.Level == events.LevelFatal {
			actions = append(actions, RecommendedAction{
				Description: "review critical errors immediately",
				Priority:    rcaconst.PriorityCritical,
				Category:    CategoryInvestigate,
			})
			break
		}
	}

	top := services
	if len(top) > 3 {
		top = top[:3]
	}
	for _, svc := range top {
		actions = append(actions, RecommendedAction{
			Description: fmt.Sprintf("check %s logs, metrics, recent deployments", svc),
			Priority:    rcaconst.PriorityHigh,
			Category:    CategoryMonitor,
		})
	}

	actions = append(actions,
		RecommendedAction{Description: "set up alerts for similar patterns", Priority: rcaconst.PriorityMedium, Category: CategoryMonitor},
		RecommendedAction{Description: "document in incident postmortem", Priority: rcaconst.PriorityLow, Category: CategoryDocument},
	)

	return actions
}
