package trace

import (
	"fmt"
	"sort"

	"github.com/corelens/rca-engine/internal/rcaconst"
)

// IssueType names the category of a detected trace issue.
type IssueType string

const (
	IssueTraceError         IssueType = "trace_error"
	IssueErrorPropagation   IssueType = "error_propagation"
	IssueSlowSpans          IssueType = "slow_spans"
	IssueSlowCriticalPath   IssueType = "slow_critical_path"
	IssueServiceDependencies IssueType = "service_dependencies"
)

// Issue is one finding produced by AnalyzeTrace.
type Issue struct {
	Type        IssueType
	Description string
	Details     map[string]interface{}
}

// ServiceDependency is a caller -> callee edge derived from a
// parent/child span pair crossing a service boundary.
type ServiceDependency struct {
	Caller string
	Callee string
}

// AnalyzeTrace inspects a built Trace and returns its ordered list of
// issues, in the order the categories are defined above.
func AnalyzeTrace(t *Trace) []Issue {
	var issues []Issue

	if issue, ok := traceErrorIssue(t); ok {
		issues = append(issues, issue)
	}
	if issue, ok := errorPropagationIssue(t); ok {
		issues = append(issues, issue)
	}
	if issue, ok := slowSpansIssue(t); ok {
		issues = append(issues, issue)
	}
	if issue, ok := slowCriticalPathIssue(t); ok {
		issues = append(issues, issue)
	}
	if issue, ok := serviceDependenciesIssue(t); ok {
		issues = append(issues, issue)
	}

	return issues
}

func sortedSpanIDs(t *Trace) []string {
	ids := make([]string, 0, len(t.Spans))
	for id := range t.Spans {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func traceErrorIssue(t *Trace) (Issue, bool) {
	seen := make(map[string]bool)
	var services []string
	for _, id := range sortedSpanIDs(t) {
		s := t.Spans[id]
		if s.Status == StatusError && !seen[s.ServiceName] {
			seen[s.ServiceName] = true
			services = append(services, s.ServiceName)
		}
	}
	if len(services) == 0 {
		return Issue{}, false
	}
	return Issue{
		Type:        IssueTraceError,
		Description: fmt.Sprintf("%d service(s) reported span errors", len(services)),
		Details:     map[string]interface{}{"services": services},
	}, true
}

// errorHop is one link in a chain of propagating errors.
type errorHop struct {
	FromService string  `json:"from_service"`
	ToService   string  `json:"to_service"`
	TimeDiffMs  float64 `json:"time_diff_ms"`
}

func errorPropagationIssue(t *Trace) (Issue, bool) {
	var errSpans []Span
	for _, id := range sortedSpanIDs(t) {
		s := t.Spans[id]
		if s.Status == StatusError {
			errSpans = append(errSpans, s)
		}
	}
	sort.SliceStable(errSpans, func(i, j int) bool {
		return errSpans[i].StartTime.Before(errSpans[j].StartTime)
	})

	var chain []errorHop
	for i := 1; i < len(errSpans); i++ {
		prev, next := errSpans[i-1], errSpans[i]
		diff := next.StartTime.Sub(prev.EndTime)
		if diff >= 0 && diff <= rcaconst.ErrorPropagationWindow {
			chain = append(chain, errorHop{
				FromService: prev.ServiceName,
				ToService:   next.ServiceName,
				TimeDiffMs:  float64(diff.Milliseconds()),
			})
		}
	}
	if len(chain) == 0 {
		return Issue{}, false
	}
	return Issue{
		Type:        IssueErrorPropagation,
		Description: fmt.Sprintf("error propagated across %d hop(s)", len(chain)),
		Details:     map[string]interface{}{"chain": chain},
	}, true
}

func slowSpansIssue(t *Trace) (Issue, bool) {
	var slow []Span
	for _, id := range sortedSpanIDs(t) {
		s := t.Spans[id]
		if s.Duration() > rcaconst.SlowSpanThreshold {
			slow = append(slow, s)
		}
	}
	if len(slow) == 0 {
		return Issue{}, false
	}

	sort.SliceStable(slow, func(i, j int) bool { return slow[i].Duration() > slow[j].Duration() })
	if len(slow) > rcaconst.MaxSlowSpans {
		slow = slow[:rcaconst.MaxSlowSpans]
	}

	return Issue{
		Type:        IssueSlowSpans,
		Description: fmt.Sprintf("%d span(s) exceeded the slow-span threshold", len(slow)),
		Details:     map[string]interface{}{"spans": slow},
	}, true
}

func slowCriticalPathIssue(t *Trace) (Issue, bool) {
	path := t.CriticalPath()
	total := TotalDuration(path)
	if total <= rcaconst.SlowSpanThreshold {
		return Issue{}, false
	}
	return Issue{
		Type:        IssueSlowCriticalPath,
		Description: fmt.Sprintf("critical path duration %s exceeds the slow-span threshold", total),
		Details:     map[string]interface{}{"path": path, "duration_ms": float64(total.Milliseconds())},
	}, true
}

func serviceDependenciesIssue(t *Trace) (Issue, bool) {
	if len(t.Services) < 2 {
		return Issue{}, false
	}

	seen := make(map[ServiceDependency]bool)
	var deps []ServiceDependency
	for _, id := range sortedSpanIDs(t) {
		s := t.Spans[id]
		if s.ParentSpanID == "" {
			continue
		}
		parent, ok := t.Spans[s.ParentSpanID]
		if !ok || parent.ServiceName == s.ServiceName {
			continue
		}
		dep := ServiceDependency{Caller: parent.ServiceName, Callee: s.ServiceName}
		if !seen[dep] {
			seen[dep] = true
			deps = append(deps, dep)
		}
	}
	if len(deps) == 0 {
		return Issue{}, false
	}

	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Caller != deps[j].Caller {
			return deps[i].Caller < deps[j].Caller
		}
		return deps[i].Callee < deps[j].Callee
	})

	return Issue{
		Type:        IssueServiceDependencies,
		Description: fmt.Sprintf("%d distinct service dependency edge(s)", len(deps)),
		Details:     map[string]interface{}{"dependencies": deps},
	}, true
}
