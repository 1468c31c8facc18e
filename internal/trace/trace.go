// Package trace models OpenTelemetry-shaped spans and analyzes traces
// for error propagation, slow spans, and service dependency edges.
package trace

import (
	"sort"
	"time"

	"github.com/corelens/rca-engine/internal/apierrors"
)

// Status is the span's completion status.
type Status string

const (
	StatusOK    Status = "OK"
	StatusError Status = "ERROR"
	StatusUnset Status = "UNSET"
)

// Span is a single unit of work within a Trace.
type Span struct {
	TraceID       string
	SpanID        string
	ParentSpanID  string
	ServiceName   string
	OperationName string
	StartTime     time.Time
	EndTime       time.Time
	Status        Status
	Attributes    map[string]interface{}
	Events        []string
}

// Duration is EndTime - StartTime.
func (s Span) Duration() time.Duration { return s.EndTime.Sub(s.StartTime) }

// Trace is a collection of Spans sharing a trace ID, rooted at the
// unique span with no parent reference.
type Trace struct {
	TraceID  string
	Spans    map[string]Span // keyed by span ID
	RootID   string
	Services map[string]bool
	children map[string][]string
}

// BuildTrace assembles spans into a Trace, validating that end >=
// start for every span and that exactly one span has no parent
// reference (the root). A trace failing either check is malformed.
func BuildTrace(spans []Span) (*Trace, error) {
	if len(spans) == 0 {
		return nil, apierrors.New(apierrors.KindValidation, "trace: no spans")
	}

	t := &Trace{
		TraceID:  spans[0].TraceID,
		Spans:    make(map[string]Span, len(spans)),
		Services: make(map[string]bool),
		children: make(map[string][]string),
	}

	var roots []string
	for _, s := range spans {
		if s.EndTime.Before(s.StartTime) {
			return nil, apierrors.New(apierrors.KindValidation, "trace: span %q ends before it starts", s.SpanID)
		}
		t.Spans[s.SpanID] = s
		t.Services[s.ServiceName] = true
		if s.ParentSpanID == "" {
			roots = append(roots, s.SpanID)
		}
	}

	for _, s := range spans {
		if s.ParentSpanID == "" {
			continue
		}
		if _, ok := t.Spans[s.ParentSpanID]; !ok {
			return nil, apierrors.New(apierrors.KindValidation, "trace: span %q references unknown parent %q", s.SpanID, s.ParentSpanID)
		}
		t.children[s.ParentSpanID] = append(t.children[s.ParentSpanID], s.SpanID)
	}

	if len(roots) != 1 {
		return nil, apierrors.New(apierrors.KindValidation, "trace: expected exactly one root span, found %d", len(roots))
	}
	t.RootID = roots[0]

	return t, nil
}

// Children returns the direct child span IDs of spanID, sorted for
// deterministic traversal.
func (t *Trace) Children(spanID string) []string {
	kids := append([]string(nil), t.children[spanID]...)
	sort.Strings(kids)
	return kids
}
