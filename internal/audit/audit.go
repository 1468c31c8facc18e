// Package audit records a durable trail of completed analysis runs:
// when, for which incident, and what the engine concluded. It has no
// query interface and no tie-in to remediation - it exists to answer
// "what did corelens decide, and when" after the fact, not to drive
// or track any action an operator subsequently took.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/corelens/rca-engine/internal/store"
)

// Entry is one line of the audit trail.
type Entry struct {
	Timestamp       time.Time `json:"timestamp"`
	IncidentID      string    `json:"incident_id"`
	EventCount      int       `json:"event_count"`
	Summary         string    `json:"summary"`
	TopAction       string    `json:"top_action,omitempty"`
	TopActionReason string    `json:"top_action_category,omitempty"`
}

// Trail appends audit entries to a sink as newline-delimited JSON.
// Trail is safe for concurrent use.
type Trail struct {
	mu  sync.Mutex
	out io.Writer
	enc *json.Encoder
}

// New wraps out as an audit trail sink. out is typically a file opened
// in append mode; a nil out makes every Record a no-op.
func New(out io.Writer) *Trail {
	t := &Trail{out: out}
	if out != nil {
		t.enc = json.NewEncoder(out)
	}
	return t
}

// Record appends one entry describing a completed analysis run for
// incidentID. now is passed in rather than read from the clock so
// callers can test deterministically.
func (t *Trail) Record(now time.Time, incidentID string, record store.AnalysisRecord) error {
	if t == nil || t.enc == nil {
		return nil
	}

	entry := Entry{
		Timestamp:  now,
		IncidentID: incidentID,
		EventCount: record.EventCount,
		Summary:    record.IncidentSummary,
	}
	if len(record.RecommendedActions) > 0 {
		top := record.RecommendedActions[0]
		for _, a := range record.RecommendedActions {
			if a.Priority < top.Priority {
				top = a
			}
		}
		entry.TopAction = top.Description
		entry.TopActionReason = top.Category
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.enc.Encode(entry); err != nil {
		return fmt.Errorf("audit: write entry for %s: %w", incidentID, err)
	}
	return nil
}
