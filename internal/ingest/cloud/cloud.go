// Package cloud implements the cloud-provider log adapters. The
// provider SDK call itself is an external collaborator: each adapter
// wraps a caller-supplied FetchFunc and owns only the pagination loop
// and the provider-specific shape mapping into events.RawRecord.
package cloud

import (
	"context"
	"time"

	"github.com/corelens/rca-engine/internal/events"
)

// LogEntry is the minimum shape every cloud log adapter normalizes
// provider-specific entries into before they become a RawRecord.
type LogEntry struct {
	Timestamp time.Time
	Severity  string
	Service   string
	Message   string
	Metadata  map[string]interface{}
}

// FetchFunc retrieves one page of log entries. An empty nextPageToken
// signals there are no more pages; the function is expected to close
// over and advance its own cursor/page-token state between calls.
// Implementations call the actual cloud SDK/API - this package only
// consumes the contract.
type FetchFunc func(ctx context.Context) (entries []LogEntry, nextPageToken string, err error)

// pagingAdapter is the shared pull-based sequence every cloud adapter
// wraps: it buffers one fetched page at a time and calls fetch again
// once the buffer drains, stopping once fetch reports an empty
// nextPageToken.
type pagingAdapter struct {
	providerTag string
	fetch       FetchFunc
	buffer      []LogEntry
	exhausted   bool
}

// Next implements ingest.Adapter.
func (a *pagingAdapter) Next(ctx context.Context) (events.RawRecord, bool, error) {
	for len(a.buffer) == 0 {
		if a.exhausted {
			return nil, false, nil
		}
		entries, next, err := a.fetch(ctx)
		if err != nil {
			return nil, false, err
		}
		a.buffer = entries
		if next == "" {
			a.exhausted = true
		}
		if len(entries) == 0 && a.exhausted {
			return nil, false, nil
		}
	}

	entry := a.buffer[0]
	a.buffer = a.buffer[1:]
	return toRawRecord(a.providerTag, entry), true, nil
}

// Extensions implements ingest.Adapter. Cloud adapters are file-less.
func (a *pagingAdapter) Extensions() []string { return nil }

func toRawRecord(providerTag string, e LogEntry) events.RawRecord {
	record := events.RawRecord{
		"service":        e.Service,
		"level":          e.Severity,
		"message":        e.Message,
		"cloud_provider": providerTag,
	}
	if !e.Timestamp.IsZero() {
		record["timestamp"] = e.Timestamp.Format(time.RFC3339Nano)
	}
	for k, v := range e.Metadata {
		if _, exists := record[k]; !exists {
			record[k] = v
		}
	}
	return record
}
