// Package ingest defines the ingestion adapter contract every
// source-specific format implements, plus a format-tag-keyed factory
// registry adapters use to advertise themselves.
package ingest

import (
	"context"

	"github.com/corelens/rca-engine/internal/events"
)

// Adapter is a lazy, finite sequence of raw records. Adapters do not
// interpret records; they normalize source-specific shapes to
// events.RawRecord and leave field extraction to events.Normalize.
//
// Next returns the next record, or ok=false once the sequence is
// exhausted (not an error). A non-nil error aborts iteration.
type Adapter interface {
	// Next returns the next raw record in the sequence.
	Next(ctx context.Context) (record events.RawRecord, ok bool, err error)

	// Extensions advertises the file extensions (without the leading
	// dot) this adapter's format is typically found under, for
	// auto-detection by suffix. File-less adapters (cloud, webhook,
	// OTLP) may return nil.
	Extensions() []string
}

// Drain reads every record out of an adapter, normalizing each one.
// In lenient mode malformed records are skipped and counted; in
// strict mode the first normalization failure aborts and is returned.
func Drain(ctx context.Context, a Adapter, strict bool) ([]*events.Event, int, error) {
	var out []*events.Event
	skipped := 0

	for {
		raw, ok, err := a.Next(ctx)
		if err != nil {
			return out, skipped, err
		}
		if !ok {
			break
		}

		ev, err := events.Normalize(raw)
		if err != nil {
			if strict {
				return out, skipped, err
			}
			skipped++
			continue
		}
		out = append(out, ev)
	}

	return out, skipped, nil
}
