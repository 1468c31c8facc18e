// Package jsonl implements the JSONL ingestion adapter: one JSON
// object per non-empty line.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/corelens/rca-engine/internal/apierrors"
	"github.com/corelens/rca-engine/internal/events"
	"github.com/corelens/rca-engine/internal/ingest"
	"github.com/corelens/rca-engine/internal/rcaconst"
)

func init() {
	_ = ingest.RegisterFactory("jsonl", func(config map[string]interface{}) (ingest.Adapter, error) {
		path, err := ingest.StringConfig(config, "path")
		if err != nil {
			return nil, err
		}
		return NewFromFile(path)
	})
	_ = ingest.Default.RegisterExtension("jsonl", "jsonl")
	_ = ingest.Default.RegisterExtension("ndjson", "jsonl")
}

// Adapter is a lazy sequence over one JSON object per line.
type Adapter struct {
	scanner *bufio.Scanner
	lineNo  int
}

// NewFromReader builds a JSONL adapter directly over r. Callers
// reading from a file should prefer NewFromFile, which enforces the
// engine's file size ceiling before opening.
func NewFromReader(r io.Reader) *Adapter {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	return &Adapter{scanner: scanner}
}

// NewFromFile opens path (rejecting it if it exceeds the configured
// max file size) and returns a JSONL adapter over its contents.
func NewFromFile(path string) (*Adapter, error) {
	f, err := ingest.OpenBoundedFile(path)
	if err != nil {
		return nil, err
	}
	return NewFromReader(f), nil
}

// Extensions implements ingest.Adapter.
func (a *Adapter) Extensions() []string { return []string{"jsonl", "ndjson"} }

// Next implements ingest.Adapter. Blank lines are skipped. A non-
// object line (array, scalar, malformed JSON) is rejected with a
// ParseError; the caller's strictness mode decides whether that
// aborts or is counted and skipped.
func (a *Adapter) Next(ctx context.Context) (events.RawRecord, bool, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		default:
		}

		if !a.scanner.Scan() {
			if err := a.scanner.Err(); err != nil {
				return nil, false, apierrors.New(apierrors.KindInvalidFormat, "jsonl: read failed: %v", err)
			}
			return nil, false, nil
		}

		a.lineNo++
		line := strings.TrimSpace(a.scanner.Text())
		if line == "" {
			continue
		}
		if !utf8.ValidString(line) {
			return nil, false, apierrors.New(apierrors.KindInvalidFormat, "jsonl: line %d is not valid UTF-8", a.lineNo)
		}

		var record events.RawRecord
		dec := json.NewDecoder(strings.NewReader(line))
		dec.UseNumber()
		if err := dec.Decode(&record); err != nil {
			return nil, false, apierrors.New(apierrors.KindParse, "jsonl: line %d: %v", a.lineNo, err)
		}
		if record == nil {
			return nil, false, apierrors.New(apierrors.KindParse, "jsonl: line %d is not a JSON object", a.lineNo)
		}

		normalizeNumbers(record)
		return record, true, nil
	}
}

// normalizeNumbers converts json.Number fields back to float64 so
// downstream code (timestamp parsing in particular) sees the plain
// numeric types it expects rather than json.Number.
func normalizeNumbers(record events.RawRecord) {
	for k, v := range record {
		if n, ok := v.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				record[k] = f
			}
		}
	}
}

// MaxFileSize re-exports the shared ingestion ceiling for callers
// that need to check a file's size before opening it.
const MaxFileSize = rcaconst.MaxFileSize
