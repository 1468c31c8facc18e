// Package csv implements the CSV ingestion adapter: header-driven
// column to field mapping, with a default mapping covering the
// typical column names found in exported log tables.
package csv

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/corelens/rca-engine/internal/apierrors"
	"github.com/corelens/rca-engine/internal/events"
	"github.com/corelens/rca-engine/internal/ingest"
)

func init() {
	_ = ingest.RegisterFactory("csv", func(config map[string]interface{}) (ingest.Adapter, error) {
		path, err := ingest.StringConfig(config, "path")
		if err != nil {
			return nil, err
		}
		delim := ingest.OptionalStringConfig(config, "delimiter", ",")
		f, err := ingest.OpenBoundedFile(path)
		if err != nil {
			return nil, err
		}
		return NewFromReader(f, []rune(delim)[0])
	})
	_ = ingest.Default.RegisterExtension("csv", "csv")
}

// defaultMapping maps lower-cased header names to event.RawRecord
// keys. A header not found here is still carried into the raw record
// verbatim under its own name.
var defaultMapping = map[string]string{
	"timestamp": "timestamp",
	"time":      "timestamp",
	"date":      "timestamp",
	"service":   "service",
	"component": "component",
	"app":       "service",
	"severity":  "severity",
	"level":     "level",
	"loglevel":  "level",
	"message":   "message",
	"msg":       "message",
	"text":      "message",
}

// Adapter is a lazy sequence over CSV rows, mapped to raw records
// using the header row.
type Adapter struct {
	reader  *csv.Reader
	columns []string // positional column -> raw record key
}

// NewFromReader builds a CSV adapter over r using delimiter as the
// field separator. The first row is consumed as the header.
func NewFromReader(r io.Reader, delimiter rune) (*Adapter, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1 // tolerate ragged rows; short rows just leave trailing fields unset
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, apierrors.New(apierrors.KindInvalidFormat, "csv: file has no header row")
		}
		return nil, apierrors.New(apierrors.KindParse, "csv: reading header: %v", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		key := strings.TrimSpace(strings.ToLower(h))
		if mapped, ok := defaultMapping[key]; ok {
			columns[i] = mapped
		} else {
			columns[i] = strings.TrimSpace(h)
		}
	}

	return &Adapter{reader: cr, columns: columns}, nil
}

// Extensions implements ingest.Adapter.
func (a *Adapter) Extensions() []string { return []string{"csv"} }

// Next implements ingest.Adapter.
func (a *Adapter) Next(ctx context.Context) (events.RawRecord, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}

	row, err := a.reader.Read()
	if err == io.EOF {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apierrors.New(apierrors.KindParse, "csv: %v", err)
	}

	record := make(events.RawRecord, len(row))
	for i, value := range row {
		if i >= len(a.columns) {
			break
		}
		key := a.columns[i]
		if key == "" {
			continue
		}
		record[key] = value
	}
	return record, true, nil
}
