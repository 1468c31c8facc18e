// Package text implements the unstructured line-oriented ingestion
// adapters: a small, fixed set of named regex formats (syslog, nginx,
// apache), an auto-detection mode that tries them in order, and
// support for a caller-supplied custom pattern that must pass
// ValidatePattern's ReDoS guard before use.
package text

import (
	"bufio"
	"context"
	"io"

	"github.com/corelens/rca-engine/internal/apierrors"
	"github.com/corelens/rca-engine/internal/events"
	"github.com/corelens/rca-engine/internal/ingest"
)

func init() {
	for _, format := range []string{"syslog", "nginx", "apache", "generic"} {
		format := format
		_ = ingest.RegisterFactory(format, func(config map[string]interface{}) (ingest.Adapter, error) {
			path, err := ingest.StringConfig(config, "path")
			if err != nil {
				return nil, err
			}
			f, err := ingest.OpenBoundedFile(path)
			if err != nil {
				return nil, err
			}
			return NewFromReader(f, format)
		})
	}
	_ = ingest.RegisterFactory("auto", func(config map[string]interface{}) (ingest.Adapter, error) {
		path, err := ingest.StringConfig(config, "path")
		if err != nil {
			return nil, err
		}
		f, err := ingest.OpenBoundedFile(path)
		if err != nil {
			return nil, err
		}
		return NewFromReader(f, "auto")
	})
	_ = ingest.RegisterFactory("custom", func(config map[string]interface{}) (ingest.Adapter, error) {
		path, err := ingest.StringConfig(config, "path")
		if err != nil {
			return nil, err
		}
		pattern, err := ingest.StringConfig(config, "pattern")
		if err != nil {
			return nil, err
		}
		re, err := ValidatePattern(pattern)
		if err != nil {
			return nil, err
		}
		f, err := ingest.OpenBoundedFile(path)
		if err != nil {
			return nil, err
		}
		return NewWithCustomPattern(f, Pattern{Name: "custom", Regex: re, extract: genericGroupExtract}), nil
	})
	_ = ingest.Default.RegisterExtension("log", "generic")
}

// lineReader is the subset of bufio.Scanner the adapter depends on,
// narrowed so tests can supply a pre-split source.
type lineReader interface {
	Scan() bool
	Text() string
	Err() error
}

// Adapter is a lazy sequence over newline-delimited log lines, each
// matched against either one fixed named pattern or, in "auto" mode,
// the first of the fixed patterns (in a deterministic order) that
// matches the line.
type Adapter struct {
	scanner lineReader
	format  string // "syslog" | "nginx" | "apache" | "generic" | "auto" | "custom"
	custom  *Pattern
}

// NewFromReader builds a text adapter over r using one of the fixed
// named formats ("syslog", "nginx", "apache", "generic") or "auto".
func NewFromReader(r io.Reader, format string) (*Adapter, error) {
	if format != "auto" {
		if _, ok := namedPatterns[format]; !ok {
			return nil, apierrors.New(apierrors.KindConfiguration, "text: unknown format %q", format)
		}
	}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Adapter{scanner: s, format: format}, nil
}

// NewWithCustomPattern builds a text adapter using a caller-supplied
// pattern, which must already have been accepted by ValidatePattern.
func NewWithCustomPattern(r io.Reader, pattern Pattern) *Adapter {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Adapter{scanner: s, format: "custom", custom: &pattern}
}

// Extensions implements ingest.Adapter.
func (a *Adapter) Extensions() []string { return []string{"log", "txt"} }

// Next implements ingest.Adapter. A line that matches no recognized
// pattern is never rejected: it is carried forward as a bare message,
// since any line of text is a valid (if unstructured) log record.
func (a *Adapter) Next(ctx context.Context) (events.RawRecord, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}

	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return nil, false, apierrors.New(apierrors.KindParse, "text: reading line: %v", err)
		}
		return nil, false, nil
	}

	line := a.scanner.Text()
	if line == "" {
		return a.Next(ctx)
	}

	record, ok := a.matchLine(line)
	if !ok {
		record = events.RawRecord{"message": line}
	}
	return record, true, nil
}

func (a *Adapter) matchLine(line string) (events.RawRecord, bool) {
	switch a.format {
	case "custom":
		return a.custom.match(line)
	case "auto":
		for _, p := range autoOrder {
			if record, ok := p.match(line); ok {
				return record, true
			}
		}
		return nil, false
	default:
		return namedPatterns[a.format].match(line)
	}
}
