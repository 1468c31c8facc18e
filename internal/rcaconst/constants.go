// Package rcaconst collects the normative defaults shared across the
// analysis pipeline so no component redefines a magic number locally.
package rcaconst

import "time"

const (
	// CausalWindow bounds how far apart two errors in different
	// services can be while still producing a candidate causal edge.
	CausalWindow = 5 * time.Minute

	// SlowSpanThreshold is the duration above which a trace span is
	// flagged as slow.
	SlowSpanThreshold = 1000 * time.Millisecond

	// ErrorPropagationWindow bounds the gap between consecutive error
	// spans that still counts as one propagation hop.
	ErrorPropagationWindow = 100 * time.Millisecond

	// RepeatedErrorThreshold is the fraction of events a single
	// message must account for before it becomes a pattern-based
	// root-cause hypothesis.
	RepeatedErrorThreshold = 0.5

	// Confidence tiers used by the heuristic analyzer's hypotheses.
	ConfidenceHigh   = 0.8
	ConfidenceMedium = 0.5
	ConfidenceLow    = 0.3

	// Recommended-action priorities, 1 is highest.
	PriorityCritical = 1
	PriorityHigh     = 2
	PriorityMedium   = 3
	PriorityLow      = 4

	// MaxFileSize is the hard ceiling for file-based ingestion
	// adapters.
	MaxFileSize = 100 * 1024 * 1024

	// TimestampParseCacheSize is the minimum capacity of the shared
	// best-effort timestamp parse cache.
	TimestampParseCacheSize = 1024

	// TopKErrors is how many distinct error messages the heuristic
	// analyzer's pattern statistics report.
	TopKErrors = 5

	// MaxSlowSpans is how many slow spans the trace analyzer reports,
	// ordered by descending duration.
	MaxSlowSpans = 5

	// RegexValidationTimeout bounds how long a custom text-format
	// pattern is allowed to run against the ReDoS probe string before
	// the validator rejects it as unsafe.
	RegexValidationTimeout = 200 * time.Millisecond

	// WebhookRingBufferSize is the default capacity of a webhook
	// receiver's verified-event ring buffer.
	WebhookRingBufferSize = 1000

	// WebhookRingBufferDropFraction is the fraction of the ring
	// buffer's oldest entries dropped at once when it overflows.
	WebhookRingBufferDropFraction = 0.1

	// WebhookReadTimeout bounds how long the webhook receiver waits to
	// read and verify a single incoming request body.
	WebhookReadTimeout = 10 * time.Second
)
