package events

import (
	"strings"

	"github.com/corelens/rca-engine/internal/apierrors"
)

// firstNonEmptyString returns the first non-empty string value found
// under any of keys in raw.
func firstNonEmptyString(raw RawRecord, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

// Normalize converts an adapter-produced raw record into an Event.
//
// Field precedence (first non-empty wins):
//
//	service   <- raw["service"] | raw["component"]
//	level     <- raw["level"]   | raw["severity"]
//	timestamp <- raw["timestamp"] (best-effort instant parse, cached)
//	message   <- raw["message"]
//	raw       <- the input record, preserved verbatim
//
// Normalize fails with a apierrors.KindParse error when raw is nil,
// and with apierrors.KindValidation when both service and message are
// empty after extraction.
func Normalize(raw RawRecord) (*Event, error) {
	if raw == nil {
		return nil, apierrors.New(apierrors.KindParse, "record must not be nil")
	}

	service := firstNonEmptyString(raw, "service", "component")
	message := firstNonEmptyString(raw, "message")

	if service == "" && message == "" {
		return nil, apierrors.New(apierrors.KindValidation, "event must have a non-empty service or message")
	}

	event := &Event{
		Service:  service,
		Message:  message,
		Raw:      raw,
		Metadata: map[string]interface{}{},
	}

	if levelStr := firstNonEmptyString(raw, "level", "severity"); levelStr != "" {
		event.Level = Level(strings.ToUpper(strings.TrimSpace(levelStr)))
	}

	if tsRaw, ok := raw["timestamp"]; ok {
		if t, ok := parseTimestampValue(tsRaw); ok {
			event.Timestamp = &t
		}
	}

	return event, nil
}
