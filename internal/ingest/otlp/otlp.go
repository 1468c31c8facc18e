// Package otlp parses the OTLP JSON trace payload shape
// (`resourceSpans[].scopeSpans[].spans[]`) into trace.Span values the
// rest of the engine's trace analyzer consumes directly.
package otlp

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/corelens/rca-engine/internal/apierrors"
	"github.com/corelens/rca-engine/internal/trace"
)

// wireTracesPayload mirrors the subset of the OTLP JSON trace export
// format this parser cares about.
type wireTracesPayload struct {
	ResourceSpans []wireResourceSpans `json:"resourceSpans"`
}

type wireResourceSpans struct {
	Resource   wireResource     `json:"resource"`
	ScopeSpans []wireScopeSpans `json:"scopeSpans"`
}

type wireResource struct {
	Attributes []wireAttribute `json:"attributes"`
}

type wireScopeSpans struct {
	Spans []wireSpan `json:"spans"`
}

type wireSpan struct {
	TraceID           string          `json:"traceId"`
	SpanID            string          `json:"spanId"`
	ParentSpanID      string          `json:"parentSpanId"`
	Name              string          `json:"name"`
	StartTimeUnixNano string          `json:"startTimeUnixNano"`
	EndTimeUnixNano   string          `json:"endTimeUnixNano"`
	Status            wireStatus      `json:"status"`
	Attributes        []wireAttribute `json:"attributes"`
}

type wireStatus struct {
	Code string `json:"code"`
}

type wireAttribute struct {
	Key   string        `json:"key"`
	Value wireAttrValue `json:"value"`
}

type wireAttrValue struct {
	StringValue *string `json:"stringValue"`
	IntValue    *string `json:"intValue"`
	BoolValue   *bool   `json:"boolValue"`
}

func (v wireAttrValue) asInterface() interface{} {
	switch {
	case v.StringValue != nil:
		return *v.StringValue
	case v.IntValue != nil:
		return *v.IntValue
	case v.BoolValue != nil:
		return *v.BoolValue
	default:
		return nil
	}
}

// statusFromCode maps the OTLP numeric/symbolic status code to
// trace.Status. OTLP JSON renders status.code as one of
// "STATUS_CODE_UNSET", "STATUS_CODE_OK", "STATUS_CODE_ERROR" (or,
// depending on exporter, the bare numeric string "0"/"1"/"2").
func statusFromCode(code string) trace.Status {
	switch code {
	case "STATUS_CODE_OK", "1":
		return trace.StatusOK
	case "STATUS_CODE_ERROR", "2":
		return trace.StatusError
	default:
		return trace.StatusUnset
	}
}

// ParseSpans parses an OTLP JSON trace export payload into flat
// trace.Span values, converting nanosecond unix timestamps to
// time.Time and propagating the resource's service.name attribute
// onto every span beneath it.
func ParseSpans(payload []byte) ([]trace.Span, error) {
	var wire wireTracesPayload
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, apierrors.New(apierrors.KindInvalidFormat, "otlp: invalid trace payload: %v", err)
	}

	var spans []trace.Span
	for _, rs := range wire.ResourceSpans {
		serviceName := serviceNameOf(rs.Resource)
		for _, ss := range rs.ScopeSpans {
			for _, ws := range ss.Spans {
				span, err := convertSpan(ws, serviceName)
				if err != nil {
					return nil, err
				}
				spans = append(spans, span)
			}
		}
	}
	return spans, nil
}

func serviceNameOf(res wireResource) string {
	for _, attr := range res.Attributes {
		if attr.Key == "service.name" {
			if s, ok := attr.Value.asInterface().(string); ok {
				return s
			}
		}
	}
	return ""
}

func convertSpan(ws wireSpan, serviceName string) (trace.Span, error) {
	start, err := parseUnixNano(ws.StartTimeUnixNano)
	if err != nil {
		return trace.Span{}, apierrors.New(apierrors.KindInvalidFormat, "otlp: span %s: invalid startTimeUnixNano: %v", ws.SpanID, err)
	}
	end, err := parseUnixNano(ws.EndTimeUnixNano)
	if err != nil {
		return trace.Span{}, apierrors.New(apierrors.KindInvalidFormat, "otlp: span %s: invalid endTimeUnixNano: %v", ws.SpanID, err)
	}

	attrs := make(map[string]interface{}, len(ws.Attributes))
	for _, attr := range ws.Attributes {
		attrs[attr.Key] = attr.Value.asInterface()
	}

	return trace.Span{
		TraceID:       ws.TraceID,
		SpanID:        ws.SpanID,
		ParentSpanID:  ws.ParentSpanID,
		ServiceName:   serviceName,
		OperationName: ws.Name,
		StartTime:     start,
		EndTime:       end,
		Status:        statusFromCode(ws.Status.Code),
		Attributes:    attrs,
	}, nil
}

// parseUnixNano parses a decimal nanosecond-since-epoch string, the
// shape OTLP JSON renders int64 timestamp fields in (as strings, to
// survive round-tripping through JSON's float64 number type).
func parseUnixNano(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	nanos, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, nanos).UTC(), nil
}
