package text

import (
	"regexp"
	"strconv"

	"github.com/corelens/rca-engine/internal/events"
)

// Pattern is one of the fixed, named line formats this adapter
// recognizes, plus the function that turns a regex match into a raw
// record.
type Pattern struct {
	Name    string
	Regex   *regexp.Regexp
	extract func(groups map[string]string) events.RawRecord
}

// match applies the pattern to a single line, returning the raw
// record and whether the line matched.
func (p Pattern) match(line string) (events.RawRecord, bool) {
	m := p.Regex.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	groups := make(map[string]string, len(m))
	for i, name := range p.Regex.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		groups[name] = m[i]
	}
	return p.extract(groups), true
}

// levelFromHTTPStatus maps an HTTP status code to a severity per the
// documented inference rule: 5xx is an error, 4xx a warning, anything
// else informational.
func levelFromHTTPStatus(status string) string {
	code, err := strconv.Atoi(status)
	if err != nil {
		return "INFO"
	}
	switch {
	case code >= 500:
		return "ERROR"
	case code >= 400:
		return "WARN"
	default:
		return "INFO"
	}
}

// syslogPattern matches the RFC 3164-style line BSD syslog and most
// container runtimes still emit: optional priority, a timestamp
// without a year, a host, a tag with an optional pid, then the
// message.
var syslogPattern = Pattern{
	Name: "syslog",
	Regex: regexp.MustCompile(
		`^(?:<\d+>)?(?P<timestamp>[A-Z][a-z]{2}\s+\d{1,2}\s\d{2}:\d{2}:\d{2})\s+` +
			`(?P<host>\S+)\s+(?P<service>[\w.\-/]+?)(?:\[\d+\])?:\s*(?P<message>.*)$`),
	extract: func(g map[string]string) events.RawRecord {
		return events.RawRecord{
			"timestamp": g["timestamp"],
			"service":   g["service"],
			"host":      g["host"],
			"message":   g["message"],
		}
	},
}

// nginxPattern matches nginx's default combined log format.
var nginxPattern = Pattern{
	Name: "nginx",
	Regex: regexp.MustCompile(
		`^(?P<remote>\S+) \S+ \S+ \[(?P<timestamp>[^\]]+)\] ` +
			`"(?P<method>[A-Z]+) (?P<path>\S+) \S+" (?P<status>\d{3}) (?P<size>\S+)`),
	extract: func(g map[string]string) events.RawRecord {
		return events.RawRecord{
			"timestamp": g["timestamp"],
			"service":   "nginx",
			"level":     levelFromHTTPStatus(g["status"]),
			"message":   g["method"] + " " + g["path"] + " " + g["status"],
			"status":    g["status"],
			"remote":    g["remote"],
		}
	},
}

// apachePattern matches the Apache HTTPD combined log format, which
// differs from nginx's mainly by its literal `-` ident/user fields
// and a trailing referrer/user-agent pair this format makes optional.
var apachePattern = Pattern{
	Name: "apache",
	Regex: regexp.MustCompile(
		`^(?P<remote>\S+) (?P<ident>\S+) (?P<user>\S+) \[(?P<timestamp>[^\]]+)\] ` +
			`"(?P<method>[A-Z]+) (?P<path>\S+) \S+" (?P<status>\d{3}) (?P<size>\S+)`),
	extract: func(g map[string]string) events.RawRecord {
		return events.RawRecord{
			"timestamp": g["timestamp"],
			"service":   "apache",
			"level":     levelFromHTTPStatus(g["status"]),
			"message":   g["method"] + " " + g["path"] + " " + g["status"],
			"status":    g["status"],
			"remote":    g["remote"],
		}
	},
}

// genericPattern is the fallback: an ISO-ish leading timestamp,
// an optional bracketed level, and the remainder as the message. It
// is deliberately loose since it is the last format tried in auto
// mode and the first tried when no specific format is known.
var genericPattern = Pattern{
	Name: "generic",
	Regex: regexp.MustCompile(
		`^(?P<timestamp>\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?)\s+` +
			`(?:\[?(?P<level>DEBUG|INFO|WARN|WARNING|ERROR|FATAL|CRITICAL)\]?\s+)?` +
			`(?:(?P<service>[\w.\-]+):\s+)?(?P<message>.*)$`),
	extract: func(g map[string]string) events.RawRecord {
		return events.RawRecord{
			"timestamp": g["timestamp"],
			"level":     g["level"],
			"service":   g["service"],
			"message":   g["message"],
		}
	},
}

// genericGroupExtract maps every named capture group straight into
// the raw record under its own name. Used for caller-supplied custom
// patterns, where the group names themselves are the field mapping.
func genericGroupExtract(g map[string]string) events.RawRecord {
	record := make(events.RawRecord, len(g))
	for k, v := range g {
		record[k] = v
	}
	return record
}

// namedPatterns are the fixed, built-in formats, keyed by the format
// tag adapters register under.
var namedPatterns = map[string]Pattern{
	"syslog":  syslogPattern,
	"nginx":   nginxPattern,
	"apache":  apachePattern,
	"generic": genericPattern,
}

// autoOrder is the sequence auto-detection tries patterns in. Generic
// is last since its timestamp-only anchor is the loosest and would
// otherwise shadow the more specific formats.
var autoOrder = []Pattern{syslogPattern, nginxPattern, apachePattern, genericPattern}
