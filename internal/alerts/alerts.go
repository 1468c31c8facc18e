// Package alerts groups and suppresses external alerts by
// configurable correlation rules: shared source, shared tags, shared
// severity, and time proximity.
package alerts

import (
	"fmt"
	"sort"
	"time"
)

// Alert is one external alert observation.
type Alert struct {
	ID        string
	Source    string
	Severity  string
	Tags      map[string]string
	CreatedAt time.Time
}

// Rule configures one correlation pass.
type Rule struct {
	TimeWindow     time.Duration
	GroupByTags    []string
	GroupBySource  bool
	MinAlerts      int
}

// Group is a correlated cluster of alerts sharing a key.
type Group struct {
	Key     string
	Alerts  []Alert
}

// Summary is the per-group rollup used for display and suppression.
type Summary struct {
	Count            int
	DominantSource   string
	DominantSeverity string
	Earliest         time.Time
	Latest           time.Time
	Duration         time.Duration
	SourceHistogram  map[string]int
	SeverityHistogram map[string]int
}

// Correlate groups alerts according to rules and returns only the
// groups meeting the minimum alert count across all rules.
func Correlate(alertsIn []Alert, rules []Rule) []Group {
	if len(rules) == 0 {
		return nil
	}

	minAlerts := rules[0].MinAlerts
	for _, r := range rules[1:] {
		if r.MinAlerts < minAlerts {
			minAlerts = r.MinAlerts
		}
	}

	sorted := append([]Alert(nil), alertsIn...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.Before(sorted[j].CreatedAt) })

	type openGroup struct {
		key    string
		alerts []Alert
	}
	active := make(map[string]*openGroup)
	var order []string
	var finished []Group

	for _, rule := range rules {
		for _, a := range sorted {
			key := groupKey(a, rule)

			og, ok := active[key]
			if ok && a.CreatedAt.Sub(og.alerts[len(og.alerts)-1].CreatedAt) <= rule.TimeWindow {
				og.alerts = append(og.alerts, a)
				continue
			}

			if ok {
				finished = append(finished, Group{Key: og.key, Alerts: og.alerts})
			}
			newKey := fmt.Sprintf("%s@%s", key, a.CreatedAt.Format(time.RFC3339Nano))
			active[key] = &openGroup{key: newKey, alerts: []Alert{a}}
			order = append(order, key)
		}

		for _, key := range order {
			if og, ok := active[key]; ok {
				finished = append(finished, Group{Key: og.key, Alerts: og.alerts})
				delete(active, key)
			}
		}
		order = nil
	}

	var groups []Group
	for _, g := range finished {
		if len(g.Alerts) >= minAlerts {
			groups = append(groups, g)
		}
	}
	return groups
}

func groupKey(a Alert, rule Rule) string {
	key := ""
	if rule.GroupBySource {
		key += "source:" + a.Source + "|"
	}
	for _, tag := range rule.GroupByTags {
		value, ok := a.Tags[tag]
		if !ok {
			value = "unknown"
		}
		key += tag + ":" + value + "|"
	}
	key += "severity:" + a.Severity
	return key
}

// Summarize computes the display rollup for a group.
func Summarize(g Group) Summary {
	s := Summary{
		Count:             len(g.Alerts),
		SourceHistogram:   make(map[string]int),
		SeverityHistogram: make(map[string]int),
	}
	if len(g.Alerts) == 0 {
		return s
	}

	s.Earliest = g.Alerts[0].CreatedAt
	s.Latest = g.Alerts[0].CreatedAt
	for _, a := range g.Alerts {
		s.SourceHistogram[a.Source]++
		s.SeverityHistogram[a.Severity]++
		if a.CreatedAt.Before(s.Earliest) {
			s.Earliest = a.CreatedAt
		}
		if a.CreatedAt.After(s.Latest) {
			s.Latest = a.CreatedAt
		}
	}
	s.Duration = s.Latest.Sub(s.Earliest)
	s.DominantSource = dominant(s.SourceHistogram)
	s.DominantSeverity = dominant(s.SeverityHistogram)
	return s
}

func dominant(histogram map[string]int) string {
	var best string
	bestCount := -1
	keys := make([]string, 0, len(histogram))
	for k := range histogram {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if histogram[k] > bestCount {
			best = k
			bestCount = histogram[k]
		}
	}
	return best
}

// Suppress returns the set of alert IDs to suppress within a group:
// all but the first by timestamp when keepFirst, else every alert.
func Suppress(g Group, keepFirst bool) []string {
	if len(g.Alerts) == 0 {
		return nil
	}

	ordered := append([]Alert(nil), g.Alerts...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].CreatedAt.Before(ordered[j].CreatedAt) })

	start := 0
	if keepFirst {
		start = 1
	}

	var ids []string
	for _, a := range ordered[start:] {
		ids = append(ids, a.ID)
	}
	return ids
}
