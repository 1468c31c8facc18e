// Package grouping bundles normalized events into Incident Groups by
// time proximity, optionally partitioned by service first.
package grouping

import (
	"sort"
	"time"

	"github.com/corelens/rca-engine/internal/events"
)

// Severity ordering matches events.Level.Rank; DEBUG < INFO <
// WARN=WARNING < ERROR < CRITICAL=FATAL.

// Group is a derived, immutable bundle of events produced by the
// grouping engine.
type Group struct {
	Events    []*events.Event
	StartTime *time.Time
	EndTime   *time.Time
	Services  []string
	Severity  events.Level
}

// newGroup computes the derived attributes of a Group from its member
// events. Services are returned in first-seen order.
func newGroup(members []*events.Event) Group {
	g := Group{Events: members}

	seen := make(map[string]bool)
	var highest events.Level
	highestRank := -1

	for _, ev := range members {
		if ev.Service != "" && !seen[ev.Service] {
			seen[ev.Service] = true
			g.Services = append(g.Services, ev.Service)
		}
		if ev.HasTimestamp() {
			if g.StartTime == nil || ev.Timestamp.Before(*g.StartTime) {
				t := *ev.Timestamp
				g.StartTime = &t
			}
			if g.EndTime == nil || ev.Timestamp.After(*g.EndTime) {
				t := *ev.Timestamp
				g.EndTime = &t
			}
		}
		if ev.Level != "" && ev.Level.Rank() > highestRank {
			highestRank = ev.Level.Rank()
			highest = ev.Level
		}
	}
	g.Severity = highest
	return g
}

// GroupByTimeWindow sorts events with a present timestamp ascending
// (stable, so input order breaks ties) and partitions them into
// groups where each member lies within window of the previously
// appended member. A group is emitted only once it reaches minEvents
// members. Events without a timestamp are held aside and emitted as a
// single terminal group if there are at least minEvents of them.
func GroupByTimeWindow(input []*events.Event, window time.Duration, minEvents int) []Group {
	var timed []*events.Event
	var untimed []*events.Event
	for _, ev := range input {
		if ev.HasTimestamp() {
			timed = append(timed, ev)
		} else {
			untimed = append(untimed, ev)
		}
	}

	sort.SliceStable(timed, func(i, j int) bool {
		return timed[i].Timestamp.Before(*timed[j].Timestamp)
	})

	var groups []Group
	var current []*events.Event

	flush := func() {
		if len(current) >= minEvents {
			groups = append(groups, newGroup(current))
		}
		current = nil
	}

	for _, ev := range timed {
		if len(current) == 0 {
			current = append(current, ev)
			continue
		}
		last := current[len(current)-1]
		if ev.Timestamp.Sub(*last.Timestamp) <= window {
			current = append(current, ev)
		} else {
			flush()
			current = append(current, ev)
		}
	}
	flush()

	if len(untimed) >= minEvents {
		groups = append(groups, newGroup(untimed))
	}

	return groups
}

// GroupByServiceThenTime partitions events by service (events with an
// empty service form their own partition) and applies time-window
// grouping within each partition, preserving each partition's
// first-seen order across the returned slice.
func GroupByServiceThenTime(input []*events.Event, window time.Duration, minEventsPerService int) []Group {
	var order []string
	partitions := make(map[string][]*events.Event)

	for _, ev := range input {
		key := ev.Service
		if _, ok := partitions[key]; !ok {
			order = append(order, key)
		}
		partitions[key] = append(partitions[key], ev)
	}

	var groups []Group
	for _, key := range order {
		groups = append(groups, GroupByTimeWindow(partitions[key], window, minEventsPerService)...)
	}
	return groups
}
