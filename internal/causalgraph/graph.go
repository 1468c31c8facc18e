// Package causalgraph builds a directed causal graph over the
// services observed in an Incident Group and extracts its root-cause
// node set, the way a single-incident topology is scored by temporal
// proximity rather than by a persisted resource graph.
package causalgraph

import (
	"sort"
	"time"

	"github.com/corelens/rca-engine/internal/grouping"
	"github.com/corelens/rca-engine/internal/rcaconst"
)

// Node is one distinct service observed in the group; ErrorCount may
// be zero for a service that logged no errors.
type Node struct {
	ID         string
	ErrorCount int
	FirstError time.Time
	LastError  time.Time
	Metadata   map[string]interface{}
}

// Edge is a directed, time-scored hint that an error in From may have
// caused the error in To.
type Edge struct {
	From          string
	To            string
	Evidence      []string
	TimeDelta     time.Duration
	Confidence    float64
	hasFirstError bool
}

// Graph is a directed graph over Nodes and Edges, built once from an
// Incident Group and read-only thereafter.
type Graph struct {
	Nodes map[string]*Node
	Edges []*Edge
}

// servicePoint is a (service, timestamp) pair used to build candidate
// edges.
type servicePoint struct {
	service   string
	timestamp time.Time
}

// Build constructs the causal graph for an Incident Group.
func Build(group grouping.Group) *Graph {
	g := &Graph{Nodes: make(map[string]*Node)}
	errorTimeSeen := make(map[string]bool)

	for _, ev := range group.Events {
		if ev.Service == "" {
			continue
		}
		node, ok := g.Nodes[ev.Service]
		if !ok {
			node = &Node{ID: ev.Service, Metadata: make(map[string]interface{})}
			g.Nodes[ev.Service] = node
		}
		if !ev.Level.IsError() {
			continue
		}
		node.ErrorCount++
		if !ev.HasTimestamp() {
			continue
		}
		if !errorTimeSeen[ev.Service] {
			node.FirstError = *ev.Timestamp
			node.LastError = *ev.Timestamp
			errorTimeSeen[ev.Service] = true
			continue
		}
		if ev.Timestamp.Before(node.FirstError) {
			node.FirstError = *ev.Timestamp
		}
		if ev.Timestamp.After(node.LastError) {
			node.LastError = *ev.Timestamp
		}
	}

	var points []servicePoint
	for _, ev := range group.Events {
		if ev.Service == "" || !ev.HasTimestamp() {
			continue
		}
		points = append(points, servicePoint{service: ev.Service, timestamp: *ev.Timestamp})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].timestamp.Before(points[j].timestamp)
	})

	edgeIndex := make(map[[2]string]*Edge)
	for i, a := range points {
		for j := i + 1; j < len(points); j++ {
			b := points[j]
			if b.service == a.service {
				continue
			}
			delta := b.timestamp.Sub(a.timestamp)
			if delta > rcaconst.CausalWindow {
				break // points are time-sorted; no later b can be within window either
			}
			conf := confidence(delta)
			key := [2]string{a.service, b.service}
			evidence := evidenceString(a, b, delta)

			if existing, ok := edgeIndex[key]; ok {
				if conf > existing.Confidence {
					existing.Confidence = conf
					existing.TimeDelta = delta
				}
				existing.Evidence = append(existing.Evidence, evidence)
				continue
			}

			edge := &Edge{From: a.service, To: b.service, TimeDelta: delta, Confidence: conf, Evidence: []string{evidence}}
			edgeIndex[key] = edge
			g.Edges = append(g.Edges, edge)
		}
	}

	// ensure every referenced node exists, including services with
	// edges but no error events of their own.
	for _, e := range g.Edges {
		if _, ok := g.Nodes[e.From]; !ok {
			g.Nodes[e.From] = &Node{ID: e.From, Metadata: make(map[string]interface{})}
		}
		if _, ok := g.Nodes[e.To]; !ok {
			g.Nodes[e.To] = &Node{ID: e.To, Metadata: make(map[string]interface{})}
		}
	}

	return g
}

func evidenceString(a, b servicePoint, delta time.Duration) string {
	return a.service + " at " + a.timestamp.Format(time.RFC3339) + " preceded " + b.service + " by " + delta.String()
}

// confidence implements the normative scoring function: linearly
// decreasing with time_delta, reaching >=0.9 within 30s and 0 at the
// edge of the causal window.
func confidence(delta time.Duration) float64 {
	ratio := float64(delta) / float64(rcaconst.CausalWindow)
	conf := 1 - ratio
	if conf < 0 {
		conf = 0
	}
	return conf
}

// RootCauses returns the root-cause node set: nodes with outgoing
// edges but no incoming edges (graph sources). When the graph has no
// such sources (no edges, or a closed cycle), it falls back to the
// node(s) with the earliest FirstError, emitting all ties.
func (g *Graph) RootCauses() []*Node {
	hasIncoming := make(map[string]bool)
	hasOutgoing := make(map[string]bool)
	for _, e := range g.Edges {
		hasOutgoing[e.From] = true
		hasIncoming[e.To] = true
	}

	var sources []*Node
	for id, n := range g.Nodes {
		if hasOutgoing[id] && !hasIncoming[id] {
			sources = append(sources, n)
		}
	}
	if len(sources) > 0 {
		sortNodesByID(sources)
		return sources
	}

	var withErrors []*Node
	for _, n := range g.Nodes {
		if n.ErrorCount > 0 {
			withErrors = append(withErrors, n)
		}
	}
	if len(withErrors) == 0 {
		return nil
	}

	earliest := withErrors[0].FirstError
	for _, n := range withErrors {
		if n.FirstError.Before(earliest) {
			earliest = n.FirstError
		}
	}
	var tied []*Node
	for _, n := range withErrors {
		if n.FirstError.Equal(earliest) {
			tied = append(tied, n)
		}
	}
	sortNodesByID(tied)
	return tied
}

func sortNodesByID(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
}

// OutgoingTargets returns the distinct services a node has outgoing
// edges to, sorted for deterministic rendering.
func (g *Graph) OutgoingTargets(nodeID string) []string {
	seen := make(map[string]bool)
	var targets []string
	for _, e := range g.Edges {
		if e.From == nodeID && !seen[e.To] {
			seen[e.To] = true
			targets = append(targets, e.To)
		}
	}
	sort.Strings(targets)
	return targets
}
