package causalgraph

import (
	"sort"
	"time"
)

// ProjectedNode is the serializable form of a Node for downstream
// consumers (analyzer summaries, API responses).
type ProjectedNode struct {
	ID         string `json:"id"`
	ErrorCount int    `json:"error_count"`
	FirstError string `json:"first_error,omitempty"`
	LastError  string `json:"last_error,omitempty"`
}

// ProjectedEdge is the serializable form of an Edge.
type ProjectedEdge struct {
	From               string   `json:"from"`
	To                 string   `json:"to"`
	Confidence         float64  `json:"confidence"`
	TimeDeltaSeconds   float64  `json:"time_delta_seconds"`
	Evidence           []string `json:"evidence"`
}

// Projection is the serializable view of a Graph handed to downstream
// consumers: analysis results, API responses, the CLI's JSON output.
type Projection struct {
	Nodes      []ProjectedNode `json:"nodes"`
	Edges      []ProjectedEdge `json:"edges"`
	RootCauses []string        `json:"root_causes"`
}

// Project renders the graph into its serializable form, with nodes
// and edges in deterministic (lexicographic) order.
func (g *Graph) Project() Projection {
	p := Projection{}

	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		n := g.Nodes[id]
		pn := ProjectedNode{ID: n.ID, ErrorCount: n.ErrorCount}
		if !n.FirstError.IsZero() {
			pn.FirstError = n.FirstError.Format(time.RFC3339Nano)
			pn.LastError = n.LastError.Format(time.RFC3339Nano)
		}
		p.Nodes = append(p.Nodes, pn)
	}

	edges := make([]*Edge, len(g.Edges))
	copy(edges, g.Edges)
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	for _, e := range edges {
		p.Edges = append(p.Edges, ProjectedEdge{
			From:             e.From,
			To:               e.To,
			Confidence:       e.Confidence,
			TimeDeltaSeconds: e.TimeDelta.Seconds(),
			Evidence:         e.Evidence,
		})
	}

	for _, n := range g.RootCauses() {
		p.RootCauses = append(p.RootCauses, n.ID)
	}

	return p
}
