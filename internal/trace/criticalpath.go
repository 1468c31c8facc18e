package trace

import "time"

// CriticalPath returns the span chain from the root to the leaf whose
// subtree has the maximum summed span duration, breaking ties first
// by highest direct duration, then by span ID.
func (t *Trace) CriticalPath() []Span {
	id := t.RootID
	var path []Span
	for {
		span := t.Spans[id]
		path = append(path, span)

		kids := t.Children(id)
		if len(kids) == 0 {
			break
		}
		id = heaviestChild(t, kids)
	}
	return path
}

func heaviestChild(t *Trace, kids []string) string {
	best := kids[0]
	bestSum := subtreeDuration(t, best)
	bestDirect := t.Spans[best].Duration()

	for _, id := range kids[1:] {
		sum := subtreeDuration(t, id)
		direct := t.Spans[id].Duration()

		switch {
		case sum > bestSum:
			best, bestSum, bestDirect = id, sum, direct
		case sum == bestSum && direct > bestDirect:
			best, bestSum, bestDirect = id, sum, direct
		case sum == bestSum && direct == bestDirect && id < best:
			best, bestSum, bestDirect = id, sum, direct
		}
	}
	return best
}

func subtreeDuration(t *Trace, id string) time.Duration {
	total := t.Spans[id].Duration()
	for _, child := range t.children[id] {
		total += subtreeDuration(t, child)
	}
	return total
}

// TotalDuration returns the summed duration of the critical path.
func TotalDuration(path []Span) time.Duration {
	var total time.Duration
	for _, s := range path {
		total += s.Duration()
	}
	return total
}
