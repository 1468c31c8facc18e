package trace

import "time"

// ServiceStats is the aggregated span statistics for one service
// across many traces.
type ServiceStats struct {
	Count      int
	ErrorCount int
	Total      time.Duration
	Min        time.Duration
	Max        time.Duration
}

// Average returns Total / Count, or zero when Count is zero.
func (s ServiceStats) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// AggregateByService folds every span across the given traces into
// per-service statistics.
func AggregateByService(traces []*Trace) map[string]ServiceStats {
	stats := make(map[string]ServiceStats)

	for _, t := range traces {
		for _, id := range sortedSpanIDs(t) {
			s := t.Spans[id]
			st := stats[s.ServiceName]

			d := s.Duration()
			if st.Count == 0 || d < st.Min {
				st.Min = d
			}
			if d > st.Max {
				st.Max = d
			}
			st.Count++
			st.Total += d
			if s.Status == StatusError {
				st.ErrorCount++
			}

			stats[s.ServiceName] = st
		}
	}

	return stats
}
