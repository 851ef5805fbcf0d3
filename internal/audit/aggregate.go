package audit

import "sort"

// Aggregate computes the frozen corpus statistics from the pass-1 documents.
// Absent values are excluded, never treated as zero. The input must already
// be in canonical doc_id order: the mode tie-break is first occurrence in
// that sequence, which is the only place order matters. Re-running over the
// same set is idempotent.
func Aggregate(docs []*Document) CorpusStats {
	stats := CorpusStats{}

	var netDays []float64
	perPartyNetDays := map[string][]float64{}
	lawCounts := newModeCounter()
	perPartyLaw := map[string]*modeCounter{}

	for _, doc := range docs {
		if doc.PaymentNetDays != nil {
			v := float64(*doc.PaymentNetDays)
			netDays = append(netDays, v)
			if doc.PartyKey != "" {
				perPartyNetDays[doc.PartyKey] = append(perPartyNetDays[doc.PartyKey], v)
			}
		}
		if law := doc.Record.GoverningLaw; law != "" {
			lawCounts.add(law)
			if doc.PartyKey != "" {
				pc, ok := perPartyLaw[doc.PartyKey]
				if !ok {
					pc = newModeCounter()
					perPartyLaw[doc.PartyKey] = pc
				}
				pc.add(law)
			}
		}
	}

	if len(netDays) > 0 {
		m := median(netDays)
		stats.NetDaysMedian = &m
	}
	if mode, ok := lawCounts.mode(); ok {
		stats.GoverningLawMode = &mode
	}
	if len(perPartyNetDays) > 0 {
		stats.PerPartyNetDaysMedian = make(map[string]float64, len(perPartyNetDays))
		for key, vals := range perPartyNetDays {
			stats.PerPartyNetDaysMedian[key] = median(vals)
		}
	}
	if len(perPartyLaw) > 0 {
		stats.PerPartyGoverningLawMode = make(map[string]string, len(perPartyLaw))
		for key, pc := range perPartyLaw {
			if mode, ok := pc.mode(); ok {
				stats.PerPartyGoverningLawMode[key] = mode
			}
		}
	}
	return stats
}

// median returns the midpoint of the sorted values (mean of the two middle
// values for even counts). The input slice is not modified.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// modeCounter tracks value frequencies and breaks ties by first insertion.
type modeCounter struct {
	counts    map[string]int
	firstSeen map[string]int
	next      int
}

func newModeCounter() *modeCounter {
	return &modeCounter{counts: map[string]int{}, firstSeen: map[string]int{}}
}

func (c *modeCounter) add(v string) {
	if _, ok := c.firstSeen[v]; !ok {
		c.firstSeen[v] = c.next
	}
	c.next++
	c.counts[v]++
}

func (c *modeCounter) mode() (string, bool) {
	best := ""
	bestCount := 0
	bestSeen := 0
	for v, n := range c.counts {
		seen := c.firstSeen[v]
		if n > bestCount || (n == bestCount && seen < bestSeen) {
			best, bestCount, bestSeen = v, n, seen
		}
	}
	return best, bestCount > 0
}
