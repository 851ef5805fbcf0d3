package audit

import (
	"math"
	"sort"
	"time"
)

const (
	topGoverningLawN = 5
	topPartyRiskN    = 10
)

// SummarizeKPIs rolls the final per-document table into portfolio-level
// metrics. Pure aggregation: the same table always yields the same KPIs.
func SummarizeKPIs(rows []DocumentRow) CorpusKPIs {
	kpis := CorpusKPIs{RiskBucketCounts: map[Bucket]int{}}
	if len(rows) == 0 {
		return kpis
	}

	var netDays []float64
	riskSum := 0.0
	lawCounts := map[string]int{}
	partyRisk := map[string]*partyAccumulator{}

	for _, row := range rows {
		if row.PaymentNetDays != nil {
			netDays = append(netDays, float64(*row.PaymentNetDays))
		}
		kpis.RiskBucketCounts[row.RiskBucket]++
		riskSum += row.RiskScore
		if row.GoverningLaw != "" {
			lawCounts[row.GoverningLaw]++
		}
		if row.PartyKey != "" {
			acc, ok := partyRisk[row.PartyKey]
			if !ok {
				acc = &partyAccumulator{}
				partyRisk[row.PartyKey] = acc
			}
			acc.sum += row.RiskScore
			acc.docs++
		}
	}

	if len(netDays) > 0 {
		med := median(netDays)
		p90 := percentile(netDays, 0.90)
		sort.Float64s(netDays)
		minV := int(netDays[0])
		maxV := int(netDays[len(netDays)-1])
		kpis.NetDaysMedian = &med
		kpis.NetDaysP90 = &p90
		kpis.NetDaysMin = &minV
		kpis.NetDaysMax = &maxV
	}

	kpis.AvgRiskScore = riskSum / float64(len(rows))
	kpis.TopGoverningLaw = topLaws(lawCounts, topGoverningLawN)
	kpis.PartyAvgRisk = topParties(partyRisk, topPartyRiskN)
	kpis.Monthly = monthlyTrend(rows)
	return kpis
}

type partyAccumulator struct {
	sum  float64
	docs int
}

// percentile computes the q-quantile with linear interpolation between the
// two nearest ranks. The input slice is not modified.
func percentile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// topLaws ranks governing laws by count descending, value ascending on ties.
func topLaws(counts map[string]int, n int) []LawCount {
	out := make([]LawCount, 0, len(counts))
	for law, c := range counts {
		out = append(out, LawCount{Law: law, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Law < out[j].Law
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// topParties ranks parties by mean risk descending, party key ascending on
// ties.
func topParties(acc map[string]*partyAccumulator, n int) []PartyRisk {
	out := make([]PartyRisk, 0, len(acc))
	for key, a := range acc {
		out = append(out, PartyRisk{
			PartyKey: key,
			AvgRisk:  a.sum / float64(a.docs),
			Docs:     a.docs,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgRisk != out[j].AvgRisk {
			return out[i].AvgRisk > out[j].AvgRisk
		}
		return out[i].PartyKey < out[j].PartyKey
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// monthlyTrend buckets rows by the year-month of the normalized effective
// date. Rows whose date never normalized to ISO are excluded.
func monthlyTrend(rows []DocumentRow) []MonthlyKPI {
	type monthAcc struct {
		contracts int
		netDays   []float64
	}
	months := map[string]*monthAcc{}
	for _, row := range rows {
		t, err := time.Parse("2006-01-02", row.EffectiveDate)
		if err != nil {
			continue
		}
		key := t.Format("2006-01")
		acc, ok := months[key]
		if !ok {
			acc = &monthAcc{}
			months[key] = acc
		}
		acc.contracts++
		if row.PaymentNetDays != nil {
			acc.netDays = append(acc.netDays, float64(*row.PaymentNetDays))
		}
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]MonthlyKPI, 0, len(keys))
	for _, k := range keys {
		acc := months[k]
		m := MonthlyKPI{Month: k, Contracts: acc.contracts}
		if len(acc.netDays) > 0 {
			med := median(acc.netDays)
			m.MedianNetDays = &med
		}
		out = append(out, m)
	}
	return out
}
