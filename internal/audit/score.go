package audit

import "math"

// Scorer converts a document's accumulated issue list plus raw numeric drift
// into a total score and a risk bucket. Scoring mutates nothing beyond the
// document's own Score field; after it runs the document is final.
type Scorer struct {
	rules Rules
}

func NewScorer(rules Rules) *Scorer {
	return &Scorer{rules: rules}
}

// Score sums the configured weight of every issue on the document (unweighted
// kinds contribute 0) plus the two numeric drift terms, then buckets the
// total. Breakdown entries always sum to Total; when the configured cap
// applies, entries are scaled proportionally so the invariant holds.
func (s *Scorer) Score(doc *Document) RiskScore {
	breakdown := map[IssueKind]float64{}

	for _, issue := range doc.Issues {
		if w := s.rules.Weights[issue.Kind]; w > 0 {
			breakdown[issue.Kind] += w
		}
	}

	std := s.rules.Standards
	if nd := doc.PaymentNetDays; nd != nil && *nd > std.NetDaysStandard {
		drift := math.Max(0, float64(*nd-std.NetDaysStandard)/30.0)
		breakdown[ContribNetDaysDrift] += math.Min(std.NetDaysDriftCap, drift)
	}
	if amt := doc.PaymentAmount; amt != nil && std.AmountUpperWarn > 0 && amt.Value > std.AmountUpperWarn {
		over := (amt.Value - std.AmountUpperWarn) / std.AmountUpperWarn
		breakdown[ContribAmountOverWarn] += math.Min(std.AmountDriftCap, over)
	}

	total := 0.0
	for _, v := range breakdown {
		total += v
	}
	if s.rules.MaxScore > 0 && total > s.rules.MaxScore {
		scale := s.rules.MaxScore / total
		for k := range breakdown {
			breakdown[k] *= scale
		}
		total = s.rules.MaxScore
	}

	return RiskScore{
		Total:     total,
		Breakdown: breakdown,
		Bucket:    s.Bucket(total),
	}
}

// Bucket classifies a total under the configured thresholds: high when
// total >= high, medium when total >= medium, low otherwise.
func (s *Scorer) Bucket(total float64) Bucket {
	switch {
	case total >= s.rules.RiskBuckets.High:
		return BucketHigh
	case total >= s.rules.RiskBuckets.Medium:
		return BucketMedium
	default:
		return BucketLow
	}
}
