package audit

import "math"

// CrossChecker runs pass 2: every document is re-evaluated against the frozen
// corpus statistics. The five checks are independent; a document may
// accumulate any subset of them. Pass-1 issues are never removed or mutated.
type CrossChecker struct {
	rules Rules
	stats CorpusStats
}

func NewCrossChecker(rules Rules, stats CorpusStats) *CrossChecker {
	return &CrossChecker{rules: rules, stats: stats}
}

// Check appends the applicable cross-reference issues to the document.
func (c *CrossChecker) Check(doc *Document) {
	c.checkOverMax(doc)
	c.checkOutlier(doc)
	c.checkPartyDrift(doc)
	c.checkLawConsistency(doc)
	c.checkHighAmount(doc)
}

func (c *CrossChecker) checkOverMax(doc *Document) {
	nd := doc.PaymentNetDays
	if nd == nil || *nd <= c.rules.Standards.MaxNetDays {
		return
	}
	doc.AddIssue(IssueNetDaysOverMax, "payment_terms", map[string]any{
		"net_days": *nd,
		"max":      c.rules.Standards.MaxNetDays,
	})
}

func (c *CrossChecker) checkOutlier(doc *Document) {
	nd := doc.PaymentNetDays
	med := c.stats.NetDaysMedian
	if nd == nil || med == nil || *med <= 0 {
		return
	}
	deviation := math.Abs(float64(*nd)-*med) / *med
	if deviation < c.rules.Standards.OutlierRelativeDeviation {
		return
	}
	doc.AddIssue(IssueNetDaysOutlier, "payment_terms", map[string]any{
		"net_days":  *nd,
		"median":    *med,
		"deviation": round2(deviation),
	})
}

func (c *CrossChecker) checkPartyDrift(doc *Document) {
	nd := doc.PaymentNetDays
	if nd == nil || doc.PartyKey == "" {
		return
	}
	partyMedian, ok := c.stats.PerPartyNetDaysMedian[doc.PartyKey]
	if !ok {
		return
	}
	if math.Abs(float64(*nd)-partyMedian) <= float64(c.rules.Standards.PartyNetDaysTolerance) {
		return
	}
	doc.AddIssue(IssueNetDaysDriftParty, "payment_terms", map[string]any{
		"net_days":     *nd,
		"party_median": partyMedian,
		"tolerance":    c.rules.Standards.PartyNetDaysTolerance,
	})
}

func (c *CrossChecker) checkLawConsistency(doc *Document) {
	if doc.PartyKey == "" || doc.Record.GoverningLaw == "" {
		return
	}
	mode, ok := c.stats.PerPartyGoverningLawMode[doc.PartyKey]
	if !ok || doc.Record.GoverningLaw == mode {
		return
	}
	doc.AddIssue(IssueLawInconsistent, "governing_law", map[string]any{
		"governing_law": doc.Record.GoverningLaw,
		"party_mode":    mode,
	})
}

func (c *CrossChecker) checkHighAmount(doc *Document) {
	amt := doc.PaymentAmount
	if amt == nil || amt.Value <= c.rules.Standards.AmountUpperWarn {
		return
	}
	doc.AddIssue(IssuePaymentAmountHigh, "payment_terms", map[string]any{
		"amount":    amt.Value,
		"currency":  amt.Currency,
		"threshold": c.rules.Standards.AmountUpperWarn,
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
