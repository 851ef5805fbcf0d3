package audit

import "strings"

// spanFields are the clause fields scanned for ambiguous language, in the
// order their issues are appended.
var spanFields = []string{"termination_clause", "payment_terms"}

// Detector runs the document-local checks of pass 1. Each document is
// examined independently of all others; pass 2 may not start until this pass
// has completed for the whole corpus.
type Detector struct {
	rules Rules
	norm  *Normalizer
}

func NewDetector(rules Rules, norm *Normalizer) *Detector {
	return &Detector{rules: rules, norm: norm}
}

// Detect appends pass-1 issues to the document: missing required fields, a
// present-but-unparseable effective date, redacted party names, and ambiguous
// clause language.
func (d *Detector) Detect(doc *Document) {
	for _, field := range d.rules.RequiredFields {
		if !fieldPresent(doc.Record, field) {
			doc.AddIssue(IssueMissing, field, map[string]any{"required": true})
		}
	}

	if doc.Record.EffectiveDate != "" && !doc.DateParsed {
		doc.AddIssue(IssueBadDate, "effective_date", map[string]any{
			"raw": doc.Record.EffectiveDate,
		})
	}

	if d.rules.FlagRedactionsInParties && partiesRedacted(doc.Record.Parties) {
		doc.AddIssue(IssueAmbiguous, "parties", map[string]any{"redacted": true})
	}

	for _, field := range spanFields {
		span := spanField(doc.Record, field)
		if span == nil {
			continue
		}
		if hits := d.norm.AmbiguousTerms(span.Text); len(hits) > 0 {
			doc.AddIssue(IssueAmbiguous, field, map[string]any{"terms": hits})
		}
	}
}

func fieldPresent(rec ExtractionRecord, field string) bool {
	switch field {
	case "parties":
		for _, p := range rec.Parties {
			if strings.TrimSpace(p) != "" {
				return true
			}
		}
		return false
	case "effective_date":
		return rec.EffectiveDate != ""
	case "governing_law":
		return rec.GoverningLaw != ""
	case "payment_terms":
		return rec.PaymentTerms != nil && rec.PaymentTerms.Text != ""
	case "termination_clause":
		return rec.TerminationClause != nil && rec.TerminationClause.Text != ""
	default:
		return false
	}
}

func spanField(rec ExtractionRecord, field string) *Span {
	switch field {
	case "payment_terms":
		return rec.PaymentTerms
	case "termination_clause":
		return rec.TerminationClause
	default:
		return nil
	}
}

func partiesRedacted(parties []string) bool {
	for _, p := range parties {
		if strings.Contains(p, "***") {
			return true
		}
	}
	return false
}
