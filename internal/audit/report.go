package audit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// BuildTable produces the per-document output table from scored documents.
// Input order is preserved (the pipeline hands over canonical doc_id order).
func BuildTable(docs []*Document) []DocumentRow {
	rows := make([]DocumentRow, 0, len(docs))
	for _, doc := range docs {
		row := DocumentRow{
			DocID:          doc.Record.ID(),
			PartyKey:       doc.PartyKey,
			GoverningLaw:   doc.Record.GoverningLaw,
			EffectiveDate:  doc.EffectiveDateNorm,
			PaymentNetDays: doc.PaymentNetDays,
			RiskScore:      round3(doc.Score.Total),
			RiskBucket:     doc.Score.Bucket,
			IssueCount:     len(doc.Issues),
			IssueKinds:     distinctKinds(doc.Issues),
		}
		if doc.PaymentAmount != nil {
			v := doc.PaymentAmount.Value
			row.PaymentAmount = &v
		}
		rows = append(rows, row)
	}
	return rows
}

func distinctKinds(issues []Issue) string {
	seen := map[IssueKind]bool{}
	var kinds []string
	for _, issue := range issues {
		if !seen[issue.Kind] {
			seen[issue.Kind] = true
			kinds = append(kinds, string(issue.Kind))
		}
	}
	sort.Strings(kinds)
	return strings.Join(kinds, ",")
}

// BuildFindings flattens every issue of every document into a row carrying
// the document context and a clamped quote from the implicated clause span.
func BuildFindings(docs []*Document, maxQuoteChars int) []FindingRow {
	var rows []FindingRow
	for _, doc := range docs {
		for _, issue := range doc.Issues {
			row := FindingRow{
				DocID:          doc.Record.ID(),
				Kind:           issue.Kind,
				Field:          issue.Field,
				GoverningLaw:   doc.Record.GoverningLaw,
				PaymentNetDays: doc.PaymentNetDays,
				Detail:         issue.Detail,
				Quote:          clampQuote(fieldText(doc.Record, issue.Field), maxQuoteChars),
			}
			if doc.PaymentAmount != nil {
				v := doc.PaymentAmount.Value
				row.PaymentAmount = &v
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// BuildCrossRefReport groups pass-2 findings by check. Pass-1 kinds are not
// part of the cross-reference report.
func BuildCrossRefReport(findings []FindingRow) CrossRefReport {
	report := CrossRefReport{}
	for _, row := range findings {
		switch row.Kind {
		case IssueNetDaysOverMax:
			report.OverMax = append(report.OverMax, row)
		case IssueNetDaysOutlier:
			report.Outliers = append(report.Outliers, row)
		case IssueNetDaysDriftParty:
			report.PartyDrift = append(report.PartyDrift, row)
		case IssueLawInconsistent:
			report.LawInconsistencies = append(report.LawInconsistencies, row)
		case IssuePaymentAmountHigh:
			report.HighAmounts = append(report.HighAmounts, row)
		case IssueMissing, IssueBadDate, IssueAmbiguous:
			// pass-1 findings, reported via the flat findings list only
		}
	}
	return report
}

// fieldText returns the clause text behind a field, when the field is a span.
func fieldText(rec ExtractionRecord, field string) string {
	if span := spanField(rec, field); span != nil {
		return span.Text
	}
	switch field {
	case "effective_date":
		return rec.EffectiveDate
	case "governing_law":
		return rec.GoverningLaw
	case "parties":
		return strings.Join(rec.Parties, " ")
	}
	return ""
}

func clampQuote(text string, maxChars int) string {
	t := strings.Join(strings.Fields(text), " ")
	if maxChars <= 0 || len(t) <= maxChars {
		return t
	}
	return t[:maxChars] + "…"
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

var tableHeader = []string{
	"doc_id", "party_key", "governing_law", "effective_date",
	"payment_net_days", "payment_amount", "risk_score", "risk_bucket",
	"issues_count", "issue_kinds",
}

// WriteTableCSV encodes the per-document table for spreadsheet-oriented
// consumers. Absent values are empty cells.
func WriteTableCSV(w io.Writer, rows []DocumentRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		netDays := ""
		if row.PaymentNetDays != nil {
			netDays = strconv.Itoa(*row.PaymentNetDays)
		}
		amount := ""
		if row.PaymentAmount != nil {
			amount = strconv.FormatFloat(*row.PaymentAmount, 'f', -1, 64)
		}
		rec := []string{
			row.DocID,
			row.PartyKey,
			row.GoverningLaw,
			row.EffectiveDate,
			netDays,
			amount,
			strconv.FormatFloat(row.RiskScore, 'f', -1, 64),
			string(row.RiskBucket),
			strconv.Itoa(row.IssueCount),
			row.IssueKinds,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %s: %w", row.DocID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
