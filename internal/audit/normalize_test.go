package audit

import "testing"

func newTestNormalizer() *Normalizer {
	return NewNormalizer(DefaultRules())
}

func intPtr(v int) *int { return &v }

func TestNormalizeDateFormats(t *testing.T) {
	n := newTestNormalizer()
	cases := []struct {
		raw  string
		want string
	}{
		{"January 5, 2024", "2024-01-05"},
		{"Jan 5, 2024", "2024-01-05"},
		{"01/05/2024", "2024-01-05"},
		{"1/5/2024", "2024-01-05"},
		{"  March 17, 2023  ", "2023-03-17"},
		{"Effective as of February 1, 2024 between the parties", "2024-02-01"},
		{"dated 03/15/2024 (the \"Effective Date\")", "2024-03-15"},
	}
	for _, c := range cases {
		got, ok := n.NormalizeDate(c.raw)
		if !ok {
			t.Fatalf("NormalizeDate(%q): not parsed", c.raw)
		}
		if got != c.want {
			t.Fatalf("NormalizeDate(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestNormalizeDateDayMonthFallback(t *testing.T) {
	n := newTestNormalizer()
	// 25/12/2024 cannot be month/day, so the day/month layout applies.
	got, ok := n.NormalizeDate("25/12/2024")
	if !ok || got != "2024-12-25" {
		t.Fatalf("NormalizeDate(25/12/2024) = %q, %v", got, ok)
	}
}

func TestNormalizeDateUnparseableKeepsRaw(t *testing.T) {
	n := newTestNormalizer()
	for _, raw := range []string{"the first day of spring", "Q3 2024", "2024ish", ""} {
		got, ok := n.NormalizeDate(raw)
		if ok {
			t.Fatalf("NormalizeDate(%q): unexpectedly parsed to %q", raw, got)
		}
		if got != raw {
			t.Fatalf("NormalizeDate(%q) changed unparseable value to %q", raw, got)
		}
	}
}

func TestExtractAmount(t *testing.T) {
	n := newTestNormalizer()
	cases := []struct {
		text     string
		value    float64
		currency string
	}{
		{"fee of $1,250,000.50 payable on signing", 1250000.50, "USD"},
		{"USD 12,000 per quarter", 12000, "USD"},
		{"€500,000 upon delivery", 500000, "EUR"},
		{"price of GBP 42 only", 42, "GBP"},
		{"₹9,999,999 total consideration", 9999999, "INR"},
	}
	for _, c := range cases {
		got := n.ExtractAmount(c.text)
		if got == nil {
			t.Fatalf("ExtractAmount(%q) = nil", c.text)
		}
		if got.Value != c.value || got.Currency != c.currency {
			t.Fatalf("ExtractAmount(%q) = %v %s, want %v %s",
				c.text, got.Value, got.Currency, c.value, c.currency)
		}
	}
}

func TestExtractAmountLeftmostWins(t *testing.T) {
	n := newTestNormalizer()
	got := n.ExtractAmount("pay €100 now and $900 later")
	if got == nil || got.Currency != "EUR" || got.Value != 100 {
		t.Fatalf("expected leftmost EUR 100, got %+v", got)
	}
}

func TestExtractAmountAbsent(t *testing.T) {
	n := newTestNormalizer()
	for _, text := range []string{"no figures here", "pay 5000 with no marker", ""} {
		if got := n.ExtractAmount(text); got != nil {
			t.Fatalf("ExtractAmount(%q) = %+v, want nil", text, got)
		}
	}
}

func TestExtractNetDays(t *testing.T) {
	n := newTestNormalizer()
	cases := []struct {
		text string
		want *int
	}{
		{"payment due Net 45 from invoice", intPtr(45)},
		{"NET 30", intPtr(30)},
		{"net60 days", intPtr(60)},
		{"payable net thirty days", intPtr(30)},
		{"due within 30 days", nil},
		{"", nil},
	}
	for _, c := range cases {
		got := n.ExtractNetDays(c.text)
		switch {
		case c.want == nil && got != nil:
			t.Fatalf("ExtractNetDays(%q) = %d, want nil", c.text, *got)
		case c.want != nil && got == nil:
			t.Fatalf("ExtractNetDays(%q) = nil, want %d", c.text, *c.want)
		case c.want != nil && *got != *c.want:
			t.Fatalf("ExtractNetDays(%q) = %d, want %d", c.text, *got, *c.want)
		}
	}
}

func TestExpandNumberWords(t *testing.T) {
	got := ExpandNumberWords("Net Thirty days, then ninety")
	want := "Net 30 days, then 90"
	if got != want {
		t.Fatalf("ExpandNumberWords = %q, want %q", got, want)
	}
}

func TestAmbiguousTermsDedupedAndSorted(t *testing.T) {
	n := newTestNormalizer()
	text := "Sole Discretion applies; reasonable efforts, and again sole discretion"
	got := n.AmbiguousTerms(text)
	if len(got) != 2 {
		t.Fatalf("expected 2 distinct terms, got %v", got)
	}
	if got[0] != "reasonable efforts" || got[1] != "sole discretion" {
		t.Fatalf("expected sorted terms, got %v", got)
	}
}

func TestNormalizerDocument(t *testing.T) {
	n := newTestNormalizer()
	rec := ExtractionRecord{
		DocID:         "c-001",
		Parties:       []string{"Acme Corp", "Beta LLC"},
		EffectiveDate: "January 5, 2024",
		PaymentTerms:  &Span{Text: "Net 45, fee of $2,000,000"},
	}
	doc := n.Document(rec)
	if !doc.DateParsed || doc.EffectiveDateNorm != "2024-01-05" {
		t.Fatalf("date not normalized: %q parsed=%v", doc.EffectiveDateNorm, doc.DateParsed)
	}
	if doc.PaymentNetDays == nil || *doc.PaymentNetDays != 45 {
		t.Fatalf("net days not extracted: %v", doc.PaymentNetDays)
	}
	if doc.PaymentAmount == nil || doc.PaymentAmount.Value != 2000000 {
		t.Fatalf("amount not extracted: %+v", doc.PaymentAmount)
	}
	if doc.PartyKey != "ACME CORP | BETA LLC" {
		t.Fatalf("unexpected party key %q", doc.PartyKey)
	}
	if len(doc.Issues) != 0 {
		t.Fatalf("normalizer must not raise issues, got %v", doc.Issues)
	}
}
