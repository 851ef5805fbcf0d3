package audit

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order against the full trimmed value. Month/day
// placements come before day/month, matching upstream extraction conventions.
var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"1/2/2006",
	"02/01/2006",
	"2/1/2006",
}

var (
	monthNameDateRx = regexp.MustCompile(`[A-Za-z]{3,9}\.?\s+\d{1,2},\s*\d{4}`)
	numericDateRx   = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)
	netDaysRx       = regexp.MustCompile(`(?i)\bnet\s*(\d{1,3})\b`)
	whitespaceRx    = regexp.MustCompile(`\s+`)
)

var numberWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90, "hundred": 100,
}

var numberWordRx = buildNumberWordRx()

func buildNumberWordRx() *regexp.Regexp {
	words := make([]string, 0, len(numberWords))
	for w := range numberWords {
		words = append(words, w)
	}
	sort.Strings(words)
	return regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)\b`)
}

// ExpandNumberWords replaces whole-word number words (zero through twenty,
// tens to ninety, hundred) with their digit equivalents.
func ExpandNumberWords(text string) string {
	return numberWordRx.ReplaceAllStringFunc(text, func(w string) string {
		if n, ok := numberWords[strings.ToLower(w)]; ok {
			return strconv.Itoa(n)
		}
		return w
	})
}

type currencyMarker struct {
	code string
	rx   *regexp.Regexp
}

// Normalizer converts raw extracted field values into canonical typed values.
// It never fails a run: a value that cannot be normalized is left as-is.
type Normalizer struct {
	rules   Rules
	markers []currencyMarker
}

func NewNormalizer(rules Rules) *Normalizer {
	n := &Normalizer{rules: rules}
	keys := make([]string, 0, len(rules.CurrencyMarkers))
	for m := range rules.CurrencyMarkers {
		keys = append(keys, m)
	}
	sort.Strings(keys)
	for _, m := range keys {
		n.markers = append(n.markers, currencyMarker{
			code: rules.CurrencyMarkers[m],
			rx:   markerRegexp(m),
		})
	}
	return n
}

func markerRegexp(marker string) *regexp.Regexp {
	const number = `([0-9][0-9,]*\.?[0-9]*)`
	if isWordMarker(marker) {
		// ISO-code form needs word boundaries: "USD 12,000".
		return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(marker) + `\s*` + number + `\b`)
	}
	// Symbol form: "$12,345.67".
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(marker) + `\s*` + number)
}

func isWordMarker(marker string) bool {
	for _, r := range marker {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return len(marker) > 0
}

// NormalizeDate converts common date formats to ISO YYYY-MM-DD. When no
// strategy matches, the raw string is returned unchanged with ok=false; the
// caller decides whether that warrants an issue.
func (n *Normalizer) NormalizeDate(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	// No full-string match: look for a known date shape inside a longer span
	// and re-attempt against the matched substring.
	for _, rx := range []*regexp.Regexp{monthNameDateRx, numericDateRx} {
		sub := rx.FindString(trimmed)
		if sub == "" {
			continue
		}
		sub = strings.ReplaceAll(sub, ".", "")
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, sub); err == nil {
				return t.Format("2006-01-02"), true
			}
		}
	}
	return raw, false
}

// ExtractAmount scans text for a currency marker immediately followed by a
// thousands/decimal-formatted number and returns the leftmost match. Nil when
// no currency-marked number is present.
func (n *Normalizer) ExtractAmount(text string) *Amount {
	if text == "" {
		return nil
	}
	best := -1
	var found *Amount
	for _, m := range n.markers {
		loc := m.rx.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		if best != -1 && loc[0] >= best {
			continue
		}
		raw := strings.ReplaceAll(text[loc[2]:loc[3]], ",", "")
		v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "."), 64)
		if err != nil {
			continue
		}
		best = loc[0]
		found = &Amount{Value: v, Currency: m.code}
	}
	return found
}

// ExtractNetDays finds the first "Net X" token in payment-terms text, after
// substituting number words with digits. Nil when absent.
func (n *Normalizer) ExtractNetDays(text string) *int {
	if text == "" {
		return nil
	}
	m := netDaysRx.FindStringSubmatch(ExpandNumberWords(text))
	if m == nil {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// AmbiguousTerms reports every configured ambiguous term contained in the
// text, deduplicated and sorted for deterministic output.
func (n *Normalizer) AmbiguousTerms(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	seen := map[string]bool{}
	var hits []string
	for _, term := range n.rules.AmbiguousTerms {
		t := strings.ToLower(term)
		if t != "" && strings.Contains(lower, t) && !seen[t] {
			seen[t] = true
			hits = append(hits, t)
		}
	}
	sort.Strings(hits)
	return hits
}

// Document builds the working record for one contract: normalized fields plus
// the derived party key. No issues are raised here.
func (n *Normalizer) Document(rec ExtractionRecord) *Document {
	doc := &Document{Record: rec}
	if rec.EffectiveDate != "" {
		doc.EffectiveDateNorm, doc.DateParsed = n.NormalizeDate(rec.EffectiveDate)
	}
	if rec.PaymentTerms != nil {
		doc.PaymentAmount = n.ExtractAmount(rec.PaymentTerms.Text)
		doc.PaymentNetDays = n.ExtractNetDays(rec.PaymentTerms.Text)
	}
	doc.PartyKey = PartyKey(rec.Parties)
	return doc
}
