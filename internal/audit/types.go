package audit

// Span is a clause excerpt located in the source contract text, as produced
// by the upstream extraction stage.
type Span struct {
	Text       string  `json:"text"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
}

// ExtractionRecord is one extracted contract as handed over by the extraction
// collaborator. Any subset of fields may be absent; the engine must tolerate
// all of them missing. LegacyDocID accepts the `_doc_id` key written by the
// original extractor.
type ExtractionRecord struct {
	DocID             string   `json:"doc_id"`
	LegacyDocID       string   `json:"_doc_id,omitempty"`
	Parties           []string `json:"parties,omitempty"`
	EffectiveDate     string   `json:"effective_date,omitempty"`
	GoverningLaw      string   `json:"governing_law,omitempty"`
	PaymentTerms      *Span    `json:"payment_terms,omitempty"`
	TerminationClause *Span    `json:"termination_clause,omitempty"`
}

// ID returns the record identifier, preferring doc_id over the legacy key.
func (r ExtractionRecord) ID() string {
	if r.DocID != "" {
		return r.DocID
	}
	return r.LegacyDocID
}

// IssueKind is the closed enumeration of everything the two detection passes
// can flag. The two *_NUMERIC keys never appear on issues; they exist only as
// score-breakdown contribution keys.
type IssueKind string

const (
	IssueMissing           IssueKind = "MISSING"
	IssueBadDate           IssueKind = "BAD_DATE"
	IssueAmbiguous         IssueKind = "AMBIGUOUS"
	IssueNetDaysOverMax    IssueKind = "NET_DAYS_OVER_MAX"
	IssueNetDaysOutlier    IssueKind = "NET_DAYS_OUTLIER"
	IssueNetDaysDriftParty IssueKind = "NET_DAYS_DRIFT_VS_PARTY"
	IssueLawInconsistent   IssueKind = "GOVERNING_LAW_INCONSISTENT"
	IssuePaymentAmountHigh IssueKind = "PAYMENT_AMOUNT_HIGH"
	ContribNetDaysDrift    IssueKind = "NET_DAYS_DRIFT_NUMERIC"
	ContribAmountOverWarn  IssueKind = "AMOUNT_OVER_WARN_NUMERIC"
)

// IssueKinds lists every kind an Issue may carry, in taxonomy order.
var IssueKinds = []IssueKind{
	IssueMissing,
	IssueBadDate,
	IssueAmbiguous,
	IssueNetDaysOverMax,
	IssueNetDaysOutlier,
	IssueNetDaysDriftParty,
	IssueLawInconsistent,
	IssuePaymentAmountHigh,
}

// Issue is an immutable finding attached to a document by one of the two
// passes. Detail carries the observed values and baselines behind the flag so
// downstream consumers can filter on exact numbers rather than parse text.
type Issue struct {
	Kind   IssueKind      `json:"kind"`
	Field  string         `json:"field,omitempty"`
	Detail map[string]any `json:"detail,omitempty"`
}

// Amount is a currency-marked number found in the payment terms.
type Amount struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

// Document is the working record for one contract within a run. It is created
// by the normalizer, mutated in place by each pass in sequence, and treated as
// immutable once scored. Issues is append-only; pass-1 issues precede pass-2.
type Document struct {
	Record ExtractionRecord

	// EffectiveDateNorm holds the ISO date when parsing succeeded and the raw
	// string unchanged when it did not. DateParsed distinguishes the two.
	EffectiveDateNorm string
	DateParsed        bool

	PaymentAmount  *Amount
	PaymentNetDays *int
	PartyKey       string

	Issues []Issue
	Score  RiskScore
}

// AddIssue appends a finding to the document's issue list.
func (d *Document) AddIssue(kind IssueKind, field string, detail map[string]any) {
	d.Issues = append(d.Issues, Issue{Kind: kind, Field: field, Detail: detail})
}

// Bucket is the discretized risk classification of a document.
type Bucket string

const (
	BucketLow    Bucket = "low"
	BucketMedium Bucket = "medium"
	BucketHigh   Bucket = "high"
)

// RiskScore is the weighted result of scoring one document. Breakdown entries
// sum to Total.
type RiskScore struct {
	Total     float64               `json:"total"`
	Breakdown map[IssueKind]float64 `json:"breakdown"`
	Bucket    Bucket                `json:"bucket"`
}

// CorpusStats are the frozen corpus-wide aggregates that pass 2 reads. They
// are a pure function of the normalized documents: recomputing over the same
// set, in any order, yields identical values (mode ties break on first
// occurrence in doc_id order).
type CorpusStats struct {
	NetDaysMedian            *float64           `json:"net_days_median,omitempty"`
	GoverningLawMode         *string            `json:"governing_law_mode,omitempty"`
	PerPartyNetDaysMedian    map[string]float64 `json:"per_party_net_days_median,omitempty"`
	PerPartyGoverningLawMode map[string]string  `json:"per_party_governing_law_mode,omitempty"`
}

// DocumentRow is one row of the per-document output table.
type DocumentRow struct {
	DocID          string   `json:"doc_id"`
	PartyKey       string   `json:"party_key,omitempty"`
	GoverningLaw   string   `json:"governing_law,omitempty"`
	EffectiveDate  string   `json:"effective_date,omitempty"`
	PaymentNetDays *int     `json:"payment_net_days,omitempty"`
	PaymentAmount  *float64 `json:"payment_amount,omitempty"`
	RiskScore      float64  `json:"risk_score"`
	RiskBucket     Bucket   `json:"risk_bucket"`
	IssueCount     int      `json:"issues_count"`
	IssueKinds     string   `json:"issue_kinds"`
}

// FindingRow is one issue flattened with enough document context to be
// rendered or filtered without going back to the source record.
type FindingRow struct {
	DocID          string         `json:"doc_id"`
	Kind           IssueKind      `json:"issue_type"`
	Field          string         `json:"field,omitempty"`
	GoverningLaw   string         `json:"governing_law,omitempty"`
	PaymentNetDays *int           `json:"payment_net_days,omitempty"`
	PaymentAmount  *float64       `json:"payment_amount,omitempty"`
	Detail         map[string]any `json:"detail,omitempty"`
	Quote          string         `json:"quote,omitempty"`
}

// CrossRefReport groups the pass-2 findings by check, ready for a reporting
// collaborator to render directly.
type CrossRefReport struct {
	OverMax            []FindingRow `json:"over_max"`
	Outliers           []FindingRow `json:"outliers"`
	PartyDrift         []FindingRow `json:"party_drift"`
	LawInconsistencies []FindingRow `json:"law_inconsistencies"`
	HighAmounts        []FindingRow `json:"high_amounts"`
}

// LawCount is one governing-law frequency entry.
type LawCount struct {
	Law   string `json:"law"`
	Count int    `json:"count"`
}

// PartyRisk is the mean risk score over one counterparty relationship.
type PartyRisk struct {
	PartyKey string  `json:"party_key"`
	AvgRisk  float64 `json:"avg_risk"`
	Docs     int     `json:"docs"`
}

// MonthlyKPI buckets contracts by the year-month of their normalized
// effective date.
type MonthlyKPI struct {
	Month         string   `json:"month"`
	Contracts     int      `json:"contracts"`
	MedianNetDays *float64 `json:"median_net_days,omitempty"`
}

// CorpusKPIs are the portfolio-level metrics rolled up from the scored table.
type CorpusKPIs struct {
	NetDaysMedian    *float64       `json:"net_days_median,omitempty"`
	NetDaysP90       *float64       `json:"net_days_p90,omitempty"`
	NetDaysMin       *int           `json:"net_days_min,omitempty"`
	NetDaysMax       *int           `json:"net_days_max,omitempty"`
	RiskBucketCounts map[Bucket]int `json:"risk_bucket_counts"`
	AvgRiskScore     float64        `json:"avg_risk_score"`
	TopGoverningLaw  []LawCount     `json:"top_governing_law"`
	PartyAvgRisk     []PartyRisk    `json:"party_avg_risk_top10"`
	Monthly          []MonthlyKPI   `json:"monthly"`
}

// RunResult is everything one full corpus run produces.
type RunResult struct {
	Documents []*Document    `json:"-"`
	Stats     CorpusStats    `json:"corpus_stats"`
	Table     []DocumentRow  `json:"per_doc"`
	KPIs      CorpusKPIs     `json:"corpus_kpis"`
	Findings  []FindingRow   `json:"findings"`
	CrossRef  CrossRefReport `json:"crossref"`
}
