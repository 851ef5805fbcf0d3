package audit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Standards are the numeric thresholds shared by both detection passes and
// the scorer.
type Standards struct {
	NetDaysStandard          int     `yaml:"net_days_standard" json:"net_days_standard"`
	MaxNetDays               int     `yaml:"max_net_days" json:"max_net_days"`
	AmountUpperWarn          float64 `yaml:"amount_upper_warn" json:"amount_upper_warn"`
	PartyNetDaysTolerance    int     `yaml:"party_net_days_tolerance" json:"party_net_days_tolerance"`
	OutlierRelativeDeviation float64 `yaml:"outlier_relative_deviation" json:"outlier_relative_deviation"`
	NetDaysDriftCap          float64 `yaml:"net_days_drift_cap" json:"net_days_drift_cap"`
	AmountDriftCap           float64 `yaml:"amount_drift_cap" json:"amount_drift_cap"`
}

// BucketThresholds map a total score onto a risk bucket. Medium must stay
// strictly below High.
type BucketThresholds struct {
	Medium float64 `yaml:"medium" json:"medium"`
	High   float64 `yaml:"high" json:"high"`
}

// Rules is the full rule set for a run. It is loaded once, validated, and
// then shared read-only across all workers.
type Rules struct {
	RequiredFields          []string              `yaml:"required_fields" json:"required_fields"`
	AmbiguousTerms          []string              `yaml:"ambiguous_terms" json:"ambiguous_terms"`
	CurrencyMarkers         map[string]string     `yaml:"currency_markers" json:"currency_markers"`
	FlagRedactionsInParties bool                  `yaml:"flag_redactions_in_parties" json:"flag_redactions_in_parties"`
	Standards               Standards             `yaml:"standards" json:"standards"`
	Weights                 map[IssueKind]float64 `yaml:"weights" json:"weights"`
	RiskBuckets             BucketThresholds      `yaml:"risk_buckets" json:"risk_buckets"`
	MaxScore                float64               `yaml:"max_score" json:"max_score"`
	MaxQuoteChars           int                   `yaml:"max_quote_chars" json:"max_quote_chars"`
}

// DefaultRules returns the rule set used when no config file overrides it.
func DefaultRules() Rules {
	return Rules{
		RequiredFields: []string{
			"parties",
			"effective_date",
			"governing_law",
			"payment_terms",
			"termination_clause",
		},
		AmbiguousTerms: []string{
			"reasonable efforts",
			"best efforts",
			"commercially reasonable",
			"sole discretion",
			"material adverse",
			"as soon as practicable",
			"from time to time",
		},
		CurrencyMarkers: map[string]string{
			"$":   "USD",
			"usd": "USD",
			"€":   "EUR",
			"eur": "EUR",
			"£":   "GBP",
			"gbp": "GBP",
			"₹":   "INR",
			"inr": "INR",
		},
		FlagRedactionsInParties: true,
		Standards: Standards{
			NetDaysStandard:          30,
			MaxNetDays:               120,
			AmountUpperWarn:          1_000_000,
			PartyNetDaysTolerance:    15,
			OutlierRelativeDeviation: 0.5,
			NetDaysDriftCap:          3.0,
			AmountDriftCap:           2.0,
		},
		Weights: map[IssueKind]float64{
			IssueMissing:           3.0,
			IssueAmbiguous:         2.0,
			IssueBadDate:           1.0,
			IssueNetDaysOverMax:    3.5,
			IssueNetDaysOutlier:    2.5,
			IssueNetDaysDriftParty: 2.0,
			IssueLawInconsistent:   2.0,
			IssuePaymentAmountHigh: 2.5,
		},
		RiskBuckets:   BucketThresholds{Medium: 5, High: 10},
		MaxScore:      0,
		MaxQuoteChars: 400,
	}
}

// LoadRules reads a YAML rule file over the defaults and validates the
// result. Any failure here is fatal for the run: nothing has been processed
// yet and nothing is written.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, fmt.Errorf("invalid rules: %w", err)
	}
	return rules, nil
}

// Validate rejects negative thresholds and non-monotone bucket boundaries.
func (r Rules) Validate() error {
	s := r.Standards
	if s.NetDaysStandard < 0 {
		return fmt.Errorf("net_days_standard must be non-negative, got %d", s.NetDaysStandard)
	}
	if s.MaxNetDays < 0 {
		return fmt.Errorf("max_net_days must be non-negative, got %d", s.MaxNetDays)
	}
	if s.AmountUpperWarn < 0 {
		return fmt.Errorf("amount_upper_warn must be non-negative, got %v", s.AmountUpperWarn)
	}
	if s.PartyNetDaysTolerance < 0 {
		return fmt.Errorf("party_net_days_tolerance must be non-negative, got %d", s.PartyNetDaysTolerance)
	}
	if s.OutlierRelativeDeviation < 0 {
		return fmt.Errorf("outlier_relative_deviation must be non-negative, got %v", s.OutlierRelativeDeviation)
	}
	if s.NetDaysDriftCap < 0 || s.AmountDriftCap < 0 {
		return fmt.Errorf("drift caps must be non-negative")
	}
	for kind, w := range r.Weights {
		if w < 0 {
			return fmt.Errorf("weight for %s must be non-negative, got %v", kind, w)
		}
	}
	if r.RiskBuckets.Medium < 0 || r.RiskBuckets.High < 0 {
		return fmt.Errorf("risk bucket thresholds must be non-negative")
	}
	if r.RiskBuckets.Medium >= r.RiskBuckets.High {
		return fmt.Errorf("risk bucket thresholds must be monotone: medium %v >= high %v",
			r.RiskBuckets.Medium, r.RiskBuckets.High)
	}
	if r.MaxScore < 0 {
		return fmt.Errorf("max_score must be non-negative, got %v", r.MaxScore)
	}
	if r.MaxQuoteChars < 0 {
		return fmt.Errorf("max_quote_chars must be non-negative, got %d", r.MaxQuoteChars)
	}
	return nil
}
