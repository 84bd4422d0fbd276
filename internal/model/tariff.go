// Package model defines the core domain models used throughout the application.
package model

import "github.com/shopspring/decimal"

// TariffEntry is one line of the harmonized tariff schedule.
type TariffEntry struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	GeneralRate string `json:"general_rate,omitempty"`
	SpecialRate string `json:"special_rate,omitempty"`
	Column2Rate string `json:"column2_rate,omitempty"`
	Unit        string `json:"unit,omitempty"`
	IndentLevel int    `json:"indent_level"`
}

// RateSource describes where an effective duty rate came from.
type RateSource string

// Rate source constants.
const (
	SourceDirect         RateSource = "direct"
	SourceInherited      RateSource = "inherited"
	SourceCrossReference RateSource = "cross_reference"
	SourceUnresolved     RateSource = "unresolved"
)

// Effective rate texts used when no literal rate applies.
const (
	RateDependsOnMainArticle = "Depends on main article"
	RateUnknown              = "Unknown"
)

// DutyResolution is the outcome of resolving the duty rate for a code.
type DutyResolution struct {
	AdValorem               *decimal.Decimal `json:"ad_valorem,omitempty"`
	Code                    string           `json:"code"`
	EffectiveRate           string           `json:"effective_rate"`
	RateText                string           `json:"rate_text,omitempty"`
	Source                  RateSource       `json:"source"`
	SourceCode              string           `json:"source_code,omitempty"`
	MainArticleCode         string           `json:"main_article_code,omitempty"`
	CandidateReferenceCodes []string         `json:"candidate_reference_codes,omitempty"`
}

// Resolved reports whether a concrete rate was found.
func (d DutyResolution) Resolved() bool {
	return d.Source != SourceUnresolved &&
		d.EffectiveRate != RateUnknown &&
		d.EffectiveRate != RateDependsOnMainArticle
}

// EntryDetails is a lookup view of one entry with its resolved duty.
type EntryDetails struct {
	Estimate *DutyEstimate  `json:"estimate,omitempty"`
	Entry    TariffEntry    `json:"entry"`
	Chapter  string         `json:"chapter"`
	Heading  string         `json:"heading"`
	Duty     DutyResolution `json:"duty"`
}

// DutyEstimate is the ad valorem duty owed on a customs value. Amount is
// empty when the rate is unknown or has no percentage component.
type DutyEstimate struct {
	Value    string `json:"value"`
	Rate     string `json:"rate"`
	Amount   string `json:"amount,omitempty"`
	Computed bool   `json:"computed"`
}
