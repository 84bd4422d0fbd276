package tariff

import (
	"regexp"
	"strings"

	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/shopspring/decimal"
)

// RateKind classifies the shape of a duty rate text.
type RateKind string

// Rate kinds.
const (
	RateEmpty          RateKind = "empty"
	RateFree           RateKind = "free"
	RateAdValorem      RateKind = "ad_valorem"
	RateSpecific       RateKind = "specific"
	RateCompound       RateKind = "compound"
	RateCrossReference RateKind = "cross_reference"
	RateOther          RateKind = "other"
)

var (
	footnoteRe  = regexp.MustCompile(`\s*\d+/\s*$`)
	adValoremRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*%$`)
	percentRe   = regexp.MustCompile(`\d+(?:\.\d+)?\s*%`)
)

// crossReferenceMarkers identify rates defined by reference to another article.
var crossReferenceMarkers = []string{
	"applicable to the article of which it is a part",
	"applicable to the article of which it is an accessory",
	"rate applicable to",
}

// Rate is a parsed duty rate.
type Rate struct {
	Text    string
	Kind    RateKind
	Percent decimal.Decimal
}

// IsCrossReference reports whether a rate text points at another article's rate.
func IsCrossReference(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range crossReferenceMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ParseRate interprets a general-column rate text.
func ParseRate(text string) Rate {
	clean := strings.TrimSpace(footnoteRe.ReplaceAllString(strings.TrimSpace(text), ""))
	r := Rate{Text: clean}

	switch {
	case clean == "":
		r.Kind = RateEmpty
	case strings.EqualFold(clean, "free"):
		r.Kind = RateFree
		r.Percent = decimal.Zero
	case IsCrossReference(clean):
		r.Kind = RateCrossReference
	default:
		if m := adValoremRe.FindStringSubmatch(clean); m != nil {
			r.Kind = RateAdValorem
			r.Percent = decimal.RequireFromString(m[1])
			return r
		}
		hasPercent := percentRe.MatchString(clean)
		hasSpecific := strings.ContainsAny(clean, "¢$/") || strings.Contains(clean, "each")
		switch {
		case hasPercent && hasSpecific:
			r.Kind = RateCompound
			r.Percent = decimal.RequireFromString(strings.TrimSpace(strings.TrimSuffix(percentRe.FindString(clean), "%")))
		case hasSpecific:
			r.Kind = RateSpecific
		default:
			r.Kind = RateOther
		}
	}
	return r
}

// HasPercent reports whether the rate carries an ad valorem component.
func (r Rate) HasPercent() bool {
	return r.Kind == RateFree || r.Kind == RateAdValorem || r.Kind == RateCompound
}

// DutyOn computes the ad valorem duty on a customs value. The second result
// is false when the rate has no percentage component. For compound rates only
// the ad valorem part is computed.
func (r Rate) DutyOn(value decimal.Decimal) (decimal.Decimal, bool) {
	if !r.HasPercent() {
		return decimal.Zero, false
	}
	return value.Mul(r.Percent).Div(decimal.NewFromInt(100)).Round(2), true
}

// EstimateDuty computes the ad valorem duty a resolution implies on a customs
// value. Unresolved rates and rates without a percentage yield no amount.
func EstimateDuty(res model.DutyResolution, value decimal.Decimal) *model.DutyEstimate {
	est := &model.DutyEstimate{Value: value.StringFixed(2), Rate: res.EffectiveRate}
	if !res.Resolved() {
		return est
	}
	if duty, ok := ParseRate(res.EffectiveRate).DutyOn(value); ok {
		est.Amount = duty.StringFixed(2)
		est.Computed = true
	}
	return est
}
