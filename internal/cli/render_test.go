package cli

import (
	"testing"

	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/stretchr/testify/assert"
)

func candidate(code, desc, rate string, confidence float64) model.MatchCandidate {
	return model.MatchCandidate{
		Code:            code,
		Description:     desc,
		MatchType:       model.MatchFuzzy,
		Chapter:         code[:2],
		ConfidenceScore: confidence,
		Duty:            model.DutyResolution{Code: code, EffectiveRate: rate, Source: model.SourceDirect},
	}
}

func TestRenderCandidates(t *testing.T) {
	out := RenderCandidates([]model.MatchCandidate{
		candidate("4011.10.10", "Radial tyres for motor cars", "4%", 91.6),
		candidate("4012.20.10", "Used pneumatic tyres", "Free", 64),
	})

	assert.Contains(t, out, "1. ")
	assert.Contains(t, out, "4011.10.10")
	assert.Contains(t, out, "(92%, fuzzy)")
	assert.Contains(t, out, "2. ")
	assert.Contains(t, out, "Duty: Free")
}

func TestRenderResponse(t *testing.T) {
	final := candidate("8517.13.00", "Smartphones", "Free", 95)
	final.Unit = "No."

	tests := []struct {
		name     string
		resp     model.Response
		contains []string
	}{
		{
			name:     "question",
			resp:     model.Response{Status: model.SessionAwaitingClarification, ConfirmedProduct: "tires", Question: "What is the material?"},
			contains: []string{"Product: tires", "What is the material?"},
		},
		{
			name: "question after empty search",
			resp: model.Response{
				Status:    model.SessionAwaitingClarification,
				Question:  "What is it made of?",
				NoResults: true,
				Message:   "No tariff classifications found. Try being more specific.",
			},
			contains: []string{"No tariff classifications found", "What is it made of?"},
		},
		{
			name: "options",
			resp: model.Response{
				Status:  model.SessionAwaitingSelection,
				Message: "Please select one:",
				Options: []model.MatchCandidate{final},
			},
			contains: []string{"Please select one:", "1. ", "8517.13.00"},
		},
		{
			name: "invalid selection",
			resp: model.Response{
				Status:           model.SessionAwaitingSelection,
				InvalidSelection: true,
				Message:          "Please select a valid option (1-1) or provide the tariff code:",
				Options:          []model.MatchCandidate{final},
			},
			contains: []string{"valid option (1-1)", "8517.13.00"},
		},
		{
			name: "final",
			resp: model.Response{
				Status:      model.SessionComplete,
				Message:     "Classification complete.",
				FinalResult: &final,
			},
			contains: []string{"Classification complete.", "Smartphones", "Unit:", "hts.usitc.gov/search?query=8517.13.00"},
		},
		{
			name:     "no results",
			resp:     model.Response{Status: model.SessionComplete, NoResults: true, Message: "No tariff classifications found."},
			contains: []string{"No tariff classifications found."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderResponse(tt.resp)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestRenderDuty(t *testing.T) {
	t.Run("inherited", func(t *testing.T) {
		out := RenderDuty(model.DutyResolution{
			Code:          "4011.10.10.10",
			EffectiveRate: "4%",
			Source:        model.SourceInherited,
			SourceCode:    "4011.10.10",
		})
		assert.Contains(t, out, "4% (inherited from 4011.10.10)")
	})

	t.Run("cross reference lists candidates", func(t *testing.T) {
		out := RenderDuty(model.DutyResolution{
			Code:                    "9017.90.01",
			EffectiveRate:           model.RateDependsOnMainArticle,
			Source:                  model.SourceCrossReference,
			CandidateReferenceCodes: []string{"9017.10.40", "9017.20.40"},
		})
		assert.Contains(t, out, "Candidates: 9017.10.40, 9017.20.40")
		assert.Contains(t, out, "--main")
	})

	t.Run("cross reference resolved", func(t *testing.T) {
		out := RenderDuty(model.DutyResolution{
			Code:                    "9017.90.01",
			EffectiveRate:           "4.6%",
			Source:                  model.SourceCrossReference,
			SourceCode:              "9017.20.40",
			MainArticleCode:         "9017.20.40",
			CandidateReferenceCodes: []string{"9017.10.40", "9017.20.40"},
		})
		assert.Contains(t, out, "4.6% (from main article 9017.20.40)")
		assert.NotContains(t, out, "Candidates:")
	})
}

func TestRenderDetails(t *testing.T) {
	out := RenderDetails(model.EntryDetails{
		Entry: model.TariffEntry{
			Code:        "4011.10.10",
			Description: "Radial tyres for motor cars",
			GeneralRate: "4%",
			IndentLevel: 2,
		},
		Chapter: "40",
		Heading: "4011",
		Duty:    model.DutyResolution{Code: "4011.10.10", EffectiveRate: "4%", Source: model.SourceDirect},
	})

	assert.Contains(t, out, "Radial tyres for motor cars")
	assert.Contains(t, out, "Heading: 4011")
	assert.Contains(t, out, "Special:     -")
	assert.Contains(t, out, "Effective rate: 4%")
}

func TestRenderDetailsEstimate(t *testing.T) {
	details := model.EntryDetails{
		Entry: model.TariffEntry{Code: "4011.10.10", Description: "Radial tyres for motor cars", GeneralRate: "4%", IndentLevel: 2},
		Duty:  model.DutyResolution{Code: "4011.10.10", EffectiveRate: "4%", Source: model.SourceDirect},
	}
	assert.NotContains(t, RenderDetails(details), "Duty on")

	details.Estimate = &model.DutyEstimate{Value: "1000.00", Rate: "4%", Amount: "40.00", Computed: true}
	assert.Contains(t, RenderDetails(details), "Duty on 1000.00:  40.00 (at 4%)")
}

func TestRenderEstimateNotComputable(t *testing.T) {
	out := RenderEstimate(model.DutyEstimate{Value: "1000.00", Rate: "4.4¢/kg"})
	assert.Contains(t, out, "not computable from rate 4.4¢/kg")
}
