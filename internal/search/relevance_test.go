package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"chair"}, Tokenize("The Parts of a CHAIR, other"))
	assert.Equal(t, []string{"33", "cm", "rim"}, Tokenize("33 cm rim"))
	assert.Empty(t, Tokenize("of the and"))
}

func TestKeywords(t *testing.T) {
	assert.Equal(t, []string{"big", "red", "wooden"}, Keywords("the big red wooden chair chair", 3))
	assert.Equal(t, []string{"chair"}, Keywords("a chair, chair", 3))
	assert.Empty(t, Keywords("to be", 3))
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		description string
		relevant    bool
		score       float64
		synonym     bool
	}{
		{name: "full overlap", query: "radial tyres", description: "Radial tyres for motor cars", relevant: true, score: 60},
		{name: "half overlap", query: "radial chairs", description: "Radial tyres for motor cars", relevant: true, score: 30},
		{name: "partial token", query: "plotter", description: "Plotters", relevant: true, score: 10},
		{name: "synonym only", query: "tires", description: "Pneumatic tyres, of rubber", relevant: true, score: 0, synonym: true},
		{name: "material keyword", query: "wooden", description: "Seats with timber frames", relevant: true, score: 0},
		{name: "short tokens do not count as partial", query: "cm", description: "Centimetres", relevant: false, score: 0},
		{name: "unrelated", query: "banana", description: "Plotters", relevant: false, score: 0},
		{name: "stop words only", query: "the of", description: "Other articles of the kind", relevant: false, score: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Compare(tt.query, tt.description)
			assert.Equal(t, tt.relevant, r.Relevant())
			assert.InDelta(t, tt.score, r.Score, 0.001)
			if tt.synonym {
				assert.True(t, r.Synonym)
			}
			assert.Equal(t, tt.relevant, Relevant(tt.query, tt.description))
		})
	}
}

func TestCompare_PartialBonusCapped(t *testing.T) {
	r := Compare("plott drafti calcul instrum", "Plotters drafting calculating instruments")
	assert.Equal(t, 4, r.Partial)
	assert.InDelta(t, MaxPartialBonus, r.Score, 0.001)
}

func TestTargetChapters(t *testing.T) {
	assert.Equal(t, []string{"94", "44"}, TargetChapters([]string{"wooden", "chair"}, 2))
	assert.Equal(t, []string{"40", "87"}, TargetChapters([]string{"tires"}, 2))
	assert.Equal(t, []string{"40"}, TargetChapters([]string{"tires"}, 1))
	assert.Empty(t, TargetChapters([]string{"banana"}, 2))
}

func TestPartialRatio(t *testing.T) {
	assert.InDelta(t, 80, PartialRatio("tires", "pneumatic tyres, of rubber"), 0.001)
	assert.InDelta(t, 80, PartialRatio("pneumatic tyres, of rubber", "tires"), 0.001)
	assert.InDelta(t, 100, PartialRatio("plotters", "plotters"), 0.001)
	assert.InDelta(t, 100, PartialRatio("chairs", "other upholstered chairs with wooden frames"), 0.001)
	assert.Zero(t, PartialRatio("", "anything"))
}
