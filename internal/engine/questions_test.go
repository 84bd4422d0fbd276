package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/hts-classify/internal/model"
)

func TestFallbackQuestions(t *testing.T) {
	assert.Equal(t, []string{
		"What is the primary material composition of your product?",
		"What is the intended commercial use or application?",
		"Is this product new, used, or refurbished?",
	}, FallbackQuestions(1))
	assert.Equal(t, FallbackQuestions(3), FallbackQuestions(7))
	assert.Equal(t, FallbackQuestions(1), FallbackQuestions(0))

	q := FallbackQuestions(2)
	q[0] = "mutated"
	assert.NotEqual(t, "mutated", FallbackQuestions(2)[0])
}

func TestQuestionFocus(t *testing.T) {
	assert.Contains(t, QuestionFocus(1), "material")
	assert.Contains(t, QuestionFocus(2), "specifications")
	assert.Contains(t, QuestionFocus(3), "distinguish")
}

func TestCompleteQuestions(t *testing.T) {
	t.Run("keeps usable oracle questions", func(t *testing.T) {
		got := CompleteQuestions([]string{
			"Is it for passenger cars or trucks?",
			"Radial?",
			"  Is it for passenger cars or trucks?  ",
			"What is the rim diameter in inches?",
		}, 2, 3)
		require.Len(t, got, 3)
		assert.Equal(t, "Is it for passenger cars or trucks?", got[0])
		assert.Equal(t, "What is the rim diameter in inches?", got[1])
		assert.Equal(t, FallbackQuestions(2)[0], got[2])
	})

	t.Run("nothing usable falls back entirely", func(t *testing.T) {
		assert.Equal(t, FallbackQuestions(3), CompleteQuestions([]string{"", "ok?"}, 3, 3))
	})

	t.Run("extra questions are dropped", func(t *testing.T) {
		got := CompleteQuestions([]string{
			"First long enough question?",
			"Second long enough question?",
			"Third long enough question?",
			"Fourth long enough question?",
		}, 1, 3)
		assert.Len(t, got, 3)
		assert.Equal(t, "Third long enough question?", got[2])
	})
}

func TestMatchByIndex(t *testing.T) {
	tests := []struct {
		reply string
		n     int
		want  int
		ok    bool
	}{
		{"1", 2, 0, true},
		{" 2 ", 2, 1, true},
		{"2.", 2, 1, true},
		{"#1", 3, 0, true},
		{"3", 2, 0, false},
		{"0", 2, 0, false},
		{"-1", 2, 0, false},
		{"one", 2, 0, false},
	}
	for _, tt := range tests {
		got, ok := MatchByIndex(tt.reply, tt.n)
		assert.Equal(t, tt.ok, ok, tt.reply)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.reply)
		}
	}
}

func TestMatchByCode(t *testing.T) {
	options := []model.MatchCandidate{
		{Code: "4011.20.10", Description: "Radial tyres for buses or lorries"},
		{Code: "4011.20.1015", Description: "On-the-highway light truck tyres"},
		{Code: "4011.20.1025", Description: "Other"},
	}

	idx, ok := MatchByCode("I think it is 4011.20.1025", options)
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	idx, ok = MatchByCode("4011.20.1015 please", options)
	require.True(t, ok)
	assert.Equal(t, 1, idx, "longest code wins over its parent")

	idx, ok = MatchByCode("4011201025", options)
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = MatchByCode("the truck one", options)
	assert.False(t, ok)
}
