package engine

import "strings"

// MinQuestionLength is the shortest line accepted as a clarifying question.
const MinQuestionLength = 10

var questionFocus = map[int]string{
	1: "Ask about basic product category, material, or primary function",
	2: "Ask about specific features, dimensions, or technical specifications",
	3: "Ask decisive questions to distinguish between remaining options",
}

var fallbackQuestions = map[int][]string{
	1: {
		"What is the primary material composition of your product?",
		"What is the intended commercial use or application?",
		"Is this product new, used, or refurbished?",
	},
	2: {
		"What are the specific dimensions or technical specifications?",
		"Does your product have any special features or certifications?",
		"What industry or sector will this product be used in?",
	},
	3: {
		"Which product description most accurately matches yours?",
		"Are there any unique distinguishing features?",
		"What is the exact end-use application?",
	},
}

func clampTurn(turn int) int {
	if turn < 1 {
		return 1
	}
	if turn > 3 {
		return 3
	}
	return turn
}

// QuestionFocus describes what the questions of a turn should establish.
func QuestionFocus(turn int) string {
	return questionFocus[clampTurn(turn)]
}

// FallbackQuestions returns the fixed question set for a turn.
func FallbackQuestions(turn int) []string {
	return append([]string(nil), fallbackQuestions[clampTurn(turn)]...)
}

// CompleteQuestions keeps the usable questions and tops the batch up to
// count from the fixed set for the turn.
func CompleteQuestions(questions []string, turn, count int) []string {
	out := make([]string, 0, count)
	seen := make(map[string]struct{})
	add := func(q string) {
		q = strings.TrimSpace(q)
		key := strings.ToLower(q)
		if len(q) <= MinQuestionLength || len(out) == count {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}

	for _, q := range questions {
		add(q)
	}
	for _, q := range FallbackQuestions(turn) {
		add(q)
	}
	return out
}
