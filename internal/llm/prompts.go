package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/hts-classify/internal/engine"
	"github.com/Veraticus/hts-classify/internal/model"
)

const brokerPersona = "You are an experienced U.S. Customs Broker with 20+ years of experience classifying imports under the Harmonized Tariff Schedule."

const (
	confirmMaxTokens   = 100
	questionsMaxTokens = 300
	selectionMaxTokens = 10
	contextDescription = 80
)

func buildConfirmPrompt(raw string) string {
	return fmt.Sprintf(`A client said they want to import: %q

Briefly confirm your understanding of what product they want to import. Be specific about the product type, but keep it concise (1-2 sentences max).

Examples:
- Input: "tires" -> Output: "New pneumatic rubber tires for motor vehicles"
- Input: "laptop computer" -> Output: "Portable automatic data processing machines (laptop computers)"
- Input: "wooden chairs" -> Output: "Wooden furniture seating (chairs)"

Your confirmation:`, raw)
}

func buildQuestionsPrompt(req engine.QuestionRequest, maxTurns int) string {
	history, err := json.Marshal(req.History)
	if err != nil {
		history = []byte("[]")
	}

	return fmt.Sprintf(`You're helping classify this product for import: %q

CURRENT SITUATION:
- Turn: %d of %d maximum
- Previous conversation: %s

POTENTIAL HTS MATCHES:
%s

YOUR TASK:
Generate exactly %d separate clarifying questions that help distinguish between the potential matches. Each question must be complete and standalone, answerable by an importer, and worded as a customs broker would ask it.

QUESTION FOCUS FOR TURN %d:
%s

FORMAT: Return exactly %d questions, each on its own line, no numbering or bullets.`,
		req.Product, req.Turn, maxTurns, history, candidateContext(req.Candidates),
		req.Count, req.Turn, req.Focus, req.Count)
}

func candidateContext(candidates []model.MatchCandidate) string {
	if len(candidates) == 0 {
		return "No specific matches found yet."
	}

	var b strings.Builder
	for _, c := range candidates {
		desc := c.Description
		if r := []rune(desc); len(r) > contextDescription {
			desc = string(r[:contextDescription]) + "..."
		}
		fmt.Fprintf(&b, "- %s (%.0f%%): %s\n", c.Code, c.ConfidenceScore, desc)
		fmt.Fprintf(&b, "  Duty: %s\n", c.Duty.EffectiveRate)
	}
	return strings.TrimRight(b.String(), "\n")
}

func buildSelectionPrompt(reply string, options []model.MatchCandidate) string {
	var b strings.Builder
	for i, opt := range options {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, opt.Code, opt.Description)
	}

	return fmt.Sprintf(`The user needs to select from these HTS classification options:

%s
User's response: %q

Which option (1-%d) best matches the user's response?
Respond with just the number, or "none" if no clear match.`, b.String(), reply, len(options))
}
