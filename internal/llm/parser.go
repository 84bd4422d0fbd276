package llm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/hts-classify/internal/engine"
)

var (
	listMarker   = regexp.MustCompile(`^\s*(?:\d+\s*[.):-]|[-*•]|Q\d+\s*[.:)])\s*`)
	leadingIndex = regexp.MustCompile(`^\s*#?(\d+)\b`)
)

// cleanMarkdownWrapper strips a surrounding code fence from a model reply.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		// Drop a language tag on the opening fence.
		if !strings.ContainsAny(content[:nl], " \t") {
			content = content[nl+1:]
		}
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// parseQuestions splits a reply into one question per line, dropping list
// markers and anything too short to be a real question.
func parseQuestions(content string) []string {
	content = cleanMarkdownWrapper(content)

	var questions []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		line = strings.Trim(line, `"`)
		if len(line) <= engine.MinQuestionLength {
			continue
		}
		questions = append(questions, line)
	}
	return questions
}

// parseSelection reads a 1-based option number or "none" from a reply and
// returns a 0-based index.
func parseSelection(content string, options int) (int, bool, error) {
	content = strings.ToLower(cleanMarkdownWrapper(content))
	if content == "" {
		return 0, false, fmt.Errorf("empty selection reply")
	}
	if strings.HasPrefix(content, "none") {
		return 0, false, nil
	}

	m := leadingIndex.FindStringSubmatch(content)
	if m == nil {
		return 0, false, fmt.Errorf("unparseable selection reply %q", content)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false, fmt.Errorf("unparseable selection reply %q: %w", content, err)
	}
	if n < 1 || n > options {
		return 0, false, nil
	}
	return n - 1, true, nil
}
