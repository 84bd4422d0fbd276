package engine

import (
	"strconv"
	"strings"

	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/Veraticus/hts-classify/internal/tariff"
)

// MatchByIndex interprets reply as a 1-based option number.
func MatchByIndex(reply string, n int) (int, bool) {
	trimmed := strings.Trim(strings.TrimSpace(reply), "#.)")
	num, err := strconv.Atoi(trimmed)
	if err != nil || num < 1 || num > n {
		return 0, false
	}
	return num - 1, true
}

// MatchByCode finds the option whose code appears in reply. When several
// codes appear the longest one wins, so a statistical suffix beats its parent.
func MatchByCode(reply string, options []model.MatchCandidate) (int, bool) {
	replyDigits := tariff.Digits(reply)
	best, bestLen := -1, 0
	for i, opt := range options {
		code := strings.TrimSpace(opt.Code)
		if code == "" {
			continue
		}
		digits := tariff.Digits(code)
		if strings.Contains(reply, code) || (digits != "" && replyDigits == digits) {
			if len(digits) > bestLen {
				best, bestLen = i, len(digits)
			}
		}
	}
	return best, best >= 0
}
