package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/hts-classify/internal/model"
)

// RenderCandidates renders a numbered list of candidates with their duty.
func RenderCandidates(candidates []model.MatchCandidate) string {
	var b strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s %s %s\n",
			i+1,
			CodeStyle.Render(c.Code),
			SubtleStyle.Render(fmt.Sprintf("(%.0f%%, %s)", c.ConfidenceScore, c.MatchType)),
			c.Description)
		fmt.Fprintf(&b, "   Duty: %s\n", dutyText(c.Duty))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderResult renders a final classification.
func RenderResult(c model.MatchCandidate) string {
	lines := []string{
		"Code:        " + CodeStyle.Render(c.Code),
		"Description: " + c.Description,
		"Chapter:     " + c.Chapter,
		"Duty:        " + dutyText(c.Duty),
	}
	if c.Unit != "" {
		lines = append(lines, "Unit:        "+c.Unit)
	}
	if c.SpecialRate != "" {
		lines = append(lines, "Special:     "+c.SpecialRate)
	}
	lines = append(lines, SubtleStyle.Render(c.URL()))
	return RenderBox(SuccessIcon+" Classification", strings.Join(lines, "\n"))
}

// RenderResponse renders one classification turn for display.
func RenderResponse(resp model.Response) string {
	var parts []string

	if resp.ConfirmedProduct != "" && resp.Status != model.SessionComplete {
		parts = append(parts, SubtleStyle.Render("Product: "+resp.ConfirmedProduct))
	}

	switch {
	case resp.FinalResult != nil:
		parts = append(parts, FormatSuccess(resp.Message), RenderResult(*resp.FinalResult))
	case resp.InvalidSelection:
		parts = append(parts, FormatWarning(resp.Message), RenderCandidates(resp.Options))
	case len(resp.Options) > 0:
		parts = append(parts, FormatInfo(resp.Message), RenderCandidates(resp.Options))
	case resp.Question != "":
		if resp.NoResults {
			parts = append(parts, FormatWarning(resp.Message))
		}
		parts = append(parts, FormatQuestion(resp.Question))
	case resp.NoResults:
		parts = append(parts, FormatWarning(resp.Message))
	case resp.Message != "":
		parts = append(parts, FormatInfo(resp.Message))
	}

	return strings.Join(parts, "\n")
}

// RenderDetails renders an entry lookup with its effective duty.
func RenderDetails(d model.EntryDetails) string {
	e := d.Entry
	lines := []string{
		"Code:        " + CodeStyle.Render(e.Code),
		"Description: " + e.Description,
		fmt.Sprintf("Chapter:     %s  Heading: %s  Indent: %d", d.Chapter, d.Heading, e.IndentLevel),
		"General:     " + orDash(e.GeneralRate),
		"Special:     " + orDash(e.SpecialRate),
		"Column 2:    " + orDash(e.Column2Rate),
		"Unit:        " + orDash(e.Unit),
	}
	out := RenderBox(e.Code, strings.Join(lines, "\n")) + "\n" + RenderDuty(d.Duty)
	if d.Estimate != nil {
		out += "\n" + RenderEstimate(*d.Estimate)
	}
	return out
}

// RenderEstimate renders the duty owed on a customs value.
func RenderEstimate(e model.DutyEstimate) string {
	if !e.Computed {
		return WarningStyle.Render(fmt.Sprintf("Duty on %s:  not computable from rate %s", e.Value, orDash(e.Rate)))
	}
	return fmt.Sprintf("Duty on %s:  %s (at %s)", e.Value, e.Amount, e.Rate)
}

// RenderDuty renders a duty resolution.
func RenderDuty(d model.DutyResolution) string {
	lines := []string{"Effective rate: " + dutyText(d)}
	if d.MainArticleCode != "" {
		lines = append(lines, "Main article:   "+d.MainArticleCode)
	}
	if d.MainArticleCode == "" && len(d.CandidateReferenceCodes) > 0 {
		lines = append(lines,
			"Depends on the main article. Candidates: "+strings.Join(d.CandidateReferenceCodes, ", "),
			SubtleStyle.Render("Pass --main <code> to resolve against one of them."))
	}
	if !d.Resolved() {
		return WarningStyle.Render(strings.Join(lines, "\n"))
	}
	return strings.Join(lines, "\n")
}

func dutyText(d model.DutyResolution) string {
	rate := d.EffectiveRate
	if rate == "" {
		rate = model.RateUnknown
	}
	switch d.Source {
	case model.SourceInherited:
		return fmt.Sprintf("%s (inherited from %s)", rate, d.SourceCode)
	case model.SourceCrossReference:
		if d.MainArticleCode != "" && d.SourceCode != "" {
			return fmt.Sprintf("%s (from main article %s)", rate, d.SourceCode)
		}
		return rate + " (cross reference)"
	}
	return rate
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
