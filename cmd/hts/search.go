package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/hts-classify/internal/cli"
	"github.com/Veraticus/hts-classify/internal/metrics"
	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/Veraticus/hts-classify/internal/tariff"
	"github.com/spf13/cobra"
)

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [description...]",
		Short: "Rank tariff codes against a product description",
		Long: `Run the match cascade for a description without starting a
classification session. With --chapter and no description, list the
entries of that chapter instead.`,
		RunE: runSearch,
	}

	cmd.Flags().String("chapter", "", "Only show results from this 2-digit chapter")
	cmd.Flags().Int("limit", 0, "Maximum number of results (default: classifier.max_results)")
	cmd.Flags().Bool("json", false, "Print the results as JSON")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	chapter, _ := cmd.Flags().GetString("chapter")
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")
	query := strings.TrimSpace(strings.Join(args, " "))

	if query == "" && chapter == "" {
		return fmt.Errorf("give a description to search for or --chapter to list")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, metrics.New())
	if err != nil {
		return err
	}
	defer a.Close()

	var results []model.MatchCandidate
	if query == "" {
		results = chapterListing(a.resolver, chapter)
	} else {
		results, err = a.searcher.Search(ctx, query)
		if err != nil {
			return err
		}
		if chapter != "" {
			results = filterChapter(results, chapter)
		}
	}
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), results)
	}
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No tariff classifications found. Try being more specific."))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCandidates(results))
	return nil
}

// chapterListing returns the classifiable entries of a chapter as
// unscored candidates with their resolved duty.
func chapterListing(resolver *tariff.Resolver, chapter string) []model.MatchCandidate {
	var out []model.MatchCandidate
	for _, e := range resolver.Index().Chapter(chapter) {
		if !tariff.IsDetail(e) {
			continue
		}
		duty, err := resolver.Resolve(e.Code)
		if err != nil {
			continue
		}
		out = append(out, model.MatchCandidate{
			Code:        e.Code,
			Description: e.Description,
			Chapter:     tariff.Chapter(e.Code),
			Unit:        e.Unit,
			SpecialRate: e.SpecialRate,
			IndentLevel: e.IndentLevel,
			Duty:        duty,
		})
	}
	return out
}

func filterChapter(results []model.MatchCandidate, chapter string) []model.MatchCandidate {
	var out []model.MatchCandidate
	for _, r := range results {
		if r.Chapter == chapter {
			out = append(out, r)
		}
	}
	return out
}
