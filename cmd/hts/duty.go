package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/hts-classify/internal/cli"
	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/metrics"
	"github.com/Veraticus/hts-classify/internal/tariff"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func dutyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duty <code>",
		Short: "Look up a tariff code and its effective duty rate",
		Long: `Show a schedule entry together with the duty rate that applies to it.

Codes may be written with or without dots. Entries without a rate of their
own inherit from their nearest ancestor. Parts whose rate follows the main
article list the candidate articles; pass --main to resolve against one.
Pass --value to estimate the ad valorem duty on a customs value.`,
		Args: cobra.ExactArgs(1),
		RunE: runDuty,
	}

	cmd.Flags().String("main", "", "Main article code for parts rated by reference")
	cmd.Flags().String("value", "", "Customs value to estimate the ad valorem duty on")
	cmd.Flags().Bool("json", false, "Print the result as JSON")

	return cmd
}

func runDuty(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mainArticle, _ := cmd.Flags().GetString("main")
	asJSON, _ := cmd.Flags().GetBool("json")
	rawValue, _ := cmd.Flags().GetString("value")

	var value decimal.Decimal
	if rawValue != "" {
		v, err := parseCustomsValue(rawValue)
		if err != nil {
			return err
		}
		value = v
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

	details, err := a.resolver.Details(args[0])
	if err != nil {
		return err
	}
	if mainArticle != "" {
		details.Duty, err = a.resolver.ResolveForMainArticle(args[0], mainArticle)
		if err != nil {
			return err
		}
	}

	if rawValue != "" {
		details.Estimate = tariff.EstimateDuty(details.Duty, value)
	}

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), details)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderDetails(details))
	return nil
}

// parseCustomsValue accepts amounts such as "1250", "1,250.00" or "$1250".
func parseCustomsValue(raw string) (decimal.Decimal, error) {
	clean := strings.NewReplacer(",", "", "$", "").Replace(strings.TrimSpace(raw))
	value, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: customs value %q is not a number", common.ErrInvalidInput, raw)
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: customs value %q is negative", common.ErrInvalidInput, raw)
	}
	return value, nil
}
