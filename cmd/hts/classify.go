package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/hts-classify/internal/cli"
	"github.com/Veraticus/hts-classify/internal/metrics"
	"github.com/Veraticus/hts-classify/internal/tui"
	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [description...]",
		Short: "Classify a product interactively",
		Long: `Start a classification conversation on the terminal.

The description may be given as arguments or typed at the prompt. hts asks
up to classifier.max_turns clarifying questions and then offers the best
codes to choose from. Answer with an option number, a tariff code, or a
description of the option you mean. Type quit to leave; the session can be
resumed later with --session when a persistent session backend is used.`,
		RunE: runClassify,
	}

	cmd.Flags().String("session", "", "Resume an existing session")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	sessionID, _ := cmd.Flags().GetString("session")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, metrics.New())
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.withClassifier(cmd.Context()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	interrupts := cli.NewInterruptHandler(out)
	interrupts.SetSession(sessionID)
	ctx, stop := interrupts.HandleInterrupts(cmd.Context())
	defer stop()

	fmt.Fprintln(out, cli.FormatTitle("HTS classification"))
	if !cfg.LLM.Enabled() {
		fmt.Fprintln(out, cli.FormatInfo("No language model configured; using built-in questions."))
	}

	conv := cli.NewConversation(a.manager, os.Stdin, out, sessionID)
	conv.OnSession(interrupts.SetSession)
	if err := conv.Run(ctx, strings.Join(args, " ")); err != nil {
		return err
	}

	if id := conv.SessionID(); id != "" && !interrupts.WasInterrupted() {
		fmt.Fprintln(out, cli.FormatInfo("Session: "+id))
	}
	return nil
}

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Classify products in a full-screen chat",
		RunE:  runChat,
	}

	cmd.Flags().String("session", "", "Resume an existing session")

	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	sessionID, _ := cmd.Flags().GetString("session")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, metrics.New())
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.withClassifier(ctx); err != nil {
		return err
	}

	last, err := tui.Run(ctx, a.manager,
		tui.WithSession(sessionID),
		tui.WithTurnTimeout(turnTimeout(cfg.LLM.Timeout, cfg.LLM.MaxRetries)))
	if err != nil {
		return err
	}
	if last != "" {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Session: "+last))
	}
	return nil
}

// turnTimeout bounds one classification turn. A turn makes at most two
// oracle calls and each may be retried.
func turnTimeout(perCall time.Duration, retries int) time.Duration {
	if perCall <= 0 {
		perCall = 30 * time.Second
	}
	if retries < 1 {
		retries = 1
	}
	return perCall * time.Duration(retries+1) * 2
}
