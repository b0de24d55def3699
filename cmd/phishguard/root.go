package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phishguard",
		Short: "Classify URLs as safe, suspicious or phishing",
		Long: `phishguard classifies URLs as safe, suspicious or phishing.

Each URL runs through an ordered set of detection stages: a trusted-domain
allowlist, an optional reputation service, keyword heuristics, live page
content analysis and a statistical model trained on lexical features.
The first stage with a conclusive answer decides.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .phishguard in current or home directory)")

	cmd.AddCommand(NewClassifyCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewTrainCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
