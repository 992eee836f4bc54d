package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"finextract/internal/config"
	"finextract/internal/parser"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the LLM providers available for escalation and the configured slots",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "registered:")
		for _, name := range parser.Providers() {
			fmt.Fprintf(out, "  %s\n", name)
		}

		fmt.Fprintln(out, "configured:")
		slots := []struct {
			label string
			pc    *config.ParserProviderConfig
		}{
			{"primary", cfg.Parser.PrimaryConfig()},
			{"secondary", cfg.Parser.SecondaryConfig()},
			{"tertiary", cfg.Parser.TertiaryConfig()},
		}
		for _, s := range slots {
			if !s.pc.Enabled() {
				fmt.Fprintf(out, "  %-9s -\n", s.label)
				continue
			}
			fmt.Fprintf(out, "  %-9s %s (%s)\n", s.label, s.pc.Provider, s.pc.DefaultModel)
		}
		return nil
	},
}
