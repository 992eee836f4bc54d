package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"finextract/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "finextract",
	Short: "Extract income-statement line items from financial documents",
	Long: `finextract pulls a fixed catalog of income-statement line items (revenue, EBITDA,
PAT, ...) per fiscal year out of PDF and plain-text documents and writes them as one table.

Values are located by keyword proximity, which is approximate: a number is taken when it
sits near a line-item keyword and a fiscal-year label. When too little is found, an LLM
provider (if configured) is asked for the missing values.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.Log.Level == "debug" {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(providersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
