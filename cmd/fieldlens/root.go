package main

import (
	"github.com/spf13/cobra"

	"github.com/fieldlens/fieldlens/internal/api"
	"github.com/fieldlens/fieldlens/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "fieldlens",
	Short: "Invoice field extraction with vision LLMs",
	Long: `FieldLens extracts structured fields from scanned invoices using
vision language models.

The pipeline includes:
  - Invoice classification (is this image an invoice?)
  - Schema-driven field extraction with configurable field sets
  - Verification with per-field ambiguity flagging
  - CSV, Excel, and JSON export of verified records`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ~/.fieldlens/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "fieldlens home directory (default: ~/.fieldlens)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
