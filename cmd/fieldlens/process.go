package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldlens/fieldlens/internal/config"
	"github.com/fieldlens/fieldlens/internal/export"
	"github.com/fieldlens/fieldlens/internal/extract"
	"github.com/fieldlens/fieldlens/internal/fields"
	"github.com/fieldlens/fieldlens/internal/home"
	"github.com/fieldlens/fieldlens/internal/pipeline"
	"github.com/fieldlens/fieldlens/internal/providers"
	"github.com/fieldlens/fieldlens/internal/store"
	"github.com/fieldlens/fieldlens/internal/types"
	"github.com/fieldlens/fieldlens/internal/verify"
)

var (
	processProvider string
	processPreset   string
	processFormat   string
	processOut      string
)

var processCmd = &cobra.Command{
	Use:   "process <file>...",
	Short: "Extract invoice fields from local files without a server",
	Long: `Process runs the full extraction pipeline on local PDF, JPG, or PNG
files and writes the verified records to a single export file.

Documents that are rejected (not an invoice, unparseable model output)
are reported but do not stop the batch.

Examples:
  fieldlens process invoice.pdf
  fieldlens process scans/*.png --preset "Commercial Invoice"
  fieldlens process invoice.pdf --format xlsx --out report.xlsx`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cm.Get()

		registry := providers.NewRegistry()
		registry.SetLogger(logger)
		registry.Reload(cfg.ToProviderRegistryConfig())

		providerName := processProvider
		if providerName == "" {
			providerName = cfg.Defaults.Provider
		}
		vision, err := registry.Get(providerName)
		if err != nil {
			return err
		}

		schemaStore, err := store.NewSchemaStore(h.SchemaPath())
		if err != nil {
			return err
		}
		schema := schemaStore.Get()
		presetName := processPreset
		if presetName == "" {
			presetName = cfg.Defaults.Preset
		}
		if presetName != "" {
			if schema, err = schema.Preset(presetName); err != nil {
				return err
			}
		}

		runner := pipeline.NewRunner(
			extract.NewClient(vision, logger),
			verify.NewVerifier(vision, logger),
			schema,
			h.ImagesPath(),
			logger,
		)

		docs := make([]*types.Document, 0, len(args))
		for _, path := range args {
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			doc := types.NewDocument(path, name)
			docs = append(docs, doc)

			if err := runner.Process(ctx, doc); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// Document failures are reported in the summary below.
			}
		}

		for _, doc := range docs {
			line := fmt.Sprintf("%-10s  %s", doc.CurrentStatus(), doc.Name)
			if doc.Reason != "" {
				line += "  (" + doc.Reason + ")"
			}
			if doc.Record != nil {
				line += fmt.Sprintf("  ambiguous=%d", doc.Record.AmbiguousCount())
			}
			fmt.Println(line)
		}

		batch := export.NewBatch(schema, docs)
		if len(batch.Documents) == 0 {
			return fmt.Errorf("no documents produced a verified record")
		}
		out, err := writeExport(batch, schema, h)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d records)\n", out, len(batch.Documents))
		return nil
	},
}

// writeExport writes the batch in the selected format, defaulting the
// output path to a timestamped file in the exports directory.
func writeExport(batch *export.Batch, schema *fields.Schema, h *home.Dir) (string, error) {
	out := processOut
	if out == "" {
		stamp := time.Now().Format("20060102_150405")
		out = filepath.Join(h.ExportsPath(), fmt.Sprintf("invoices_%s.%s", stamp, processFormat))
	}

	switch processFormat {
	case "csv":
		f, err := os.Create(out)
		if err != nil {
			return "", err
		}
		defer f.Close()
		return out, export.WriteCSV(f, batch)
	case "xlsx":
		data, err := export.WriteXLSX(batch)
		if err != nil {
			return "", err
		}
		return out, os.WriteFile(out, data, 0o644)
	case "json":
		data, err := export.JSON(batch)
		if err != nil {
			return "", err
		}
		return out, os.WriteFile(out, data, 0o644)
	default:
		return "", fmt.Errorf("unknown export format: %s", processFormat)
	}
}

func init() {
	processCmd.Flags().StringVar(&processProvider, "provider", "", "Vision provider to use (default from config)")
	processCmd.Flags().StringVar(&processPreset, "preset", "", "Field preset to extract (default: all fields)")
	processCmd.Flags().StringVar(&processFormat, "format", "csv", "Export format: csv, xlsx, or json")
	processCmd.Flags().StringVar(&processOut, "out", "", "Output file (default: timestamped file in exports dir)")

	rootCmd.AddCommand(processCmd)
}
