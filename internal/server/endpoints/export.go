package endpoints

import (
	"bytes"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldlens/fieldlens/internal/api"
	"github.com/fieldlens/fieldlens/internal/export"
	"github.com/fieldlens/fieldlens/internal/svcctx"
	"github.com/fieldlens/fieldlens/internal/types"
)

// exportBatch assembles the export batch from all exportable documents
// and marks them exported. Returns an empty batch when nothing is ready.
func exportBatch(w http.ResponseWriter, r *http.Request) (*export.Batch, bool) {
	docs := svcctx.DocumentsFrom(r.Context())
	if docs == nil {
		writeError(w, http.StatusServiceUnavailable, "document store not initialized")
		return nil, false
	}
	schemaStore := svcctx.SchemaFrom(r.Context())
	if schemaStore == nil {
		writeError(w, http.StatusServiceUnavailable, "schema store not initialized")
		return nil, false
	}

	batch := export.NewBatch(schemaStore.Get(), docs.List())
	if len(batch.Documents) == 0 {
		writeError(w, http.StatusConflict, "no verified documents to export")
		return nil, false
	}
	return batch, true
}

// markExported transitions batch members out of Verified/Reviewed.
func markExported(batch *export.Batch) {
	for _, doc := range batch.Documents {
		if doc.CurrentStatus() != types.StatusExported {
			_ = doc.Transition(types.StatusExported)
		}
	}
}

// ExportCSVEndpoint handles GET /api/export/table.csv.
type ExportCSVEndpoint struct{}

var _ api.Endpoint = (*ExportCSVEndpoint)(nil)

func (e *ExportCSVEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/export/table.csv", e.handler
}

func (e *ExportCSVEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	batch, ok := exportBatch(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, batch); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	markExported(batch)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.csv"`)
	w.Write(buf.Bytes())
}

func (e *ExportCSVEndpoint) Command(getServerURL func() string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-csv",
		Short: "Export verified documents as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			data, err := client.GetRaw(cmd.Context(), "/api/export/table.csv")
			if err != nil {
				return err
			}
			if out == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file (default: stdout)")
	return cmd
}

// ExportXLSXEndpoint handles GET /api/export/table.xlsx.
type ExportXLSXEndpoint struct{}

var _ api.Endpoint = (*ExportXLSXEndpoint)(nil)

func (e *ExportXLSXEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/export/table.xlsx", e.handler
}

func (e *ExportXLSXEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	batch, ok := exportBatch(w, r)
	if !ok {
		return
	}

	data, err := export.WriteXLSX(batch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	markExported(batch)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	w.Write(data)
}

func (e *ExportXLSXEndpoint) Command(getServerURL func() string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-xlsx",
		Short: "Export verified documents as an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			data, err := client.GetRaw(cmd.Context(), "/api/export/table.xlsx")
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "invoices.xlsx", "Output file")
	return cmd
}

// ExportJSONEndpoint handles GET /api/export/json.
type ExportJSONEndpoint struct{}

var _ api.Endpoint = (*ExportJSONEndpoint)(nil)

func (e *ExportJSONEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/export/json", e.handler
}

func (e *ExportJSONEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	batch, ok := exportBatch(w, r)
	if !ok {
		return
	}

	data, err := export.JSON(batch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	markExported(batch)

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (e *ExportJSONEndpoint) Command(getServerURL func() string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-json",
		Short: "Export verified documents as structured JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			data, err := client.GetRaw(cmd.Context(), "/api/export/json")
			if err != nil {
				return err
			}
			if out == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file (default: stdout)")
	return cmd
}
