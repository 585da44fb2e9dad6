package endpoints

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/fieldlens/fieldlens/internal/api"
	"github.com/fieldlens/fieldlens/internal/extract"
	"github.com/fieldlens/fieldlens/internal/types"
)

// ProcessRequest selects the provider and field preset for a run.
// Empty values fall back to the configured defaults.
type ProcessRequest struct {
	Provider string `json:"provider,omitempty"`
	Preset   string `json:"preset,omitempty"`
}

// ProcessDocumentEndpoint handles POST /api/documents/{id}/process.
// Processing runs synchronously; the response carries the finished
// document, including a Rejected one.
type ProcessDocumentEndpoint struct{}

var _ api.Endpoint = (*ProcessDocumentEndpoint)(nil)

func (e *ProcessDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/process", e.handler
}

func (e *ProcessDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	doc, ok := documentFromPath(w, r)
	if !ok {
		return
	}
	if doc.CurrentStatus() != types.StatusUploaded {
		writeError(w, http.StatusConflict, "document already processed")
		return
	}

	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := ProcessDocument(r.Context(), doc, req.Provider, req.Preset)
	if err != nil && !isDocumentFailure(err) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// isDocumentFailure reports errors that reject the document rather
// than fail the request: the document itself carries the outcome.
func isDocumentFailure(err error) bool {
	return errors.Is(err, extract.ErrClassificationAmbiguous) ||
		errors.Is(err, extract.ErrMalformedResponse)
}

func (e *ProcessDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	var provider, preset string
	cmd := &cobra.Command{
		Use:   "process <document-id>",
		Short: "Run extraction on an uploaded document",
		Long: `Process classifies the document, extracts the schema fields with the
vision model, and verifies the result. Processing is synchronous and can
take a minute or more per document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := ProcessRequest{Provider: provider, Preset: preset}
			var doc types.Document
			if err := client.Post(cmd.Context(), "/api/documents/"+args[0]+"/process", req, &doc); err != nil {
				return err
			}
			return api.Output(&doc)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Vision provider to use (default from config)")
	cmd.Flags().StringVar(&preset, "preset", "", "Field preset to extract (default: all fields)")
	return cmd
}
