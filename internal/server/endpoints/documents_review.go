package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/fieldlens/fieldlens/internal/api"
	"github.com/fieldlens/fieldlens/internal/types"
)

// ReviewRequest carries manual corrections for a verified document.
// Each entry overwrites the extracted value and marks the field certain.
type ReviewRequest struct {
	Fields map[string]string `json:"fields"`
}

// ReviewEndpoint handles PUT /api/documents/{id}/record.
type ReviewEndpoint struct{}

var _ api.Endpoint = (*ReviewEndpoint)(nil)

func (e *ReviewEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/documents/{id}/record", e.handler
}

func (e *ReviewEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	doc, ok := documentFromPath(w, r)
	if !ok {
		return
	}

	status := doc.CurrentStatus()
	if status != types.StatusVerified && status != types.StatusReviewed {
		writeError(w, http.StatusConflict, fmt.Sprintf("document is %s, not reviewable", status))
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Fields) == 0 {
		writeError(w, http.StatusBadRequest, "no field corrections provided")
		return
	}

	for name := range req.Fields {
		if _, ok := doc.Record[name]; !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown field: %s", name))
			return
		}
	}
	for name, value := range req.Fields {
		fv := types.NewFieldValue(value)
		fv.Note = "reviewed"
		doc.Record[name] = fv
	}

	if status == types.StatusVerified {
		if err := doc.Transition(types.StatusReviewed); err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, doc)
}

func (e *ReviewEndpoint) Command(getServerURL func() string) *cobra.Command {
	var fieldFlags []string
	cmd := &cobra.Command{
		Use:   "review <document-id>",
		Short: "Correct extracted field values",
		Long: `Review overwrites extracted values with manual corrections and marks
the document reviewed. Corrections are passed as --set field=value,
repeated per field.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ReviewRequest{Fields: make(map[string]string, len(fieldFlags))}
			for _, f := range fieldFlags {
				name, value, ok := splitFieldFlag(f)
				if !ok {
					return fmt.Errorf("invalid --set value %q, expected field=value", f)
				}
				req.Fields[name] = value
			}

			client := api.NewClient(getServerURL())
			var doc types.Document
			if err := client.Put(cmd.Context(), "/api/documents/"+args[0]+"/record", req, &doc); err != nil {
				return err
			}
			return api.Output(&doc)
		},
	}
	cmd.Flags().StringArrayVar(&fieldFlags, "set", nil, "Field correction as field=value (repeatable)")
	return cmd
}

func splitFieldFlag(s string) (name, value string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], i > 0
		}
	}
	return "", "", false
}
