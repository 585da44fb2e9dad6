package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/fieldlens/fieldlens/internal/api"
	"github.com/fieldlens/fieldlens/internal/svcctx"
	"github.com/fieldlens/fieldlens/internal/types"
)

// DocumentListResponse is the response for the document list endpoint.
type DocumentListResponse struct {
	Documents []*types.Document `json:"documents"`
	Total     int               `json:"total"`
}

// ListDocumentsEndpoint handles GET /api/documents.
type ListDocumentsEndpoint struct{}

var _ api.Endpoint = (*ListDocumentsEndpoint)(nil)

func (e *ListDocumentsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents", e.handler
}

func (e *ListDocumentsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	docs := svcctx.DocumentsFrom(r.Context())
	if docs == nil {
		writeError(w, http.StatusServiceUnavailable, "document store not initialized")
		return
	}

	// Optional ?status= filter.
	list := docs.List()
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := list[:0:0]
		for _, d := range list {
			if d.CurrentStatus() == types.Status(status) {
				filtered = append(filtered, d)
			}
		}
		list = filtered
	}

	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: list, Total: len(list)})
}

func (e *ListDocumentsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/documents"
			if status != "" {
				path += "?status=" + status
			}
			client := api.NewClient(getServerURL())
			var resp DocumentListResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			for _, d := range resp.Documents {
				line := fmt.Sprintf("%s  %-10s  %s", d.ID, d.Status, d.Name)
				if d.Reason != "" {
					line += "  (" + d.Reason + ")"
				}
				fmt.Println(line)
			}
			fmt.Printf("Total: %d\n", resp.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (uploaded, verified, rejected, ...)")
	return cmd
}
