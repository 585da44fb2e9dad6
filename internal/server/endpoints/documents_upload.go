package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldlens/fieldlens/internal/api"
	"github.com/fieldlens/fieldlens/internal/svcctx"
	"github.com/fieldlens/fieldlens/internal/types"
)

// acceptedUploadExts are the document formats the pipeline can render.
var acceptedUploadExts = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	Document *types.Document `json:"document"`
}

// UploadEndpoint handles POST /api/documents with a multipart file.
type UploadEndpoint struct{}

var _ api.Endpoint = (*UploadEndpoint)(nil)

func (e *UploadEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents", e.handler
}

func (e *UploadEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 100 << 20 // 100MB
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !acceptedUploadExts[ext] {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported file type: %s", ext))
		return
	}

	homeDir := svcctx.HomeFrom(r.Context())
	if homeDir == nil {
		writeError(w, http.StatusServiceUnavailable, "home directory not initialized")
		return
	}
	docs := svcctx.DocumentsFrom(r.Context())
	if docs == nil {
		writeError(w, http.StatusServiceUnavailable, "document store not initialized")
		return
	}

	// Save the upload into the inbox under its original name.
	destPath := filepath.Join(homeDir.InboxPath(), filepath.Base(header.Filename))
	dst, err := os.Create(destPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save file: %v", err))
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(destPath)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save file: %v", err))
		return
	}
	dst.Close()

	name := strings.TrimSuffix(filepath.Base(header.Filename), ext)
	doc := types.NewDocument(destPath, name)
	docs.Add(doc)

	svcctx.LoggerFrom(r.Context()).Info("document uploaded",
		"document", doc.ID,
		"name", doc.Name,
	)
	writeJSON(w, http.StatusCreated, UploadResponse{Document: doc})
}

func (e *UploadEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document (PDF, JPG, or PNG)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp UploadResponse
			if err := client.Upload(cmd.Context(), "/api/documents", args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp.Document)
		},
	}
}
