package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldlens/fieldlens/internal/api"
	"github.com/fieldlens/fieldlens/internal/fields"
	"github.com/fieldlens/fieldlens/internal/svcctx"
)

// GetSchemaEndpoint handles GET /api/schema.
type GetSchemaEndpoint struct{}

var _ api.Endpoint = (*GetSchemaEndpoint)(nil)

func (e *GetSchemaEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/schema", e.handler
}

func (e *GetSchemaEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	schemaStore := svcctx.SchemaFrom(r.Context())
	if schemaStore == nil {
		writeError(w, http.StatusServiceUnavailable, "schema store not initialized")
		return
	}
	writeJSON(w, http.StatusOK, schemaStore.Get())
}

func (e *GetSchemaEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Show the active field schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var schema fields.Schema
			if err := client.Get(cmd.Context(), "/api/schema", &schema); err != nil {
				return err
			}
			return api.Output(&schema)
		},
	}
}

// UpdateSchemaEndpoint handles PUT /api/schema. The uploaded schema
// replaces the active one wholesale after validation; in-flight
// extractions keep the schema they started with.
type UpdateSchemaEndpoint struct{}

var _ api.Endpoint = (*UpdateSchemaEndpoint)(nil)

func (e *UpdateSchemaEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/schema", e.handler
}

func (e *UpdateSchemaEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	schemaStore := svcctx.SchemaFrom(r.Context())
	if schemaStore == nil {
		writeError(w, http.StatusServiceUnavailable, "schema store not initialized")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	schema, err := fields.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := schemaStore.Set(schema); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	svcctx.LoggerFrom(r.Context()).Info("field schema replaced",
		"fields", len(schema.Fields),
		"presets", len(schema.Presets),
	)
	writeJSON(w, http.StatusOK, schema)
}

func (e *UpdateSchemaEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "schema-import <file>",
		Short: "Replace the active field schema from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			// Validate locally for a fast error before hitting the server.
			schema, err := fields.Decode(data)
			if err != nil {
				return err
			}

			client := api.NewClient(getServerURL())
			var applied fields.Schema
			if err := client.Put(cmd.Context(), "/api/schema", schema, &applied); err != nil {
				return err
			}
			fmt.Printf("Schema replaced: %d fields, %d presets\n", len(applied.Fields), len(applied.Presets))
			return nil
		},
	}
}

// PresetsResponse lists the available field presets.
type PresetsResponse struct {
	Presets map[string][]string `json:"presets"`
}

// ListPresetsEndpoint handles GET /api/schema/presets.
type ListPresetsEndpoint struct{}

var _ api.Endpoint = (*ListPresetsEndpoint)(nil)

func (e *ListPresetsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/schema/presets", e.handler
}

func (e *ListPresetsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	schemaStore := svcctx.SchemaFrom(r.Context())
	if schemaStore == nil {
		writeError(w, http.StatusServiceUnavailable, "schema store not initialized")
		return
	}
	writeJSON(w, http.StatusOK, PresetsResponse{Presets: schemaStore.Get().Presets})
}

func (e *ListPresetsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List field presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PresetsResponse
			if err := client.Get(cmd.Context(), "/api/schema/presets", &resp); err != nil {
				return err
			}
			return api.Output(resp.Presets)
		},
	}
}
