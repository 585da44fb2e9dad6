package endpoints

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fieldlens/fieldlens/internal/api"
	"github.com/fieldlens/fieldlens/internal/fields"
	"github.com/fieldlens/fieldlens/internal/home"
	"github.com/fieldlens/fieldlens/internal/providers"
	"github.com/fieldlens/fieldlens/internal/store"
	"github.com/fieldlens/fieldlens/internal/svcctx"
	"github.com/fieldlens/fieldlens/internal/types"
)

type testEnv struct {
	services *svcctx.Services
	server   *httptest.Server
	client   *api.Client
	mock     *providers.MockClient
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	h, err := home.New(filepath.Join(t.TempDir(), "home"))
	if err != nil {
		t.Fatal(err)
	}
	if err := h.EnsureExists(); err != nil {
		t.Fatal(err)
	}

	schema := &fields.Schema{
		Fields: []fields.Descriptor{
			{Name: "invoice_number", Description: "Invoice number", DataType: fields.TypeText, Required: true},
			{Name: "total_amount", Description: "Total", DataType: fields.TypeCurrency, Required: true},
		},
		Presets: map[string][]string{"Minimal": {"invoice_number"}},
	}
	if err := fields.Save(schema, h.SchemaPath()); err != nil {
		t.Fatal(err)
	}
	schemaStore, err := store.NewSchemaStore(h.SchemaPath())
	if err != nil {
		t.Fatal(err)
	}

	mock := providers.NewMockClient()
	registry := providers.NewRegistry()
	registry.Register("mock", mock)

	services := &svcctx.Services{
		Providers: registry,
		Documents: store.NewDocuments(),
		Schema:    schemaStore,
		Home:      h,
	}

	reg := api.NewRegistry()
	for _, ep := range All() {
		reg.Register(ep)
	}
	mux := http.NewServeMux()
	reg.RegisterRoutes(mux)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := svcctx.WithServices(r.Context(), services)
		mux.ServeHTTP(w, r.WithContext(ctx))
	}))
	t.Cleanup(server.Close)

	return &testEnv{
		services: services,
		server:   server,
		client:   api.NewClient(server.URL),
		mock:     mock,
	}
}

// addVerifiedDoc seeds the store with an export-ready document.
func (e *testEnv) addVerifiedDoc(name string) *types.Document {
	doc := types.NewDocument("/tmp/"+name+".png", name)
	doc.Status = types.StatusVerified
	doc.Record = types.Record{
		"invoice_number": types.NewFieldValue("INV-001"),
		"total_amount":   types.AmbiguousFieldValue(nil, "missing required field"),
	}
	e.services.Documents.Add(doc)
	return doc
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var resp HealthResponse
	if err := env.client.Get(context.Background(), "/health", &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected ok, got %s", resp.Status)
	}
}

func TestStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.addVerifiedDoc("a")

	var resp StatusResponse
	if err := env.client.Get(context.Background(), "/status", &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Documents != 1 {
		t.Errorf("expected 1 document, got %d", resp.Documents)
	}
	if resp.Fields != 2 {
		t.Errorf("expected 2 fields, got %d", resp.Fields)
	}
	if len(resp.Providers) != 1 || resp.Providers[0] != "mock" {
		t.Errorf("unexpected providers: %v", resp.Providers)
	}
}

func TestUploadEndpoint(t *testing.T) {
	env := newTestEnv(t)

	t.Run("accepts a png", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "scan_001.png")
		if err := os.WriteFile(src, []byte("fake-png"), 0o644); err != nil {
			t.Fatal(err)
		}

		var resp UploadResponse
		if err := env.client.Upload(context.Background(), "/api/documents", src, &resp); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Document == nil || resp.Document.Name != "scan_001" {
			t.Fatalf("unexpected document: %+v", resp.Document)
		}
		if resp.Document.Status != types.StatusUploaded {
			t.Errorf("expected uploaded, got %s", resp.Document.Status)
		}

		// The file lands in the inbox and the store knows the document.
		inboxCopy := filepath.Join(env.services.Home.InboxPath(), "scan_001.png")
		if _, err := os.Stat(inboxCopy); err != nil {
			t.Errorf("expected inbox copy: %v", err)
		}
		if _, err := env.services.Documents.Get(resp.Document.ID); err != nil {
			t.Errorf("expected document in store: %v", err)
		}
	})

	t.Run("rejects unsupported types", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "notes.txt")
		if err := os.WriteFile(src, []byte("hello"), 0o644); err != nil {
			t.Fatal(err)
		}

		err := env.client.Upload(context.Background(), "/api/documents", src, nil)
		if err == nil || !strings.Contains(err.Error(), "unsupported file type") {
			t.Errorf("expected unsupported file type error, got %v", err)
		}
	})
}

func TestProcessDocumentEndpoint(t *testing.T) {
	t.Run("processes an uploaded document", func(t *testing.T) {
		env := newTestEnv(t)
		env.mock.Responses = []string{
			"yes",
			`{"invoice_number": "INV-001", "total_amount": "5000"}`,
			`{"invoice_number": "certain", "total_amount": "certain"}`,
		}

		src := filepath.Join(t.TempDir(), "inv.png")
		if err := os.WriteFile(src, []byte("fake-png"), 0o644); err != nil {
			t.Fatal(err)
		}
		doc := types.NewDocument(src, "inv")
		env.services.Documents.Add(doc)

		var got types.Document
		err := env.client.Post(context.Background(), "/api/documents/"+doc.ID.String()+"/process",
			ProcessRequest{Provider: "mock"}, &got)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != types.StatusVerified {
			t.Fatalf("expected verified, got %s", got.Status)
		}
		if got.Record["invoice_number"].Value == nil || *got.Record["invoice_number"].Value != "INV-001" {
			t.Errorf("unexpected record: %+v", got.Record)
		}
	})

	t.Run("rejected document still returns 200", func(t *testing.T) {
		env := newTestEnv(t)
		env.mock.ResponseText = "no"

		src := filepath.Join(t.TempDir(), "photo.png")
		if err := os.WriteFile(src, []byte("fake-png"), 0o644); err != nil {
			t.Fatal(err)
		}
		doc := types.NewDocument(src, "photo")
		env.services.Documents.Add(doc)

		var got types.Document
		err := env.client.Post(context.Background(), "/api/documents/"+doc.ID.String()+"/process",
			ProcessRequest{Provider: "mock"}, &got)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != types.StatusRejected {
			t.Errorf("expected rejected, got %s", got.Status)
		}
	})

	t.Run("double processing conflicts", func(t *testing.T) {
		env := newTestEnv(t)
		doc := env.addVerifiedDoc("done")

		err := env.client.Post(context.Background(), "/api/documents/"+doc.ID.String()+"/process",
			ProcessRequest{Provider: "mock"}, nil)
		if err == nil || !strings.Contains(err.Error(), "409") {
			t.Errorf("expected 409, got %v", err)
		}
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.client.Post(context.Background(),
			"/api/documents/00000000-0000-0000-0000-000000000000/process",
			ProcessRequest{Provider: "mock"}, nil)
		if err == nil || !strings.Contains(err.Error(), "404") {
			t.Errorf("expected 404, got %v", err)
		}
	})
}

func TestReviewEndpoint(t *testing.T) {
	t.Run("corrections mark the document reviewed", func(t *testing.T) {
		env := newTestEnv(t)
		doc := env.addVerifiedDoc("a")

		var got types.Document
		err := env.client.Put(context.Background(), "/api/documents/"+doc.ID.String()+"/record",
			ReviewRequest{Fields: map[string]string{"total_amount": "5000"}}, &got)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != types.StatusReviewed {
			t.Errorf("expected reviewed, got %s", got.Status)
		}

		fv := got.Record["total_amount"]
		if fv.Value == nil || *fv.Value != "5000" {
			t.Errorf("expected corrected value, got %+v", fv.Value)
		}
		if fv.Confidence != types.ConfidenceCertain {
			t.Errorf("expected certain after review, got %s", fv.Confidence)
		}
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		doc := env.addVerifiedDoc("a")

		err := env.client.Put(context.Background(), "/api/documents/"+doc.ID.String()+"/record",
			ReviewRequest{Fields: map[string]string{"nope": "1"}}, nil)
		if err == nil || !strings.Contains(err.Error(), "unknown field") {
			t.Errorf("expected unknown field error, got %v", err)
		}
	})

	t.Run("unprocessed document conflicts", func(t *testing.T) {
		env := newTestEnv(t)
		doc := types.NewDocument("/tmp/x.png", "x")
		env.services.Documents.Add(doc)

		err := env.client.Put(context.Background(), "/api/documents/"+doc.ID.String()+"/record",
			ReviewRequest{Fields: map[string]string{"total_amount": "1"}}, nil)
		if err == nil || !strings.Contains(err.Error(), "409") {
			t.Errorf("expected 409, got %v", err)
		}
	})
}

func TestExportEndpoints(t *testing.T) {
	t.Run("csv carries the flag columns and marks exported", func(t *testing.T) {
		env := newTestEnv(t)
		doc := env.addVerifiedDoc("a")

		data, err := env.client.GetRaw(context.Background(), "/api/export/table.csv")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		body := string(data)
		if !strings.Contains(body, "invoice_number,total_amount,invoice_number_ambiguous,total_amount_ambiguous") {
			t.Errorf("unexpected header: %s", body)
		}
		if !strings.Contains(body, "INV-001,,false,true") {
			t.Errorf("unexpected row: %s", body)
		}
		if doc.CurrentStatus() != types.StatusExported {
			t.Errorf("expected exported, got %s", doc.CurrentStatus())
		}
	})

	t.Run("json export preserves notes", func(t *testing.T) {
		env := newTestEnv(t)
		env.addVerifiedDoc("a")

		data, err := env.client.GetRaw(context.Background(), "/api/export/json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(data), "missing required field") {
			t.Error("expected ambiguity note in JSON export")
		}
	})

	t.Run("xlsx produces a workbook", func(t *testing.T) {
		env := newTestEnv(t)
		env.addVerifiedDoc("a")

		data, err := env.client.GetRaw(context.Background(), "/api/export/table.xlsx")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(data) < 2 || data[0] != 'P' || data[1] != 'K' {
			t.Error("expected zip magic bytes")
		}
	})

	t.Run("empty store conflicts", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.client.GetRaw(context.Background(), "/api/export/table.csv")
		if err == nil || !strings.Contains(err.Error(), "409") {
			t.Errorf("expected 409, got %v", err)
		}
	})
}

func TestSchemaEndpoints(t *testing.T) {
	t.Run("get returns the active schema", func(t *testing.T) {
		env := newTestEnv(t)

		var schema fields.Schema
		if err := env.client.Get(context.Background(), "/api/schema", &schema); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(schema.Fields) != 2 {
			t.Errorf("expected 2 fields, got %d", len(schema.Fields))
		}
	})

	t.Run("put replaces after validation", func(t *testing.T) {
		env := newTestEnv(t)
		replacement := &fields.Schema{
			Fields: []fields.Descriptor{
				{Name: "vendor", Description: "Vendor", DataType: fields.TypeText},
			},
		}

		var applied fields.Schema
		if err := env.client.Put(context.Background(), "/api/schema", replacement, &applied); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(env.services.Schema.Get().Fields) != 1 {
			t.Error("expected schema store updated")
		}
	})

	t.Run("put rejects invalid schemas", func(t *testing.T) {
		env := newTestEnv(t)
		bad := map[string]any{
			"fields": []map[string]any{
				{"name": "x", "description": "x", "data_type": "array"},
			},
		}
		err := env.client.Put(context.Background(), "/api/schema", bad, nil)
		if err == nil || !strings.Contains(err.Error(), "400") {
			t.Errorf("expected 400, got %v", err)
		}
	})

	t.Run("presets are listed", func(t *testing.T) {
		env := newTestEnv(t)

		var resp PresetsResponse
		if err := env.client.Get(context.Background(), "/api/schema/presets", &resp); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(resp.Presets["Minimal"]) != 1 {
			t.Errorf("unexpected presets: %v", resp.Presets)
		}
	})
}
