package verify

import (
	"context"
	"strings"
	"testing"

	"github.com/fieldlens/fieldlens/internal/fields"
	"github.com/fieldlens/fieldlens/internal/providers"
	"github.com/fieldlens/fieldlens/internal/types"
)

func testSchema() *fields.Schema {
	return &fields.Schema{
		Fields: []fields.Descriptor{
			{Name: "invoice_number", Description: "Invoice number", DataType: fields.TypeText, Required: true},
			{Name: "invoice_date", Description: "Issue date", DataType: fields.TypeDate},
			{Name: "total_amount", Description: "Total", DataType: fields.TypeCurrency, Required: true},
			{Name: "currency", Description: "Currency", DataType: fields.TypeText, DefaultValue: "PKR"},
			{Name: "po_numbers", Description: "PO numbers", DataType: fields.TypeText, ExtractionHint: "Numeric values with proper PO labels"},
		},
	}
}

func TestVerifier_Verify(t *testing.T) {
	v := NewVerifier(nil, nil)
	ctx := context.Background()

	t.Run("covers every schema field", func(t *testing.T) {
		record := v.Verify(ctx, types.RawRecord{}, nil, "", testSchema())
		if len(record) != 5 {
			t.Fatalf("expected 5 fields, got %d", len(record))
		}
	})

	t.Run("clean values pass through as certain", func(t *testing.T) {
		raw := types.RawRecord{
			"invoice_number": "INV-001",
			"total_amount":   "5000",
		}
		record := v.Verify(ctx, raw, nil, "", testSchema())

		fv := record["invoice_number"]
		if fv.Confidence != types.ConfidenceCertain || fv.Value == nil || *fv.Value != "INV-001" {
			t.Errorf("unexpected field value: %+v", fv)
		}
	})

	t.Run("dates are normalized to DD-MM-YYYY", func(t *testing.T) {
		raw := types.RawRecord{"invoice_date": "2024-03-05"}
		record := v.Verify(ctx, raw, nil, "", testSchema())

		fv := record["invoice_date"]
		if fv.Value == nil || *fv.Value != "05-03-2024" {
			t.Errorf("expected 05-03-2024, got %+v", fv)
		}
		if fv.Confidence != types.ConfidenceCertain {
			t.Errorf("expected certain, got %s", fv.Confidence)
		}
	})

	t.Run("unparseable date is ambiguous with the original preserved", func(t *testing.T) {
		raw := types.RawRecord{"invoice_date": "sometime in March"}
		record := v.Verify(ctx, raw, nil, "", testSchema())

		fv := record["invoice_date"]
		if fv.Confidence != types.ConfidenceAmbiguous {
			t.Fatalf("expected ambiguous, got %s", fv.Confidence)
		}
		if fv.Value == nil || *fv.Value != "sometime in March" {
			t.Errorf("expected original value preserved, got %+v", fv.Value)
		}
		if !strings.Contains(fv.Note, "unparseable date") {
			t.Errorf("unexpected note: %s", fv.Note)
		}
	})

	t.Run("amounts are cleaned of currency formatting", func(t *testing.T) {
		raw := types.RawRecord{"total_amount": "1,234.50 PKR"}
		record := v.Verify(ctx, raw, nil, "", testSchema())

		fv := record["total_amount"]
		if fv.Value == nil || *fv.Value != "1234.50" {
			t.Errorf("expected 1234.50, got %+v", fv.Value)
		}
		if fv.Confidence != types.ConfidenceCertain {
			t.Errorf("expected certain, got %s", fv.Confidence)
		}
	})

	t.Run("non-numeric amount is ambiguous", func(t *testing.T) {
		raw := types.RawRecord{"total_amount": "approx 1k"}
		record := v.Verify(ctx, raw, nil, "", testSchema())

		fv := record["total_amount"]
		if fv.Confidence != types.ConfidenceAmbiguous {
			t.Fatalf("expected ambiguous, got %s", fv.Confidence)
		}
		if !strings.Contains(fv.Note, "not a numeric value") {
			t.Errorf("unexpected note: %s", fv.Note)
		}
	})

	t.Run("missing required field is ambiguous with nil value", func(t *testing.T) {
		record := v.Verify(ctx, types.RawRecord{}, nil, "", testSchema())

		fv := record["invoice_number"]
		if fv.Confidence != types.ConfidenceAmbiguous {
			t.Fatalf("expected ambiguous, got %s", fv.Confidence)
		}
		if fv.Value != nil {
			t.Errorf("expected nil value, got %v", *fv.Value)
		}
		if fv.Note != "missing required field" {
			t.Errorf("unexpected note: %s", fv.Note)
		}
	})

	t.Run("missing optional field is certain and absent", func(t *testing.T) {
		record := v.Verify(ctx, types.RawRecord{}, nil, "", testSchema())

		fv := record["invoice_date"]
		if fv.Confidence != types.ConfidenceCertain {
			t.Errorf("expected certain, got %s", fv.Confidence)
		}
		if fv.Value != nil {
			t.Errorf("expected nil value, got %v", *fv.Value)
		}
		if fv.Note != "not present" {
			t.Errorf("unexpected note: %s", fv.Note)
		}
	})

	t.Run("default fills a missing field", func(t *testing.T) {
		record := v.Verify(ctx, types.RawRecord{}, nil, "", testSchema())

		fv := record["currency"]
		if fv.Value == nil || *fv.Value != "PKR" {
			t.Errorf("expected default PKR, got %+v", fv.Value)
		}
		if fv.Confidence != types.ConfidenceCertain {
			t.Errorf("expected certain, got %s", fv.Confidence)
		}
		if fv.Note != "default applied" {
			t.Errorf("unexpected note: %s", fv.Note)
		}
	})
}

func TestVerifier_HintEscalation(t *testing.T) {
	ctx := context.Background()
	raw := types.RawRecord{"po_numbers": "see attached list"}

	t.Run("without a client the value is marked ambiguous", func(t *testing.T) {
		v := NewVerifier(nil, nil)
		record := v.Verify(ctx, raw, []byte("img"), "image/png", testSchema())

		fv := record["po_numbers"]
		if fv.Confidence != types.ConfidenceAmbiguous {
			t.Fatalf("expected ambiguous, got %s", fv.Confidence)
		}
		if !strings.Contains(fv.Note, "inconsistent with extraction hint") {
			t.Errorf("unexpected note: %s", fv.Note)
		}
	})

	t.Run("model verdict certain clears the flag", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.Responses = []string{"no verdicts here", "certain"}
		v := NewVerifier(mock, nil)

		record := v.Verify(ctx, raw, []byte("img"), "image/png", testSchema())
		fv := record["po_numbers"]
		if fv.Confidence != types.ConfidenceCertain {
			t.Errorf("expected certain after escalation, got %s", fv.Confidence)
		}
		// One call for the record pass, one for the escalation.
		if mock.RequestCount() != 2 {
			t.Errorf("expected 2 model calls, got %d", mock.RequestCount())
		}
	})

	t.Run("model verdict ambiguous keeps the flag", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.Responses = []string{"no verdicts here", "ambiguous"}
		v := NewVerifier(mock, nil)

		record := v.Verify(ctx, raw, []byte("img"), "image/png", testSchema())
		if record["po_numbers"].Confidence != types.ConfidenceAmbiguous {
			t.Error("expected ambiguous after escalation")
		}
	})

	t.Run("failed escalation fails safe to ambiguous", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ShouldFail = true
		v := NewVerifier(mock, nil)

		record := v.Verify(ctx, raw, []byte("img"), "image/png", testSchema())
		fv := record["po_numbers"]
		if fv.Confidence != types.ConfidenceAmbiguous {
			t.Fatalf("expected ambiguous, got %s", fv.Confidence)
		}
		if !strings.Contains(fv.Note, "confidence check failed") {
			t.Errorf("unexpected note: %s", fv.Note)
		}
	})

	t.Run("numeric-looking value skips escalation", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ResponseText = "no verdicts here"
		v := NewVerifier(mock, nil)

		record := v.Verify(ctx, types.RawRecord{"po_numbers": "4500123, 4500124"}, []byte("img"), "image/png", testSchema())
		if record["po_numbers"].Confidence != types.ConfidenceCertain {
			t.Error("expected certain without escalation")
		}
		// Only the record pass runs; the hint check never escalates.
		if mock.RequestCount() != 1 {
			t.Errorf("expected 1 model call, got %d", mock.RequestCount())
		}
	})
}

func TestVerifier_RecordVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("ambiguous verdict downgrades a clean value", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.Responses = []string{`{"invoice_number": "ambiguous", "total_amount": "certain"}`}
		v := NewVerifier(mock, nil)

		raw := types.RawRecord{"invoice_number": "INV-001", "total_amount": "5000"}
		record := v.Verify(ctx, raw, []byte("img"), "image/png", testSchema())

		fv := record["invoice_number"]
		if fv.Confidence != types.ConfidenceAmbiguous {
			t.Fatalf("expected ambiguous, got %s", fv.Confidence)
		}
		if fv.Value == nil || *fv.Value != "INV-001" {
			t.Errorf("expected value preserved, got %+v", fv.Value)
		}
		if !strings.Contains(fv.Note, "flagged by verification pass") {
			t.Errorf("unexpected note: %s", fv.Note)
		}
		if record["total_amount"].Confidence != types.ConfidenceCertain {
			t.Error("expected total_amount certain")
		}
		if mock.RequestCount() != 1 {
			t.Errorf("expected 1 model call, got %d", mock.RequestCount())
		}
	})

	t.Run("certain verdict skips the hint escalation", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.Responses = []string{`{"po_numbers": "certain"}`}
		v := NewVerifier(mock, nil)

		raw := types.RawRecord{"po_numbers": "see attached list"}
		record := v.Verify(ctx, raw, []byte("img"), "image/png", testSchema())

		if record["po_numbers"].Confidence != types.ConfidenceCertain {
			t.Error("expected certain from the record verdict")
		}
		if mock.RequestCount() != 1 {
			t.Errorf("expected 1 model call, got %d", mock.RequestCount())
		}
	})

	t.Run("prompt embeds the extracted values", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.Responses = []string{`{"invoice_number": "certain"}`}
		v := NewVerifier(mock, nil)

		v.Verify(ctx, types.RawRecord{"invoice_number": "INV-001"}, []byte("img"), "image/png", testSchema())

		p := <-mock.Prompts
		if !strings.Contains(p, "Extracted JSON") {
			t.Error("expected the verification prompt")
		}
		if !strings.Contains(p, "INV-001") {
			t.Error("expected the extracted value in the prompt")
		}
	})

	t.Run("non-verdict output leaves deterministic results alone", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.Responses = []string{`{"invoice_number": "INV-001"}`}
		v := NewVerifier(mock, nil)

		raw := types.RawRecord{"invoice_number": "INV-001", "total_amount": "5000"}
		record := v.Verify(ctx, raw, []byte("img"), "image/png", testSchema())

		if record["invoice_number"].Confidence != types.ConfidenceCertain {
			t.Error("expected certain when the pass answers with values instead of verdicts")
		}
		if record["total_amount"].Confidence != types.ConfidenceCertain {
			t.Error("expected certain for the unmentioned field")
		}
	})

	t.Run("failed pass falls back to deterministic checks", func(t *testing.T) {
		mock := providers.NewMockClient()
		mock.ShouldFail = true
		v := NewVerifier(mock, nil)

		raw := types.RawRecord{"invoice_number": "INV-001"}
		record := v.Verify(ctx, raw, []byte("img"), "image/png", testSchema())

		if record["invoice_number"].Confidence != types.ConfidenceCertain {
			t.Error("expected certain from the deterministic path")
		}
	})

	t.Run("empty raw record skips the pass", func(t *testing.T) {
		mock := providers.NewMockClient()
		v := NewVerifier(mock, nil)

		v.Verify(ctx, types.RawRecord{}, []byte("img"), "image/png", testSchema())
		if mock.RequestCount() != 0 {
			t.Errorf("expected no model calls, got %d", mock.RequestCount())
		}
	})
}
