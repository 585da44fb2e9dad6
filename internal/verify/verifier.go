// Package verify turns a raw extraction into a verified record: values
// are normalized per data type and every doubt is expressed as an
// ambiguous field with a note. Verification never fails a document.
package verify

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/fieldlens/fieldlens/internal/extract"
	"github.com/fieldlens/fieldlens/internal/fields"
	"github.com/fieldlens/fieldlens/internal/prompt"
	"github.com/fieldlens/fieldlens/internal/providers"
	"github.com/fieldlens/fieldlens/internal/types"
)

// Verifier checks and annotates raw extraction output.
type Verifier struct {
	// vision escalates hint-inconsistent values to a model check.
	// When nil, inconsistent values are marked ambiguous directly.
	vision providers.VisionClient
	logger *slog.Logger
}

// NewVerifier creates a verifier. vision may be nil to disable the
// secondary model escalation.
func NewVerifier(vision providers.VisionClient, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{vision: vision, logger: logger}
}

// Verify produces a fully populated record for every schema field.
// It never returns an error: failed normalization, failed secondary
// calls, and an unusable verification pass all downgrade to ambiguous
// or fall back to the deterministic checks.
func (v *Verifier) Verify(ctx context.Context, raw types.RawRecord, image []byte, mimeType string, schema *fields.Schema) types.Record {
	verdicts := v.recordVerdicts(ctx, raw, image, mimeType, schema)

	record := make(types.Record, len(schema.Fields))
	for _, d := range schema.Fields {
		record[d.Name] = v.verifyField(ctx, d, raw, image, mimeType, verdicts)
	}

	return record
}

// recordVerdicts runs the whole-record verification pass: the extracted
// JSON is re-sent with the image and the model reports per-field
// confidence. Only entries that answer exactly certain or ambiguous
// count as verdicts. Returns nil when the pass is unavailable or its
// output is unusable; fields then fall back to the hint escalation.
func (v *Verifier) recordVerdicts(ctx context.Context, raw types.RawRecord, image []byte, mimeType string, schema *fields.Schema) map[string]types.Confidence {
	if v.vision == nil || len(image) == 0 || len(raw) == 0 {
		return nil
	}

	rawJSON, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	result, err := v.vision.Generate(ctx, &providers.VisionRequest{
		Image:    image,
		MIMEType: mimeType,
		Prompt:   prompt.BuildVerification(schema, string(rawJSON)),
	})
	if err != nil {
		v.logger.Warn("verification pass failed", "error", err)
		return nil
	}

	parsed, err := extract.DecodeRecordJSON(result.Text)
	if err != nil {
		v.logger.Warn("verification pass returned unparseable output", "error", err)
		return nil
	}

	verdicts := make(map[string]types.Confidence, len(parsed))
	for name, verdict := range parsed {
		switch strings.ToLower(strings.TrimSpace(verdict)) {
		case "certain":
			verdicts[name] = types.ConfidenceCertain
		case "ambiguous":
			verdicts[name] = types.ConfidenceAmbiguous
		}
	}
	return verdicts
}

func (v *Verifier) verifyField(ctx context.Context, d fields.Descriptor, raw types.RawRecord, image []byte, mimeType string, verdicts map[string]types.Confidence) types.FieldValue {
	value, ok := raw[d.Name]
	value = strings.TrimSpace(value)

	if !ok || value == "" {
		if d.DefaultValue != "" {
			fv := types.NewFieldValue(d.DefaultValue)
			fv.Note = "default applied"
			return fv
		}
		if d.Required {
			return types.AmbiguousFieldValue(nil, "missing required field")
		}
		return types.FieldValue{Value: nil, Confidence: types.ConfidenceCertain, Note: "not present"}
	}

	switch d.DataType {
	case fields.TypeDate:
		normalized, ok := NormalizeDate(value)
		if !ok {
			return types.AmbiguousFieldValue(&value, "unparseable date: "+value)
		}
		value = normalized
	case fields.TypeNumber, fields.TypeCurrency:
		normalized, ok := NormalizeAmount(value)
		if !ok {
			return types.AmbiguousFieldValue(&value, "not a numeric value: "+value)
		}
		value = normalized
	}

	switch verdicts[d.Name] {
	case types.ConfidenceAmbiguous:
		return types.AmbiguousFieldValue(&value, "flagged by verification pass")
	case types.ConfidenceCertain:
		return types.NewFieldValue(value)
	}

	if v.hintInconsistent(d, value) {
		return v.escalate(ctx, d, value, image, mimeType)
	}

	return types.NewFieldValue(value)
}

// hintInconsistent applies a cheap shape check of the value against
// its extraction hint before spending a model call on it.
func (v *Verifier) hintInconsistent(d fields.Descriptor, value string) bool {
	hint := strings.ToLower(d.ExtractionHint)
	if strings.Contains(hint, "numeric") && strings.ContainsFunc(value, isLetter) {
		return true
	}
	return false
}

// escalate asks the model for a confidence verdict on one field. A
// failed or unparseable secondary call defaults to ambiguous: the
// escalation may fail safe but never fail silent-to-certain.
func (v *Verifier) escalate(ctx context.Context, d fields.Descriptor, value string, image []byte, mimeType string) types.FieldValue {
	note := "value inconsistent with extraction hint"

	if v.vision == nil || len(image) == 0 {
		return types.AmbiguousFieldValue(&value, note)
	}

	result, err := v.vision.Generate(ctx, &providers.VisionRequest{
		Image:    image,
		MIMEType: mimeType,
		Prompt:   prompt.BuildFieldCheck(d, value),
	})
	if err != nil {
		v.logger.Warn("confidence check failed", "field", d.Name, "error", err)
		return types.AmbiguousFieldValue(&value, note+"; confidence check failed")
	}

	verdict := strings.ToLower(strings.Trim(strings.TrimSpace(result.Text), ".!'\""))
	if verdict == "certain" {
		return types.NewFieldValue(value)
	}
	return types.AmbiguousFieldValue(&value, note)
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
