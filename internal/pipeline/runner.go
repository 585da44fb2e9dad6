// Package pipeline runs one document through the extraction chain:
// render pages, classify, extract, verify. Each run is a linear
// sequence of blocking calls; runs for distinct documents share no
// mutable state and may execute concurrently.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fieldlens/fieldlens/internal/extract"
	"github.com/fieldlens/fieldlens/internal/fields"
	"github.com/fieldlens/fieldlens/internal/types"
	"github.com/fieldlens/fieldlens/internal/verify"
)

// Rejection reasons surfaced on documents.
const (
	ReasonNotInvoice = "not recognized as invoice"
	ReasonMalformed  = "model response not parseable"
	ReasonCancelled  = "cancelled"
)

// Runner processes documents against a fixed schema. The schema is
// immutable for the lifetime of the runner; build a new runner to
// process with a different schema.
type Runner struct {
	extractor *extract.Client
	verifier  *verify.Verifier
	schema    *fields.Schema
	imagesDir string
	logger    *slog.Logger
}

// NewRunner creates a pipeline runner.
func NewRunner(extractor *extract.Client, verifier *verify.Verifier, schema *fields.Schema, imagesDir string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		extractor: extractor,
		verifier:  verifier,
		schema:    schema,
		imagesDir: imagesDir,
		logger:    logger,
	}
}

// Schema returns the schema this runner extracts against.
func (r *Runner) Schema() *fields.Schema {
	return r.schema
}

// Process advances a document from Uploaded to Verified (or Rejected).
// A document failure is terminal for that document only; the error
// return is informational and never aborts sibling documents.
func (r *Runner) Process(ctx context.Context, doc *types.Document) error {
	if err := r.process(ctx, doc); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			doc.ClearRecord()
			doc.Reject(ReasonCancelled)
		}
		r.logger.Warn("document processing stopped",
			"document", doc.ID,
			"name", doc.Name,
			"status", doc.CurrentStatus(),
			"error", err,
		)
		return err
	}
	return nil
}

func (r *Runner) process(ctx context.Context, doc *types.Document) error {
	pages, err := RenderPages(ctx, doc.SourcePath, r.imagesDir)
	if err != nil {
		return fmt.Errorf("failed to render pages: %w", err)
	}
	doc.Pages = pages

	// Classification and extraction read the first page; multi-page
	// invoices carry their header fields there.
	image, err := os.ReadFile(pages[0])
	if err != nil {
		return fmt.Errorf("failed to read page image: %w", err)
	}
	mimeType := MIMETypeFor(pages[0])

	isInvoice, err := r.extractor.Classify(ctx, image, mimeType)
	if err != nil {
		if errors.Is(err, extract.ErrClassificationAmbiguous) {
			doc.Reject(ReasonNotInvoice)
			return err
		}
		return fmt.Errorf("classification failed: %w", err)
	}
	if err := doc.Transition(types.StatusClassified); err != nil {
		return err
	}
	if !isInvoice {
		doc.Reject(ReasonNotInvoice)
		r.logger.Info("document rejected", "document", doc.ID, "reason", ReasonNotInvoice)
		return nil
	}

	raw, err := r.extractor.Extract(ctx, image, mimeType, r.schema)
	if err != nil {
		if errors.Is(err, extract.ErrMalformedResponse) {
			// Reject with a full all-ambiguous record so the document
			// detail still shows which fields were expected. Rejected
			// documents never reach an export batch.
			doc.Record = r.verifier.Verify(ctx, types.RawRecord{}, nil, "", r.schema)
			for name, fv := range doc.Record {
				fv.Confidence = types.ConfidenceAmbiguous
				if fv.Note == "" {
					fv.Note = ReasonMalformed
				}
				doc.Record[name] = fv
			}
			doc.Reject(ReasonMalformed)
			return err
		}
		return fmt.Errorf("extraction failed: %w", err)
	}
	doc.Raw = raw
	if err := doc.Transition(types.StatusExtracted); err != nil {
		return err
	}

	doc.Record = r.verifier.Verify(ctx, raw, image, mimeType, r.schema)
	if err := doc.Transition(types.StatusVerified); err != nil {
		return err
	}

	r.logger.Info("document verified",
		"document", doc.ID,
		"name", doc.Name,
		"ambiguous_fields", doc.Record.AmbiguousCount(),
	)
	return nil
}
