// Package extract is the extraction client: it drives the
// classification and field-extraction model calls for one page image
// and turns raw model text into a RawRecord. The client is stateless
// and safe to use concurrently for distinct images.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avast/retry-go/v4"

	"github.com/fieldlens/fieldlens/internal/fields"
	"github.com/fieldlens/fieldlens/internal/prompt"
	"github.com/fieldlens/fieldlens/internal/providers"
	"github.com/fieldlens/fieldlens/internal/types"
)

// Client runs classification and extraction calls against one
// configured vision provider.
type Client struct {
	vision providers.VisionClient
	logger *slog.Logger
}

// NewClient creates an extraction client.
func NewClient(vision providers.VisionClient, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{vision: vision, logger: logger}
}

// Classify asks the model whether the image is an invoice.
// Any answer other than a clear yes/no is ErrClassificationAmbiguous.
func (c *Client) Classify(ctx context.Context, image []byte, mimeType string) (bool, error) {
	result, err := c.vision.Generate(ctx, &providers.VisionRequest{
		Image:    image,
		MIMEType: mimeType,
		Prompt:   prompt.BuildClassification(),
	})
	if err != nil {
		return false, fmt.Errorf("classification call failed: %w", err)
	}

	answer := strings.ToLower(strings.Trim(strings.TrimSpace(result.Text), ".!'\""))
	switch answer {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}

	c.logger.Warn("ambiguous classification response", "response", truncate(result.Text, 120))
	return false, ErrClassificationAmbiguous
}

// Extract runs one extraction call for the image against the schema.
// A malformed response is retried exactly once with a corrective
// prompt; a second failure returns ErrMalformedResponse. Network-level
// failures are not retried here (the provider transport retries those).
func (c *Client) Extract(ctx context.Context, image []byte, mimeType string, schema *fields.Schema) (types.RawRecord, error) {
	responseSchema, err := fields.ResponseSchema(schema)
	if err != nil {
		return nil, err
	}

	attempt := 0
	var record types.RawRecord

	err = retry.Do(
		func() error {
			p := prompt.BuildExtraction(schema)
			if attempt > 0 {
				p = prompt.BuildCorrectiveExtraction(schema)
			}
			attempt++

			result, genErr := c.vision.Generate(ctx, &providers.VisionRequest{
				Image:    image,
				MIMEType: mimeType,
				Prompt:   p,
				ResponseFormat: &providers.ResponseFormat{
					Type:       "json_schema",
					JSONSchema: responseSchema,
				},
			})
			if genErr != nil {
				// Unreachable provider: surface immediately without retrying.
				return retry.Unrecoverable(genErr)
			}

			raw, parseErr := DecodeRecordJSON(result.Text)
			if parseErr != nil {
				c.logger.Warn("malformed extraction response",
					"attempt", attempt,
					"request_id", result.RequestID,
					"error", parseErr,
				)
				return ErrMalformedResponse
			}

			record = c.alignKeys(raw, schema)
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if errors.Is(err, ErrMalformedResponse) {
			return nil, ErrMalformedResponse
		}
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}

	return record, nil
}

// alignKeys checks the parsed record against the schema's field names.
// Extra and missing keys are tolerated but logged; the verifier decides
// what a missing field means.
func (c *Client) alignKeys(raw map[string]string, schema *fields.Schema) types.RawRecord {
	record := make(types.RawRecord, len(schema.Fields))

	known := make(map[string]bool, len(schema.Fields))
	for _, d := range schema.Fields {
		known[d.Name] = true
		if v, ok := raw[d.Name]; ok {
			record[d.Name] = v
		}
	}

	var extra, missing []string
	for k := range raw {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	for _, d := range schema.Fields {
		if _, ok := raw[d.Name]; !ok {
			missing = append(missing, d.Name)
		}
	}
	if len(extra) > 0 {
		c.logger.Debug("extraction returned extra keys", "keys", extra)
	}
	if len(missing) > 0 {
		c.logger.Debug("extraction response missing keys", "keys", missing)
	}

	return record
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
