// Package prompt builds the instruction text sent with page images.
// Construction is deterministic: fields are emitted in schema order so
// the model's output key order is predictable across runs.
package prompt

import (
	"fmt"
	"strings"

	"github.com/fieldlens/fieldlens/internal/fields"
)

const extractionHeader = `You are an expert in finance and text extraction. Analyze the provided image and determine if it is an invoice.
An invoice must include a clear payment/total payment amount. If the image contains this and can be identified as an invoice,
extract every listed field and its corresponding value. Format the output as JSON.

Fields to extract (nothing else):
`

const extractionFooter = `
Return a single JSON object: {"field_name": "value", ...}
Use an empty string for fields that are not present and have no default.`

const classificationPrompt = `Is this image an invoice? Answer with exactly one word: 'yes' or 'no'.`

const correctionSuffix = `

Your previous response was not valid JSON. Return ONLY a single valid JSON object with the requested fields and no surrounding text.`

// BuildClassification returns the yes/no invoice check prompt.
func BuildClassification() string {
	return classificationPrompt
}

// BuildExtraction renders the extraction instruction for a schema.
func BuildExtraction(schema *fields.Schema) string {
	var b strings.Builder
	b.WriteString(extractionHeader)

	for i, d := range schema.Fields {
		fmt.Fprintf(&b, "    %d. %s (%s", i+1, d.Name, sanitize(d.Description))
		if d.Required {
			b.WriteString(" - REQUIRED")
		}
		if d.DefaultValue != "" {
			fmt.Fprintf(&b, " - defaults to %s", sanitize(d.DefaultValue))
		}
		if d.DataType == fields.TypeDate {
			b.WriteString(" - format: DD-MM-YYYY")
		}
		if d.DataType == fields.TypeNumber || d.DataType == fields.TypeCurrency {
			b.WriteString(" - numeric value")
		}
		b.WriteString(")\n")
	}

	b.WriteString("\nGuard rails:\n")
	for _, d := range schema.Fields {
		if d.ExtractionHint != "" {
			fmt.Fprintf(&b, "    - %s: %s\n", labelOf(d), sanitize(d.ExtractionHint))
		}
	}
	b.WriteString("    - Use proper labels for field identification\n")
	b.WriteString("    - Convert non-English text to English\n")

	b.WriteString(extractionFooter)
	return b.String()
}

// BuildCorrectiveExtraction appends a repair instruction to the
// extraction prompt after a malformed model response.
func BuildCorrectiveExtraction(schema *fields.Schema) string {
	return BuildExtraction(schema) + correctionSuffix
}

// BuildVerification renders the secondary-pass instruction that checks
// extracted values against the image and reports per-field confidence.
func BuildVerification(schema *fields.Schema, extractedJSON string) string {
	var b strings.Builder
	b.WriteString(`You are a financial-OCR validator. Below is the JSON extracted from the document plus the image itself.
For each field, decide whether the extracted value is clearly supported by the image.

Validation rules:
`)
	for _, d := range schema.Fields {
		if d.Required {
			fmt.Fprintf(&b, "- %s cannot be empty\n", labelOf(d))
		}
		if d.DefaultValue != "" {
			fmt.Fprintf(&b, "- %s defaults to %s if not found\n", labelOf(d), sanitize(d.DefaultValue))
		}
		if d.ExtractionHint != "" {
			fmt.Fprintf(&b, "- %s: %s\n", labelOf(d), sanitize(d.ExtractionHint))
		}
	}

	b.WriteString("\nExtracted JSON:\n")
	b.WriteString(extractedJSON)
	b.WriteString(`

Return a JSON object mapping each field name to "certain" or "ambiguous".
Mark a field ambiguous if the text is handwritten, unclear, partially
obscured, or admits more than one reading.`)
	return b.String()
}

// BuildFieldCheck renders a one-field confidence question used when a
// value looks inconsistent with its extraction hint.
func BuildFieldCheck(d fields.Descriptor, value string) string {
	return fmt.Sprintf(`Field %q was extracted from this invoice with value %q.
Field description: %s
Hint: %s

Is the extracted value clearly correct for this field? Answer with exactly one word: 'certain' or 'ambiguous'.`,
		d.Name, sanitize(value), sanitize(d.Description), sanitize(d.ExtractionHint))
}

func labelOf(d fields.Descriptor) string {
	if d.Label != "" {
		return sanitize(d.Label)
	}
	return d.Name
}

// sanitize neutralizes user-supplied text so it cannot break the
// prompt's structure: newlines collapse to spaces, code fences and
// braces are stripped.
func sanitize(s string) string {
	r := strings.NewReplacer(
		"\n", " ",
		"\r", " ",
		"`", "'",
		"{", "(",
		"}", ")",
	)
	return strings.TrimSpace(r.Replace(s))
}
