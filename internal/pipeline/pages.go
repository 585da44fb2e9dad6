package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// imageExtensions are accepted as single-page documents as-is.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// RenderPages turns a source document into page images under
// imagesDir/<stem>/. PDFs are rendered one PNG per page; image files
// pass through untouched.
func RenderPages(ctx context.Context, sourcePath, imagesDir string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(sourcePath))

	if imageExtensions[ext] {
		return []string{sourcePath}, nil
	}
	if ext != ".pdf" {
		return nil, fmt.Errorf("unsupported document type: %s", ext)
	}

	f, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	pageCount, err := api.PageCount(f, nil)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to get page count for %s: %w", sourcePath, err)
	}

	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	outDir := filepath.Join(imagesDir, stem)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	pages := make([]string, 0, pageCount)
	for page := 1; page <= pageCount; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		outPath, err := renderPage(ctx, sourcePath, outDir, stem, page)
		if err != nil {
			return nil, err
		}
		pages = append(pages, outPath)
	}

	return pages, nil
}

// renderPage renders a single PDF page using pdftoppm (poppler-utils).
// pdftoppm rasterizes the page itself; pdfcpu's image extraction only
// pulls embedded image objects, which misses text-layer content.
func renderPage(ctx context.Context, pdfPath, outDir, stem string, page int) (string, error) {
	outputPrefix := filepath.Join(outDir, fmt.Sprintf("%s_page_%d", stem, page))

	pageStr := fmt.Sprintf("%d", page)
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", "300",
		"-singlefile",
		pdfPath,
		outputPrefix,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm failed on page %d: %w: %s", page, err, strings.TrimSpace(string(out)))
	}

	outPath := outputPrefix + ".png"
	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("pdftoppm produced no output for page %d: %w", page, err)
	}
	return outPath, nil
}

// MIMETypeFor returns the image MIME type for a page path.
func MIMETypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}
