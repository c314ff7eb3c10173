// File: internal/scrape/pdf.go
package scrape

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/config"
)

// PDFExtractor pulls text and embedded images out of a PDF payload using the
// poppler CLI tools (pdftotext, pdfinfo, pdfimages).
type PDFExtractor struct {
	cfg    config.PDFConfig
	runner CommandRunner
}

func NewPDFExtractor(cfg config.PDFConfig, runner CommandRunner) *PDFExtractor {
	if runner == nil {
		runner = NewExecRunner()
	}
	return &PDFExtractor{cfg: cfg, runner: runner}
}

// Extract returns document metadata and the text of the first MaxPages pages
// (more would likely overflow the model context), plus up to ImagesPerPage
// embedded images per page as thumbnail candidates. Image extraction is best
// effort; its failure does not fail the text extraction.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (string, [][]byte, error) {
	tmp, err := os.CreateTemp("", "sakb-*.pdf")
	if err != nil {
		return "", nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", nil, err
	}
	tmp.Close()

	var b strings.Builder

	// Metadata key/value pairs lead the text, mirroring what the model sees
	// for HTML documents (title, author tags etc).
	if info, _, err := e.runner.Run(ctx, e.cfg.Pdfinfo, tmp.Name()); err == nil {
		for _, line := range strings.Split(string(info), "\n") {
			if key, value, ok := strings.Cut(line, ":"); ok {
				b.WriteString(fmt.Sprintf("%s: %s\n", strings.TrimSpace(key), strings.TrimSpace(value)))
			}
		}
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext,
		"-f", "1", "-l", fmt.Sprintf("%d", e.cfg.MaxPages),
		"-enc", "UTF-8", "-eol", "unix", tmp.Name(), "-")
	if err != nil {
		return "", nil, fmt.Errorf("pdftotext: %w: %s", err, strings.TrimSpace(string(errb)))
	}
	b.Write(out)

	images := e.extractImages(ctx, tmp.Name())
	return b.String(), images, nil
}

func (e *PDFExtractor) extractImages(ctx context.Context, path string) [][]byte {
	tmpDir, err := os.MkdirTemp("", "sakb-img-*")
	if err != nil {
		return nil
	}
	defer os.RemoveAll(tmpDir)

	var images [][]byte
	for page := 1; page <= e.cfg.MaxPages; page++ {
		prefix := filepath.Join(tmpDir, fmt.Sprintf("p%d", page))
		_, _, err := e.runner.Run(ctx, e.cfg.Pdfimages,
			"-f", fmt.Sprintf("%d", page), "-l", fmt.Sprintf("%d", page),
			"-png", path, prefix)
		if err != nil {
			continue
		}
		matches, _ := filepath.Glob(prefix + "-*.png")
		sort.Strings(matches)
		if len(matches) > e.cfg.ImagesPerPage {
			matches = matches[:e.cfg.ImagesPerPage]
		}
		for _, m := range matches {
			if data, err := os.ReadFile(m); err == nil {
				images = append(images, data)
			}
		}
	}
	return images
}
