// Package ingest converts an uploaded slide-deck document into ordered
// slide units with per-slide text and, when a renderer is available,
// rendered page images.
package ingest

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/cloo-solutions/deckray/internal/domain"
)

// Converter turns raw document bytes into ordered slide units.
type Converter interface {
	Convert(content []byte, filename string) ([]*domain.SlideUnit, error)
}

// PDFConverter ingests PDF documents. Page text is extracted directly from
// the PDF; page images are rendered through poppler's pdftoppm when the
// binary is available and skipped otherwise.
type PDFConverter struct {
	pdftoppmPath string
}

// NewPDFConverter returns a converter that renders pages with the given
// pdftoppm binary. An empty path disables rendering.
func NewPDFConverter(pdftoppmPath string) *PDFConverter {
	return &PDFConverter{pdftoppmPath: pdftoppmPath}
}

// Convert rejects any non-PDF input before doing any work, then produces
// one SlideUnit per page with strictly increasing slide numbers.
func (c *PDFConverter) Convert(content []byte, filename string) ([]*domain.SlideUnit, error) {
	if len(content) == 0 {
		return nil, domain.ErrUnreadableInput
	}
	if !mimetype.Detect(content).Is("application/pdf") {
		return nil, domain.ErrUnsupportedFormat
	}

	texts, err := extractPageTexts(content)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeIngestion, "failed to read PDF", err)
	}
	if len(texts) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	images := c.renderPages(content, len(texts))

	slides := make([]*domain.SlideUnit, 0, len(texts))
	for i, text := range texts {
		var img image.Image
		if i < len(images) {
			img = images[i]
		}
		slides = append(slides, domain.NewSlideUnit(i+1, text, img))
	}

	if err := domain.ValidateSlideOrder(slides); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeIngestion, "invalid slide ordering", err)
	}

	return slides, nil
}

func extractPageTexts(content []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	numPages := r.NumPage()
	texts := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		texts = append(texts, strings.TrimSpace(text))
	}
	return texts, nil
}

// renderPages shells out to pdftoppm to rasterize each page. Rendering is
// best-effort: any failure returns nil and the pipeline continues with
// text-only features.
func (c *PDFConverter) renderPages(content []byte, numPages int) []image.Image {
	if c.pdftoppmPath == "" {
		return nil
	}
	if _, err := exec.LookPath(c.pdftoppmPath); err != nil {
		return nil
	}

	dir, err := os.MkdirTemp("", "deckray-render-")
	if err != nil {
		log.Printf("ingest: temp dir for rendering: %v", err)
		return nil
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "deck.pdf")
	if err := os.WriteFile(src, content, 0o600); err != nil {
		log.Printf("ingest: write temp PDF: %v", err)
		return nil
	}

	prefix := filepath.Join(dir, "page")
	cmd := exec.Command(c.pdftoppmPath, "-png", "-r", "96", src, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Printf("ingest: pdftoppm failed: %v (%s)", err, strings.TrimSpace(string(out)))
		return nil
	}

	matches, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(matches) == 0 {
		return nil
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order
	sort.Strings(matches)

	images := make([]image.Image, 0, numPages)
	for _, path := range matches {
		f, err := os.Open(path)
		if err != nil {
			images = append(images, nil)
			continue
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			images = append(images, nil)
			continue
		}
		images = append(images, img)
	}
	return images
}
