package pdfconv

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// Converter renders PDF pages to images for OCR. Rendering is done page by
// page so multi-page invoices keep their reading order.
type Converter struct {
	maxPages int
}

// NewConverter creates a converter that renders at most maxPages pages per
// document (0 means all pages)
func NewConverter(maxPages int) *Converter {
	return &Converter{maxPages: maxPages}
}

// RenderPages opens the PDF at path and renders each page to an image
func (c *Converter) RenderPages(path string) ([]image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if c.maxPages > 0 && pages > c.maxPages {
		pages = c.maxPages
	}

	images := make([]image.Image, 0, pages)
	for n := 0; n < pages; n++ {
		img, err := doc.Image(n)
		if err != nil {
			return nil, fmt.Errorf("rendering PDF page %d: %w", n, err)
		}
		images = append(images, img)
	}

	return images, nil
}
