package ocr

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/vendorlens/backend/internal/domain"
	"github.com/vendorlens/backend/internal/infrastructure/pdfconv"
)

// Preprocessing defaults tuned for scanned receipts: mild contrast and
// sharpening help Tesseract without amplifying noise, and small scans are
// upscaled to a workable line height.
const (
	defaultLanguage = "eng+fra"
	contrastBoost   = 15
	sharpenSigma    = 0.7
	minScanHeight   = 900
	upscaledHeight  = 1300
)

// Config holds OCR engine configuration
type Config struct {
	Language           string
	EnableDebugLogging bool
}

// Engine wraps the Tesseract OCR library behind the TextExtractor
// interface, with image preprocessing in front of it
type Engine struct {
	language           string
	converter          *pdfconv.Converter
	enableDebugLogging bool
}

// NewEngine creates an OCR engine backed by Tesseract
func NewEngine(config Config, converter *pdfconv.Converter) *Engine {
	language := config.Language
	if language == "" {
		language = defaultLanguage
	}

	return &Engine{
		language:           language,
		converter:          converter,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// ExtractFromImage runs OCR over a single scanned image file
func (e *Engine) ExtractFromImage(ctx context.Context, path string) (string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}

	text, err := e.recognize(ctx, img)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyDocument
	}

	return text, nil
}

// ExtractFromPDF renders each PDF page and concatenates the recognized
// text in page order
func (e *Engine) ExtractFromPDF(ctx context.Context, path string) (string, error) {
	pages, err := e.converter.RenderPages(path)
	if err != nil {
		return "", err
	}

	var parts []string
	for n, page := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := e.recognize(ctx, page)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", n, err)
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return "", domain.ErrEmptyDocument
	}

	return strings.Join(parts, "\n"), nil
}

// recognize preprocesses one image and feeds it to Tesseract. Line breaks
// are preserved: the field extractor depends on document line structure.
func (e *Engine) recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	processed := preprocess(img)

	tmpFile, err := os.CreateTemp("", "vendorlens-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	defer os.Remove(tmpPath)

	if err := imaging.Save(processed, tmpPath); err != nil {
		return "", fmt.Errorf("save preprocessed image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage(e.language)
	if err := client.SetImage(tmpPath); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrOCRFailure, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrOCRFailure, err)
	}

	normalized := normalizeText(text)
	if e.enableDebugLogging {
		log.Printf("[OCR] recognized %d chars, %d lines", len(normalized), strings.Count(normalized, "\n")+1)
	}

	return normalized, nil
}

// preprocess applies the standard scan cleanup: grayscale, contrast,
// sharpening, and upscaling of small images
func preprocess(img image.Image) image.Image {
	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, contrastBoost)
	gray = imaging.Sharpen(gray, sharpenSigma)
	if gray.Bounds().Dy() < minScanHeight {
		gray = imaging.Resize(gray, 0, upscaledHeight, imaging.Lanczos)
	}
	return gray
}

// normalizeText trims each line and drops runs of blank lines while
// keeping the line structure intact
func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	var kept []string
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimRight(strings.ReplaceAll(line, "\t", " "), " ")
		if strings.TrimSpace(trimmed) == "" {
			blank = true
			continue
		}
		if blank && len(kept) > 0 {
			kept = append(kept, "")
		}
		blank = false
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, "\n")
}
