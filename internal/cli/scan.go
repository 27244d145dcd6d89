package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vendorlens/backend/internal/domain"
	"github.com/vendorlens/backend/internal/infrastructure/catalog"
	"github.com/vendorlens/backend/internal/infrastructure/ocr"
	"github.com/vendorlens/backend/internal/infrastructure/pdfconv"
	"github.com/vendorlens/backend/internal/usecase"
)

var (
	scanTimeout time.Duration
	ocrLanguage string
	maxPages    int
	threshold   float64
	outJSON     string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Scan a single invoice (PDF or image) and print extracted fields",
	Long: `Scan runs the full document pipeline on one file:
- Render PDF pages / load the image
- Recognize text with Tesseract
- Extract company, total, date, and invoice number
- Match the detected company against the business catalog

Example:
  vendorlens scan invoice.pdf
  vendorlens scan receipt.png --lang eng --json result.json
  vendorlens scan invoice.pdf --db ~/invoices/catalog.db --threshold 0.85`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 2*time.Minute, "overall scan timeout")
	scanCmd.Flags().StringVar(&ocrLanguage, "lang", "eng+fra", "Tesseract language codes")
	scanCmd.Flags().IntVar(&maxPages, "max-pages", 5, "maximum PDF pages to process (0 = all)")
	scanCmd.Flags().Float64Var(&threshold, "threshold", 0.8, "fuzzy matching similarity threshold")
	scanCmd.Flags().StringVar(&outJSON, "json", "", "write result JSON to this path instead of stdout")
}

// scanResult is the CLI output document for one processed file
type scanResult struct {
	File       string                  `json:"file"`
	Extraction domain.ExtractionResult `json:"extraction"`
	Match      *domain.MatchResult     `json:"match"`
}

func runScan(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	pipeline, err := newScanPipeline()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Scanning: %s\n", path)
		fmt.Fprintf(os.Stderr, "Catalog:  %s\n", dbPath)
	}

	result, err := pipeline.process(ctx, path)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Confidence: %.2f, valid: %v\n", result.Extraction.Confidence, result.Extraction.IsValid)
		if result.Match != nil {
			fmt.Fprintf(os.Stderr, "Matched: %s (%s, %.2f)\n",
				result.Match.Business.Name, result.Match.MatchKind, result.Match.Confidence)
		} else {
			fmt.Fprintln(os.Stderr, "Matched: none")
		}
	}

	return writeResult(result, outJSON)
}

// scanPipeline bundles the services needed to process one document
type scanPipeline struct {
	store     *catalog.Store
	engine    *ocr.Engine
	extractor *usecase.FieldExtractor
	matcher   *usecase.BusinessMatcher
}

func newScanPipeline() (*scanPipeline, error) {
	store, err := catalog.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	converter := pdfconv.NewConverter(maxPages)
	engine := ocr.NewEngine(ocr.Config{Language: ocrLanguage, EnableDebugLogging: verbose}, converter)

	config := usecase.DefaultFuzzyConfig()
	config.SimilarityThreshold = threshold
	fuzzy := usecase.NewFuzzyMatcher(config)

	return &scanPipeline{
		store:     store,
		engine:    engine,
		extractor: usecase.NewFieldExtractor(usecase.NewDateExtractor(), verbose),
		matcher:   usecase.NewBusinessMatcher(fuzzy, verbose),
	}, nil
}

// process runs OCR, field extraction, and catalog matching for one file
func (p *scanPipeline) process(ctx context.Context, path string) (*scanResult, error) {
	var text string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err = p.engine.ExtractFromPDF(ctx, path)
	} else {
		text, err = p.engine.ExtractFromImage(ctx, path)
	}
	if err != nil {
		return nil, err
	}

	extraction := p.extractor.Extract(text)

	var match *domain.MatchResult
	if extraction.Company != nil {
		snapshot, err := p.store.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		match = p.matcher.Match(*extraction.Company, snapshot)
	}

	return &scanResult{File: path, Extraction: extraction, Match: match}, nil
}

// writeResult prints the result as indented JSON to stdout or a file
func writeResult(result *scanResult, path string) error {
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if path == "" {
		fmt.Println(string(payload))
		return nil
	}

	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	}
	return nil
}
