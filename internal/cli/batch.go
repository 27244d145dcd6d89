package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// scannable file extensions accepted by the batch walker
var batchExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Scan every invoice in a directory in parallel",
	Long: `Batch walks a directory for PDF and image files and processes them
concurrently, writing one JSON result per input file.

Example:
  vendorlens batch ./invoices
  vendorlens batch ./invoices --concurrency 4 --output-dir ./results`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./vendorlens-results", "output directory for result JSON files")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&ocrLanguage, "lang", "eng+fra", "Tesseract language codes")
	batchCmd.Flags().IntVar(&maxPages, "max-pages", 5, "maximum PDF pages to process per file (0 = all)")
	batchCmd.Flags().Float64Var(&threshold, "threshold", 0.8, "fuzzy matching similarity threshold")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	files, err := collectFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no scannable files found in %s", dir)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	pipeline, err := newScanPipeline()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Processing %d files with %d workers\n", len(files), concurrency)

	jobs := make(chan string)
	var wg sync.WaitGroup
	var mu sync.Mutex
	processed, failed := 0, 0

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				outPath := filepath.Join(outputDir, resultName(path))
				if err := processOne(ctx, pipeline, path, outPath); err != nil {
					fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", path, err)
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}
				if verbose {
					fmt.Fprintf(os.Stderr, "OK   %s\n", path)
				}
				mu.Lock()
				processed++
				mu.Unlock()
			}
		}()
	}

	for _, path := range files {
		select {
		case jobs <- path:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return fmt.Errorf("batch timed out after %v", batchTimeout)
		}
	}
	close(jobs)
	wg.Wait()

	fmt.Fprintf(os.Stderr, "Done: %d processed, %d failed\n", processed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// collectFiles walks dir and returns all scannable files in stable order
func collectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if batchExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return files, nil
}

// processOne scans a single file and writes its result JSON
func processOne(ctx context.Context, pipeline *scanPipeline, path, outPath string) error {
	result, err := pipeline.process(ctx, path)
	if err != nil {
		return err
	}
	return writeResult(result, outPath)
}

// resultName maps an input file name to its result JSON name
func resultName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + ".json"
}
