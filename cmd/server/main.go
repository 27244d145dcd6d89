package main

import (
	"fmt"
	"log"
	"os"

	"github.com/vendorlens/backend/config"
	httpDelivery "github.com/vendorlens/backend/internal/delivery/http"
	"github.com/vendorlens/backend/internal/infrastructure/cache"
	"github.com/vendorlens/backend/internal/infrastructure/catalog"
	"github.com/vendorlens/backend/internal/infrastructure/ocr"
	"github.com/vendorlens/backend/internal/infrastructure/pdfconv"
	"github.com/vendorlens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting VendorLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Catalog database: %s", cfg.Database.Path)

	// Initialize infrastructure dependencies
	store, err := catalog.NewStore(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open catalog database: %v", err)
	}

	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	converter := pdfconv.NewConverter(cfg.OCR.MaxPages)
	engine := ocr.NewEngine(ocr.Config{
		Language:           cfg.OCR.Language,
		EnableDebugLogging: cfg.Parser.EnableDebugLogging,
	}, converter)
	log.Printf("OCR: language=%s, max pages=%d", cfg.OCR.Language, cfg.OCR.MaxPages)

	// Initialize usecase layer
	fuzzy := usecase.NewFuzzyMatcher(usecase.FuzzyConfig{
		SimilarityThreshold: cfg.Matching.SimilarityThreshold,
		CaseSensitive:       cfg.Matching.CaseSensitive,
		IgnorePunctuation:   cfg.Matching.IgnorePunctuation,
		IgnoreWhitespace:    cfg.Matching.IgnoreWhitespace,
		MaxCandidates:       cfg.Matching.MaxCandidates,
	})
	matcher := usecase.NewBusinessMatcher(fuzzy, cfg.Matching.EnableDebugLogging)
	extractor := usecase.NewFieldExtractor(usecase.NewDateExtractor(), cfg.Parser.EnableDebugLogging)

	log.Printf("Matching: threshold=%.2f, caseSensitive=%v, debug=%v",
		cfg.Matching.SimilarityThreshold,
		cfg.Matching.CaseSensitive,
		cfg.Matching.EnableDebugLogging)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(extractor, matcher, store, engine, memoryCache, cfg.Cache.TTL)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
