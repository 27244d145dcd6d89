package http

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vendorlens/backend/internal/domain"
	"github.com/vendorlens/backend/internal/infrastructure/cache"
	"github.com/vendorlens/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	extractor     *usecase.FieldExtractor
	matcher       *usecase.BusinessMatcher
	catalog       domain.CatalogRepository
	textExtractor domain.TextExtractor
	cache         domain.CacheRepository
	cacheTTL      time.Duration
}

// NewHandler creates a new HTTP handler
func NewHandler(
	extractor *usecase.FieldExtractor,
	matcher *usecase.BusinessMatcher,
	catalogRepo domain.CatalogRepository,
	textExtractor domain.TextExtractor,
	cacheRepo domain.CacheRepository,
	cacheTTL time.Duration,
) *Handler {
	return &Handler{
		extractor:     extractor,
		matcher:       matcher,
		catalog:       catalogRepo,
		textExtractor: textExtractor,
		cache:         cacheRepo,
		cacheTTL:      cacheTTL,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "vendorlens-backend",
		"version": "1.0.0",
	})
}

// extractRequest is the body for text-based parse endpoints
type extractRequest struct {
	Text string `json:"text" binding:"required"`
}

// ExtractFields parses invoice fields out of raw document text
func (h *Handler) ExtractFields(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	result := h.extractor.Extract(req.Text)
	c.JSON(http.StatusOK, result)
}

// MatchBusiness resolves free text against the keyword catalog. A null
// match is a successful response: the text simply matched nothing.
func (h *Handler) MatchBusiness(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	snapshot, err := h.catalog.Snapshot(c.Request.Context())
	if err != nil {
		log.Printf("[HANDLER] catalog snapshot failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load business catalog"})
		return
	}

	match := h.matcher.Match(req.Text, snapshot)
	c.JSON(http.StatusOK, gin.H{"match": match})
}

// scanResponse bundles everything the scan pipeline produces for one document
type scanResponse struct {
	Extraction domain.ExtractionResult `json:"extraction"`
	Match      *domain.MatchResult     `json:"match"`
	Cached     bool                    `json:"cached"`
}

// ScanDocument accepts an uploaded PDF or image, runs OCR, extracts invoice
// fields, and matches the detected company against the catalog
func (h *Handler) ScanDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".pdf", ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type: " + ext})
		return
	}

	tmpFile, err := os.CreateTemp("", "vendorlens-upload-*"+ext)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}

	ctx := c.Request.Context()
	var text string
	if ext == ".pdf" {
		text, err = h.textExtractor.ExtractFromPDF(ctx, tmpPath)
	} else {
		text, err = h.textExtractor.ExtractFromImage(ctx, tmpPath)
	}
	if err != nil {
		if errors.Is(err, domain.ErrEmptyDocument) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no text could be recognized in the document"})
			return
		}
		log.Printf("[HANDLER] OCR failed for %s: %v", fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "text recognition failed"})
		return
	}

	response := h.processText(c, text)
	c.JSON(http.StatusOK, response)
}

// processText runs extraction (cached by text digest) and catalog matching
func (h *Handler) processText(c *gin.Context, text string) scanResponse {
	ctx := c.Request.Context()
	key := cache.TextDigest(text)

	var result domain.ExtractionResult
	cached := false
	if value, err := h.cache.Get(ctx, key); err == nil {
		if stored, ok := value.(domain.ExtractionResult); ok {
			result = stored
			cached = true
		}
	}
	if !cached {
		result = h.extractor.Extract(text)
		if err := h.cache.Set(ctx, key, result, h.cacheTTL); err != nil {
			log.Printf("[HANDLER] cache set failed: %v", err)
		}
	}

	var match *domain.MatchResult
	if result.Company != nil {
		snapshot, err := h.catalog.Snapshot(ctx)
		if err != nil {
			log.Printf("[HANDLER] catalog snapshot failed: %v", err)
		} else {
			match = h.matcher.Match(*result.Company, snapshot)
		}
	}

	return scanResponse{Extraction: result, Match: match, Cached: cached}
}

// confirmRequest records that a suggested match was accepted by the user
type confirmRequest struct {
	BusinessID int64  `json:"businessId" binding:"required"`
	Keyword    string `json:"keyword" binding:"required"`
}

// ConfirmMatch bumps usage bookkeeping for an accepted match
func (h *Handler) ConfirmMatch(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "businessId and keyword are required"})
		return
	}

	err := h.catalog.IncrementUsage(c.Request.Context(), req.BusinessID, req.Keyword)
	if err != nil {
		if errors.Is(err, domain.ErrBusinessNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no such business keyword"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record confirmation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}

// ListBusinesses returns all businesses in the catalog
func (h *Handler) ListBusinesses(c *gin.Context) {
	businesses, err := h.catalog.ListBusinesses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list businesses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"businesses": businesses})
}

// createBusinessRequest is the body for business creation
type createBusinessRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateBusiness registers a new business. Its name becomes an implicit
// case-insensitive keyword.
func (h *Handler) CreateBusiness(c *gin.Context) {
	var req createBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	business, err := h.catalog.AddBusiness(c.Request.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateBusiness):
			c.JSON(http.StatusConflict, gin.H{"error": "business already exists"})
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be blank"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create business"})
		}
		return
	}

	c.JSON(http.StatusCreated, business)
}

// DeleteBusiness removes a business and all of its keywords
func (h *Handler) DeleteBusiness(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid business id"})
		return
	}

	if err := h.catalog.DeleteBusiness(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrBusinessNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "business not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete business"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// addKeywordRequest is the body for attaching a keyword to a business
type addKeywordRequest struct {
	Keyword       string `json:"keyword" binding:"required"`
	CaseSensitive bool   `json:"caseSensitive"`
	MatchType     string `json:"matchType"`
}

// AddKeyword attaches a matching keyword to an existing business
func (h *Handler) AddKeyword(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid business id"})
		return
	}

	var req addKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword is required"})
		return
	}

	matchType := req.MatchType
	if matchType == "" {
		matchType = domain.MatchTypeExact
	}
	switch matchType {
	case domain.MatchTypeExact, domain.MatchTypeFuzzy, domain.MatchTypePartial:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "matchType must be exact, fuzzy, or partial"})
		return
	}

	err = h.catalog.AddKeyword(c.Request.Context(), id, req.Keyword, req.CaseSensitive, matchType)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBusinessNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "business not found"})
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "keyword must not be blank"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add keyword"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

// ListProjects returns all project labels
func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.catalog.ListProjects(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// createProjectRequest is the body for project creation
type createProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateProject registers a new project label
func (h *Handler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	project, err := h.catalog.AddProject(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be blank"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, project)
}

// ListCategories returns all expense categories
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// createCategoryRequest is the body for category creation
type createCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code"`
}

// CreateCategory registers a new expense category
func (h *Handler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	category, err := h.catalog.AddCategory(c.Request.Context(), req.Name, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be blank"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, category)
}
