package domain

import (
	"context"
	"time"
)

// CatalogRepository defines the persistence interface for businesses and
// their matching keywords. Snapshot returns the full catalog in a stable
// order; the matcher never queries the repository mid-pipeline.
type CatalogRepository interface {
	Snapshot(ctx context.Context) (Catalog, error)
	ListBusinesses(ctx context.Context) ([]Business, error)
	AddBusiness(ctx context.Context, name string) (*Business, error)
	DeleteBusiness(ctx context.Context, id int64) error
	AddKeyword(ctx context.Context, businessID int64, keyword string, caseSensitive bool, matchType string) error
	IncrementUsage(ctx context.Context, businessID int64, keyword string) error
	ListProjects(ctx context.Context) ([]Project, error)
	AddProject(ctx context.Context, name, description string) (*Project, error)
	ListCategories(ctx context.Context) ([]Category, error)
	AddCategory(ctx context.Context, name, code string) (*Category, error)
}

// DateExtractor parses dates out of free text. Implementations return dates
// in ISO format (YYYY-MM-DD) or empty string when no date is found.
type DateExtractor interface {
	ExtractDate(text string) string
	ValidateDate(date string) bool
}

// TextExtractor turns a scanned document (PDF or image) into raw text
type TextExtractor interface {
	ExtractFromPDF(ctx context.Context, path string) (string, error)
	ExtractFromImage(ctx context.Context, path string) (string, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
