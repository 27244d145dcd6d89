package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vendorlens/backend/internal/domain"
)

// Store is the SQLite-backed catalog repository. It owns businesses, their
// matching keywords, and the project/category lookup tables.
type Store struct {
	db *gorm.DB
}

// NewStore opens (creating if needed) the SQLite database at path and
// migrates the catalog schema
func NewStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}

	if err := db.AutoMigrate(&BusinessRecord{}, &KeywordRecord{}, &ProjectRecord{}, &CategoryRecord{}); err != nil {
		return nil, fmt.Errorf("migrate catalog schema: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an already-open gorm handle; used by tests
func NewStoreWithDB(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&BusinessRecord{}, &KeywordRecord{}, &ProjectRecord{}, &CategoryRecord{}); err != nil {
		return nil, fmt.Errorf("migrate catalog schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Snapshot returns the full keyword catalog joined with owning businesses,
// in a stable order (business name, then keyword). The matcher treats the
// snapshot as read-only; snapshot order decides exact-match ties.
func (s *Store) Snapshot(ctx context.Context) (domain.Catalog, error) {
	var rows []struct {
		Keyword       string
		CaseSensitive bool
		MatchType     string
		BusinessID    int64
		BusinessName  string
	}

	err := s.db.WithContext(ctx).
		Table("keyword_records").
		Select("keyword_records.keyword, keyword_records.case_sensitive, keyword_records.match_type, business_records.id AS business_id, business_records.name AS business_name").
		Joins("JOIN business_records ON business_records.id = keyword_records.business_id").
		Order("business_records.name, keyword_records.keyword").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}

	catalog := make(domain.Catalog, 0, len(rows))
	for _, row := range rows {
		catalog = append(catalog, domain.CatalogEntry{
			Keyword:       row.Keyword,
			BusinessID:    row.BusinessID,
			BusinessName:  row.BusinessName,
			CaseSensitive: row.CaseSensitive,
			MatchType:     row.MatchType,
		})
	}

	return catalog, nil
}

// ListBusinesses returns all businesses ordered by name
func (s *Store) ListBusinesses(ctx context.Context) ([]domain.Business, error) {
	var records []BusinessRecord
	if err := s.db.WithContext(ctx).Order("name").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}

	businesses := make([]domain.Business, 0, len(records))
	for _, record := range records {
		businesses = append(businesses, domain.Business{ID: record.ID, Name: record.Name})
	}
	return businesses, nil
}

// AddBusiness creates a business and registers its name as an implicit
// case-insensitive exact keyword so it is immediately discoverable
func (s *Store) AddBusiness(ctx context.Context, name string) (*domain.Business, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidRequest
	}

	var business *domain.Business
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&BusinessRecord{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrDuplicateBusiness
		}

		record := BusinessRecord{Name: name}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		keyword := KeywordRecord{
			BusinessID:    record.ID,
			Keyword:       name,
			CaseSensitive: false,
			MatchType:     domain.MatchTypeExact,
		}
		if err := tx.Create(&keyword).Error; err != nil {
			return err
		}

		business = &domain.Business{ID: record.ID, Name: record.Name}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateBusiness) {
			return nil, err
		}
		return nil, fmt.Errorf("add business: %w", err)
	}

	return business, nil
}

// DeleteBusiness removes a business and all of its keywords
func (s *Store) DeleteBusiness(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record BusinessRecord
		if err := tx.First(&record, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrBusinessNotFound
			}
			return fmt.Errorf("load business %d: %w", id, err)
		}
		if err := tx.Where("business_id = ?", id).Delete(&KeywordRecord{}).Error; err != nil {
			return fmt.Errorf("delete keywords of business %d: %w", id, err)
		}
		if err := tx.Delete(&record).Error; err != nil {
			return fmt.Errorf("delete business %d: %w", id, err)
		}
		return nil
	})
}

// AddKeyword registers a new matching keyword for an existing business
func (s *Store) AddKeyword(ctx context.Context, businessID int64, keyword string, caseSensitive bool, matchType string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return domain.ErrInvalidRequest
	}
	if matchType == "" {
		matchType = domain.MatchTypeExact
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&BusinessRecord{}).Where("id = ?", businessID).Count(&count).Error; err != nil {
		return fmt.Errorf("check business %d: %w", businessID, err)
	}
	if count == 0 {
		return domain.ErrBusinessNotFound
	}

	record := KeywordRecord{
		BusinessID:    businessID,
		Keyword:       keyword,
		CaseSensitive: caseSensitive,
		MatchType:     matchType,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("add keyword: %w", err)
	}
	return nil
}

// IncrementUsage records that a keyword produced a confirmed match.
// Callers invoke it after the user accepts a match suggestion.
func (s *Store) IncrementUsage(ctx context.Context, businessID int64, keyword string) error {
	now := time.Now()
	result := s.db.WithContext(ctx).
		Model(&KeywordRecord{}).
		Where("business_id = ? AND keyword = ?", businessID, keyword).
		Updates(map[string]interface{}{
			"usage_count":  gorm.Expr("usage_count + 1"),
			"last_used_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("increment keyword usage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrBusinessNotFound
	}
	return nil
}

// ListProjects returns all projects ordered by name
func (s *Store) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var records []ProjectRecord
	if err := s.db.WithContext(ctx).Order("name").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]domain.Project, 0, len(records))
	for _, record := range records {
		projects = append(projects, domain.Project{
			ID:          record.ID,
			Name:        record.Name,
			Description: record.Description,
		})
	}
	return projects, nil
}

// AddProject creates a project label
func (s *Store) AddProject(ctx context.Context, name, description string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidRequest
	}
	record := ProjectRecord{Name: name, Description: description}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("add project: %w", err)
	}
	return &domain.Project{ID: record.ID, Name: record.Name, Description: record.Description}, nil
}

// ListCategories returns all categories ordered by name
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var records []CategoryRecord
	if err := s.db.WithContext(ctx).Order("name").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	categories := make([]domain.Category, 0, len(records))
	for _, record := range records {
		categories = append(categories, domain.Category{
			ID:   record.ID,
			Name: record.Name,
			Code: record.Code,
		})
	}
	return categories, nil
}

// AddCategory creates an expense category
func (s *Store) AddCategory(ctx context.Context, name, code string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidRequest
	}
	record := CategoryRecord{Name: name, Code: code}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("add category: %w", err)
	}
	return &domain.Category{ID: record.ID, Name: record.Name, Code: record.Code}, nil
}
