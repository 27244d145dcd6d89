package catalog

import "time"

// BusinessRecord is the persistence model for a canonical vendor identity
type BusinessRecord struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Keywords []KeywordRecord `gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE"`
}

// KeywordRecord is one matching trigger owned by a business. UsageCount and
// LastUsedAt are bookkeeping for callers that confirm a match; the matching
// core itself never reads them.
type KeywordRecord struct {
	ID            int64  `gorm:"primaryKey"`
	BusinessID    int64  `gorm:"index;not null"`
	Keyword       string `gorm:"index;not null"`
	CaseSensitive bool
	MatchType     string
	UsageCount    int64
	LastUsedAt    *time.Time
	CreatedAt     time.Time
}

// ProjectRecord groups processed documents under a project label
type ProjectRecord struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;not null"`
	Description string
	CreatedAt   time.Time
}

// CategoryRecord is an expense category assignable to processed documents
type CategoryRecord struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;not null"`
	Code      string
	CreatedAt time.Time
}
