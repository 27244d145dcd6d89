package domain

// Keyword match types. "exact" keywords are plain triggers, "fuzzy" keywords
// opt into similarity matching, "partial" keywords match as substrings.
const (
	MatchTypeExact   = "exact"
	MatchTypeFuzzy   = "fuzzy"
	MatchTypePartial = "partial"
)

// Match kinds reported on a MatchResult
const (
	MatchKindExact = "exact"
	MatchKindFuzzy = "fuzzy"
)

// Business represents a canonical vendor identity
type Business struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CatalogEntry is one keyword of the matching catalog, joined with its
// owning business. A business may own many keywords; its own name is
// normally registered as an implicit case-insensitive keyword.
type CatalogEntry struct {
	Keyword       string `json:"keyword"`
	BusinessID    int64  `json:"businessId"`
	BusinessName  string `json:"businessName"`
	CaseSensitive bool   `json:"caseSensitive"`
	MatchType     string `json:"matchType"`
}

// Catalog is an ordered, read-only snapshot of keyword->business
// associations for one match invocation. Order is provider-defined and
// decides exact-match tie-breaking: the first matching entry wins.
type Catalog []CatalogEntry

// MatchResult represents a resolved business identity with an advisory
// confidence score in [0,1]
type MatchResult struct {
	Business   Business `json:"business"`
	MatchKind  string   `json:"matchKind"`
	Confidence float64  `json:"confidence"`
}

// Project groups processed documents under a project label
type Project struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Category is an expense category assignable to processed documents
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}
