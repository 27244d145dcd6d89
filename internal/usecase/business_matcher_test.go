package usecase

import (
	"math"
	"testing"

	"github.com/vendorlens/backend/internal/domain"
)

func catalogEntry(keyword string, businessID int64, businessName string, caseSensitive bool) domain.CatalogEntry {
	return domain.CatalogEntry{
		Keyword:       keyword,
		BusinessID:    businessID,
		BusinessName:  businessName,
		CaseSensitive: caseSensitive,
		MatchType:     domain.MatchTypeExact,
	}
}

func TestBusinessMatcher_ExactMatch(t *testing.T) {
	matcher := NewBusinessMatcher(NewFuzzyMatcher(DefaultFuzzyConfig()), false)

	t.Run("case-insensitive keyword matches folded with full confidence", func(t *testing.T) {
		catalog := domain.Catalog{catalogEntry("hydro quebec", 1, "HQ", false)}
		result := matcher.Match("  Hydro Quebec  ", catalog)
		if result == nil {
			t.Fatal("expected a match")
		}
		if result.Business.Name != "HQ" || result.MatchKind != domain.MatchKindExact || result.Confidence != 1.0 {
			t.Errorf("result = %+v, want (HQ, exact, 1.0)", result)
		}
	})

	t.Run("case-sensitive keyword matched after folding earns partial credit", func(t *testing.T) {
		catalog := domain.Catalog{catalogEntry("HydroQuebec", 1, "HQ", true)}
		result := matcher.Match("hydroquebec", catalog)
		if result == nil {
			t.Fatal("expected a match")
		}
		if result.MatchKind != domain.MatchKindExact || result.Confidence != 0.8 {
			t.Errorf("result = %+v, want (HQ, exact, 0.8)", result)
		}
	})

	t.Run("case-sensitive keyword matched in exact case earns full confidence", func(t *testing.T) {
		catalog := domain.Catalog{catalogEntry("HydroQuebec", 1, "HQ", true)}
		result := matcher.Match("HydroQuebec", catalog)
		if result == nil {
			t.Fatal("expected a match")
		}
		if result.Confidence != 1.0 {
			t.Errorf("confidence = %v, want 1.0", result.Confidence)
		}
	})

	t.Run("first keyword in catalog order wins", func(t *testing.T) {
		catalog := domain.Catalog{
			catalogEntry("bell canada", 1, "Bell", false),
			catalogEntry("bell canada", 2, "Bell Resale", false),
		}
		result := matcher.Match("Bell Canada", catalog)
		if result == nil {
			t.Fatal("expected a match")
		}
		if result.Business.ID != 1 {
			t.Errorf("business id = %d, want the first catalog entry", result.Business.ID)
		}
	})

	t.Run("exact preempts fuzzy", func(t *testing.T) {
		// A near-identical fuzzy candidate earlier in the catalog must not
		// shadow a later exact keyword
		catalog := domain.Catalog{
			catalogEntry("bell canadaa", 1, "Almost Bell", false),
			catalogEntry("bell canada", 2, "Bell", false),
		}
		result := matcher.Match("Bell Canada", catalog)
		if result == nil {
			t.Fatal("expected a match")
		}
		if result.Business.ID != 2 || result.MatchKind != domain.MatchKindExact {
			t.Errorf("result = %+v, want exact match on business 2", result)
		}
	})
}

func TestBusinessMatcher_FuzzyMatch(t *testing.T) {
	matcher := NewBusinessMatcher(NewFuzzyMatcher(DefaultFuzzyConfig()), false)

	t.Run("near miss on case-insensitive keyword", func(t *testing.T) {
		catalog := domain.Catalog{catalogEntry("Bell Canada", 1, "Bell", false)}
		result := matcher.Match("Bell Canadaa", catalog)
		if result == nil {
			t.Fatal("expected a fuzzy match")
		}
		if result.MatchKind != domain.MatchKindFuzzy {
			t.Errorf("matchKind = %q, want fuzzy", result.MatchKind)
		}
		if result.Confidence < 0.8 || result.Confidence >= 1.0 {
			t.Errorf("confidence = %v, want in [0.8, 1.0)", result.Confidence)
		}
	})

	t.Run("folded-case fuzzy on case-sensitive keyword is penalized", func(t *testing.T) {
		// A case-sensitive fuzzy matcher makes stage 3 (same case) miss so
		// the folded stage with its penalty is exercised
		fuzzy := NewFuzzyMatcher(FuzzyConfig{CaseSensitive: true, IgnorePunctuation: true, IgnoreWhitespace: true})
		matcher := NewBusinessMatcher(fuzzy, false)
		catalog := domain.Catalog{catalogEntry("HydroQuebec", 1, "HQ", true)}

		result := matcher.Match("HYDROQUEBECS", catalog)
		if result == nil {
			t.Fatal("expected a fuzzy match")
		}
		if result.MatchKind != domain.MatchKindFuzzy {
			t.Errorf("matchKind = %q, want fuzzy", result.MatchKind)
		}
		// 11 of 11+12 runes match after folding, then the 0.8 penalty
		want := (22.0 / 23.0) * 0.8
		if math.Abs(result.Confidence-want) > 1e-9 {
			t.Errorf("confidence = %v, want %v", result.Confidence, want)
		}
	})
}

func TestBusinessMatcher_NoMatch(t *testing.T) {
	matcher := NewBusinessMatcher(NewFuzzyMatcher(DefaultFuzzyConfig()), false)

	t.Run("empty catalog", func(t *testing.T) {
		if result := matcher.Match("anything at all", nil); result != nil {
			t.Errorf("result = %+v, want nil", result)
		}
	})

	t.Run("nothing clears threshold", func(t *testing.T) {
		catalog := domain.Catalog{catalogEntry("videotron", 1, "Videotron", false)}
		if result := matcher.Match("completely unrelated text", catalog); result != nil {
			t.Errorf("result = %+v, want nil", result)
		}
	})

	t.Run("malformed entries are skipped", func(t *testing.T) {
		catalog := domain.Catalog{
			{Keyword: "", BusinessID: 1, BusinessName: "Nameless"},
			{Keyword: "orphan keyword", BusinessID: 2, BusinessName: ""},
			catalogEntry("bell canada", 3, "Bell", false),
		}
		result := matcher.Match("bell canada", catalog)
		if result == nil {
			t.Fatal("expected a match")
		}
		if result.Business.ID != 3 {
			t.Errorf("business id = %d, want 3", result.Business.ID)
		}
	})

	t.Run("catalog of only malformed entries", func(t *testing.T) {
		catalog := domain.Catalog{
			{Keyword: "", BusinessID: 1, BusinessName: "Nameless"},
			{Keyword: "orphan", BusinessID: 2, BusinessName: ""},
		}
		if result := matcher.Match("orphan", catalog); result != nil {
			t.Errorf("result = %+v, want nil", result)
		}
	})
}

func TestBusinessMatcher_Determinism(t *testing.T) {
	matcher := NewBusinessMatcher(NewFuzzyMatcher(DefaultFuzzyConfig()), false)
	catalog := domain.Catalog{
		catalogEntry("bell canada", 1, "Bell", false),
		catalogEntry("hydro quebec", 2, "HQ", false),
		catalogEntry("Videotron", 3, "Videotron", true),
	}

	first := matcher.Match("bell canadaa", catalog)
	if first == nil {
		t.Fatal("expected a match")
	}
	for i := 0; i < 10; i++ {
		again := matcher.Match("bell canadaa", catalog)
		if again == nil || *again != *first {
			t.Errorf("run %d diverged: %+v != %+v", i, again, first)
		}
	}
}
