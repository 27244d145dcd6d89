package usecase

import (
	"log"
	"strings"

	"github.com/vendorlens/backend/internal/domain"
)

// foldedCasePenalty discounts matches where a case-sensitive keyword was
// only satisfied after folding case. The keyword author asked for exact
// case; folding degrades confidence instead of silently matching at full
// strength. Policy constant, keep literal.
const foldedCasePenalty = 0.8

// BusinessMatcher resolves free text to a canonical business identity
// using a staged pipeline: exact keyword equality first, then fuzzy
// matching over case-insensitive keywords, then fuzzy matching over
// case-sensitive keywords in original and folded case. The first stage
// that produces a result wins.
type BusinessMatcher struct {
	fuzzy              *FuzzyMatcher
	enableDebugLogging bool
}

// NewBusinessMatcher creates a business matcher backed by the given fuzzy matcher
func NewBusinessMatcher(fuzzy *FuzzyMatcher, enableDebugLogging bool) *BusinessMatcher {
	return &BusinessMatcher{
		fuzzy:              fuzzy,
		enableDebugLogging: enableDebugLogging,
	}
}

// Match resolves text against a catalog snapshot. It returns nil when no
// keyword clears the threshold; that is a first-class outcome, not an
// error. Catalog order is provider-defined and decides exact-match ties:
// the first matching entry wins. Malformed entries are skipped.
func (m *BusinessMatcher) Match(text string, catalog domain.Catalog) *domain.MatchResult {
	if len(catalog) == 0 {
		return nil
	}

	entries := make([]domain.CatalogEntry, 0, len(catalog))
	for _, entry := range catalog {
		if entry.Keyword == "" || entry.BusinessName == "" {
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil
	}

	trimmed := strings.TrimSpace(text)

	// Stage 1: exact keyword equality preempts all fuzzy work
	if result := m.exactMatch(trimmed, entries); result != nil {
		return result
	}

	// Stage 2: fuzzy over case-insensitive keywords, both sides folded
	var insensitive, sensitive []domain.CatalogEntry
	for _, entry := range entries {
		if entry.CaseSensitive {
			sensitive = append(sensitive, entry)
		} else {
			insensitive = append(insensitive, entry)
		}
	}

	if len(insensitive) > 0 {
		candidates := make([]string, len(insensitive))
		for i, entry := range insensitive {
			candidates[i] = strings.ToLower(entry.Keyword)
		}
		if best, score, ok := m.fuzzy.FindBestMatch(strings.ToLower(text), candidates); ok {
			for _, entry := range insensitive {
				if strings.ToLower(entry.Keyword) == best {
					return m.result(entry, domain.MatchKindFuzzy, score)
				}
			}
		}
	}

	if len(sensitive) > 0 {
		// Stage 3: case-sensitive keywords in their original case
		candidates := make([]string, len(sensitive))
		for i, entry := range sensitive {
			candidates[i] = entry.Keyword
		}
		if best, score, ok := m.fuzzy.FindBestMatch(text, candidates); ok {
			for _, entry := range sensitive {
				if entry.Keyword == best {
					return m.result(entry, domain.MatchKindFuzzy, score)
				}
			}
		}

		// Stage 4: case-sensitive keywords with case folded, penalized
		folded := make([]string, len(sensitive))
		for i, entry := range sensitive {
			folded[i] = strings.ToLower(entry.Keyword)
		}
		if best, score, ok := m.fuzzy.FindBestMatch(strings.ToLower(text), folded); ok {
			for _, entry := range sensitive {
				if strings.ToLower(entry.Keyword) == best {
					return m.result(entry, domain.MatchKindFuzzy, score*foldedCasePenalty)
				}
			}
		}
	}

	if m.enableDebugLogging {
		log.Printf("[MATCH] no business match for %q (catalog size %d)", trimmed, len(entries))
	}

	return nil
}

// exactMatch runs the first pipeline stage: stripped-string equality in
// catalog order. A case-sensitive keyword matched only after case folding
// earns partial credit instead of full confidence.
func (m *BusinessMatcher) exactMatch(trimmed string, entries []domain.CatalogEntry) *domain.MatchResult {
	lowered := strings.ToLower(trimmed)

	for _, entry := range entries {
		keyword := strings.TrimSpace(entry.Keyword)
		if entry.CaseSensitive {
			if trimmed == keyword {
				return m.result(entry, domain.MatchKindExact, 1.0)
			}
			if lowered == strings.ToLower(keyword) {
				return m.result(entry, domain.MatchKindExact, foldedCasePenalty)
			}
		} else if lowered == strings.ToLower(keyword) {
			return m.result(entry, domain.MatchKindExact, 1.0)
		}
	}

	return nil
}

func (m *BusinessMatcher) result(entry domain.CatalogEntry, kind string, confidence float64) *domain.MatchResult {
	if m.enableDebugLogging {
		log.Printf("[MATCH] %q -> business %q (%s, %.3f)", entry.Keyword, entry.BusinessName, kind, confidence)
	}
	return &domain.MatchResult{
		Business: domain.Business{
			ID:   entry.BusinessID,
			Name: entry.BusinessName,
		},
		MatchKind:  kind,
		Confidence: confidence,
	}
}
