package usecase

import (
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/vendorlens/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	punctuationRegex = regexp.MustCompile(`[^\w\s]`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
)

// Combined keyword+string score weights. These are policy constants kept in
// lockstep with the matching pipeline; change only as a product decision.
const (
	keywordOverlapWeight = 0.6 // Jaccard keyword overlap share
	stringRatioWeight    = 0.4 // sequence similarity share
)

// Default matcher parameters
const (
	defaultSimilarityThreshold = 0.8
	defaultMaxCandidates       = 10
	minKeywordLength           = 2 // tokens this short carry no signal
)

// matchStopWords are dropped during keyword extraction
var matchStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true,
}

// FuzzyConfig holds configuration for the fuzzy matcher
type FuzzyConfig struct {
	SimilarityThreshold float64
	CaseSensitive       bool
	IgnorePunctuation   bool
	IgnoreWhitespace    bool
	MaxCandidates       int
	EnableDebugLogging  bool
}

// DefaultFuzzyConfig returns the matcher defaults: threshold 0.8,
// case-insensitive, punctuation and whitespace normalization on.
func DefaultFuzzyConfig() FuzzyConfig {
	return FuzzyConfig{
		SimilarityThreshold: defaultSimilarityThreshold,
		CaseSensitive:       false,
		IgnorePunctuation:   true,
		IgnoreWhitespace:    true,
		MaxCandidates:       defaultMaxCandidates,
	}
}

// FuzzyMatcher compares free text against candidate strings using a
// normalized longest-matching-blocks ratio plus keyword overlap. All
// methods are total: any input, including empty strings and empty
// candidate lists, produces a value rather than an error.
type FuzzyMatcher struct {
	similarityThreshold float64
	caseSensitive       bool
	ignorePunctuation   bool
	ignoreWhitespace    bool
	maxCandidates       int
	enableDebugLogging  bool
}

// NewFuzzyMatcher creates a fuzzy matcher with the given configuration
func NewFuzzyMatcher(config FuzzyConfig) *FuzzyMatcher {
	threshold := config.SimilarityThreshold
	if threshold <= 0 {
		threshold = defaultSimilarityThreshold
	}

	maxCandidates := config.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = defaultMaxCandidates
	}

	return &FuzzyMatcher{
		similarityThreshold: threshold,
		caseSensitive:       config.CaseSensitive,
		ignorePunctuation:   config.IgnorePunctuation,
		ignoreWhitespace:    config.IgnoreWhitespace,
		maxCandidates:       maxCandidates,
		enableDebugLogging:  config.EnableDebugLogging,
	}
}

// Threshold returns the configured similarity threshold
func (m *FuzzyMatcher) Threshold() float64 {
	return m.similarityThreshold
}

// NormalizeString canonicalizes text according to the configured options:
// case folding unless case-sensitive, punctuation stripping, whitespace
// collapsing. Empty input normalizes to "".
func (m *FuzzyMatcher) NormalizeString(text string) string {
	if text == "" {
		return ""
	}

	normalized := text
	if !m.caseSensitive {
		normalized = strings.ToLower(normalized)
	}
	if m.ignorePunctuation {
		normalized = punctuationRegex.ReplaceAllString(normalized, "")
	}
	if m.ignoreWhitespace {
		normalized = strings.TrimSpace(whitespaceRegex.ReplaceAllString(normalized, " "))
	}

	return normalized
}

// Similarity computes a ratio in [0,1] between two strings after
// normalization: 2*M / (len(a)+len(b)) where M is the total length of the
// matching contiguous blocks. Identical nonempty strings score 1.0.
func (m *FuzzyMatcher) Similarity(str1, str2 string) float64 {
	a := []rune(m.NormalizeString(str1))
	b := []rune(m.NormalizeString(str2))

	if len(a)+len(b) == 0 {
		return 1.0
	}

	matched := matchingBlocksLength(a, b)
	return 2.0 * float64(matched) / float64(len(a)+len(b))
}

// IsSimilar reports whether two strings clear the similarity threshold
func (m *FuzzyMatcher) IsSimilar(str1, str2 string) bool {
	return m.Similarity(str1, str2) >= m.similarityThreshold
}

// FindBestMatch scans all candidates and returns the strictly highest
// scoring one (first seen wins ties) when it clears the threshold. The
// boolean result is false for an empty candidate list or when nothing
// clears the threshold.
func (m *FuzzyMatcher) FindBestMatch(query string, candidates []string) (string, float64, bool) {
	if len(candidates) == 0 {
		return "", 0, false
	}

	bestMatch := ""
	bestScore := 0.0
	found := false

	for _, candidate := range candidates {
		score := m.Similarity(query, candidate)
		if score > bestScore {
			bestScore = score
			bestMatch = candidate
			found = true
		}
	}

	if m.enableDebugLogging {
		log.Printf("[FUZZY] query=%q best=%q score=%.3f threshold=%.2f", query, bestMatch, bestScore, m.similarityThreshold)
	}

	if !found || bestScore < m.similarityThreshold {
		return "", 0, false
	}

	return bestMatch, bestScore, true
}

// FindAllMatches returns every candidate scoring at or above the threshold,
// sorted by score descending and truncated to MaxCandidates
func (m *FuzzyMatcher) FindAllMatches(query string, candidates []string) []domain.CandidateMatch {
	var matches []domain.CandidateMatch

	for _, candidate := range candidates {
		score := m.Similarity(query, candidate)
		if score >= m.similarityThreshold {
			matches = append(matches, domain.CandidateMatch{Candidate: candidate, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > m.maxCandidates {
		matches = matches[:m.maxCandidates]
	}

	return matches
}

// ExtractKeywords normalizes text, splits it on whitespace, and drops stop
// words and tokens too short to carry signal
func (m *FuzzyMatcher) ExtractKeywords(text string) []string {
	normalized := m.NormalizeString(text)
	words := strings.Fields(normalized)

	var keywords []string
	for _, word := range words {
		if matchStopWords[word] {
			continue
		}
		if len(word) <= minKeywordLength {
			continue
		}
		keywords = append(keywords, word)
	}

	return keywords
}

// KeywordSimilarity computes the Jaccard index of two keyword lists.
// Either list being empty yields 0.0.
func (m *FuzzyMatcher) KeywordSimilarity(keywords1, keywords2 []string) float64 {
	if len(keywords1) == 0 || len(keywords2) == 0 {
		return 0.0
	}

	set1 := make(map[string]bool, len(keywords1))
	for _, k := range keywords1 {
		set1[k] = true
	}
	set2 := make(map[string]bool, len(keywords2))
	for _, k := range keywords2 {
		set2[k] = true
	}

	intersection := 0
	for k := range set1 {
		if set2[k] {
			intersection++
		}
	}
	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}

// FindKeywordMatches scores candidates with a weighted combination of
// keyword overlap and sequence similarity, filtered and ranked the same
// way as FindAllMatches
func (m *FuzzyMatcher) FindKeywordMatches(query string, candidates []string) []domain.CandidateMatch {
	if len(candidates) == 0 {
		return nil
	}

	queryKeywords := m.ExtractKeywords(query)

	var matches []domain.CandidateMatch
	for _, candidate := range candidates {
		keywordScore := m.KeywordSimilarity(queryKeywords, m.ExtractKeywords(candidate))
		stringScore := m.Similarity(query, candidate)
		combined := keywordScore*keywordOverlapWeight + stringScore*stringRatioWeight

		if combined >= m.similarityThreshold {
			matches = append(matches, domain.CandidateMatch{Candidate: candidate, Score: combined})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > m.maxCandidates {
		matches = matches[:m.maxCandidates]
	}

	return matches
}

// matchingBlocksLength sums the lengths of the matching contiguous blocks
// between a and b, found by recursively locating the longest common block
// and matching the regions to its left and right (Ratcliff/Obershelp).
func matchingBlocksLength(a, b []rune) int {
	type region struct{ alo, ahi, blo, bhi int }

	total := 0
	queue := []region{{0, len(a), 0, len(b)}}

	for len(queue) > 0 {
		r := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, size := longestMatchingBlock(a, b, r.alo, r.ahi, r.blo, r.bhi)
		if size == 0 {
			continue
		}
		total += size

		if r.alo < i && r.blo < j {
			queue = append(queue, region{r.alo, i, r.blo, j})
		}
		if i+size < r.ahi && j+size < r.bhi {
			queue = append(queue, region{i + size, r.ahi, j + size, r.bhi})
		}
	}

	return total
}

// longestMatchingBlock finds the longest block of equal runes with
// a[i:i+size] == b[j:j+size] inside the given bounds. Among equally long
// blocks the earliest in a, then earliest in b, wins.
func longestMatchingBlock(a, b []rune, alo, ahi, blo, bhi int) (int, int, int) {
	// Positions of each rune within b's window
	b2j := make(map[rune][]int)
	for j := blo; j < bhi; j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	besti, bestj, bestSize := alo, blo, 0
	// j2len[j] is the length of the match ending at a[i-1], b[j-1]
	j2len := make(map[int]int)

	for i := alo; i < ahi; i++ {
		newJ2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestSize {
				besti = i - k + 1
				bestj = j - k + 1
				bestSize = k
			}
		}
		j2len = newJ2len
	}

	return besti, bestj, bestSize
}
