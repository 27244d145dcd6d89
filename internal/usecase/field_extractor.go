package usecase

import (
	"log"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/vendorlens/backend/internal/domain"
)

// Extraction limits
const (
	companyScanLines = 10      // only the top of an invoice names the vendor
	maxPlausibleTotal = 1e8    // amounts at or above this are OCR noise
	minYear           = 1900.0 // 4-digit numbers in this range are years, not amounts
	maxYear           = 2100.0
)

// Confidence model: each extracted field is worth a quarter, with a small
// bonus when the field looks rich enough to trust. A result missing any
// field is capped so callers never auto-accept partial extractions.
const (
	fieldConfidence        = 0.25
	fieldBonus             = 0.05
	partialConfidenceCap   = 0.6
	richCompanyLength      = 5
	richInvoiceNumberLen   = 3
	minReasonableTotal     = 0.01
	maxReasonableTotal     = 1000000.0
)

// legalSuffixes mark the end of a company name; checked in order
var legalSuffixes = []string{"Inc.", "LLC", "Ltd.", "Corp.", "Company"}

// companyLabels are line prefixes that announce the vendor name
var companyLabels = []string{"company:", "business:", "vendor:", "bill from:"}

// companyExcludeTokens disqualify a line from being a company-name fallback
var companyExcludeTokens = []string{"invoice", "date", "total", "amount", "number"}

// Compiled extraction patterns, ordered by reliability
var (
	companyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)(?:company|business|vendor|bill\s+from|invoice\s+from|issued\s+by)[:\s]+([A-Za-z0-9\s&.,\-]+)`),
		regexp.MustCompile(`(?m)^([A-Za-z0-9\s&.,\-]+(?:\s+Inc\.|\s+LLC|\s+Ltd\.|\s+Corp\.|\s+Company))`),
		regexp.MustCompile(`([A-Za-z0-9\s&.,\-]+(?:\s+Inc\.|\s+LLC|\s+Ltd\.|\s+Corp\.|\s+Company))`),
	}

	totalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:total|amount|sum|balance|due|grand\s+total)[:\s]*\$?([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)\$?([\d,]+\.?\d*)\s*(?:total|amount|sum|balance|due)`),
		regexp.MustCompile(`(?i)(?:amount\s+due|total\s+amount)[:\s]*\$?([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)\$?([\d,]+\.?\d*)\s*(?:CAD|USD|EUR|GBP)`),
	}

	// Currency-shaped numbers for the line-by-line total fallback:
	// a $ prefix or comma grouping marks a number as money-like
	currencyShapeRegex = regexp.MustCompile(`\$\s*([\d,]+\.?\d*)|\b(\d{1,3}(?:,\d{3})+(?:\.\d+)?)\b`)

	invoiceLabelRegex    = regexp.MustCompile(`(?i)(?:invoice\s+number|invoice\s*#|inv\s+number|inv\s*#|bill\s+number|bill\s*#)[:\s]*([A-Za-z0-9\-_]+)`)
	// The trailing guard keeps INV-/BILL- prefixed tokens for the
	// standalone pattern below instead of matching their prefix here
	invoicePrefixedRegex = regexp.MustCompile(`(?i)\b([A-Za-z0-9\-_]{3,20})\s+(?:invoice|inv|bill)(?:[^\w-]|$)`)
	invoiceTokenRegex    = regexp.MustCompile(`(?i)\b((?:INV|BILL|INVOICE)-[A-Za-z0-9\-_]+)\b`)

	plainLineRegex = regexp.MustCompile(`^[A-Za-z0-9\s&.,\-]+$`)
)

// FieldExtractor pulls structured invoice fields out of raw OCR text.
// Extraction never fails: fields that cannot be found come back nil and
// the overall confidence reflects what was missing.
type FieldExtractor struct {
	dateExtractor      domain.DateExtractor
	enableDebugLogging bool
}

// NewFieldExtractor creates a field extractor that delegates date parsing
// to the supplied date extractor
func NewFieldExtractor(dateExtractor domain.DateExtractor, enableDebugLogging bool) *FieldExtractor {
	return &FieldExtractor{
		dateExtractor:      dateExtractor,
		enableDebugLogging: enableDebugLogging,
	}
}

// Extract parses raw OCR text into an ExtractionResult. Every invocation
// is a pure function of its input; empty text yields an empty result.
func (e *FieldExtractor) Extract(rawText string) domain.ExtractionResult {
	result := domain.ExtractionResult{RawText: rawText}

	if strings.TrimSpace(rawText) == "" {
		return result
	}

	result.Company = e.extractCompany(rawText)
	result.Total = e.extractTotal(rawText)
	result.Date = e.extractDate(rawText)
	result.InvoiceNumber = e.extractInvoiceNumber(rawText)
	result.Confidence = e.calculateConfidence(&result)
	result.IsValid = e.validate(&result)

	if e.enableDebugLogging {
		log.Printf("[EXTRACT] company=%v total=%v date=%v invoice=%v confidence=%.2f valid=%v",
			deref(result.Company), derefFloat(result.Total), deref(result.Date),
			deref(result.InvoiceNumber), result.Confidence, result.IsValid)
	}

	return result
}

// extractCompany scans the top of the document for the vendor name:
// labeled lines first, then lines carrying a legal suffix, then the
// ordered regex patterns, then a plain-line fallback.
func (e *FieldExtractor) extractCompany(text string) *string {
	lines := headLines(text, companyScanLines)

	// Labeled lines ("Vendor: Acme Corp.")
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, label := range companyLabels {
			if strings.HasPrefix(lower, label) {
				candidate := strings.TrimSpace(line[len(label):])
				candidate = truncateAtSuffix(candidate)
				if len(candidate) > 2 {
					return &candidate
				}
			}
		}
	}

	// Lines containing a legal suffix
	for _, line := range lines {
		if candidate, ok := cutAfterSuffix(line); ok {
			candidate = strings.TrimSpace(candidate)
			if len(candidate) > 2 {
				return &candidate
			}
		}
	}

	// Pattern sweep over the full text
	for _, pattern := range companyPatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			candidate := strings.TrimSpace(match[1])
			if len(candidate) > 2 {
				return &candidate
			}
		}
	}

	// Fallback: a plain line near the top that is not a field label,
	// preferring one that carries a legal suffix
	var firstQualifying *string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) <= 3 || len(trimmed) >= 100 {
			continue
		}
		if !plainLineRegex.MatchString(trimmed) {
			continue
		}
		if containsAnyToken(strings.ToLower(trimmed), companyExcludeTokens) {
			continue
		}
		if hasLegalSuffix(trimmed) {
			candidate := trimmed
			return &candidate
		}
		if firstQualifying == nil {
			candidate := trimmed
			firstQualifying = &candidate
		}
	}

	return firstQualifying
}

// extractTotal tries the labeled amount patterns in order, then falls back
// to the largest currency-shaped number in the text
func (e *FieldExtractor) extractTotal(text string) *float64 {
	for _, pattern := range totalPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if amount, ok := parseAmount(match[1]); ok {
			return &amount
		}
	}

	// Fallback: scan line by line for money-shaped numbers and keep the
	// maximum; bare 4-digit years are excluded
	var best *float64
	for _, line := range strings.Split(text, "\n") {
		for _, match := range currencyShapeRegex.FindAllStringSubmatch(line, -1) {
			raw := match[1]
			if raw == "" {
				raw = match[2]
			}
			amount, ok := parseAmount(raw)
			if !ok {
				continue
			}
			if looksLikeYear(raw, amount) {
				continue
			}
			if best == nil || amount > *best {
				value := amount
				best = &value
			}
		}
	}

	return best
}

func (e *FieldExtractor) extractDate(text string) *string {
	date := e.dateExtractor.ExtractDate(text)
	if date == "" {
		return nil
	}
	return &date
}

// extractInvoiceNumber tries the labeled pattern, then a token preceding
// the words invoice/inv/bill, then a standalone INV-/BILL-/INVOICE- token
func (e *FieldExtractor) extractInvoiceNumber(text string) *string {
	if match := invoiceLabelRegex.FindStringSubmatch(text); match != nil {
		number := strings.TrimSpace(match[1])
		if number != "" {
			return &number
		}
	}

	for _, match := range invoicePrefixedRegex.FindAllStringSubmatch(text, -1) {
		token := strings.TrimSpace(match[1])
		switch strings.ToLower(token) {
		case "invoice", "inv", "bill":
			continue
		}
		if token != "" {
			return &token
		}
	}

	if match := invoiceTokenRegex.FindStringSubmatch(text); match != nil {
		number := strings.TrimSpace(match[1])
		if number != "" {
			return &number
		}
	}

	return nil
}

// calculateConfidence aggregates per-field confidence with richness
// bonuses, clamped to 1.0, and capped when any field is missing
func (e *FieldExtractor) calculateConfidence(result *domain.ExtractionResult) float64 {
	confidence := 0.0
	present := 0

	if result.Company != nil {
		present++
		confidence += fieldConfidence
		if len(*result.Company) > richCompanyLength {
			confidence += fieldBonus
		}
	}

	if result.Total != nil && *result.Total > 0 {
		present++
		confidence += fieldConfidence
		if *result.Total >= minReasonableTotal && *result.Total <= maxReasonableTotal {
			confidence += fieldBonus
		}
	}

	if result.Date != nil {
		present++
		confidence += fieldConfidence
		if e.dateExtractor.ValidateDate(*result.Date) {
			confidence += fieldBonus
		}
	}

	if result.InvoiceNumber != nil {
		present++
		confidence += fieldConfidence
		if len(*result.InvoiceNumber) > richInvoiceNumberLen {
			confidence += fieldBonus
		}
	}

	confidence = math.Min(confidence, 1.0)
	if present < 4 {
		confidence = math.Min(confidence, partialConfidenceCap)
	}

	return confidence
}

// validate reports whether the extraction is complete and plausible
func (e *FieldExtractor) validate(result *domain.ExtractionResult) bool {
	if result.Company == nil || result.Total == nil || result.Date == nil || result.InvoiceNumber == nil {
		return false
	}
	if *result.Total <= 0 {
		return false
	}
	if !e.dateExtractor.ValidateDate(*result.Date) {
		return false
	}
	if len(*result.Company) < 2 {
		return false
	}
	if len(*result.InvoiceNumber) < 1 {
		return false
	}
	return true
}

// headLines returns up to n leading lines of text
func headLines(text string, n int) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines
}

// truncateAtSuffix cuts a candidate right after the first legal suffix it
// contains, leaving it untouched when none is present
func truncateAtSuffix(candidate string) string {
	if cut, ok := cutAfterSuffix(candidate); ok {
		return strings.TrimSpace(cut)
	}
	return candidate
}

func cutAfterSuffix(line string) (string, bool) {
	for _, suffix := range legalSuffixes {
		if idx := strings.Index(line, suffix); idx >= 0 {
			return line[:idx+len(suffix)], true
		}
	}
	return "", false
}

func hasLegalSuffix(line string) bool {
	for _, suffix := range legalSuffixes {
		if strings.Contains(line, suffix) {
			return true
		}
	}
	return false
}

func containsAnyToken(lower string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// parseAmount strips thousands separators and parses a positive amount
// below the plausibility ceiling
func parseAmount(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" || cleaned == "." {
		return 0, false
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if amount <= 0 || amount >= maxPlausibleTotal {
		return 0, false
	}
	return amount, true
}

// looksLikeYear reports whether a bare 4-digit integer is in the year
// range; those show up in dates, not totals
func looksLikeYear(raw string, amount float64) bool {
	if strings.ContainsAny(raw, ",.") {
		return false
	}
	return amount == math.Trunc(amount) && amount >= minYear && amount <= maxYear
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
