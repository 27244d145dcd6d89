package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// englishMonths maps English month names and abbreviations to month numbers
var englishMonths = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6, "jul": 7,
	"aug": 8, "sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,
}

// frenchMonths maps French month names (accent-stripped) to month numbers
var frenchMonths = map[string]int{
	"janvier": 1, "fevrier": 2, "mars": 3, "avril": 4,
	"mai": 5, "juin": 6, "juillet": 7, "aout": 8,
	"septembre": 9, "octobre": 10, "novembre": 11, "decembre": 12,
}

// Date patterns ordered by reliability: unambiguous ISO first, then
// year-first numeric, then day/month numeric, then written month names
var (
	isoDateRegex       = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	yearFirstRegex     = regexp.MustCompile(`\b(\d{4})[/.](\d{1,2})[/.](\d{1,2})\b`)
	numericDateRegex   = regexp.MustCompile(`\b(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})\b`)
	monthNameDateRegex = regexp.MustCompile(`(?i)\b([a-zA-Z]{3,9})\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	dayFirstNameRegex  = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th|er)?\s+(?:of\s+)?([a-zA-Z\x{00e0}-\x{00fc}]{3,9})\.?\s+(\d{4})\b`)
)

// accentReplacer strips the accented vowels that appear in French month names
var accentReplacer = strings.NewReplacer(
	"é", "e", "è", "e", "ê", "e", "û", "u", "î", "i", "à", "a", "ù", "u",
)

// DefaultDateExtractor parses invoice dates out of free text. It handles
// ISO dates, numeric dates in both year-first and day/month-first order,
// and written English and French month names, returning the first
// candidate that forms a real calendar date.
type DefaultDateExtractor struct{}

// NewDateExtractor creates the default date extractor
func NewDateExtractor() *DefaultDateExtractor {
	return &DefaultDateExtractor{}
}

// ExtractDate returns the first date found in text in ISO format
// (YYYY-MM-DD), or "" when no parseable date exists
func (d *DefaultDateExtractor) ExtractDate(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	if match := isoDateRegex.FindStringSubmatch(text); match != nil {
		if iso, ok := buildISODate(match[1], match[2], match[3]); ok {
			return iso
		}
	}

	if match := yearFirstRegex.FindStringSubmatch(text); match != nil {
		if iso, ok := buildISODate(match[1], match[2], match[3]); ok {
			return iso
		}
	}

	if match := numericDateRegex.FindStringSubmatch(text); match != nil {
		first, _ := strconv.Atoi(match[1])
		second, _ := strconv.Atoi(match[2])
		// Month-first unless the first component cannot be a month
		month, day := match[1], match[2]
		if first > 12 && second <= 12 {
			month, day = match[2], match[1]
		}
		if iso, ok := buildISODate(match[3], month, day); ok {
			return iso
		}
	}

	for _, match := range monthNameDateRegex.FindAllStringSubmatch(text, -1) {
		if month, ok := lookupMonth(match[1]); ok {
			if iso, ok := buildISODate(match[3], strconv.Itoa(month), match[2]); ok {
				return iso
			}
		}
	}

	for _, match := range dayFirstNameRegex.FindAllStringSubmatch(text, -1) {
		if month, ok := lookupMonth(match[2]); ok {
			if iso, ok := buildISODate(match[3], strconv.Itoa(month), match[1]); ok {
				return iso
			}
		}
	}

	return ""
}

// ValidateDate reports whether a string is a real date in strict ISO
// format (YYYY-MM-DD)
func (d *DefaultDateExtractor) ValidateDate(date string) bool {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	return parsed.Format("2006-01-02") == date
}

// lookupMonth resolves an English or accent-stripped French month name
func lookupMonth(name string) (int, bool) {
	normalized := accentReplacer.Replace(strings.ToLower(name))
	if month, ok := englishMonths[normalized]; ok {
		return month, true
	}
	if month, ok := frenchMonths[normalized]; ok {
		return month, true
	}
	return 0, false
}

// buildISODate assembles and verifies a calendar date from string
// components. time.Date normalizes overflow (Feb 30 becomes Mar 2), so the
// components are checked after construction.
func buildISODate(yearStr, monthStr, dayStr string) (string, bool) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return "", false
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return "", false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return "", false
	}

	if year < 1900 || year > 2100 || month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return "", false
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}
