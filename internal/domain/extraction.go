package domain

// ExtractionResult holds the structured fields pulled from one OCR text.
// Absent fields are nil pointers, never empty strings or zeros, so callers
// can tell "not found" from a legitimately empty value.
type ExtractionResult struct {
	Company       *string  `json:"company"`
	Total         *float64 `json:"total"`
	Date          *string  `json:"date"` // ISO format YYYY-MM-DD
	InvoiceNumber *string  `json:"invoiceNumber"`
	RawText       string   `json:"rawText"`
	Confidence    float64  `json:"confidence"`
	IsValid       bool     `json:"isValid"`
}

// CandidateMatch pairs a candidate string with its similarity score
type CandidateMatch struct {
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
}
