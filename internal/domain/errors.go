package domain

import "errors"

var (
	// ErrNoMatch is returned when no business clears the matching threshold
	ErrNoMatch = errors.New("no business match found")

	// ErrLowConfidence is returned when the match confidence is below the threshold
	ErrLowConfidence = errors.New("match confidence below threshold")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrBusinessNotFound is returned when a business id does not exist in the catalog
	ErrBusinessNotFound = errors.New("business not found")

	// ErrDuplicateBusiness is returned when adding a business whose name is already registered
	ErrDuplicateBusiness = errors.New("business already exists")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrOCRFailure is returned when the OCR engine cannot produce text for a document
	ErrOCRFailure = errors.New("OCR text recognition failed")

	// ErrEmptyDocument is returned when a scanned document yields no usable text
	ErrEmptyDocument = errors.New("no text extracted from document")
)
