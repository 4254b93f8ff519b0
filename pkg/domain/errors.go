package domain

import (
	"errors"
	"fmt"
)

var ErrNoContent = errors.New("no content provided for moderation")

// ValidationError marks malformed, missing or oversized input. It is
// user-facing and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

// FetchError marks a failed remote image download. It is retried once
// with backoff before being surfaced for the affected item.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func NewFetchError(url string, err error) error {
	return &FetchError{URL: url, Err: err}
}

func IsFetchError(err error) bool {
	if err == nil {
		return false
	}
	var fetchError *FetchError
	return errors.As(err, &fetchError)
}

// AnalysisUnavailableError marks a classifier that failed or returned
// unparsable output. It is recorded on the affected result and never
// aborts the sibling analyzer or the item.
type AnalysisUnavailableError struct {
	Analyzer string
	Err      error
}

func (e *AnalysisUnavailableError) Error() string {
	return fmt.Sprintf("%s analysis unavailable: %v", e.Analyzer, e.Err)
}

func (e *AnalysisUnavailableError) Unwrap() error {
	return e.Err
}

func NewAnalysisUnavailableError(analyzer string, err error) error {
	return &AnalysisUnavailableError{Analyzer: analyzer, Err: err}
}

func IsAnalysisUnavailableError(err error) bool {
	if err == nil {
		return false
	}
	var analysisError *AnalysisUnavailableError
	return errors.As(err, &analysisError)
}

// BatchTooLargeError fails a batch before any per-item work begins.
type BatchTooLargeError struct {
	Items int
	Limit int
}

func (e *BatchTooLargeError) Error() string {
	return fmt.Sprintf("batch of %d items exceeds the maximum of %d", e.Items, e.Limit)
}

func NewBatchTooLargeError(items, limit int) error {
	return &BatchTooLargeError{Items: items, Limit: limit}
}

func IsBatchTooLargeError(err error) bool {
	if err == nil {
		return false
	}
	var batchError *BatchTooLargeError
	return errors.As(err, &batchError)
}
