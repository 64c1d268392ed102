package models

import "fmt"

// Error codes used across the harvester.
const (
	// ErrCodeNavigation covers timeouts and network errors during page load.
	// Recovered locally: the affected URL yields no result.
	ErrCodeNavigation = "NAVIGATION_FAILED"

	// ErrCodeSelector covers missing elements and transient DOM errors.
	// Recovered per element/selector: the pipeline continues.
	ErrCodeSelector = "SELECTOR_FAILED"

	// ErrCodeExhausted means no extraction strategy matched. This is a soft,
	// expected outcome, never a batch-level failure.
	ErrCodeExhausted = "EXTRACTION_EXHAUSTED"

	// ErrCodeConfig covers missing or malformed configuration.
	// Fatal, surfaced before any fetch begins.
	ErrCodeConfig = "CONFIG_INVALID"

	// ErrCodeBrowserCrash covers browser launch/connect failures.
	ErrCodeBrowserCrash = "BROWSER_CRASH"
)

// HarvestError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type HarvestError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *HarvestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *HarvestError) Unwrap() error {
	return e.Err
}

// NewHarvestError creates a new HarvestError.
func NewHarvestError(code, message string, err error) *HarvestError {
	return &HarvestError{Code: code, Message: message, Err: err}
}
