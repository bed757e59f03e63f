package pagination

import (
	"errors"
	"fmt"
)

// ErrLinkLoop means a next link points back to a page of the same chain.
var ErrLinkLoop = errors.New("link chain revisits a fetched page")

// PageFetchError reports a result page that could not be fetched.
// Pages before it were already delivered and stay valid.
type PageFetchError struct {
	Page       int
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

// Error implements the error interface.
func (e *PageFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch result page %d (status %d): %v", e.Page, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch result page %d: %v", e.Page, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *PageFetchError) Unwrap() error {
	return e.Err
}
