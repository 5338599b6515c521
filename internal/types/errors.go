package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrInvalidURL        = errors.New("invalid URL")
	ErrStylesUnavailable = errors.New("style snapshot unavailable")
	ErrDriverClosed      = errors.New("page driver is closed")
)

// NavigateError wraps a failure to load a page. Navigation failures are
// recovered per page: the page is dropped and the crawl continues.
type NavigateError struct {
	URL string
	Err error
}

func (e *NavigateError) Error() string {
	return fmt.Sprintf("navigate error for %s: %v", e.URL, e.Err)
}

func (e *NavigateError) Unwrap() error { return e.Err }

// ExtractError wraps a failure while extracting a loaded page.
type ExtractError struct {
	Path string
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract error for %s: %v", e.Path, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }
