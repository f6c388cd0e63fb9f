package source

import "fmt"

// FetchError reports an upstream page that could not be retrieved.
// StatusCode is zero when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: HTTP %d %s", e.URL, e.StatusCode, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractionError reports a page without the embedded JSON element.
type ExtractionError struct {
	Selector string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("embedded JSON not found in page (%s)", e.Selector)
}
