package feed

import "fmt"

// ParseError reports an extracted payload that is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse landing page JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports a payload that does not have the expected shape.
// Path names the offending field, e.g. data.games.mosaic[0].products[1].tile_image.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid landing page JSON: %s", e.Reason)
	}
	return fmt.Sprintf("invalid landing page JSON at %s: %s", e.Path, e.Reason)
}
