package source

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// DefaultSelector matches the script element Humble Bundle embeds its
// landing page data in.
const DefaultSelector = `script#landingPage-json-data[type="application/json"]`

type Extractor struct {
	selector string
}

func NewExtractor(selector string) *Extractor {
	if selector == "" {
		selector = DefaultSelector
	}
	return &Extractor{selector: selector}
}

// Run returns the raw text of the first element matching the selector. Script
// bodies are raw text, so the span ends at the first closing tag.
func (e *Extractor) Run(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to read page: %w", err)
	}

	sel := doc.Find(e.selector).First()
	if sel.Length() == 0 {
		return "", &ExtractionError{Selector: e.selector}
	}

	return sel.Text(), nil
}
