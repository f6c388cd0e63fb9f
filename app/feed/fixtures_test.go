package feed

import (
	"testing"

	"github.com/goccy/go-json"
)

func testProduct(name, title, stamp, start string) map[string]any {
	return map[string]any{
		"machine_name":             name,
		"tile_short_name":          title,
		"product_url":              "/" + stamp + "/" + name,
		"detailed_marketing_blurb": "<p>About " + title + "</p>",
		"tile_image":               "https://hb.imgix.net/" + name + ".png",
		"start_date|datetime":      start,
		"end_date|datetime":        "2024-01-10T00:00:00Z",
		"tile_stamp":               stamp,
	}
}

func testCategory(sections ...[]map[string]any) map[string]any {
	mosaic := make([]any, 0, len(sections))
	for _, products := range sections {
		mosaic = append(mosaic, map[string]any{"products": products})
	}
	return map[string]any{"mosaic": mosaic}
}

func testPayload(t *testing.T, data map[string]any) string {
	t.Helper()
	out, err := json.Marshal(map[string]any{"data": data})
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return string(out)
}
