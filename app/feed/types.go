package feed

import (
	"strings"
	"time"
)

// Origin is the site every relative product path is resolved against.
const Origin = "https://www.humblebundle.com"

const (
	CategoryBooks    = "books"
	CategoryGames    = "games"
	CategorySoftware = "software"
)

// Categories lists the payload's category groups in flattening order.
var Categories = []string{CategoryBooks, CategoryGames, CategorySoftware}

type Item struct {
	ID          string // machine name, unique per offering
	Title       string
	Description string // may contain markup
	ImageURL    string
	Path        string // relative to Origin
	StartsAt    time.Time
	EndsAt      time.Time
	Category    string
}

func (i Item) Link() string {
	if strings.HasPrefix(i.Path, "/") {
		return Origin + i.Path
	}
	return Origin + "/" + i.Path
}

// Channel describes the metadata of a single published feed.
type Channel struct {
	Name        string `yaml:"name"`
	Route       string `yaml:"route"`
	Category    string `yaml:"category"` // empty means unfiltered
	Title       string `yaml:"title"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
}
