package feed

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed channels.yml
var defaultChannels []byte

type channelsFile struct {
	Defaults Channel   `yaml:"defaults"`
	Channels []Channel `yaml:"channels"`
}

// LoadChannels reads channel metadata from path, or the built-in set when
// path is empty. Channel fields left blank inherit from the file's defaults.
func LoadChannels(path string) ([]Channel, error) {
	data := defaultChannels
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
	}

	channels, err := parseChannels(data)
	if err != nil {
		return nil, err
	}

	for _, ch := range channels {
		slog.Debug("Channel loaded", "name", ch.Name, "route", ch.Route, "category", ch.Category)
	}

	return channels, nil
}

func parseChannels(data []byte) ([]Channel, error) {
	var file channelsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(file.Channels) == 0 {
		return nil, fmt.Errorf("no channels defined")
	}

	routes := make(map[string]bool, len(file.Channels))
	channels := make([]Channel, 0, len(file.Channels))
	for i, ch := range file.Channels {
		applyDefaults(&ch, file.Defaults)

		if err := validateChannel(ch); err != nil {
			return nil, fmt.Errorf("invalid channel at index %d: %w", i, err)
		}
		if routes[ch.Route] {
			return nil, fmt.Errorf("duplicate channel route: %s", ch.Route)
		}
		routes[ch.Route] = true

		channels = append(channels, ch)
	}

	return channels, nil
}

func applyDefaults(ch *Channel, defaults Channel) {
	if ch.Link == "" {
		ch.Link = defaults.Link
	}
	if ch.Link == "" {
		ch.Link = Origin
	}
	if ch.Description == "" {
		ch.Description = defaults.Description
	}
	if ch.Language == "" {
		ch.Language = defaults.Language
	}
	if ch.Language == "" {
		ch.Language = strings.ToLower(language.AmericanEnglish.String())
	}
	if ch.Name == "" {
		ch.Name = strings.TrimPrefix(ch.Route, "/")
	}
}

func validateChannel(ch Channel) error {
	if ch.Route == "" || !strings.HasPrefix(ch.Route, "/") || ch.Route == "/" {
		return fmt.Errorf("route must be an absolute path other than /: %q", ch.Route)
	}
	if strings.ContainsAny(ch.Route, ":*") {
		return fmt.Errorf("route must be a literal path without ':' or '*': %q", ch.Route)
	}
	if ch.Route == "/favicon.ico" {
		return fmt.Errorf("route %s is reserved", ch.Route)
	}
	if ch.Category != "" && !slices.Contains(Categories, ch.Category) {
		return fmt.Errorf("unknown category %q", ch.Category)
	}
	if ch.Title == "" {
		return fmt.Errorf("title is required")
	}
	if _, err := language.Parse(ch.Language); err != nil {
		return fmt.Errorf("invalid language %q: %w", ch.Language, err)
	}
	return nil
}
