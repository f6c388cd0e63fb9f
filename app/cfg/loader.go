package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Server configuration
	Port    string `long:"port" env:"PORT" default:"3000" description:"HTTP server port"`
	BaseUrl string `long:"base-url" env:"BASE_URL" description:"Public base URL used for feed self links (e.g., https://feeds.example.com)"`

	// Upstream configuration
	SourceURL string `long:"source-url" env:"SOURCE_URL" default:"https://www.humblebundle.com/" description:"Page carrying the embedded landing page JSON"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Humble RSS/1.0" description:"User agent string for upstream requests"`

	// Rendering configuration
	ChannelsFile string `long:"channels-file" env:"CHANNELS_FILE" description:"YAML file overriding the built-in channel metadata (optional)"`
	Timezone     string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for displayed dates (e.g., UTC, America/New_York)"`
	Debug        bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses command-line flags and environment variables. A nil config
// with a nil error means help was printed.
func Load() (*Cfg, error) {
	return parse(os.Args[1:])
}

func parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:         raw.Port,
		BaseUrl:      raw.BaseUrl,
		SourceURL:    raw.SourceURL,
		UserAgent:    raw.UserAgent,
		ChannelsFile: raw.ChannelsFile,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	return cfg, nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Cfg) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ApplyTimezone sets time.Local to the configured timezone and returns it.
// An invalid timezone leaves time.Local at UTC.
func (c *Cfg) ApplyTimezone() (*time.Location, error) {
	loc, err := c.Location()
	time.Local = loc
	return loc, err
}
