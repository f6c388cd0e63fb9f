// Package page renders the HTML index of current offerings.
package page

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/humble-rss/app/feed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// htmlEscaper leaves apostrophes alone, unlike the feed's XML escaping.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

type Tier string

const (
	TierUrgent Tier = "urgent"
	TierSoon   Tier = "soon"
	TierOK     Tier = "ok"
)

// Classify buckets an offering by hours left until it ends. Ended offerings
// are TierOK.
func Classify(endsAt, now time.Time) Tier {
	hours := endsAt.Sub(now).Hours()
	switch {
	case hours > 0 && hours <= 24:
		return TierUrgent
	case hours > 24 && hours <= 168:
		return TierSoon
	default:
		return TierOK
	}
}

const style = `body{font-family:system-ui,sans-serif;max-width:48rem;margin:2rem auto;padding:0 1rem;line-height:1.5}
a{color:inherit}
.tag{color:#666;font-family:monospace}
.urgent a{color:#c0392b;font-weight:bold}
.soon a{color:#d68910}
.ok a{color:#1e8449}`

type Renderer struct {
	channels []feed.Channel
	lang     language.Tag
}

// NewRenderer returns a renderer that links to the given feed channels.
func NewRenderer(channels []feed.Channel) *Renderer {
	return &Renderer{
		channels: channels,
		lang:     language.AmericanEnglish,
	}
}

func (r *Renderer) Run(items []feed.Item, now time.Time) string {
	var buf bytes.Buffer

	buf.WriteString("<!DOCTYPE html>\n")
	buf.WriteString(`<html lang="en">`)
	buf.WriteString("\n<head>\n")
	buf.WriteString(`<meta charset="utf-8">`)
	buf.WriteString("\n")
	buf.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	buf.WriteString("\n<title>Humble Bundle RSS</title>\n")
	buf.WriteString(`<link rel="icon" href="/favicon.ico" type="image/svg+xml">`)
	buf.WriteString("\n<style>\n")
	buf.WriteString(style)
	buf.WriteString("\n</style>\n</head>\n<body>\n")
	buf.WriteString("<h1>Humble Bundle RSS</h1>\n")

	buf.WriteString("<ul class=\"feeds\">\n")
	for _, ch := range r.channels {
		fmt.Fprintf(&buf, "<li><a href=\"%s\">%s</a></li>\n",
			htmlEscaper.Replace(ch.Route), htmlEscaper.Replace(r.label(ch)))
	}
	buf.WriteString("</ul>\n")

	buf.WriteString("<ol class=\"items\">\n")
	for _, item := range items {
		r.writeItem(&buf, item, now)
	}
	buf.WriteString("</ol>\n</body>\n</html>\n")

	return buf.String()
}

func (r *Renderer) writeItem(buf *bytes.Buffer, item feed.Item, now time.Time) {
	fmt.Fprintf(buf, "<li class=\"%s\"><span class=\"tag\">[%s]</span> ",
		Classify(item.EndsAt, now), htmlEscaper.Replace(item.Category))
	fmt.Fprintf(buf, "<a href=\"%s\" title=\"%s\" target=\"_blank\" rel=\"nofollow noopener\">%s</a></li>\n",
		htmlEscaper.Replace(item.Link()),
		htmlEscaper.Replace(item.Title),
		htmlEscaper.Replace(item.Title))
}

func (r *Renderer) label(ch feed.Channel) string {
	if ch.Category == "" {
		return "All offerings (" + ch.Route + ")"
	}
	// Casers carry state and are not shared between requests.
	return cases.Title(r.lang).String(ch.Category) + " (" + ch.Route + ")"
}
