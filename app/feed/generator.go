package feed

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// xmlEscaper uses the named entities for all five XML metacharacters.
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

const endsLayout = "January 2, 2006"

type Generator struct {
	loc     *time.Location
	version string
	now     func() time.Time
}

// NewGenerator returns a generator that prints end dates in loc.
func NewGenerator(loc *time.Location, version string) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{
		loc:     loc,
		version: version,
		now:     time.Now,
	}
}

func (g *Generator) Run(channel Channel, items []Item, selfURL string) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", channel.Title, 4)
	g.writeElement(&buf, "link", channel.Link, 4)
	g.writeElement(&buf, "description", channel.Description, 4)
	g.writeElement(&buf, "language", channel.Language, 4)
	g.writeElement(&buf, "lastBuildDate", g.now().UTC().Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Humble-RSS/%s", g.version), 4)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		xmlEscaper.Replace(selfURL)))

	for _, item := range items {
		g.writeItem(&buf, item)
	}

	buf.WriteString("  </channel>\n</rss>\n")

	return buf.String()
}

func (g *Generator) writeItem(buf *bytes.Buffer, item Item) {
	buf.WriteString("    <item>\n")

	g.writeTag(buf, "title", item.Title, 6)
	g.writeElement(buf, "link", item.Link(), 6)

	// Upstream content is trusted not to contain "]]>".
	buf.WriteString("      <description><![CDATA[")
	buf.WriteString(g.describe(item))
	buf.WriteString("]]></description>\n")

	g.writeElement(buf, "pubDate", item.StartsAt.UTC().Format(time.RFC1123Z), 6)

	buf.WriteString("      <guid isPermaLink=\"false\">")
	buf.WriteString(xmlEscaper.Replace(item.ID))
	buf.WriteString("</guid>\n")

	g.writeTag(buf, "category", item.Category, 6)

	buf.WriteString("    </item>\n")
}

func (g *Generator) describe(item Item) string {
	var b strings.Builder
	b.WriteString(`<img src="`)
	b.WriteString(item.ImageURL)
	b.WriteString(`" alt="`)
	b.WriteString(item.Title)
	b.WriteString(`" /><br/>`)
	b.WriteString(item.Description)
	b.WriteString("<br/><p>Ends: ")
	b.WriteString(item.EndsAt.In(g.loc).Format(endsLayout))
	b.WriteString("</p>")
	return b.String()
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}
	g.writeTag(buf, tag, content, indent)
}

// writeTag writes the element even when content is empty.
func (g *Generator) writeTag(buf *bytes.Buffer, tag, content string, indent int) {
	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	buf.WriteString(xmlEscaper.Replace(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
