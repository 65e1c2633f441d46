// Package render prepares normalized rows for a display surface.
//
// Normalization passes linkText and alt through verbatim, markup included.
// Only ModeEscape output may be injected into HTML. ModeText decodes
// entities, so "&lt;b&gt;" comes back as "<b>"; it and ModeRaw are for
// consumers that treat values as plain text.
package render

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/use-agent/scrapesheet/models"
)

// Mode selects how markup-bearing fields are rendered.
type Mode string

const (
	ModeRaw      Mode = "raw"      // verbatim
	ModeEscape   Mode = "escape"   // HTML-escaped, safe to inject as markup
	ModeText     Mode = "text"     // tags stripped, entities decoded; plain text, not markup-safe
	ModeMarkdown Mode = "markdown" // converted to inline Markdown
)

// ParseMode validates a mode name. Empty selects ModeRaw.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeRaw, nil
	case ModeRaw, ModeEscape, ModeText, ModeMarkdown:
		return m, nil
	default:
		return "", models.NewPipelineError(models.ErrCodeInvalidInput, fmt.Sprintf("unknown markup mode %q", s), nil)
	}
}

// Renderer applies a Mode to normalized results. The converter is created
// once and is safe for concurrent use.
type Renderer struct {
	mdConverter *converter.Converter
}

// New creates a Renderer with a Markdown converter limited to the base and
// commonmark plugins; link text and alt attributes never contain tables.
func New() *Renderer {
	return &Renderer{
		mdConverter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

// Field renders a single markup-bearing value.
func (r *Renderer) Field(value string, mode Mode) string {
	if value == "" {
		return value
	}
	switch mode {
	case ModeEscape:
		return html.EscapeString(value)
	case ModeText:
		return stripTags(value)
	case ModeMarkdown:
		md, err := r.mdConverter.ConvertString(value)
		if err != nil {
			slog.Debug("render: markdown conversion failed, falling back to text", "error", err)
			return stripTags(value)
		}
		return strings.TrimSpace(md)
	default:
		return value
	}
}

// Result returns a copy of res with linkText and alt rendered in mode. The
// input is never modified. ModeRaw returns res itself.
func (r *Renderer) Result(res *models.Result, mode Mode) *models.Result {
	if res == nil || mode == ModeRaw || mode == "" {
		return res
	}
	out := *res
	out.Links = r.links(res.Links, mode)
	out.Images = r.images(res.Images, mode)
	if res.Bundle != nil {
		b := *res.Bundle
		b.Links = r.links(res.Bundle.Links, mode)
		b.Images = r.images(res.Bundle.Images, mode)
		out.Bundle = &b
	}
	return &out
}

func (r *Renderer) links(in []models.LinkRow, mode Mode) []models.LinkRow {
	if in == nil {
		return nil
	}
	out := make([]models.LinkRow, len(in))
	for i, l := range in {
		l.LinkText = r.Field(l.LinkText, mode)
		out[i] = l
	}
	return out
}

func (r *Renderer) images(in []models.ImageRow, mode Mode) []models.ImageRow {
	if in == nil {
		return nil
	}
	out := make([]models.ImageRow, len(in))
	for i, img := range in {
		img.Alt = r.Field(img.Alt, mode)
		out[i] = img
	}
	return out
}

// hidden matches elements whose text is never displayed.
var hidden = cascadia.MustCompile("script, style, noscript, template")

// stripTags extracts visible text from an HTML fragment by parsing it with
// goquery. Returns trimmed plain text.
func stripTags(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	doc.FindMatcher(hidden).Remove()
	return strings.TrimSpace(doc.Text())
}
