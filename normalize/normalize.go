// Package normalize turns a loosely-typed scrape payload into uniform row
// collections, one transform per category.
//
// Every function here is pure: the same payload and category always produce
// the same rows, nothing is cached, and missing or mis-shaped fields resolve
// to literal defaults instead of errors. Markup in linkText, alt and heading
// text is passed through verbatim; escaping is the renderer's job.
package normalize

import (
	"strings"

	"github.com/use-agent/scrapesheet/models"
)

const (
	defaultMetaName    = "Unknown"
	defaultMetaContent = "N/A"
	listSeparator      = ", "
)

// Normalize runs the normalizer for category against raw. It fails with a
// MALFORMED_INPUT error when raw is nil and with INVALID_INPUT for an
// unknown category; all other input problems are absorbed by defaults.
func Normalize(raw *models.RawScrapeResult, category models.Category) (*models.Result, error) {
	if raw == nil {
		return nil, models.NewPipelineError(models.ErrCodeMalformedInput, "could not interpret fetched data: no payload", nil)
	}

	res := &models.Result{Category: category}
	switch category {
	case models.CategoryURLs:
		res.URLs = URLs(raw)
	case models.CategoryLinks:
		res.Links = Links(raw)
	case models.CategoryImages:
		res.Images = Images(raw)
	case models.CategoryVideos:
		res.Videos = Videos(raw)
	case models.CategoryPageProperties:
		res.PageProperties = PageProperties(raw)
	case models.CategoryHeadings:
		res.Headings = Headings(raw)
	case models.CategoryAll:
		res.Bundle = All(raw)
	default:
		return nil, models.NewPipelineError(models.ErrCodeInvalidInput, "unknown category "+string(category), nil)
	}
	return res, nil
}

// NormalizeJSON parses data as a scrape payload and normalizes it.
func NormalizeJSON(data []byte, category models.Category) (*models.Result, error) {
	raw, err := models.ParseRawScrapeResult(data)
	if err != nil {
		return nil, err
	}
	return Normalize(raw, category)
}

// URLs normalizes the "urls" field.
func URLs(raw *models.RawScrapeResult) []models.URLRow {
	rows := make([]models.URLRow, len(raw.URLs))
	for i, u := range raw.URLs {
		rows[i] = models.URLRow{RowID: i, URL: u}
	}
	return rows
}

// Links normalizes the "links" field and classifies each status code.
func Links(raw *models.RawScrapeResult) []models.LinkRow {
	rows := make([]models.LinkRow, len(raw.Links))
	for i, l := range raw.Links {
		status := l.StatusCode.Ptr()
		rows[i] = models.LinkRow{
			RowID:         i,
			LinkType:      l.LinkType.String(),
			LinkText:      l.LinkText.String(),
			AriaLabel:     l.AriaLabel.String(),
			URL:           l.URL.String(),
			RedirectedURL: l.RedirectedURL.String(),
			StatusCode:    status,
			Severity:      Classify(status),
			Target:        l.Target.String(),
		}
	}
	return rows
}

// Images keeps only images with a non-empty name. RowIDs are assigned after
// filtering so they stay contiguous.
func Images(raw *models.RawScrapeResult) []models.ImageRow {
	rows := make([]models.ImageRow, 0, len(raw.Images))
	for _, img := range raw.Images {
		name := img.ImageName.Or("")
		if name == "" {
			continue
		}
		rows = append(rows, models.ImageRow{
			RowID:     len(rows),
			ImageName: name,
			Alt:       img.Alt.String(),
		})
	}
	return rows
}

// Videos normalizes "videoDetails", joining transcript and caption lines.
func Videos(raw *models.RawScrapeResult) []models.VideoRow {
	rows := make([]models.VideoRow, len(raw.VideoDetails))
	for i, v := range raw.VideoDetails {
		rows[i] = models.VideoRow{
			RowID:      i,
			Transcript: strings.Join(v.Transcript, listSeparator),
			CC:         strings.Join(v.CC, listSeparator),
			Autoplay:   v.Autoplay.Value,
			Muted:      v.Muted.Value,
			AriaLabel:  v.AriaLabel.String(),
			AudioTrack: v.AudioTrack.Value,
		}
	}
	return rows
}

// PageProperties normalizes meta tags. "metaTags" wins over
// "pageProperties" when both are arrays. A name falls back to the
// "property" alias and then to "Unknown"; content falls back to "N/A".
// Empty strings count as missing.
func PageProperties(raw *models.RawScrapeResult) []models.PagePropertyRow {
	var entries []models.RawMetaEntry
	switch {
	case raw.MetaTags.Present:
		entries = raw.MetaTags.Entries
	case raw.PageProperties.Present:
		entries = raw.PageProperties.Entries
	}

	rows := make([]models.PagePropertyRow, len(entries))
	for i, m := range entries {
		rows[i] = models.PagePropertyRow{
			RowID:   i,
			Name:    m.Name.Or(m.Property.Or(defaultMetaName)),
			Content: m.Content.Or(defaultMetaContent),
		}
	}
	return rows
}

// Headings flattens "headingHierarchy".
func Headings(raw *models.RawScrapeResult) []models.HeadingRow {
	return Flatten(raw.HeadingHierarchy)
}

// All runs every category against the same payload. Each category reads its
// own field, so one mis-shaped field never affects the others.
func All(raw *models.RawScrapeResult) *models.AllDetailsBundle {
	return &models.AllDetailsBundle{
		URLs:           URLs(raw),
		Links:          Links(raw),
		Images:         Images(raw),
		Videos:         Videos(raw),
		PageProperties: PageProperties(raw),
		Headings:       Headings(raw),
		UHFHeader:      raw.UHFHeader.String(),
		UHFFooter:      raw.UHFFooter.String(),
	}
}
