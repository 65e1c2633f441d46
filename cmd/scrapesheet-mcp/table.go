package main

import (
	"fmt"
	"strings"

	"github.com/use-agent/scrapesheet/models"
)

// bundleSections lists the all-details collections in display order with
// their JSON keys in the bundle.
var bundleSections = []struct {
	key      string
	title    string
	category models.Category
}{
	{"urls", "URLs", models.CategoryURLs},
	{"links", "Link Details", models.CategoryLinks},
	{"images", "Image Details", models.CategoryImages},
	{"videoDetails", "Video Details", models.CategoryVideos},
	{"pageProperties", "Page Properties", models.CategoryPageProperties},
	{"headingHierarchy", "Heading Hierarchy", models.CategoryHeadings},
}

// writeTable renders rows as a Markdown table using column titles as the
// header and column keys to pick cells.
func writeTable(sb *strings.Builder, cols []models.Column, rows []map[string]any) {
	if len(cols) == 0 {
		return
	}
	if len(rows) == 0 {
		sb.WriteString("_no rows_\n")
		return
	}

	sb.WriteString("|")
	for _, c := range cols {
		sb.WriteString(" " + c.Title + " |")
	}
	sb.WriteString("\n|")
	for range cols {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")

	for _, row := range rows {
		sb.WriteString("|")
		for _, c := range cols {
			sb.WriteString(" " + cell(row[c.Key]) + " |")
		}
		sb.WriteString("\n")
	}
}

func cell(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	case float64:
		s = fmt.Sprintf("%g", t)
	default:
		s = fmt.Sprint(t)
	}
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
