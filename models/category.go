package models

import (
	"fmt"
	"strings"
)

// Category selects which normalizer runs and which sheets are produced.
type Category string

const (
	CategoryURLs           Category = "extract-urls"
	CategoryLinks          Category = "link-details"
	CategoryImages         Category = "image-details"
	CategoryVideos         Category = "video-details"
	CategoryPageProperties Category = "page-properties"
	CategoryHeadings       Category = "heading-hierarchy"
	CategoryAll            Category = "all-details"
)

var categories = []Category{
	CategoryURLs,
	CategoryLinks,
	CategoryImages,
	CategoryVideos,
	CategoryPageProperties,
	CategoryHeadings,
	CategoryAll,
}

// Categories returns every category in menu order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, k := range categories {
		if k == c {
			return true
		}
	}
	return false
}

// ParseCategory validates a category name. Surrounding whitespace and case
// are ignored.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", NewPipelineError(ErrCodeInvalidInput, fmt.Sprintf("unknown category %q", s), nil)
	}
	return c, nil
}

// Severity is the health tag derived from a link's status code.
type Severity string

const (
	SeveritySuccess     Severity = "success"
	SeverityRedirect    Severity = "redirect"
	SeverityClientError Severity = "client-error"
	SeverityServerError Severity = "server-error"
	SeverityUnknown     Severity = "unknown"
)
