package models

// Result is the output of normalizing one category. Exactly one of the
// collection fields is populated, chosen by Category; for CategoryAll only
// Bundle is set. Callers switch on Category before reading.
type Result struct {
	Category       Category
	URLs           []URLRow
	Links          []LinkRow
	Images         []ImageRow
	Videos         []VideoRow
	PageProperties []PagePropertyRow
	Headings       []HeadingRow
	Bundle         *AllDetailsBundle
}

// IsBundle reports whether the result holds an all-details bundle rather
// than a single row collection.
func (r *Result) IsBundle() bool {
	return r.Category == CategoryAll
}

// Rows returns the active row collection for single-table categories and
// nil for CategoryAll.
func (r *Result) Rows() any {
	switch r.Category {
	case CategoryURLs:
		return r.URLs
	case CategoryLinks:
		return r.Links
	case CategoryImages:
		return r.Images
	case CategoryVideos:
		return r.Videos
	case CategoryPageProperties:
		return r.PageProperties
	case CategoryHeadings:
		return r.Headings
	default:
		return nil
	}
}

// Len returns the number of rows in the active collection, or the total
// across the bundle for CategoryAll.
func (r *Result) Len() int {
	if r.IsBundle() {
		if r.Bundle == nil {
			return 0
		}
		b := r.Bundle
		return len(b.URLs) + len(b.Links) + len(b.Images) + len(b.Videos) + len(b.PageProperties) + len(b.Headings)
	}
	switch r.Category {
	case CategoryURLs:
		return len(r.URLs)
	case CategoryLinks:
		return len(r.Links)
	case CategoryImages:
		return len(r.Images)
	case CategoryVideos:
		return len(r.Videos)
	case CategoryPageProperties:
		return len(r.PageProperties)
	case CategoryHeadings:
		return len(r.Headings)
	}
	return 0
}
