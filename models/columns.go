package models

// Column describes one column of a category's table. Key is the row field
// name; Title is the human-facing heading.
type Column struct {
	Key   string `json:"key" yaml:"key"`
	Title string `json:"title" yaml:"title"`
}

var columnsByCategory = map[Category][]Column{
	CategoryURLs: {
		{Key: "url", Title: "URL"},
	},
	CategoryLinks: {
		{Key: "linkType", Title: "Link Type"},
		{Key: "linkText", Title: "Link Text"},
		{Key: "ariaLabel", Title: "ARIA Label"},
		{Key: "url", Title: "URL"},
		{Key: "redirectedUrl", Title: "Redirected URL"},
		{Key: "statusCode", Title: "Status Code"},
		{Key: "severity", Title: "Severity"},
		{Key: "target", Title: "Target"},
	},
	CategoryImages: {
		{Key: "imageName", Title: "Image Name"},
		{Key: "alt", Title: "Alt Text"},
	},
	CategoryVideos: {
		{Key: "transcript", Title: "Transcript"},
		{Key: "cc", Title: "CC"},
		{Key: "autoplay", Title: "Autoplay"},
		{Key: "muted", Title: "Muted"},
		{Key: "ariaLabel", Title: "ARIA Label"},
		{Key: "audioTrack", Title: "Audio Track Present"},
	},
	CategoryPageProperties: {
		{Key: "name", Title: "Name"},
		{Key: "content", Title: "Content"},
	},
	CategoryHeadings: {
		{Key: "level", Title: "Level"},
		{Key: "text", Title: "Text"},
	},
}

// Columns returns the ordered columns for a single-table category, matching
// the order of the row type's Cells. It returns nil for CategoryAll.
func Columns(c Category) []Column {
	cols, ok := columnsByCategory[c]
	if !ok {
		return nil
	}
	out := make([]Column, len(cols))
	copy(out, cols)
	return out
}
