package models

// URLRow is a normalized "extract-urls" row.
type URLRow struct {
	RowID int    `json:"rowId" yaml:"rowId"`
	URL   string `json:"url" yaml:"url"`
}

// LinkRow is a normalized "link-details" row. StatusCode is nil when the
// service did not report one; Severity is then SeverityUnknown.
type LinkRow struct {
	RowID         int      `json:"rowId" yaml:"rowId"`
	LinkType      string   `json:"linkType" yaml:"linkType"`
	LinkText      string   `json:"linkText" yaml:"linkText"`
	AriaLabel     string   `json:"ariaLabel" yaml:"ariaLabel"`
	URL           string   `json:"url" yaml:"url"`
	RedirectedURL string   `json:"redirectedUrl" yaml:"redirectedUrl"`
	StatusCode    *int     `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
	Severity      Severity `json:"severity" yaml:"severity"`
	Target        string   `json:"target" yaml:"target"`
}

// ImageRow is a normalized "image-details" row.
type ImageRow struct {
	RowID     int    `json:"rowId" yaml:"rowId"`
	ImageName string `json:"imageName" yaml:"imageName"`
	Alt       string `json:"alt" yaml:"alt"`
}

// VideoRow is a normalized "video-details" row. Transcript and CC are
// already joined into display strings.
type VideoRow struct {
	RowID      int    `json:"rowId" yaml:"rowId"`
	Transcript string `json:"transcript" yaml:"transcript"`
	CC         string `json:"cc" yaml:"cc"`
	Autoplay   bool   `json:"autoplay" yaml:"autoplay"`
	Muted      bool   `json:"muted" yaml:"muted"`
	AriaLabel  string `json:"ariaLabel" yaml:"ariaLabel"`
	AudioTrack bool   `json:"audioTrack" yaml:"audioTrack"`
}

// PagePropertyRow is a normalized "page-properties" row.
type PagePropertyRow struct {
	RowID   int    `json:"rowId" yaml:"rowId"`
	Name    string `json:"name" yaml:"name"`
	Content string `json:"content" yaml:"content"`
}

// HeadingRow is one flattened heading. Text carries two leading spaces per
// level of nesting.
type HeadingRow struct {
	RowID int    `json:"rowId" yaml:"rowId"`
	Level int    `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
}

// AllDetailsBundle is the "all-details" output: every category normalized
// from the same payload, plus the UHF markup passed through untouched.
type AllDetailsBundle struct {
	URLs           []URLRow          `json:"urls" yaml:"urls"`
	Links          []LinkRow         `json:"links" yaml:"links"`
	Images         []ImageRow        `json:"images" yaml:"images"`
	Videos         []VideoRow        `json:"videoDetails" yaml:"videoDetails"`
	PageProperties []PagePropertyRow `json:"pageProperties" yaml:"pageProperties"`
	Headings       []HeadingRow      `json:"headingHierarchy" yaml:"headingHierarchy"`
	UHFHeader      string            `json:"uhfHeader" yaml:"uhfHeader"`
	UHFFooter      string            `json:"uhfFooter" yaml:"uhfFooter"`
}

// Cells returns the exported cell values in column order. RowID is an
// ordering key and is never exported.
func (r URLRow) Cells() []any { return []any{r.URL} }

func (r LinkRow) Cells() []any {
	var status any = ""
	if r.StatusCode != nil {
		status = *r.StatusCode
	}
	return []any{r.LinkType, r.LinkText, r.AriaLabel, r.URL, r.RedirectedURL, status, string(r.Severity), r.Target}
}

func (r ImageRow) Cells() []any { return []any{r.ImageName, r.Alt} }

func (r VideoRow) Cells() []any {
	return []any{r.Transcript, r.CC, r.Autoplay, r.Muted, r.AriaLabel, r.AudioTrack}
}

func (r PagePropertyRow) Cells() []any { return []any{r.Name, r.Content} }

func (r HeadingRow) Cells() []any { return []any{r.Level, r.Text} }
