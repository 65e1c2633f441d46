package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawScrapeResult is the loosely-typed payload returned by the remote scrape
// service. Every field is optional and may be absent, null or wrongly shaped;
// decoding never fails on a field, it only leaves the field unset.
type RawScrapeResult struct {
	URLs             StringList    `json:"urls"`
	Links            RawLinks      `json:"links"`
	Images           RawImages     `json:"images"`
	VideoDetails     RawVideos     `json:"videoDetails"`
	MetaTags         RawMetaList   `json:"metaTags"`
	PageProperties   RawMetaList   `json:"pageProperties"`
	HeadingHierarchy HeadingForest `json:"headingHierarchy"`
	UHFHeader        OptString     `json:"uhfHeader"`
	UHFFooter        OptString     `json:"uhfFooter"`
}

// RawLink is one entry of the "links" field.
type RawLink struct {
	LinkType      OptString `json:"linkType"`
	LinkText      OptString `json:"linkText"`
	AriaLabel     OptString `json:"ariaLabel"`
	URL           OptString `json:"url"`
	RedirectedURL OptString `json:"redirectedUrl"`
	StatusCode    OptInt    `json:"statusCode"`
	Target        OptString `json:"target"`
}

// RawImage is one entry of the "images" field.
type RawImage struct {
	ImageName OptString `json:"imageName"`
	Alt       OptString `json:"alt"`
}

// RawVideo is one entry of the "videoDetails" field.
type RawVideo struct {
	Transcript StringList `json:"transcript"`
	CC         StringList `json:"cc"`
	Autoplay   OptBool    `json:"autoplay"`
	Muted      OptBool    `json:"muted"`
	AriaLabel  OptString  `json:"ariaLabel"`
	AudioTrack OptBool    `json:"audioTrack"`
}

// RawMetaEntry is one meta tag. Older service versions send "property"
// instead of "name".
type RawMetaEntry struct {
	Name     OptString `json:"name"`
	Property OptString `json:"property"`
	Content  OptString `json:"content"`
}

// HeadingNode is one heading with its nested sub-headings.
type HeadingNode struct {
	Level    OptInt        `json:"level"`
	Text     OptString     `json:"text"`
	Children HeadingForest `json:"children"`
}

// ParseRawScrapeResult decodes a scrape payload. It fails only when data is
// not a JSON object; every field-level problem degrades to an unset field.
func ParseRawScrapeResult(data []byte) (*RawScrapeResult, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, NewPipelineError(ErrCodeMalformedInput, "could not interpret fetched data: payload is not a JSON object", nil)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, NewPipelineError(ErrCodeMalformedInput, "could not interpret fetched data", err)
	}

	var raw RawScrapeResult
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, NewPipelineError(ErrCodeMalformedInput, "could not interpret fetched data", err)
	}
	return &raw, nil
}

// --- lenient scalar types ---

// OptString is a string that may be absent. JSON numbers and booleans are
// kept as their literal text; anything else leaves it unset.
type OptString struct {
	Value string
	Set   bool
}

// String returns the value, or "" when unset.
func (s OptString) String() string { return s.Value }

// Or returns the value when it is set and non-empty, otherwise fallback.
func (s OptString) Or(fallback string) string {
	if s.Set && s.Value != "" {
		return s.Value
	}
	return fallback
}

func (s *OptString) UnmarshalJSON(b []byte) error {
	*s = OptString{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var v string
		if json.Unmarshal(b, &v) == nil {
			*s = OptString{Value: v, Set: true}
		}
	case 't', 'f':
		var v bool
		if json.Unmarshal(b, &v) == nil {
			*s = OptString{Value: strconv.FormatBool(v), Set: true}
		}
	case 'n', '[', '{':
	default:
		var n json.Number
		if json.Unmarshal(b, &n) == nil {
			*s = OptString{Value: n.String(), Set: true}
		}
	}
	return nil
}

func (s OptString) MarshalJSON() ([]byte, error) {
	if !s.Set {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// OptInt is an integer that may be absent. Integral JSON numbers and numeric
// strings are accepted.
type OptInt struct {
	Value int
	Set   bool
}

// Ptr returns a pointer to the value, or nil when unset.
func (i OptInt) Ptr() *int {
	if !i.Set {
		return nil
	}
	v := i.Value
	return &v
}

func (i *OptInt) UnmarshalJSON(b []byte) error {
	*i = OptInt{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	text := string(b)
	if b[0] == '"' {
		var s string
		if json.Unmarshal(b, &s) != nil {
			return nil
		}
		text = strings.TrimSpace(s)
	}
	if n, err := strconv.Atoi(text); err == nil {
		*i = OptInt{Value: n, Set: true}
		return nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32 {
		*i = OptInt{Value: int(f), Set: true}
	}
	return nil
}

func (i OptInt) MarshalJSON() ([]byte, error) {
	if !i.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(i.Value)), nil
}

// OptBool is a boolean that may be absent.
type OptBool struct {
	Value bool
	Set   bool
}

func (v *OptBool) UnmarshalJSON(b []byte) error {
	*v = OptBool{}
	var x bool
	if json.Unmarshal(b, &x) == nil && !bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*v = OptBool{Value: x, Set: true}
	}
	return nil
}

func (v OptBool) MarshalJSON() ([]byte, error) {
	if !v.Set {
		return []byte("null"), nil
	}
	return json.Marshal(v.Value)
}

// --- lenient sequences ---

// StringList keeps the scalar elements of a JSON array as text. A non-array value
// decodes to an empty list.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	items := decodeList[OptString](b)
	out := make(StringList, 0, len(items))
	for _, it := range items {
		if it.Set {
			out = append(out, it.Value)
		}
	}
	*l = out
	return nil
}

// RawLinks is the "links" sequence.
type RawLinks []RawLink

func (l *RawLinks) UnmarshalJSON(b []byte) error {
	*l = decodeList[RawLink](b)
	return nil
}

// RawImages is the "images" sequence.
type RawImages []RawImage

func (l *RawImages) UnmarshalJSON(b []byte) error {
	*l = decodeList[RawImage](b)
	return nil
}

// RawVideos is the "videoDetails" sequence.
type RawVideos []RawVideo

func (l *RawVideos) UnmarshalJSON(b []byte) error {
	*l = decodeList[RawVideo](b)
	return nil
}

// RawMetaList is a meta tag sequence. Present reports whether the field
// held a JSON array, which decides the metaTags / pageProperties fallback.
type RawMetaList struct {
	Entries []RawMetaEntry
	Present bool
}

func (l *RawMetaList) UnmarshalJSON(b []byte) error {
	*l = RawMetaList{}
	if t := bytes.TrimSpace(b); len(t) > 0 && t[0] == '[' {
		*l = RawMetaList{Entries: decodeList[RawMetaEntry](b), Present: true}
	}
	return nil
}

func (l RawMetaList) MarshalJSON() ([]byte, error) {
	if !l.Present {
		return []byte("null"), nil
	}
	return json.Marshal(l.Entries)
}

// HeadingForest is an ordered sequence of heading trees. Elements that are
// not JSON objects are dropped since they have no place in the tree.
type HeadingForest []HeadingNode

func (f *HeadingForest) UnmarshalJSON(b []byte) error {
	var elems []json.RawMessage
	if json.Unmarshal(b, &elems) != nil {
		*f = HeadingForest{}
		return nil
	}
	out := make(HeadingForest, 0, len(elems))
	for _, e := range elems {
		if t := bytes.TrimSpace(e); len(t) == 0 || t[0] != '{' {
			continue
		}
		var n HeadingNode
		if json.Unmarshal(e, &n) == nil {
			out = append(out, n)
		}
	}
	*f = out
	return nil
}

// decodeList decodes a JSON array element by element. Elements that fail to
// decode become zero values so positions are preserved; a non-array input
// yields an empty slice.
func decodeList[T any](b []byte) []T {
	var elems []json.RawMessage
	if err := json.Unmarshal(b, &elems); err != nil {
		return []T{}
	}
	out := make([]T, len(elems))
	for i, e := range elems {
		var v T
		if err := json.Unmarshal(e, &v); err != nil {
			v = *new(T)
		}
		out[i] = v
	}
	return out
}
