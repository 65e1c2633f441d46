package models

import (
	"errors"
	"testing"
)

func TestParseRawScrapeResult_RejectsNonObjects(t *testing.T) {
	for _, in := range []string{"", "   ", "null", "[]", `"page"`, "42", "{broken"} {
		if _, err := ParseRawScrapeResult([]byte(in)); !errors.Is(err, ErrMalformedInput) {
			t.Errorf("%q: want ErrMalformedInput, got %v", in, err)
		}
	}
}

func TestParseRawScrapeResult_WrongShapesDegrade(t *testing.T) {
	raw, err := ParseRawScrapeResult([]byte(`{
		"urls": ["a", 1, null, "b"],
		"links": [{"url":"/x","statusCode":"404"}, "oops", null, {"statusCode":301.5}],
		"images": {"imageName":"not-a-list"},
		"videoDetails": [{"transcript":"solo","autoplay":"yes","muted":true}],
		"metaTags": "nope",
		"pageProperties": [{"property":"og:type"}],
		"headingHierarchy": [{"level":1,"text":"A","children":"bad"}, 7, {"level":"2","text":3}],
		"uhfHeader": null
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	// Numbers keep their literal text; null and non-scalars are skipped.
	if len(raw.URLs) != 3 || raw.URLs[0] != "a" || raw.URLs[1] != "1" || raw.URLs[2] != "b" {
		t.Errorf("urls = %v", raw.URLs)
	}

	if len(raw.Links) != 4 {
		t.Fatalf("links keep positions, got %d", len(raw.Links))
	}
	if p := raw.Links[0].StatusCode.Ptr(); p == nil || *p != 404 {
		t.Errorf("numeric string status = %v", p)
	}
	if raw.Links[1].URL.Set || raw.Links[2].URL.Set {
		t.Error("non-object links should be zero records")
	}
	if raw.Links[3].StatusCode.Set {
		t.Error("fractional status should stay unset")
	}

	if len(raw.Images) != 0 {
		t.Errorf("non-array images = %v", raw.Images)
	}

	v := raw.VideoDetails[0]
	if len(v.Transcript) != 0 || v.Autoplay.Set || !v.Muted.Value {
		t.Errorf("video = %+v", v)
	}

	if raw.MetaTags.Present {
		t.Error("non-array metaTags must not count as present")
	}
	if !raw.PageProperties.Present || raw.PageProperties.Entries[0].Property.String() != "og:type" {
		t.Errorf("pageProperties = %+v", raw.PageProperties)
	}

	if len(raw.HeadingHierarchy) != 2 {
		t.Fatalf("headings = %+v", raw.HeadingHierarchy)
	}
	if len(raw.HeadingHierarchy[0].Children) != 0 {
		t.Error("bad children should decode as empty")
	}
	second := raw.HeadingHierarchy[1]
	if second.Level.Value != 2 || second.Text.String() != "3" {
		t.Errorf("second heading = %+v", second)
	}

	if raw.UHFHeader.Set {
		t.Error("null uhfHeader should be unset")
	}
}

func TestOptString_Or(t *testing.T) {
	tests := []struct {
		in   OptString
		want string
	}{
		{OptString{}, "fb"},
		{OptString{Value: "", Set: true}, "fb"},
		{OptString{Value: "v", Set: true}, "v"},
	}
	for _, tt := range tests {
		if got := tt.in.Or("fb"); got != tt.want {
			t.Errorf("%+v.Or = %q, want %q", tt.in, got, tt.want)
		}
	}
}
