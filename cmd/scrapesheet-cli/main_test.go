package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/use-agent/scrapesheet/export"
	"github.com/use-agent/scrapesheet/models"
)

const payload = `{
	"links": [{"linkType":"nav","linkText":"<b>Docs</b>","url":"/docs","statusCode":503}],
	"images": [{"imageName":"a.png","alt":"A"}],
	"videoDetails": [{"transcript":["x"],"cc":[],"autoplay":false}],
	"metaTags": [{"property":"og:title","content":"T"}],
	"headingHierarchy": [{"level":1,"text":"H","children":[{"level":2,"text":"S","children":[]}]}]
}`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.Reader = strings.NewReader(stdin)
	err := app.Run(append([]string{"scrapesheet", "--quiet"}, args...))
	return out.String(), err
}

func TestNormalizeCommand_YAML(t *testing.T) {
	out, err := run(t, payload, "normalize", "--category", "link-details", "--format", "yaml")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var rows []models.LinkRow
	if err := yaml.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("yaml: %v\n%s", err, out)
	}
	if len(rows) != 1 || rows[0].Severity != models.SeverityServerError || rows[0].LinkText != "<b>Docs</b>" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestNormalizeCommand_AllDetailsJSONFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.json")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "normalize", "--input", path, "--markup", "text")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var bundle models.AllDetailsBundle
	if err := json.Unmarshal([]byte(out), &bundle); err != nil {
		t.Fatalf("json: %v\n%s", err, out)
	}
	if bundle.Links[0].LinkText != "Docs" {
		t.Errorf("linkText = %q", bundle.Links[0].LinkText)
	}
	if len(bundle.Headings) != 2 || bundle.Headings[1].Text != "  S" {
		t.Errorf("headings = %+v", bundle.Headings)
	}
	if bundle.PageProperties[0].Name != "og:title" {
		t.Errorf("page properties = %+v", bundle.PageProperties)
	}
}

func TestNormalizeCommand_Errors(t *testing.T) {
	if _, err := run(t, payload, "normalize", "--category", "bogus"); !errors.Is(err, &models.PipelineError{Code: models.ErrCodeInvalidInput}) {
		t.Errorf("want INVALID_INPUT, got %v", err)
	}
	if _, err := run(t, "[]", "normalize"); !errors.Is(err, models.ErrMalformedInput) {
		t.Errorf("want MALFORMED_INPUT, got %v", err)
	}
	if _, err := run(t, payload, "normalize", "--format", "xml"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestExportCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if _, err := run(t, payload, "export", "--output", path, "--primary-only", "--header-titles"); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	want := []string{export.SheetLinks, export.SheetImages, export.SheetHeadings}
	if got := f.GetSheetList(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("sheets = %v", got)
	}
	rows, err := f.GetRows(export.SheetLinks)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0][0] != "Link Type" {
		t.Errorf("header = %v", rows[0])
	}
}

func TestExportCommand_EmptyInput(t *testing.T) {
	_, err := run(t, "  ", "export", "--output", filepath.Join(t.TempDir(), "x.xlsx"))
	if !errors.Is(err, models.ErrNoData) {
		t.Errorf("want NO_DATA, got %v", err)
	}
}

func TestFetchCommand(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/all-details" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(payload))
	}))
	defer ts.Close()

	xlsx := filepath.Join(t.TempDir(), "page.xlsx")
	out, err := run(t, "", "fetch", "--url", "https://example.com", "--upstream", ts.URL,
		"--category", "image-details", "--xlsx", xlsx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var rows []models.ImageRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("json: %v\n%s", err, out)
	}
	if len(rows) != 1 || rows[0].ImageName != "a.png" {
		t.Errorf("rows = %+v", rows)
	}
	if _, err := os.Stat(xlsx); err != nil {
		t.Errorf("workbook not written: %v", err)
	}
}

func TestFetchCommand_WorkbookHonoursExportConfig(t *testing.T) {
	t.Setenv("SCRAPESHEET_INCLUDE_SECONDARY", "false")
	t.Setenv("SCRAPESHEET_HEADER_STYLE", "titles")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer ts.Close()

	xlsx := filepath.Join(t.TempDir(), "page.xlsx")
	if _, err := run(t, "", "fetch", "--url", "https://example.com", "--upstream", ts.URL, "--xlsx", xlsx); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := excelize.OpenFile(xlsx)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	want := []string{export.SheetLinks, export.SheetImages, export.SheetHeadings}
	if got := f.GetSheetList(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("sheets = %v, want %v", got, want)
	}
	rows, err := f.GetRows(export.SheetImages)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0][0] != "Image Name" {
		t.Errorf("header = %v", rows[0])
	}
}

func TestFetchCommand_RequiresURL(t *testing.T) {
	if _, err := run(t, "", "fetch"); err == nil {
		t.Error("missing --url should fail")
	}
}
