package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/use-agent/scrapesheet/cache"
	"github.com/use-agent/scrapesheet/config"
	"github.com/use-agent/scrapesheet/export"
	"github.com/use-agent/scrapesheet/models"
	"github.com/use-agent/scrapesheet/render"
	"github.com/use-agent/scrapesheet/upstream"
	"github.com/use-agent/scrapesheet/webhook"
)

const payload = `{
	"urls": ["https://a.example/"],
	"links": [
		{"linkType":"nav","linkText":"<b>Home</b>","url":"/","statusCode":200},
		{"linkType":"nav","linkText":"Gone","url":"/gone","statusCode":404}
	],
	"images": [{"imageName":"hero.png","alt":"<i>Hero</i>"},{"imageName":"","alt":"skip"}],
	"videoDetails": [{"transcript":["t1"],"cc":["en"],"autoplay":true}],
	"metaTags": [{"name":"description","content":"d"}],
	"headingHierarchy": [{"level":1,"text":"Top","children":[{"level":2,"text":"Sub","children":[]}]}]
}`

// apiResponse mirrors models.NormalizeResponse with rows left undecoded.
type apiResponse struct {
	Success  bool                     `json:"success"`
	Category string                   `json:"category"`
	Columns  []models.Column          `json:"columns"`
	Rows     json.RawMessage          `json:"rows"`
	Bundle   *models.AllDetailsBundle `json:"bundle"`
	BundleID string                   `json:"bundle_id"`
	Total    int                      `json:"total"`
	Error    *models.ErrorDetail      `json:"error"`
}

type env struct {
	engine *gin.Engine
	store  *cache.Store
}

func newEnv(t *testing.T, upstreamURL string) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := cache.New(100, time.Hour)
	t.Cleanup(store.Close)

	rd := render.New()
	client := upstream.NewClient(config.UpstreamConfig{BaseURL: upstreamURL, Timeout: 5 * time.Second}, nil)
	exportCfg := config.ExportConfig{IncludeSecondaryContent: true, HeaderStyle: "keys"}

	r := gin.New()
	r.GET("/api/v1/health", Health(store, time.Now()))
	r.POST("/api/v1/normalize", Normalize(rd, store, 1<<20))
	r.POST("/api/v1/fetch", Fetch(client, rd, store, 1<<20))
	r.GET("/api/v1/export/:id", ExportStored(store, exportCfg))
	r.POST("/api/v1/export", ExportInline(exportCfg, 1<<20))
	return &env{engine: r, store: store}
}

func (e *env) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	e := newEnv(t, "http://127.0.0.1:1")
	e.store.Put(&models.AllDetailsBundle{})

	w := e.do(t, http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var h models.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "healthy" || h.StoredBundles != 1 || h.Version != Version {
		t.Errorf("unexpected health %+v", h)
	}
}

func TestNormalize_SingleCategory(t *testing.T) {
	e := newEnv(t, "http://127.0.0.1:1")

	w := e.do(t, http.MethodPost, "/api/v1/normalize?category=link-details", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if !resp.Success || resp.Category != "link-details" || resp.Total != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.BundleID != "" || resp.Bundle != nil {
		t.Error("single category must not store a bundle")
	}
	if len(resp.Columns) == 0 || resp.Columns[0].Key != "linkType" {
		t.Errorf("columns = %+v", resp.Columns)
	}

	var rows []models.LinkRow
	if err := json.Unmarshal(resp.Rows, &rows); err != nil {
		t.Fatal(err)
	}
	if rows[0].LinkText != "<b>Home</b>" {
		t.Errorf("raw mode must keep markup, got %q", rows[0].LinkText)
	}
	if rows[1].Severity != models.SeverityClientError {
		t.Errorf("severity = %q", rows[1].Severity)
	}
}

func TestNormalize_MarkupModes(t *testing.T) {
	e := newEnv(t, "http://127.0.0.1:1")

	tests := []struct {
		mode string
		want string
	}{
		{"raw", "<i>Hero</i>"},
		{"escape", "&lt;i&gt;Hero&lt;/i&gt;"},
		{"text", "Hero"},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			w := e.do(t, http.MethodPost, "/api/v1/normalize?category=image-details&markup="+tt.mode, payload)
			resp := decode(t, w)
			var rows []models.ImageRow
			if err := json.Unmarshal(resp.Rows, &rows); err != nil {
				t.Fatal(err)
			}
			if len(rows) != 1 || rows[0].Alt != tt.want {
				t.Errorf("rows = %+v, want alt %q", rows, tt.want)
			}
		})
	}
}

func TestNormalize_AllDetailsStoresUnrenderedBundle(t *testing.T) {
	e := newEnv(t, "http://127.0.0.1:1")

	w := e.do(t, http.MethodPost, "/api/v1/normalize?markup=text", payload)
	resp := decode(t, w)
	if resp.Category != string(models.CategoryAll) || resp.Bundle == nil || resp.BundleID == "" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Bundle.Links[0].LinkText != "Home" {
		t.Errorf("response should be rendered, got %q", resp.Bundle.Links[0].LinkText)
	}

	stored, err := e.store.Get(resp.BundleID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Links[0].LinkText != "<b>Home</b>" {
		t.Errorf("stored bundle must stay unrendered, got %q", stored.Links[0].LinkText)
	}
}

func TestNormalize_Errors(t *testing.T) {
	e := newEnv(t, "http://127.0.0.1:1")

	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
	}{
		{"unknown category", "/api/v1/normalize?category=nope", payload, http.StatusBadRequest, models.ErrCodeInvalidInput},
		{"unknown markup", "/api/v1/normalize?markup=pdf", payload, http.StatusBadRequest, models.ErrCodeInvalidInput},
		{"array payload", "/api/v1/normalize", `[1]`, http.StatusUnprocessableEntity, models.ErrCodeMalformedInput},
		{"empty payload", "/api/v1/normalize", "", http.StatusUnprocessableEntity, models.ErrCodeMalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, http.MethodPost, tt.target, tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			resp := decode(t, w)
			if resp.Success || resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("unexpected body %s", w.Body.String())
			}
		})
	}
}

func TestNormalize_BodyTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := cache.New(1, time.Hour)
	defer store.Close()

	r := gin.New()
	r.POST("/n", Normalize(render.New(), store, 16))
	req := httptest.NewRequest(http.MethodPost, "/n", strings.NewReader(payload))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestExport_StoredBundle(t *testing.T) {
	e := newEnv(t, "http://127.0.0.1:1")
	resp := decode(t, e.do(t, http.MethodPost, "/api/v1/normalize", payload))

	w := e.do(t, http.MethodGet, "/api/v1/export/"+resp.BundleID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != export.ContentType {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, export.DefaultFilename) {
		t.Errorf("content disposition = %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if got := f.GetSheetList(); len(got) != 5 {
		t.Errorf("sheets = %v", got)
	}
}

func TestExport_PrimaryOnly(t *testing.T) {
	e := newEnv(t, "http://127.0.0.1:1")

	w := e.do(t, http.MethodPost, "/api/v1/export?include_secondary=false", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	want := []string{export.SheetLinks, export.SheetImages, export.SheetHeadings}
	got := f.GetSheetList()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("sheets = %v, want %v", got, want)
	}
}

func TestExport_Errors(t *testing.T) {
	e := newEnv(t, "http://127.0.0.1:1")

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   string
	}{
		{"unknown id", http.MethodGet, "/api/v1/export/bundle-missing", "", http.StatusNotFound, models.ErrCodeNoData},
		{"empty body", http.MethodPost, "/api/v1/export", "", http.StatusNotFound, models.ErrCodeNoData},
		{"bad flag", http.MethodPost, "/api/v1/export?include_secondary=maybe", payload, http.StatusBadRequest, models.ErrCodeInvalidInput},
		{"malformed", http.MethodPost, "/api/v1/export", `"text"`, http.StatusUnprocessableEntity, models.ErrCodeMalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, tt.method, tt.target, tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if resp := decode(t, w); resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("unexpected body %s", w.Body.String())
			}
		})
	}
}

func TestFetch(t *testing.T) {
	var gotPath string
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(payload))
	}))
	defer up.Close()

	hooks := make(chan webhook.Event, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev webhook.Event
		_ = json.NewDecoder(r.Body).Decode(&ev)
		hooks <- ev
	}))
	defer hook.Close()

	e := newEnv(t, up.URL)
	body := `{"url":"https://example.com","category":"heading-hierarchy","webhook_url":"` + hook.URL + `"}`
	w := e.do(t, http.MethodPost, "/api/v1/fetch", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if gotPath != "/heading-hierarchy" {
		t.Errorf("upstream path = %q", gotPath)
	}

	resp := decode(t, w)
	var rows []models.HeadingRow
	if err := json.Unmarshal(resp.Rows, &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1].Text != "  Sub" {
		t.Errorf("rows = %+v", rows)
	}

	select {
	case ev := <-hooks:
		if ev.Type != webhook.EventFetchCompleted || ev.URL != "https://example.com" {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("webhook not delivered")
	}
}

func TestFetch_Errors(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer up.Close()
	e := newEnv(t, up.URL)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing url", `{}`, http.StatusBadRequest, models.ErrCodeInvalidInput},
		{"bad markup", `{"url":"https://x.example","markup":"pdf"}`, http.StatusBadRequest, models.ErrCodeInvalidInput},
		{"bad category", `{"url":"https://x.example","category":"nope"}`, http.StatusBadRequest, models.ErrCodeInvalidInput},
		{"upstream failure", `{"url":"https://x.example"}`, http.StatusBadGateway, models.ErrCodeUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, http.MethodPost, "/api/v1/fetch", tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if resp := decode(t, w); resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("unexpected body %s", w.Body.String())
			}
		})
	}
}

func TestFetch_BodyTooLarge(t *testing.T) {
	var called bool
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, _ = io.WriteString(w, payload)
	}))
	defer up.Close()

	gin.SetMode(gin.TestMode)
	store := cache.New(10, time.Minute)
	t.Cleanup(store.Close)
	r := gin.New()
	r.POST("/fetch", Fetch(upstream.NewClient(config.UpstreamConfig{BaseURL: up.URL}, nil), render.New(), store, 64))

	body := `{"url":"https://x.example","category":"` + strings.Repeat("a", 100) + `"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/fetch", strings.NewReader(body)))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	resp := decode(t, w)
	if resp.Error == nil || resp.Error.Code != models.ErrCodeInvalidInput || !strings.Contains(resp.Error.Message, "exceeds 64 bytes") {
		t.Errorf("unexpected body %s", w.Body.String())
	}
	if called {
		t.Error("oversized request must not reach upstream")
	}
}
