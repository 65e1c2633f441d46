package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "Scrapesheet API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per payload for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Synthetic payload shapes covering wide tables and deep heading trees.
var payloads = []struct {
	Label    string
	Links    int
	Images   int
	Headings int
	Depth    int
}{
	{"Small", 20, 10, 10, 2},
	{"Medium", 500, 200, 100, 4},
	{"Large", 5000, 2000, 1000, 6},
	{"Deep", 50, 20, 2000, 2000},
}

// --- Request / Response types (mirrors models package) ---

type normalizeResponse struct {
	Success  bool         `json:"success"`
	BundleID string       `json:"bundle_id"`
	Total    int          `json:"total"`
	Timing   timingInfo   `json:"timing"`
	Error    *errorDetail `json:"error,omitempty"`
}

type timingInfo struct {
	TotalMs     int64 `json:"total_ms"`
	NormalizeMs int64 `json:"normalize_ms"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Benchmark result types ---

type runResult struct {
	Run           int    `json:"run"`
	NormalizeMs   int64  `json:"normalize_ms"`
	RoundTripMs   int64  `json:"round_trip_ms"`
	ExportMs      int64  `json:"export_ms"`
	Rows          int    `json:"rows"`
	WorkbookBytes int    `json:"workbook_bytes"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

type payloadAverages struct {
	NormalizeMs   float64 `json:"normalize_ms"`
	RoundTripMs   float64 `json:"round_trip_ms"`
	ExportMs      float64 `json:"export_ms"`
	WorkbookBytes float64 `json:"workbook_bytes"`
}

type payloadResult struct {
	Label        string           `json:"label"`
	PayloadBytes int              `json:"payload_bytes"`
	Runs         []runResult      `json:"runs"`
	Averages     *payloadAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp      string          `json:"timestamp"`
	APIURL         string          `json:"api_url"`
	RunsPerPayload int             `json:"runs_per_payload"`
	Results        []payloadResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== Scrapesheet Benchmark Suite ===")
	fmt.Printf("API URL:      %s\n", *apiURL)
	fmt.Printf("Runs/payload: %d\n", *runs)
	fmt.Printf("Output:       %s\n", *output)
	fmt.Println()

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		APIURL:         *apiURL,
		RunsPerPayload: *runs,
	}

	client := &http.Client{Timeout: 120 * time.Second}
	for _, p := range payloads {
		body := buildPayload(p.Links, p.Images, p.Headings, p.Depth)
		fmt.Printf("Benchmarking [%s] %s payload ...\n", p.Label, formatInt(len(body)))
		pr := payloadResult{Label: p.Label, PayloadBytes: len(body)}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkPayload(client, body, i)
			if rr.Success {
				fmt.Printf("OK  normalize %dms  export %dms\n", rr.NormalizeMs, rr.ExportMs)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			pr.Runs = append(pr.Runs, rr)
		}

		pr.Averages = computeAverages(pr.Runs)
		report.Results = append(report.Results, pr)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// buildPayload generates a raw scrape payload. Headings form depth-long
// chains until the requested count is reached.
func buildPayload(nLinks, nImages, nHeadings, depth int) []byte {
	statuses := []int{200, 301, 404, 500}
	links := make([]map[string]any, nLinks)
	for i := range links {
		links[i] = map[string]any{
			"linkType":   "nav",
			"linkText":   fmt.Sprintf("<span>Link %d</span>", i),
			"url":        fmt.Sprintf("/page/%d", i),
			"statusCode": statuses[i%len(statuses)],
		}
	}
	images := make([]map[string]any, nImages)
	for i := range images {
		images[i] = map[string]any{"imageName": fmt.Sprintf("img-%d.png", i), "alt": "alt"}
	}

	var forest []any
	for made := 0; made < nHeadings; {
		var chain map[string]any
		for d := depth; d >= 1 && made < nHeadings; d-- {
			node := map[string]any{"level": d, "text": fmt.Sprintf("Heading %d", made), "children": []any{}}
			if chain != nil {
				node["children"] = []any{chain}
			}
			chain = node
			made++
		}
		forest = append(forest, chain)
	}

	data, _ := json.Marshal(map[string]any{
		"urls":             []string{"https://example.com/"},
		"links":            links,
		"images":           images,
		"metaTags":         []map[string]string{{"name": "description", "content": "benchmark"}},
		"headingHierarchy": forest,
	})
	return data
}

func post(client *http.Client, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, *apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}
	return client.Do(req)
}

func benchmarkPayload(client *http.Client, body []byte, run int) runResult {
	rr := runResult{Run: run}

	start := time.Now()
	resp, err := post(client, "/api/v1/normalize", body)
	if err != nil {
		rr.Error = fmt.Sprintf("normalize request failed: %v", err)
		return rr
	}
	var nr normalizeResponse
	err = json.NewDecoder(resp.Body).Decode(&nr)
	resp.Body.Close()
	rr.RoundTripMs = time.Since(start).Milliseconds()
	if err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}
	if !nr.Success {
		if nr.Error != nil {
			rr.Error = nr.Error.Message
		}
		return rr
	}
	rr.NormalizeMs = nr.Timing.NormalizeMs
	rr.Rows = nr.Total

	start = time.Now()
	resp, err = post(client, "/api/v1/export", body)
	if err != nil {
		rr.Error = fmt.Sprintf("export request failed: %v", err)
		return rr
	}
	n, err := io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	rr.ExportMs = time.Since(start).Milliseconds()
	if err != nil || resp.StatusCode != http.StatusOK {
		rr.Error = fmt.Sprintf("export failed: HTTP %d %v", resp.StatusCode, err)
		return rr
	}
	rr.WorkbookBytes = int(n)
	rr.Success = true
	return rr
}

func computeAverages(runs []runResult) *payloadAverages {
	var successCount int
	var avg payloadAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.NormalizeMs += float64(r.NormalizeMs)
		avg.RoundTripMs += float64(r.RoundTripMs)
		avg.ExportMs += float64(r.ExportMs)
		avg.WorkbookBytes += float64(r.WorkbookBytes)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.NormalizeMs /= n
	avg.RoundTripMs /= n
	avg.ExportMs /= n
	avg.WorkbookBytes /= n
	return &avg
}

func printTable(results []payloadResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Payload\tSize\tNormalize\tRound Trip\tExport\tWorkbook\n")
	fmt.Fprintf(w, "───────\t────\t─────────\t──────────\t──────\t────────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\t%s\tFAILED\t-\t-\t-\n", r.Label, formatInt(r.PayloadBytes))
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%dms\t%dms\t%dms\t%s\n",
			r.Label,
			formatInt(r.PayloadBytes),
			int64(r.Averages.NormalizeMs),
			int64(r.Averages.RoundTripMs),
			int64(r.Averages.ExportMs),
			formatInt(int(r.Averages.WorkbookBytes)),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func formatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
