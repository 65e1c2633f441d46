package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/scrapesheet/models"
)

// fetchRequest mirrors the Scrapesheet /fetch request model.
type fetchRequest struct {
	URL      string `json:"url"`
	Category string `json:"category,omitempty"`
	OnlyUHF  bool   `json:"only_uhf"`
	Markup   string `json:"markup,omitempty"`
}

// fetchResponse mirrors the Scrapesheet /fetch response. Rows and bundle
// collections stay generic so tables can be built from column keys.
type fetchResponse struct {
	Success  bool                       `json:"success"`
	Category string                     `json:"category"`
	Columns  []models.Column            `json:"columns"`
	Rows     []map[string]any           `json:"rows"`
	Bundle   map[string]json.RawMessage `json:"bundle"`
	BundleID string                     `json:"bundle_id"`
	Total    int                        `json:"total"`
	Error    *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (r *fetchResponse) err(fallback string) string {
	if r.Error != nil {
		return fmt.Sprintf("[%s] %s", r.Error.Code, r.Error.Message)
	}
	return fallback
}

func main() {
	apiURL := strings.TrimRight(os.Getenv("SCRAPESHEET_API_URL"), "/")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("SCRAPESHEET_API_KEY")

	s := server.NewMCPServer(
		"scrapesheet",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	categories := make([]string, 0, 7)
	for _, c := range models.Categories() {
		categories = append(categories, string(c))
	}

	fetchTool := mcp.NewTool("fetch_page_details",
		mcp.WithDescription("Scrape a web page through the remote page-details service and return the normalized rows as Markdown tables (links with status severity, images, videos, meta properties, heading outline)."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to inspect"),
		),
		mcp.WithString("category",
			mcp.Description("Which details to return (default: 'all-details')"),
			mcp.Enum(categories...),
		),
		mcp.WithBoolean("only_uhf",
			mcp.Description("Restrict the scrape to primary page content (default: true)"),
		),
	)
	s.AddTool(fetchTool, handleFetchPageDetails(apiURL, apiKey))

	exportTool := mcp.NewTool("export_page_workbook",
		mcp.WithDescription("Scrape a web page and save all of its details as an xlsx workbook with one sheet per category."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to inspect"),
		),
		mcp.WithBoolean("only_uhf",
			mcp.Description("Restrict the scrape to primary page content (default: true)"),
		),
		mcp.WithString("output_path",
			mcp.Description("Where to write the workbook (default: 'all-details.xlsx' in the working directory)"),
		),
		mcp.WithBoolean("include_secondary",
			mcp.Description("Include the Video Details and Page Properties sheets (default: true)"),
		),
	)
	s.AddTool(exportTool, handleExportPageWorkbook(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiDo sends a request to the Scrapesheet API and returns the status and body.
func apiDo(ctx context.Context, client *http.Client, method, url, apiKey string, payload any) (int, []byte, error) {
	var rdr io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		rdr = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

func fetchDetails(ctx context.Context, client *http.Client, apiURL, apiKey string, req fetchRequest) (*fetchResponse, error) {
	_, body, err := apiDo(ctx, client, http.MethodPost, apiURL+"/api/v1/fetch", apiKey, req)
	if err != nil {
		return nil, err
	}
	var resp fetchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%s", resp.err("fetch failed"))
	}
	return &resp, nil
}

func handleFetchPageDetails(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		resp, err := fetchDetails(ctx, client, apiURL, apiKey, fetchRequest{
			URL:      url,
			Category: request.GetString("category", string(models.CategoryAll)),
			OnlyUHF:  request.GetBool("only_uhf", true),
			Markup:   "text",
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Source: %s\nCategory: %s\nRows: %d\n\n", url, resp.Category, resp.Total)

		if resp.Category != string(models.CategoryAll) {
			writeTable(&sb, resp.Columns, resp.Rows)
			return mcp.NewToolResultText(sb.String()), nil
		}

		for _, sec := range bundleSections {
			var rows []map[string]any
			if raw, ok := resp.Bundle[sec.key]; ok {
				_ = json.Unmarshal(raw, &rows)
			}
			fmt.Fprintf(&sb, "## %s (%d)\n\n", sec.title, len(rows))
			writeTable(&sb, models.Columns(sec.category), rows)
			sb.WriteString("\n")
		}
		if resp.BundleID != "" {
			fmt.Fprintf(&sb, "---\nBundle: %s (downloadable from /api/v1/export/%s)", resp.BundleID, resp.BundleID)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleExportPageWorkbook(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 180 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		outputPath := request.GetString("output_path", "all-details.xlsx")
		includeSecondary := request.GetBool("include_secondary", true)

		resp, err := fetchDetails(ctx, client, apiURL, apiKey, fetchRequest{
			URL:      url,
			Category: string(models.CategoryAll),
			OnlyUHF:  request.GetBool("only_uhf", true),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if resp.BundleID == "" {
			return mcp.NewToolResultError("service returned no bundle id"), nil
		}

		exportURL := fmt.Sprintf("%s/api/v1/export/%s?include_secondary=%t", apiURL, resp.BundleID, includeSecondary)
		status, body, err := apiDo(ctx, client, http.MethodGet, exportURL, apiKey, nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("export request failed: %v", err)), nil
		}
		if status != http.StatusOK {
			var errResp fetchResponse
			_ = json.Unmarshal(body, &errResp)
			return mcp.NewToolResultError(errResp.err(fmt.Sprintf("export failed with HTTP %d", status))), nil
		}

		if dir := filepath.Dir(outputPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("create output dir: %v", err)), nil
			}
		}
		if err := os.WriteFile(outputPath, body, 0o644); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("write workbook: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Wrote %s (%d bytes, %d rows) for %s", outputPath, len(body), resp.Total, url)), nil
	}
}
