package models

// FetchRequest is the payload for POST /api/v1/fetch.
type FetchRequest struct {
	// URL is the target page the remote service scrapes. Required.
	URL string `json:"url" binding:"required"`

	// Category selects the normalizer. Default: "all-details".
	Category string `json:"category,omitempty"`

	// OnlyUHF restricts the remote scrape to primary (UHF) content.
	// Forwarded to the remote service unmodified. Default: true.
	OnlyUHF *bool `json:"only_uhf,omitempty"`

	// Markup controls how linkText and alt are rendered for display.
	// Allowed: "raw" (default), "escape", "text", "markdown".
	Markup string `json:"markup,omitempty" binding:"omitempty,oneof=raw escape text markdown"`

	WebhookURL    string `json:"webhook_url,omitempty" binding:"omitempty,url"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *FetchRequest) Defaults() {
	if r.Category == "" {
		r.Category = string(CategoryAll)
	}
	if r.OnlyUHF == nil {
		t := true
		r.OnlyUHF = &t
	}
	if r.Markup == "" {
		r.Markup = "raw"
	}
}

// NormalizeResponse is the response for POST /api/v1/normalize and
// POST /api/v1/fetch.
type NormalizeResponse struct {
	Success bool `json:"success"`

	Category Category `json:"category,omitempty"`

	// Columns lists the table columns for single-table categories.
	Columns []Column `json:"columns,omitempty"`

	// Rows is the normalized collection for single-table categories.
	Rows any `json:"rows,omitempty"`

	// Bundle is set only for the "all-details" category.
	Bundle *AllDetailsBundle `json:"bundle,omitempty"`

	// BundleID identifies the stored bundle for GET /api/v1/export/:id.
	BundleID string `json:"bundle_id,omitempty"`

	// Total is the number of normalized rows across the response.
	Total int `json:"total"`

	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	TotalMs     int64 `json:"total_ms"`
	FetchMs     int64 `json:"fetch_ms,omitempty"`
	NormalizeMs int64 `json:"normalize_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	StoredBundles int    `json:"stored_bundles"`
	Version       string `json:"version"`
}
