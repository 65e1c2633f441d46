package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scrapesheet/cache"
	"github.com/use-agent/scrapesheet/models"
	"github.com/use-agent/scrapesheet/normalize"
	"github.com/use-agent/scrapesheet/render"
	"github.com/use-agent/scrapesheet/upstream"
	"github.com/use-agent/scrapesheet/webhook"
)

// Fetch returns a handler for POST /api/v1/fetch.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. upstream.Client.Fetch → raw payload     (records fetch_ms)
//  3. normalize.Normalize   → rows or bundle  (records normalize_ms)
//  4. Store the bundle, render markup, respond.
//  5. Fire the fetch.completed webhook if requested.
func Fetch(client *upstream.Client, rd *render.Renderer, store *cache.Store, maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.FetchRequest
		if err := bindJSON(c, maxBodyBytes, &req); err != nil {
			respondError(c, err, models.TimingInfo{})
			return
		}
		req.Defaults()

		category, err := models.ParseCategory(req.Category)
		if err != nil {
			respondError(c, err, models.TimingInfo{})
			return
		}
		mode, err := render.ParseMode(req.Markup)
		if err != nil {
			respondError(c, err, models.TimingInfo{})
			return
		}

		// ── 2. Fetch ────────────────────────────────────────────────
		fetchStart := time.Now()
		raw, err := client.Fetch(c.Request.Context(), upstream.Request{
			URL:      req.URL,
			Category: category,
			OnlyUHF:  *req.OnlyUHF,
		})
		fetchMs := time.Since(fetchStart).Milliseconds()
		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
				FetchMs: fetchMs,
			})
			return
		}

		// ── 3. Normalize ────────────────────────────────────────────
		normStart := time.Now()
		res, err := normalize.Normalize(raw, category)
		normalizeMs := time.Since(normStart).Milliseconds()
		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs:     time.Since(totalStart).Milliseconds(),
				FetchMs:     fetchMs,
				NormalizeMs: normalizeMs,
			})
			return
		}

		// ── 4. Store, render and respond ────────────────────────────
		var bundleID string
		if res.IsBundle() {
			bundleID = store.Put(res.Bundle)
		}

		resp := successResponse(rd.Result(res, mode), bundleID)
		resp.Timing = models.TimingInfo{
			TotalMs:     time.Since(totalStart).Milliseconds(),
			FetchMs:     fetchMs,
			NormalizeMs: normalizeMs,
		}
		c.JSON(http.StatusOK, resp)

		// ── 5. Webhook ──────────────────────────────────────────────
		if req.WebhookURL != "" {
			webhook.DeliverAsync(req.WebhookURL, req.WebhookSecret, &webhook.Event{
				Type:      webhook.EventFetchCompleted,
				URL:       req.URL,
				Timestamp: time.Now().Unix(),
				Data: webhook.FetchSummary{
					Category: string(category),
					BundleID: bundleID,
					Counts:   rowCounts(res),
				},
			})
		}
	}
}

// rowCounts reports the number of rows per category in res.
func rowCounts(res *models.Result) map[string]int {
	if !res.IsBundle() {
		return map[string]int{string(res.Category): res.Len()}
	}
	b := res.Bundle
	return map[string]int{
		string(models.CategoryURLs):           len(b.URLs),
		string(models.CategoryLinks):          len(b.Links),
		string(models.CategoryImages):         len(b.Images),
		string(models.CategoryVideos):         len(b.Videos),
		string(models.CategoryPageProperties): len(b.PageProperties),
		string(models.CategoryHeadings):       len(b.Headings),
	}
}
