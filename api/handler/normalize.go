package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scrapesheet/cache"
	"github.com/use-agent/scrapesheet/models"
	"github.com/use-agent/scrapesheet/normalize"
	"github.com/use-agent/scrapesheet/render"
)

// Normalize returns a handler for POST /api/v1/normalize.
//
// The body is a raw scrape payload. Query parameters:
//
//	category  one of models.Categories(); default "all-details"
//	markup    raw | escape | text | markdown; default "raw"
//
// All-details bundles are stored unrendered so they can be exported later
// through GET /api/v1/export/:id.
func Normalize(rd *render.Renderer, store *cache.Store, maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		category, err := models.ParseCategory(c.DefaultQuery("category", string(models.CategoryAll)))
		if err != nil {
			respondError(c, err, models.TimingInfo{})
			return
		}
		mode, err := render.ParseMode(c.Query("markup"))
		if err != nil {
			respondError(c, err, models.TimingInfo{})
			return
		}

		data, err := readBody(c, maxBodyBytes)
		if err != nil {
			respondError(c, err, models.TimingInfo{})
			return
		}

		normStart := time.Now()
		res, err := normalize.NormalizeJSON(data, category)
		normalizeMs := time.Since(normStart).Milliseconds()
		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs:     time.Since(totalStart).Milliseconds(),
				NormalizeMs: normalizeMs,
			})
			return
		}

		var bundleID string
		if res.IsBundle() {
			bundleID = store.Put(res.Bundle)
		}

		resp := successResponse(rd.Result(res, mode), bundleID)
		resp.Timing = models.TimingInfo{
			TotalMs:     time.Since(totalStart).Milliseconds(),
			NormalizeMs: normalizeMs,
		}
		c.JSON(http.StatusOK, resp)
	}
}
