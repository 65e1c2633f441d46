package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scrapesheet/cache"
	"github.com/use-agent/scrapesheet/config"
	"github.com/use-agent/scrapesheet/export"
	"github.com/use-agent/scrapesheet/models"
	"github.com/use-agent/scrapesheet/normalize"
)

// ExportStored returns a handler for GET /api/v1/export/:id.
// The bundle must have been produced by /normalize or /fetch.
func ExportStored(store *cache.Store, cfg config.ExportConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := exportOptions(c, cfg)
		if err != nil {
			respondError(c, err, models.TimingInfo{})
			return
		}

		bundle, err := store.Get(c.Param("id"))
		if err != nil {
			respondError(c, err, models.TimingInfo{})
			return
		}
		sendWorkbook(c, bundle, opts)
	}
}

// ExportInline returns a handler for POST /api/v1/export. The body is a raw
// scrape payload; it is normalized as all-details and returned as a workbook.
// An empty body fails with NO_DATA.
func ExportInline(cfg config.ExportConfig, maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := exportOptions(c, cfg)
		if err != nil {
			respondError(c, err, models.TimingInfo{})
			return
		}

		data, err := readBody(c, maxBodyBytes)
		if err != nil {
			respondError(c, err, models.TimingInfo{})
			return
		}
		if len(data) == 0 {
			respondError(c, models.ErrNoData, models.TimingInfo{})
			return
		}

		res, err := normalize.NormalizeJSON(data, models.CategoryAll)
		if err != nil {
			respondError(c, err, models.TimingInfo{})
			return
		}
		sendWorkbook(c, res.Bundle, opts)
	}
}

// exportOptions merges configured defaults with the include_secondary query
// override.
func exportOptions(c *gin.Context, cfg config.ExportConfig) (export.Options, error) {
	opts := export.FromConfig(cfg)
	include, err := queryBool(c, "include_secondary", opts.IncludeSecondaryContent)
	if err != nil {
		return export.Options{}, err
	}
	opts.IncludeSecondaryContent = include
	return opts, nil
}

func sendWorkbook(c *gin.Context, bundle *models.AllDetailsBundle, opts export.Options) {
	data, err := export.Export(bundle, opts)
	if err != nil {
		respondError(c, err, models.TimingInfo{})
		return
	}
	slog.Debug("workbook exported",
		"bytes", len(data),
		"include_secondary", opts.IncludeSecondaryContent,
	)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.DefaultFilename))
	c.Data(http.StatusOK, export.ContentType, data)
}
