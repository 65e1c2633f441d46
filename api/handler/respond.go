package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scrapesheet/models"
)

// respondError maps a PipelineError to the correct HTTP status code and
// writes a structured JSON error response. Other errors become INTERNAL_ERROR.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	var pe *models.PipelineError
	if !errors.As(err, &pe) {
		pe = models.NewPipelineError(models.ErrCodeInternal, err.Error(), err)
	}

	status := mapErrorToStatus(pe)
	if status >= http.StatusInternalServerError {
		slog.Warn("request failed",
			"path", c.FullPath(),
			"code", pe.Code,
			"error", err,
		)
	}

	c.JSON(status, models.NormalizeResponse{
		Success: false,
		Error:   pe.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.PipelineError) int {
	switch e.Code {
	case models.ErrCodeMalformedInput:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeNoData:
		return http.StatusNotFound // 404
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUpstream:
		return http.StatusBadGateway // 502
	case models.ErrCodeUpstreamTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}

// readBody reads the raw request payload, capped at maxBytes.
func readBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	limitBody(c, maxBytes)
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		if perr := tooLargeErr(err); perr != nil {
			return nil, perr
		}
		return nil, models.NewPipelineError(models.ErrCodeInvalidInput, "could not read request body", err)
	}
	return bytes.TrimSpace(data), nil
}

// bindJSON decodes a JSON request body of at most maxBytes into dst.
func bindJSON(c *gin.Context, maxBytes int64, dst any) error {
	limitBody(c, maxBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		if perr := tooLargeErr(err); perr != nil {
			return perr
		}
		return models.NewPipelineError(models.ErrCodeInvalidInput, err.Error(), err)
	}
	return nil
}

func limitBody(c *gin.Context, maxBytes int64) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}
}

func tooLargeErr(err error) *models.PipelineError {
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		return nil
	}
	return models.NewPipelineError(models.ErrCodeInvalidInput,
		fmt.Sprintf("payload exceeds %d bytes", tooLarge.Limit), err)
}

// queryBool parses an optional boolean query parameter.
func queryBool(c *gin.Context, name string, fallback bool) (bool, error) {
	v, ok := c.GetQuery(name)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, models.NewPipelineError(models.ErrCodeInvalidInput,
			fmt.Sprintf("%s must be a boolean, got %q", name, v), err)
	}
	return b, nil
}

// successResponse builds the body returned by /normalize and /fetch.
func successResponse(res *models.Result, bundleID string) models.NormalizeResponse {
	resp := models.NormalizeResponse{
		Success:  true,
		Category: res.Category,
		Total:    res.Len(),
	}
	if res.IsBundle() {
		resp.Bundle = res.Bundle
		resp.BundleID = bundleID
		return resp
	}
	resp.Columns = models.Columns(res.Category)
	resp.Rows = res.Rows()
	return resp
}
