package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/use-agent/scrapesheet/config"
	"github.com/use-agent/scrapesheet/export"
	"github.com/use-agent/scrapesheet/models"
	"github.com/use-agent/scrapesheet/normalize"
	"github.com/use-agent/scrapesheet/render"
	"github.com/use-agent/scrapesheet/upstream"
)

func initLogger(w io.Writer, quiet bool) {
	cfg := config.Load().Log
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if quiet {
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func normalizeAction(c *cli.Context) error {
	category, mode, err := categoryAndMode(c)
	if err != nil {
		return err
	}
	data, err := readInput(c)
	if err != nil {
		return err
	}

	res, err := normalize.NormalizeJSON(data, category)
	if err != nil {
		return err
	}
	slog.Info("normalized", "category", category, "rows", res.Len())
	return writeResult(c.App.Writer, render.New().Result(res, mode), c.String("format"))
}

func exportAction(c *cli.Context) error {
	data, err := readInput(c)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return models.ErrNoData
	}

	res, err := normalize.NormalizeJSON(data, models.CategoryAll)
	if err != nil {
		return err
	}
	opts := export.FromConfig(config.Load().Export)
	if c.Bool("primary-only") {
		opts.IncludeSecondaryContent = false
	}
	if c.Bool("header-titles") {
		opts.HeaderTitles = true
	}
	return writeWorkbook(c.App.Writer, c.String("output"), res.Bundle, opts)
}

func fetchAction(c *cli.Context) error {
	category, mode, err := categoryAndMode(c)
	if err != nil {
		return err
	}

	all := config.Load()
	cfg := all.Upstream
	if u := c.String("upstream"); u != "" {
		cfg.BaseURL = u
	}
	xlsxPath := c.String("xlsx")

	// A workbook needs every category, so fetch all-details and narrow after.
	fetchCategory := category
	if xlsxPath != "" {
		fetchCategory = models.CategoryAll
	}

	start := time.Now()
	raw, err := upstream.NewClient(cfg, nil).Fetch(c.Context, upstream.Request{
		URL:      c.String("url"),
		Category: fetchCategory,
		OnlyUHF:  c.Bool("only-uhf"),
	})
	if err != nil {
		return err
	}
	slog.Info("fetched", "url", c.String("url"), "category", fetchCategory, "duration_ms", time.Since(start).Milliseconds())

	res, err := normalize.Normalize(raw, category)
	if err != nil {
		return err
	}

	if xlsxPath != "" {
		if err := writeWorkbook(c.App.ErrWriter, xlsxPath, normalize.All(raw), export.FromConfig(all.Export)); err != nil {
			return err
		}
	}
	return writeResult(c.App.Writer, render.New().Result(res, mode), c.String("format"))
}

func categoryAndMode(c *cli.Context) (models.Category, render.Mode, error) {
	category, err := models.ParseCategory(c.String("category"))
	if err != nil {
		return "", "", err
	}
	mode, err := render.ParseMode(c.String("markup"))
	if err != nil {
		return "", "", err
	}
	return category, mode, nil
}

func readInput(c *cli.Context) ([]byte, error) {
	path := c.String("input")
	if path == "" || path == "-" {
		return io.ReadAll(c.App.Reader)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// writeResult prints the bundle for all-details, otherwise the row list.
func writeResult(w io.Writer, res *models.Result, format string) error {
	var v any = res.Rows()
	if res.IsBundle() {
		v = res.Bundle
	}

	var out []byte
	var err error
	switch strings.ToLower(format) {
	case "yaml", "yml":
		out, err = yaml.Marshal(v)
	case "json", "":
		out, err = json.MarshalIndent(v, "", "  ")
		out = append(out, '\n')
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func writeWorkbook(w io.Writer, path string, bundle *models.AllDetailsBundle, opts export.Options) error {
	data, err := export.Export(bundle, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	slog.Info("workbook written", "path", path, "bytes", len(data))
	fmt.Fprintf(w, "wrote %s (%d bytes)\n", path, len(data))
	return nil
}
