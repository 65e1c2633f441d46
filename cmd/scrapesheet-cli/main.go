package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/use-agent/scrapesheet/models"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	inputFlag := &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "raw scrape payload (JSON file, or - for stdin)",
		Value:   "-",
	}
	categoryFlag := &cli.StringFlag{
		Name:    "category",
		Aliases: []string{"c"},
		Usage:   fmt.Sprintf("one of %v", models.Categories()),
		Value:   string(models.CategoryAll),
	}
	formatFlag := &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "output format: json or yaml",
		Value:   "json",
	}
	markupFlag := &cli.StringFlag{
		Name:  "markup",
		Usage: "render linkText and alt as raw, escape, text or markdown",
		Value: "raw",
	}

	return &cli.App{
		Name:  "scrapesheet",
		Usage: "normalize page-scrape payloads and export them as spreadsheets",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only log errors",
			},
		},
		Before: func(c *cli.Context) error {
			initLogger(c.App.ErrWriter, c.Bool("quiet"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "normalize",
				Usage:  "normalize a raw payload into table rows",
				Flags:  []cli.Flag{inputFlag, categoryFlag, formatFlag, markupFlag},
				Action: normalizeAction,
			},
			{
				Name:  "export",
				Usage: "export a raw payload as an xlsx workbook",
				Flags: []cli.Flag{
					inputFlag,
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "workbook path",
						Value:   "all-details.xlsx",
					},
					&cli.BoolFlag{
						Name:  "primary-only",
						Usage: "omit the Video Details and Page Properties sheets",
					},
					&cli.BoolFlag{
						Name:  "header-titles",
						Usage: "write display titles instead of field keys in header rows",
					},
				},
				Action: exportAction,
			},
			{
				Name:  "fetch",
				Usage: "fetch a page through the remote scrape service and normalize it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Aliases:  []string{"u"},
						Usage:    "page to scrape",
						Required: true,
					},
					categoryFlag,
					&cli.BoolFlag{
						Name:  "only-uhf",
						Usage: "restrict the scrape to primary page content",
						Value: true,
					},
					formatFlag,
					markupFlag,
					&cli.StringFlag{
						Name:  "upstream",
						Usage: "scrape service base URL (default: $SCRAPESHEET_UPSTREAM_URL)",
					},
					&cli.StringFlag{
						Name:  "xlsx",
						Usage: "also write an all-details workbook to this path",
					},
				},
				Action: fetchAction,
			},
		},
	}
}
