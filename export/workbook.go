// Package export serializes an all-details bundle into an xlsx workbook with
// one sheet per category.
package export

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/use-agent/scrapesheet/config"
	"github.com/use-agent/scrapesheet/models"
)

// Sheet names, in workbook order.
const (
	SheetLinks          = "Link Details"
	SheetImages         = "Image Details"
	SheetVideos         = "Video Details"
	SheetPageProperties = "Page Properties"
	SheetHeadings       = "Heading Hierarchy"
)

// DefaultFilename is the suggested download name.
const DefaultFilename = "all-details.xlsx"

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Options controls workbook assembly.
type Options struct {
	// IncludeSecondaryContent keeps the Video Details and Page Properties
	// sheets. When false they are omitted entirely. Default: true.
	IncludeSecondaryContent bool

	// HeaderTitles writes human-facing column titles ("Link Type") instead
	// of field keys ("linkType") in the header row.
	HeaderTitles bool
}

// DefaultOptions returns the options used when none are supplied.
func DefaultOptions() Options {
	return Options{IncludeSecondaryContent: true}
}

// FromConfig returns the options configured through the environment.
func FromConfig(cfg config.ExportConfig) Options {
	return Options{
		IncludeSecondaryContent: cfg.IncludeSecondaryContent,
		HeaderTitles:            cfg.HeaderStyle == "titles",
	}
}

// Sheet is one named table of the workbook.
type Sheet struct {
	Name      string
	Category  models.Category
	Secondary bool
	Rows      [][]any
}

// Sheets lays out the bundle as ordered sheets without serializing them.
// Rows are taken as-is from the bundle; headings must already be flattened.
func Sheets(bundle *models.AllDetailsBundle) []Sheet {
	return []Sheet{
		{Name: SheetLinks, Category: models.CategoryLinks, Rows: cells(bundle.Links)},
		{Name: SheetImages, Category: models.CategoryImages, Rows: cells(bundle.Images)},
		{Name: SheetVideos, Category: models.CategoryVideos, Secondary: true, Rows: cells(bundle.Videos)},
		{Name: SheetPageProperties, Category: models.CategoryPageProperties, Secondary: true, Rows: cells(bundle.PageProperties)},
		{Name: SheetHeadings, Category: models.CategoryHeadings, Rows: cells(bundle.Headings)},
	}
}

type row interface {
	Cells() []any
}

func cells[R row](rows []R) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = r.Cells()
	}
	return out
}

// Export writes bundle as an xlsx workbook and returns its bytes. A nil
// bundle fails with a NO_DATA error. Empty collections still produce a
// sheet holding only the header row.
func Export(bundle *models.AllDetailsBundle, opts Options) ([]byte, error) {
	if bundle == nil {
		return nil, models.NewPipelineError(models.ErrCodeNoData, "nothing to export yet", nil)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, exportErr("create header style", err)
	}

	defaultSheet := f.GetSheetName(0)
	first := true
	for _, sh := range Sheets(bundle) {
		if sh.Secondary && !opts.IncludeSecondaryContent {
			continue
		}
		if first {
			if err := f.SetSheetName(defaultSheet, sh.Name); err != nil {
				return nil, exportErr("rename sheet "+sh.Name, err)
			}
			first = false
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return nil, exportErr("create sheet "+sh.Name, err)
		}

		if err := writeSheet(f, sh, opts.HeaderTitles, headerStyle); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, exportErr("serialize workbook", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sh Sheet, titles bool, headerStyle int) error {
	cols := models.Columns(sh.Category)
	header := make([]any, len(cols))
	for i, c := range cols {
		if titles {
			header[i] = c.Title
		} else {
			header[i] = c.Key
		}
	}

	if err := f.SetSheetRow(sh.Name, "A1", &header); err != nil {
		return exportErr("write header of "+sh.Name, err)
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return exportErr("header range of "+sh.Name, err)
	}
	if err := f.SetCellStyle(sh.Name, "A1", last, headerStyle); err != nil {
		return exportErr("style header of "+sh.Name, err)
	}

	for i, values := range sh.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return exportErr("row address in "+sh.Name, err)
		}
		if err := checkCellLengths(sh.Name, i+2, values); err != nil {
			return err
		}
		if err := f.SetSheetRow(sh.Name, cell, &values); err != nil {
			return exportErr(fmt.Sprintf("write row %d of %s", i, sh.Name), err)
		}
	}
	return nil
}

// checkCellLengths rejects text that excelize would otherwise cut at the
// per-cell limit of the xlsx format.
func checkCellLengths(sheet string, rowNum int, values []any) error {
	for col, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if n := utf8.RuneCountInString(s); n > excelize.TotalCellChars {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			return models.NewPipelineError(models.ErrCodeExport,
				fmt.Sprintf("export: cell %s of %s holds %d characters, limit is %d",
					cell, sheet, n, excelize.TotalCellChars), nil)
		}
	}
	return nil
}

func exportErr(step string, err error) error {
	return models.NewPipelineError(models.ErrCodeExport, "export: "+step, err)
}
