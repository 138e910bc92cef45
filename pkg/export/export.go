// Package export writes a rendered table view as a downloadable file.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/jwalitptl/travel-console/pkg/table"
)

type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat defaults to CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
	}
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

// Filename builds e.g. contracts_20250102_150405.csv.
func (f Format) Filename(name string, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", name, at.Format("20060102_150405"), f)
}

// Write encodes v in format f. Skeleton and no-data rows are not exported.
func Write(w io.Writer, f Format, title string, v table.View) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, v)
	case FormatPDF:
		return WritePDF(w, title, v)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

func WriteCSV(w io.Writer, v table.View) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(headerLabels(v)); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range dataRows(v) {
		if err := writer.Write(row.Cells); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

const (
	pdfMargin     = 10.0
	pdfLineHeight = 7.0
)

// WritePDF lays the view out as a landscape A4 grid with equal column widths.
func WritePDF(w io.Writer, title string, v table.View) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	headers := headerLabels(v)
	if len(headers) == 0 {
		return pdf.Output(w)
	}
	pageWidth, _ := pdf.GetPageSize()
	colWidth := (pageWidth - 2*pdfMargin) / float64(len(headers))

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, h := range headers {
		pdf.CellFormat(colWidth, pdfLineHeight, fit(pdf, h, colWidth), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	rows := dataRows(v)
	for _, row := range rows {
		for _, cell := range row.Cells {
			pdf.CellFormat(colWidth, pdfLineHeight, fit(pdf, cell, colWidth), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(colWidth*float64(len(headers)), pdfLineHeight, emptyMessage(v), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

func headerLabels(v table.View) []string {
	out := make([]string, len(v.Headers))
	for i, h := range v.Headers {
		out[i] = h.Label
	}
	return out
}

func dataRows(v table.View) []table.Row {
	out := make([]table.Row, 0, len(v.Rows))
	for _, r := range v.Rows {
		if r.Skeleton || r.Empty {
			continue
		}
		out = append(out, r)
	}
	return out
}

func emptyMessage(v table.View) string {
	for _, r := range v.Rows {
		if r.Empty && r.Message != "" {
			return r.Message
		}
	}
	return table.DefaultEmptyMessage
}

// fit truncates s with an ellipsis so it fits in width.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > limit {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
