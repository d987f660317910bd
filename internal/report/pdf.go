package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"example.com/jsf2segy/internal/common"
)

const qrImageName = "manifest-qr"

// SavePDF renders the conversion report into a PDF document. When the report
// carries a manifest digest, a QR code of it is placed under the summary.
func SavePDF(rep Report, out string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Conversion Report", false)
	pdf.SetAuthor("jsf2segy", false)
	pdf.SetCreator("jsf2segy", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "Conversion Report")
	addSummarySection(pdf, rep)
	if err := addManifestSection(pdf, rep.ManifestDigest); err != nil {
		return err
	}
	addFilesSection(pdf, rep.Files)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

type summaryRow struct {
	label string
	value string
}

func addSummarySection(pdf *gofpdf.Fpdf, rep Report) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	sum := rep.Summary
	pdf.SetFont("Helvetica", "", 11)
	items := []summaryRow{
		{label: "Input", value: emptyFallback(sum.Input, "-")},
		{label: "Data Types", value: emptyFallback(strings.Join(rep.Modes, ", "), "-")},
		{label: "Seismic Records", value: strconv.Itoa(sum.Records)},
		{label: "Start Time", value: timeLabel(sum.HaveTimes, sum.Start.String())},
		{label: "End Time", value: timeLabel(sum.HaveTimes, sum.End.String())},
		{label: "Output Files", value: strconv.Itoa(len(sum.Files))},
		{label: "Rollovers", value: strconv.Itoa(sum.Rollovers)},
		{label: "Messages", value: strconv.Itoa(sum.Messages)},
		{label: "Skipped", value: strconv.Itoa(sum.Skipped)},
		{label: "Overall", value: passLabel(rep.Pass())},
	}
	if rep.Throughput != nil {
		items = append(items, summaryRow{
			label: "Throughput",
			value: fmt.Sprintf("%s in %s", common.FormatBytes(rep.Throughput.Bytes), rep.Throughput.Duration.Round(time.Millisecond)),
		})
	}
	for _, item := range items {
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	if sum.Error != "" {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(0, 5, "Error: "+sum.Error, "", "L", false)
	}
	pdf.Ln(4)
}

func addManifestSection(pdf *gofpdf.Fpdf, digest string) error {
	if digest == "" {
		return nil
	}
	png, err := ManifestHashToQR(digest, 256)
	if err != nil {
		return err
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Manifest")
	pdf.Ln(9)

	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(qrImageName, opts, bytes.NewReader(png))
	x, y := pdf.GetX(), pdf.GetY()
	pdf.ImageOptions(qrImageName, x, y, 30, 30, false, opts, 0, "")
	pdf.SetXY(x+34, y+10)
	pdf.SetFont("Courier", "", 8)
	pdf.MultiCell(0, 4, digest, "", "L", false)
	pdf.SetXY(x, y+34)
	return nil
}

func addFilesSection(pdf *gofpdf.Fpdf, files []FileEntry) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Output Files")
	pdf.Ln(9)

	if len(files) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No SEG-Y files were written.", "", "L", false)
		return
	}

	headers := []string{"File", "Traces", "Samples", "Interval us", "Record Size", "SHA-256"}
	widths := []float64{50, 18, 20, 22, 24, 46}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, f := range files {
		samples, interval := "-", "-"
		if f.Empty {
			samples = "empty"
		}
		if f.Info != nil {
			samples = strconv.Itoa(int(f.Info.Samples))
			interval = strconv.Itoa(int(f.Info.SampleIntervalUs))
		}
		values := []string{
			filepath.Base(f.Path),
			strconv.Itoa(f.Traces),
			samples,
			interval,
			strconv.Itoa(int(f.RecordSize)),
			shortHash(f.Sha256),
		}
		renderTableRow(pdf, widths, values, 5.0)
		if f.InspectError != "" {
			pdf.SetFont("Helvetica", "", 8)
			pdf.MultiCell(0, 4, f.InspectError, "", "L", false)
			pdf.SetFont("Helvetica", "", 9)
		}
	}
	pdf.Ln(4)
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		text := strings.TrimSpace(val)
		if text == "" {
			text = "-"
		}
		lines := pdf.SplitText(text, widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		pdf.MultiCell(widths[i], lineHeight, strings.Join(lines, "\n"), "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}

func passLabel(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

func timeLabel(ok bool, s string) string {
	if !ok {
		return "-"
	}
	return s
}

func shortHash(h string) string {
	if len(h) > 16 {
		return h[:16] + "..."
	}
	return emptyFallback(h, "-")
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
