package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/medmuse/medmuse-backend/internal/domain/report"
	"github.com/medmuse/medmuse-backend/pkg/errors"
)

const (
	pdfDateLayout = "January 2, 2006"

	disclaimerText = "This report is generated by AI analysis of your self-reported symptom data. " +
		"It is for informational purposes only and should not be considered medical advice, " +
		"diagnosis, or treatment recommendations. Always consult with a qualified healthcare " +
		"provider regarding any health concerns."

	footerText = "Generated by MedMuse Healthcare Platform"
)

// PDFRenderer renders reports as PDF documents.
//
// Output is deterministic: the document's creation and modification dates are
// pinned to the report's GeneratedAt timestamp, so rendering the same report
// twice yields byte-identical files.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Name() string          { return NamePDF }
func (r *PDFRenderer) ContentType() string   { return "application/pdf" }
func (r *PDFRenderer) FileExtension() string { return "pdf" }

// Available always returns true; PDF rendering is in-process.
func (r *PDFRenderer) Available(ctx context.Context) bool { return true }

func (r *PDFRenderer) Render(_ context.Context, rpt *report.Report) ([]byte, error) {
	if rpt == nil {
		return nil, errors.New(errors.ErrCodeRenderFailed, "cannot render nil report")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	// Sorted resource catalogs plus pinned dates make output reproducible
	// for a given report.
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(rpt.GeneratedAt)
	pdf.SetModificationDate(rpt.GeneratedAt)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Title block.
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "MedMuse Health Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Report Period: %s - %s",
		rpt.PeriodStart.Format(pdfDateLayout), rpt.PeriodEnd.Format(pdfDateLayout)),
		"", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated on: %s", rpt.GeneratedAt.Format(pdfDateLayout)),
		"", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	r.section(pdf, tr, "Health Summary")
	r.paragraphs(pdf, tr, rpt.HealthSummary)

	r.section(pdf, tr, "Areas of Attention")
	r.bullets(pdf, tr, rpt.RiskAreas)

	r.section(pdf, tr, "Personalized Recommendations")
	r.bullets(pdf, tr, rpt.Recommendations)

	r.section(pdf, tr, "Medical Disclaimer")
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, tr(disclaimerText), "", "L", false)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(130, 130, 130)
	pdf.CellFormat(0, 5, footerText, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRenderFailed, "failed to render pdf")
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) section(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
}

// paragraphs writes free text, preserving blank-line paragraph breaks.
func (r *PDFRenderer) paragraphs(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	for _, para := range strings.Split(strings.TrimSpace(text), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		pdf.MultiCell(0, 6, tr(para), "", "L", false)
		pdf.Ln(2)
	}
	pdf.Ln(4)
}

// bullets writes one bullet per non-empty line.
func (r *PDFRenderer) bullets(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pdf.MultiCell(0, 6, tr("• "+line), "", "L", false)
	}
	pdf.Ln(6)
}
