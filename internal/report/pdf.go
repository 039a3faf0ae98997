package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"timed-quiz-platform/internal/domain"
)

// WritePDF renders the laid-out report to w.
func WritePDF(w io.Writer, r domain.ParticipantReport) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range Layout(r) {
		pdf.AddPage()
		for _, l := range page.Lines {
			pdf.SetFont("Helvetica", "", l.Size)
			pdf.SetTextColor(l.Color.R, l.Color.G, l.Color.B)
			pdf.Text(l.X, l.Y, tr(l.Text))
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
