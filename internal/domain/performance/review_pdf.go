package performance

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// RenderReviewPDF lays out a review with its per-category ratings.
func RenderReviewPDF(review Review, categories []ReviewCategory) ([]byte, error) {
	ratings := make(map[string]Rating, len(review.Ratings))
	for _, r := range review.Ratings {
		ratings[r.CategoryID] = r
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Performance Review")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	line := func(label, value string) {
		pdf.Cell(0, 8, tr(fmt.Sprintf("%s: %s", label, value)))
		pdf.Ln(7)
	}
	line("Employee", review.EmployeeName)
	if review.ReviewerName != "" {
		line("Reviewer", review.ReviewerName)
	}
	line("Type", review.ReviewType)
	if period := review.PeriodLabel(); period != "" {
		line("Period", period)
	}
	line("Status", review.Status)
	line("Overall rating", fmt.Sprintf("%.2f / %d", review.OverallRating, MaxRating))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(90, 8, "Category", "1", 0, "", false, 0, "")
	pdf.CellFormat(20, 8, "Weight", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, "Rating", "1", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, c := range categories {
		pdf.CellFormat(90, 8, tr(c.Name), "1", 0, "", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%.2g", CategoryWeight(c)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", ratings[c.ID].Rating), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	section := func(title, body string) {
		if body == "" {
			return
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, title)
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(body), "", "", false)
		pdf.Ln(2)
	}
	section("Strengths", review.Strengths)
	section("Areas for improvement", review.AreasForImprovement)
	section("Achievements", review.Achievements)
	section("Goals for next period", review.GoalsForNextPeriod)
	section("Manager comments", review.ManagerComments)
	section("Employee comments", review.EmployeeComments)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
