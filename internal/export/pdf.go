package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"energytracker/internal/period"
)

// BuildPDF renders the summary followed by the daily table.
func BuildPDF(r Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Energy Consumption Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	if s := r.Summary; s != nil {
		lines := []string{
			fmt.Sprintf("Period: %s .. %s", period.FormatDate(s.Range.Start), period.FormatDate(s.Range.End)),
			fmt.Sprintf("Total Energy (kWh): %s", plainText(kwh(s.TotalKWh))),
			fmt.Sprintf("Total Cost: %s", plainText(money(s.TotalCost))),
			fmt.Sprintf("Records: %d", s.RecordCount),
			fmt.Sprintf("Days with data: %d", s.DaysWithData),
			fmt.Sprintf("Average per day (kWh): %s", plainText(kwh(s.AverageKWhPerDay))),
		}
		if s.ActiveTariff != nil {
			lines = append(lines, fmt.Sprintf("Active tariff: %s (%s per kWh)", s.ActiveTariff.Name, s.ActiveTariff.PricePerKWh.StringFixed(4)))
		}
		for _, line := range lines {
			pdf.Cell(0, 6, line)
			pdf.Ln(5)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "Day", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Energy (kWh)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Cost", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Records", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, d := range r.Daily {
		pdf.CellFormat(40, 6, period.FormatDate(d.Day), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, plainText(kwh(d.TotalKWh)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, plainText(money(d.TotalCost)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", d.RecordCount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
