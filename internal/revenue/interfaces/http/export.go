package revenuehttp

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"swapstation-cloud/internal/revenue/application"
	revenue "swapstation-cloud/internal/revenue/domain"
)

// serveExport handles GET /rents/export?format=csv|xlsx|pdf&from&to.
func (h *Handler) serveExport(w http.ResponseWriter, r *http.Request) error {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		return revenue.ErrInvalidRange
	}
	report, err := h.service.Range(r.Context(), from, to)
	if err != nil {
		return err
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="rents.csv"`)
		writeReportCSV(w, report)
	case "xlsx":
		data, err := buildReportXLSX(report)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="rents.xlsx"`)
		_, _ = w.Write(data)
	case "pdf":
		data, err := buildReportPDF(report)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="rents.pdf"`)
		_, _ = w.Write(data)
	default:
		return fmt.Errorf("%w: unsupported format %q", revenue.ErrInvalidRange, format)
	}
	return nil
}

func writeReportCSV(w http.ResponseWriter, report application.Report) {
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"date", "rents", "money", "prev_rents", "prev_money"})
	for _, day := range report.Days {
		_ = writer.Write([]string{
			day.Date,
			strconv.Itoa(day.Rents),
			day.Money,
			strconv.Itoa(day.PrevRents),
			day.PrevMoney,
		})
	}
	writer.Flush()
}

// buildReportXLSX renders a minimal XLSX for a revenue report.
func buildReportXLSX(report application.Report) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "report"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "Revenue Report")
	_ = f.SetCellValue(sheet, "A2", report.Label)
	_ = f.SetCellValue(sheet, "A3", "Positive")
	_ = f.SetCellValue(sheet, "B3", report.Positive)
	_ = f.SetCellValue(sheet, "A4", "Negative")
	_ = f.SetCellValue(sheet, "B4", report.Negative)

	_ = f.SetCellValue(sheet, "A6", "Date")
	_ = f.SetCellValue(sheet, "B6", "Rents")
	_ = f.SetCellValue(sheet, "C6", "Money")
	_ = f.SetCellValue(sheet, "D6", "Prev Rents")
	_ = f.SetCellValue(sheet, "E6", "Prev Money")
	for i, day := range report.Days {
		row := i + 7
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), day.Date)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), day.Rents)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), day.Money)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), day.PrevRents)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), day.PrevMoney)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// buildReportPDF renders a minimal PDF for a revenue report.
func buildReportPDF(report application.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Revenue Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Window: %s", report.Label))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Positive: %.2f", report.Positive))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Negative: %.2f", report.Negative))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(45, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Rents", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Money", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Prev", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Prev Money", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, day := range report.Days {
		pdf.CellFormat(45, 6, day.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, strconv.Itoa(day.Rents), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, day.Money, "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, strconv.Itoa(day.PrevRents), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, day.PrevMoney, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
