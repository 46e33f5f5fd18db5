package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"feeledger/database"
	"feeledger/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

type ExportHandler struct{}

func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

type registerRow struct {
	models.LedgerEntry
	PRN          string
	RollNo       int
	StudentName  string
	Class        string
	Division     string
	CategoryName string
}

func registerQuery(class, academicYear string, categoryID string) ([]registerRow, error) {
	var rows []registerRow
	query := database.DB.Model(&models.LedgerEntry{}).
		Select("ledger_entries.*, students.prn, students.roll_no, students.name AS student_name, students.class, students.division, categories.name AS category_name").
		Joins("JOIN students ON students.id = ledger_entries.student_id").
		Joins("JOIN categories ON categories.id = ledger_entries.category_id")
	if class != "" {
		query = query.Where("students.class = ?", class)
	}
	if academicYear != "" {
		query = query.Where("ledger_entries.academic_year = ?", academicYear)
	}
	if categoryID != "" {
		query = query.Where("ledger_entries.category_id = ?", categoryID)
	}
	err := query.Order("students.class ASC, students.roll_no ASC").Scan(&rows).Error
	return rows, err
}

// ExportExcel downloads the fee register as a styled spreadsheet.
// @Summary Export fee register as Excel
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param class query string false "filter by class"
// @Param academic_year query string false "filter by academic year"
// @Param category_id query int false "filter by category"
// @Success 200 {file} file "xlsx file"
// @Failure 500 {object} Response "query or file generation failed"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	rows, err := registerQuery(c.Query("class"), c.Query("academic_year"), c.Query("category_id"))
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "query failed"))
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Fee Register"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	f.SetColWidth(sheetName, "A", "A", 16)
	f.SetColWidth(sheetName, "B", "B", 8)
	f.SetColWidth(sheetName, "C", "C", 28)
	f.SetColWidth(sheetName, "D", "E", 10)
	f.SetColWidth(sheetName, "F", "F", 20)
	f.SetColWidth(sheetName, "G", "G", 12)
	f.SetColWidth(sheetName, "H", "J", 14)
	f.SetColWidth(sheetName, "K", "K", 10)

	headers := []string{"PRN", "Roll No", "Name", "Class", "Division", "Category", "Year", "Total", "Paid", "Pending", "Status"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	var totalAmount, paidAmount float64
	for i, entry := range rows {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), entry.PRN)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), entry.RollNo)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), entry.StudentName)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), entry.Class)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), entry.Division)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), entry.CategoryName)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), entry.AcademicYear)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), entry.TotalAmount)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), entry.PaidAmount)
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), entry.Pending())
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", row), entry.Status)

		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("K%d", row), dataStyle)
		totalAmount += entry.TotalAmount
		paidAmount += entry.PaidAmount
	}

	summaryRow := len(rows) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "Total")
	f.MergeCell(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("G%d", summaryRow))
	f.SetCellValue(sheetName, fmt.Sprintf("H%d", summaryRow), totalAmount)
	f.SetCellValue(sheetName, fmt.Sprintf("I%d", summaryRow), paidAmount)
	f.SetCellValue(sheetName, fmt.Sprintf("J%d", summaryRow), totalAmount-paidAmount)
	f.SetCellValue(sheetName, fmt.Sprintf("K%d", summaryRow), fmt.Sprintf("%d rows", len(rows)))
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("K%d", summaryRow), summaryStyle)

	filename := fmt.Sprintf("fee_register_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "failed to generate Excel file")
		return
	}
}

// ExportCSV downloads payment events for a date range as CSV.
// @Summary Export payments as CSV
// @Tags export
// @Produce text/csv
// @Security BearerAuth
// @Param start_date query string true "start date (2024-01-01)"
// @Param end_date query string true "end date (2024-12-31)"
// @Success 200 {file} file "CSV file"
// @Failure 400 {object} Response "missing or malformed dates"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	startStr := c.Query("start_date")
	endStr := c.Query("end_date")
	if startStr == "" || endStr == "" {
		BadRequest(c, "start_date and end_date are required")
		return
	}

	start, err := time.ParseInLocation("2006-01-02", startStr, time.Local)
	if err != nil {
		BadRequest(c, "start_date must be formatted as 2006-01-02")
		return
	}
	end, err := time.ParseInLocation("2006-01-02", endStr, time.Local)
	if err != nil {
		BadRequest(c, "end_date must be formatted as 2006-01-02")
		return
	}
	end = end.Add(24*time.Hour - time.Second)

	var events []models.PaymentEvent
	if err := database.DB.Preload("Student").
		Where("paid_at >= ? AND paid_at <= ?", start, end).
		Order("paid_at DESC").
		Find(&events).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "query failed"))
		return
	}

	buf := new(bytes.Buffer)
	// BOM so spreadsheets open the file as UTF-8
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	headers := []string{"Receipt", "PRN", "Student", "Class", "Amount", "Mode", "Remarks", "Paid At"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "failed to generate CSV")
		return
	}

	for _, event := range events {
		row := []string{
			event.ReceiptNumber,
			event.Student.PRN,
			event.Student.Name,
			event.Student.Class,
			fmt.Sprintf("%.2f", event.Amount),
			event.Mode,
			event.Remarks,
			event.PaidAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "failed to generate CSV")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "failed to generate CSV")
		return
	}

	filename := fmt.Sprintf("payments_%s_%s.csv", startStr, endStr)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
