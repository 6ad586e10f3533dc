package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	alarmapp "plantwatch/internal/alarms/application"
	alarms "plantwatch/internal/alarms/domain"
)

const exportTimeLayout = time.RFC3339

// ExportHandler renders alarm listings as XLSX or PDF downloads.
type ExportHandler struct {
	service *alarmapp.Service
}

// NewExportHandler constructs an export handler.
func NewExportHandler(service *alarmapp.Service) (*ExportHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("alarms export: nil service")
	}
	return &ExportHandler{service: service}, nil
}

// ServeHTTP handles /api/v1/exports/alarms.xlsx and /api/v1/exports/alarms.pdf.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	acknowledged, err := parseAcknowledgedQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	list, err := h.service.List(r.Context(), acknowledged)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	switch r.URL.Path {
	case "/api/v1/exports/alarms.xlsx":
		data, err := BuildAlarmsXLSX(list)
		if err != nil {
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="alarms.xlsx"`)
		_, _ = w.Write(data)
	case "/api/v1/exports/alarms.pdf":
		data, err := BuildAlarmsPDF(list)
		if err != nil {
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="alarms.pdf"`)
		_, _ = w.Write(data)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// BuildAlarmsXLSX renders an alarm listing as a spreadsheet.
func BuildAlarmsXLSX(list []alarms.Alarm) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "alarms"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Sensor", "Unit", "Severity", "Message", "Created", "Acknowledged", "Acked By", "Acked At"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, cell, header)
	}

	for row, alarm := range list {
		values := []any{
			alarm.ID,
			alarm.SensorName,
			alarm.SensorUnit,
			string(alarm.Severity),
			alarm.Message,
			alarm.CreatedAt.Format(exportTimeLayout),
			alarm.Acknowledged,
			alarm.AckedBy,
			formatOptionalTime(alarm.AckedAt),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildAlarmsPDF renders an alarm listing as a table of one line per alarm.
func BuildAlarmsPDF(list []alarms.Alarm) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Alarm Report")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(exportTimeLayout)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(45, 6, "Sensor", "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 6, "Severity", "1", 0, "C", false, 0, "")
	pdf.CellFormat(105, 6, "Message", "1", 0, "C", false, 0, "")
	pdf.CellFormat(42, 6, "Created", "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 6, "Acked", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Acked By", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, alarm := range list {
		acked := "no"
		if alarm.Acknowledged {
			acked = "yes"
		}
		pdf.CellFormat(45, 6, alarm.SensorName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(22, 6, string(alarm.Severity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(105, 6, alarm.Message, "1", 0, "L", false, 0, "")
		pdf.CellFormat(42, 6, alarm.CreatedAt.Format(exportTimeLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(22, 6, acked, "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, alarm.AckedBy, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatOptionalTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(exportTimeLayout)
}
