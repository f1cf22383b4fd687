package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tapin-io/attendance-api/internal/dto"
	"github.com/tapin-io/attendance-api/pkg/export"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
)

// ExportService renders event reports into downloadable documents.
type ExportService struct {
	csv *export.CSVExporter
	pdf *export.PDFExporter
	loc *time.Location
}

// NewExportService wires an ExportService.
func NewExportService(csv *export.CSVExporter, pdf *export.PDFExporter, loc *time.Location) *ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportService{csv: csv, pdf: pdf, loc: loc}
}

var reportHeaders = []string{"#", "Student No", "Name", "Checked In At", "Offset (min)", "Bucket"}

// EventReportCSV renders the report roster as CSV. Returns the bytes and a
// suggested filename.
func (s *ExportService) EventReportCSV(report *dto.EventReport) ([]byte, string, error) {
	data := s.dataset(report)
	payload, err := s.csv.Render(data)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return payload, s.filename(report, "csv"), nil
}

// EventReportPDF renders the report with its arrival summary as PDF.
func (s *ExportService) EventReportPDF(report *dto.EventReport) ([]byte, string, error) {
	data := s.dataset(report)
	summary := []string{
		fmt.Sprintf("Date: %s  %s - %s", report.Event.Date.Format("2006-01-02"), report.Event.StartTime, report.Event.EndTime),
		fmt.Sprintf("Check-ins: %d", report.Stats.Total),
		fmt.Sprintf("Early: %d (%d%%)   On time: %d (%d%%)   Late: %d (%d%%)",
			report.Stats.EarlyCount, report.Stats.EarlyPct,
			report.Stats.OnTimeCount, report.Stats.OnTimePct,
			report.Stats.LateCount, report.Stats.LatePct),
		fmt.Sprintf("Median arrival: %s", report.Stats.MedianLabel),
	}
	payload, err := s.pdf.Render(data, report.Event.Title+" - Attendance Report", summary)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return payload, s.filename(report, "pdf"), nil
}

func (s *ExportService) dataset(report *dto.EventReport) export.Dataset {
	rows := make([]map[string]string, 0, len(report.CheckIns))
	var start time.Time
	if parsed, err := CombineDateClock(report.Event.Date, report.Event.StartTime, s.loc); err == nil {
		start = parsed
	}
	for i, detail := range report.CheckIns {
		offset := ""
		bucket := ""
		if !start.IsZero() {
			minutes := ArrivalOffsetMinutes(detail.Timestamp.In(s.loc), start)
			offset = strconv.Itoa(minutes)
			bucket = string(BucketOffset(minutes))
		}
		rows = append(rows, map[string]string{
			"#":             strconv.Itoa(i + 1),
			"Student No":    detail.StudentNo,
			"Name":          detail.FirstName + " " + detail.LastName,
			"Checked In At": detail.Timestamp.In(s.loc).Format("2006-01-02 15:04:05"),
			"Offset (min)":  offset,
			"Bucket":        bucket,
		})
	}
	return export.Dataset{Headers: reportHeaders, Rows: rows}
}

func (s *ExportService) filename(report *dto.EventReport, ext string) string {
	return fmt.Sprintf("attendance-%s-%s.%s", report.Event.ID, report.Event.Date.Format("20060102"), ext)
}
