package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kita-portal/kita-api/internal/dto"
	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/pkg/calendar"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
	"github.com/kita-portal/kita-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

var weekdayNames = [...]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"}

var mealSlots = []models.MealType{models.MealBreakfast, models.MealLunch, models.MealSnack}

type scheduleWeekProvider interface {
	Week(ctx context.Context, weekParam string) (*dto.ScheduleWeek, error)
}

type mealWeekProvider interface {
	Week(ctx context.Context, weekParam string) (*dto.MealWeek, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title, subtitle string) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the weekly plans for printing.
type ExportService struct {
	schedules scheduleWeekProvider
	meals     mealWeekProvider
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(schedules scheduleWeekProvider, meals mealWeekProvider, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter(true)
	}
	return &ExportService{schedules: schedules, meals: meals, csv: csv, pdf: pdf, logger: logger}
}

// ParseExportFormat validates a format path segment.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
}

// Schedule renders the Dienstplan of the week containing weekParam.
func (s *ExportService) Schedule(ctx context.Context, weekParam string, format ExportFormat) (*ExportFile, error) {
	week, err := s.schedules.Week(ctx, weekParam)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{Headers: []string{"Datum", "Tag", "Erzieher", "Beginn", "Ende"}}
	for _, entry := range week.Entries {
		data.Rows = append(data.Rows, map[string]string{
			"Datum":    entry.Date,
			"Tag":      weekdayName(entry.Date),
			"Erzieher": strings.TrimSpace(entry.TeacherFirstName + " " + entry.TeacherLastName),
			"Beginn":   entry.StartTime,
			"Ende":     entry.EndTime,
		})
	}

	title := "Dienstplan"
	return s.render(data, format, title, weekSubtitle(week.Week), "dienstplan-"+week.Week.From)
}

// Meals renders the Speiseplan of the week containing weekParam, one row per weekday.
func (s *ExportService) Meals(ctx context.Context, weekParam string, format ExportFormat) (*ExportFile, error) {
	week, err := s.meals.Week(ctx, weekParam)
	if err != nil {
		return nil, err
	}

	headers := []string{"Datum", "Tag"}
	for _, slot := range mealSlots {
		headers = append(headers, slot.Label())
	}
	data := export.Dataset{Headers: headers}

	byDate := make(map[string]map[string]string, len(week.Week.Dates))
	for _, date := range week.Week.Dates {
		row := map[string]string{"Datum": date, "Tag": weekdayName(date)}
		byDate[date] = row
		data.Rows = append(data.Rows, row)
	}
	for _, meal := range week.Meals {
		if row, ok := byDate[meal.Date]; ok {
			row[meal.Type.Label()] = meal.Description
		}
	}

	return s.render(data, format, "Speiseplan", weekSubtitle(week.Week), "speiseplan-"+week.Week.From)
}

func (s *ExportService) render(data export.Dataset, format ExportFormat, title, subtitle, basename string) (*ExportFile, error) {
	data.Caption = title + " " + subtitle
	var (
		payload     []byte
		err         error
		contentType string
	)
	switch format {
	case FormatCSV:
		payload, err = s.csv.Render(data)
		contentType = "text/csv; charset=utf-8"
	case FormatPDF:
		payload, err = s.pdf.Render(data, title, subtitle)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	if err != nil {
		s.logger.Error("render export", zap.String("file", basename), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("%s.%s", basename, format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func weekSubtitle(week dto.WeekRange) string {
	return fmt.Sprintf("Woche vom %s bis %s", week.From, week.To)
}

func weekdayName(date string) string {
	day, err := time.Parse(calendar.DateLayout, date)
	if err != nil {
		return ""
	}
	return weekdayNames[day.Weekday()]
}
