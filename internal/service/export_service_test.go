package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kita-portal/kita-api/internal/dto"
	"github.com/kita-portal/kita-api/internal/models"
	appErrors "github.com/kita-portal/kita-api/pkg/errors"
	"github.com/kita-portal/kita-api/pkg/export"
)

type stubWeekPlans struct {
	asked string
}

func (s *stubWeekPlans) scheduleWeek() *dto.ScheduleWeek {
	return &dto.ScheduleWeek{
		Week: dto.WeekRange{From: "2024-03-11", To: "2024-03-17"},
		Entries: []models.ScheduleWithTeacher{{
			ScheduleEntry:    models.ScheduleEntry{Date: "2024-03-12", StartTime: "07:00", EndTime: "15:00"},
			TeacherFirstName: "Erika",
			TeacherLastName:  "Muster",
		}},
	}
}

type scheduleWeeks struct{ *stubWeekPlans }

func (s scheduleWeeks) Week(ctx context.Context, weekParam string) (*dto.ScheduleWeek, error) {
	s.asked = weekParam
	return s.scheduleWeek(), nil
}

type mealWeeks struct{ *stubWeekPlans }

func (s mealWeeks) Week(ctx context.Context, weekParam string) (*dto.MealWeek, error) {
	s.asked = weekParam
	return &dto.MealWeek{
		Week: dto.WeekRange{From: "2024-03-11", To: "2024-03-15", Dates: []string{"2024-03-11", "2024-03-12", "2024-03-13", "2024-03-14", "2024-03-15"}},
		Meals: []models.Meal{
			{Date: "2024-03-12", Type: models.MealLunch, Description: "Nudeln"},
			{Date: "2024-03-12", Type: models.MealBreakfast, Description: "Müsli"},
		},
	}, nil
}

type capturePDF struct {
	data  export.Dataset
	title string
}

func (c *capturePDF) Render(data export.Dataset, title, subtitle string) ([]byte, error) {
	c.data, c.title = data, title
	return []byte("%PDF"), nil
}

func newExportFixture() (*ExportService, *stubWeekPlans, *capturePDF) {
	plans := &stubWeekPlans{}
	pdf := &capturePDF{}
	return NewExportService(scheduleWeeks{plans}, mealWeeks{plans}, zap.NewNop(), nil, pdf), plans, pdf
}

func TestExportScheduleCSV(t *testing.T) {
	svc, plans, _ := newExportFixture()

	file, err := svc.Schedule(context.Background(), "2024-03-13", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-13", plans.asked)
	assert.Equal(t, "dienstplan-2024-03-11.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(file.Payload), "\ufeff")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Dienstplan Woche vom 2024-03-11 bis 2024-03-17", lines[0])
	assert.Equal(t, "Datum;Tag;Erzieher;Beginn;Ende", lines[1])
	assert.Equal(t, "2024-03-12;Dienstag;Erika Muster;07:00;15:00", lines[2])
}

func TestExportMealsPDFHasOneRowPerWeekday(t *testing.T) {
	svc, _, pdf := newExportFixture()

	file, err := svc.Meals(context.Background(), "", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "speiseplan-2024-03-11.pdf", file.Filename)
	assert.Equal(t, "Speiseplan", pdf.title)

	require.Len(t, pdf.data.Rows, 5)
	tuesday := pdf.data.Rows[1]
	assert.Equal(t, "Dienstag", tuesday["Tag"])
	assert.Equal(t, "Müsli", tuesday["Frühstück"])
	assert.Equal(t, "Nudeln", tuesday["Mittagessen"])
	assert.Empty(t, tuesday["Snack"])
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, format)

	_, err = ParseExportFormat("xlsx")
	requireCode(t, err, appErrors.ErrValidation)
}
