package dto

import (
	"github.com/kita-portal/kita-api/internal/models"
	"github.com/kita-portal/kita-api/pkg/calendar"
)

// WeekRange describes a displayed week and its neighbours for navigation.
type WeekRange struct {
	From     string   `json:"von"`
	To       string   `json:"bis"`
	Previous string   `json:"vorherigeWoche"`
	Next     string   `json:"naechsteWoche"`
	Dates    []string `json:"tage"`
}

// NewWeekRange describes week for the response.
func NewWeekRange(week calendar.Week) WeekRange {
	return WeekRange{
		From:     week.From(),
		To:       week.To(),
		Previous: week.Previous(),
		Next:     week.Next(),
		Dates:    week.Dates(),
	}
}

// ScheduleWeek is the Dienstplan for one Monday to Sunday week.
type ScheduleWeek struct {
	Week     WeekRange                    `json:"woche"`
	Teachers []models.Teacher             `json:"erzieher"`
	Entries  []models.ScheduleWithTeacher `json:"eintraege"`
}

// MealWeek is the Speiseplan for one Monday to Friday week.
type MealWeek struct {
	Week  WeekRange     `json:"woche"`
	Meals []models.Meal `json:"mahlzeiten"`
}
