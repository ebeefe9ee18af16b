package dto

import "github.com/kita-portal/kita-api/internal/models"

// DailyOverview is the public projection shown on the dashboard and the kiosk.
type DailyOverview struct {
	Date          string                       `json:"datum"`
	Time          string                       `json:"uhrzeit"`
	Birthdays     []models.ChildWithGroup      `json:"geburtstage"`
	OnDuty        []models.ScheduleWithTeacher `json:"imDienst"`
	Meals         []models.Meal                `json:"mahlzeiten"`
	Announcements []models.Announcement        `json:"ankuendigungen"`
}

// AdminSummary feeds the admin dashboard shell.
type AdminSummary struct {
	Groups              int `json:"gruppen"`
	Children            int `json:"kinder"`
	Teachers            int `json:"erzieher"`
	Users               int `json:"benutzer"`
	ActiveAnnouncements int `json:"aktiveAnkuendigungen"`
}
