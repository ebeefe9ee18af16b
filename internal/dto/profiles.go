package dto

import "github.com/kita-portal/kita-api/internal/models"

// ParentEntry is one parent user with profile and linked children.
type ParentEntry struct {
	User     models.User           `json:"user"`
	Profile  *models.ParentProfile `json:"profil,omitempty"`
	Children []models.LinkedChild  `json:"kinder"`
}

// ParentOverview backs the parents admin page.
type ParentOverview struct {
	Parents  []ParentEntry           `json:"eltern"`
	Children []models.ChildWithGroup `json:"alleKinder"`
}

// EmployeeEntry is one employee user with profile and linked teacher.
type EmployeeEntry struct {
	User    models.User             `json:"user"`
	Profile *models.EmployeeProfile `json:"profil,omitempty"`
	Teacher *models.Teacher         `json:"erzieher,omitempty"`
}

// EmployeeOverview backs the employees admin page.
type EmployeeOverview struct {
	Employees        []EmployeeEntry  `json:"mitarbeiter"`
	Teachers         []models.Teacher `json:"alleErzieher"`
	LinkedTeacherIDs []string         `json:"verknuepfteErzieherIds"`
}

// ParentArea is what a signed in parent sees.
type ParentArea struct {
	User     models.User           `json:"user"`
	Profile  *models.ParentProfile `json:"profil,omitempty"`
	Children []models.LinkedChild  `json:"kinder"`
}

// EmployeeArea is what a signed in employee sees.
type EmployeeArea struct {
	User    models.User                  `json:"user"`
	Profile *models.EmployeeProfile      `json:"profil,omitempty"`
	Teacher *models.Teacher              `json:"erzieher,omitempty"`
	Week    WeekRange                    `json:"woche"`
	Shifts  []models.ScheduleWithTeacher `json:"dienste"`
}
