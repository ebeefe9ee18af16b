package models

import "time"

// MealType is the slot of a meal within a day.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealSnack     MealType = "snack"
)

// Label returns the German display name of the slot.
func (t MealType) Label() string {
	switch t {
	case MealBreakfast:
		return "Frühstück"
	case MealLunch:
		return "Mittagessen"
	case MealSnack:
		return "Snack"
	}
	return string(t)
}

// Meal is the planned dish for one date and slot.
type Meal struct {
	ID          string    `db:"id" json:"id"`
	Date        string    `db:"date" json:"datum"`
	Type        MealType  `db:"meal_type" json:"typ"`
	Description string    `db:"description" json:"beschreibung"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
