package models

import "time"

// Teacher represents a staff member who can be scheduled.
type Teacher struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"vorname"`
	LastName  string    `db:"last_name" json:"nachname"`
	Email     string    `db:"email" json:"email"`
	PhotoPath *string   `db:"photo_path" json:"fotoPath,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name for display.
func (t Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}
