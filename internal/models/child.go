package models

import "time"

// Child represents an enrolled child. BirthDate is stored as YYYY-MM-DD.
type Child struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"vorname"`
	LastName  string    `db:"last_name" json:"nachname"`
	BirthDate string    `db:"birth_date" json:"geburtstag"`
	GroupID   *string   `db:"group_id" json:"gruppeId,omitempty"`
	PhotoPath *string   `db:"photo_path" json:"fotoPath,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ChildWithGroup adds the display data of the child's group.
type ChildWithGroup struct {
	Child
	GroupName  *string `db:"group_name" json:"gruppeName,omitempty"`
	GroupColor *string `db:"group_color" json:"gruppeFarbe,omitempty"`
}
