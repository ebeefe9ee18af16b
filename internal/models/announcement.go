package models

import "time"

// Priority ranks announcements; important ones are listed first.
type Priority string

const (
	PriorityNormal    Priority = "normal"
	PriorityImportant Priority = "important"
)

// Announcement is a notice shown between ValidFrom and ValidTo, both inclusive.
type Announcement struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"titel"`
	Message   string    `db:"message" json:"nachricht"`
	ValidFrom string    `db:"valid_from" json:"gueltigVon"`
	ValidTo   string    `db:"valid_to" json:"gueltigBis"`
	Priority  Priority  `db:"priority" json:"prioritaet"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
