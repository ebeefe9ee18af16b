package models

import "time"

// ScheduleEntry is a teacher's shift on one date. Times are zero padded HH:MM values.
type ScheduleEntry struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"erzieherId"`
	Date      string    `db:"date" json:"datum"`
	StartTime string    `db:"start_time" json:"startZeit"`
	EndTime   string    `db:"end_time" json:"endZeit"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ScheduleWithTeacher adds the teacher's display data to a shift.
type ScheduleWithTeacher struct {
	ScheduleEntry
	TeacherFirstName string  `db:"teacher_first_name" json:"erzieherVorname"`
	TeacherLastName  string  `db:"teacher_last_name" json:"erzieherNachname"`
	TeacherPhotoPath *string `db:"teacher_photo_path" json:"erzieherFotoPath,omitempty"`
}
