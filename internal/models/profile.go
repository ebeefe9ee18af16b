package models

import "time"

// RelationKind describes how a parent relates to a linked child.
type RelationKind string

const (
	RelationMother   RelationKind = "mother"
	RelationFather   RelationKind = "father"
	RelationGuardian RelationKind = "guardian"
)

// Valid reports whether k is one of the known relationship kinds.
func (k RelationKind) Valid() bool {
	switch k {
	case RelationMother, RelationFather, RelationGuardian:
		return true
	}
	return false
}

// ParentProfile holds data specific to users with the parent role.
type ParentProfile struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Phone     *string   `db:"phone" json:"telefon,omitempty"`
	Address   *string   `db:"address" json:"adresse,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// EmployeeProfile holds data specific to users with the employee role.
type EmployeeProfile struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	TeacherID *string   `db:"teacher_id" json:"erzieherId,omitempty"`
	Position  *string   `db:"position" json:"position,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ChildLink associates a parent profile with a child.
type ChildLink struct {
	ID           string       `db:"id" json:"id"`
	ParentID     string       `db:"parent_id" json:"elternId"`
	ChildID      string       `db:"child_id" json:"kindId"`
	Relationship RelationKind `db:"relationship" json:"beziehung"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
}

// LinkedChild is a child as seen from one parent profile.
type LinkedChild struct {
	LinkID       string       `db:"link_id" json:"linkId"`
	ParentID     string       `db:"parent_id" json:"elternId"`
	Relationship RelationKind `db:"relationship" json:"beziehung"`
	ChildWithGroup
}
