package models

import "github.com/google/uuid"

// Schedule describes when and where a course meets.
type Schedule struct {
	Days []string `json:"days"`
	Time string   `json:"time"`
	Room string   `json:"room"`
}

// Course represents an entry in the course catalog.
type Course struct {
	ID            uuid.UUID `json:"id" db:"id"`
	CourseCode    string    `json:"courseCode" db:"course_code" example:"CS101"`
	Title         string    `json:"title" db:"title"`
	Description   *string   `json:"description,omitempty" db:"description"` // Nullable
	CreditHours   int       `json:"creditHours" db:"credit_hours" example:"3"`
	Department    *string   `json:"department,omitempty" db:"department"`
	Prerequisites []string  `json:"prerequisites" db:"prerequisites"`
	IsActive      bool      `json:"isActive" db:"is_active"`
	Schedule      *Schedule `json:"schedule,omitempty" db:"schedule"`
}
