package dto

import (
	"github.com/tyilmaz/registrar/internal/app/models"
)

// ScheduleRequest carries the optional schedule block of a course payload
type ScheduleRequest struct {
	Days []string `json:"days"`
	Time string   `json:"time" example:"10:00-11:30"`
	Room string   `json:"room" example:"B-204"`
}

// CreateCourseRequest represents the data needed to create a catalog entry
type CreateCourseRequest struct {
	CourseCode    string           `json:"courseCode" binding:"required" example:"CS101"`
	Title         string           `json:"title" binding:"required"`
	Description   string           `json:"description,omitempty"`
	CreditHours   int              `json:"creditHours" binding:"required"`
	Department    string           `json:"department,omitempty"`
	Prerequisites []string         `json:"prerequisites,omitempty"`
	IsActive      *bool            `json:"isActive,omitempty"` // defaults to true
	Schedule      *ScheduleRequest `json:"schedule,omitempty"`
}

// UpdateCourseRequest updates catalog data. A credit-hour change is propagated
// to every enrollment snapshot referencing the course.
type UpdateCourseRequest struct {
	Title         string           `json:"title,omitempty"`
	Description   string           `json:"description,omitempty"`
	CreditHours   int              `json:"creditHours" binding:"required"`
	Department    string           `json:"department,omitempty"`
	Prerequisites []string         `json:"prerequisites,omitempty"`
	IsActive      *bool            `json:"isActive,omitempty"`
	Schedule      *ScheduleRequest `json:"schedule,omitempty"`
}

// CourseSummary is the compact course view embedded in enrollment responses
type CourseSummary struct {
	ID          string `json:"id"`
	CourseCode  string `json:"courseCode"`
	Title       string `json:"title"`
	CreditHours int    `json:"creditHours"`
}

// NewCourseSummary builds the compact view of a course
func NewCourseSummary(course *models.Course) CourseSummary {
	return CourseSummary{
		ID:          course.ID.String(),
		CourseCode:  course.CourseCode,
		Title:       course.Title,
		CreditHours: course.CreditHours,
	}
}

// EnrolledStudent is one student row on the course detail view, carrying the
// grade and semester of that student's enrollment in the course.
type EnrolledStudent struct {
	StudentID int64    `json:"studentId"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Grade     *float64 `json:"grade,omitempty"`
	Semester  string   `json:"semester"`
}

// CourseDetailResponse is a course plus the students enrolled in it
type CourseDetailResponse struct {
	Course           *models.Course    `json:"course"`
	EnrolledStudents []EnrolledStudent `json:"enrolledStudents"`
}
