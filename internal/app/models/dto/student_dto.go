package dto

import (
	"time"

	"github.com/tyilmaz/registrar/internal/app/models"
)

// AddressRequest carries the optional address block of a student payload
type AddressRequest struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

// CreateStudentRequest represents the data needed to register a new student.
// The student identifier is never part of the payload; it is assigned from
// the studentId sequence on creation.
type CreateStudentRequest struct {
	FirstName      string          `json:"firstName" binding:"required"`
	LastName       string          `json:"lastName" binding:"required"`
	Email          string          `json:"email" binding:"required"`
	Department     string          `json:"department" binding:"required"`
	EnrollmentDate string          `json:"enrollmentDate,omitempty" example:"2024-09-01"` // defaults to today
	IsActive       *bool           `json:"isActive,omitempty"`                            // defaults to true
	Address        *AddressRequest `json:"address,omitempty"`
}

// UpdateStudentRequest represents a profile update. A studentId in the payload
// is ignored: the stored identifier is immutable.
type UpdateStudentRequest struct {
	StudentID      int64           `json:"studentId,omitempty"`
	FirstName      string          `json:"firstName" binding:"required"`
	LastName       string          `json:"lastName" binding:"required"`
	Email          string          `json:"email" binding:"required"`
	Department     string          `json:"department" binding:"required"`
	EnrollmentDate string          `json:"enrollmentDate,omitempty" example:"2024-09-01"`
	IsActive       *bool           `json:"isActive,omitempty"`
	Address        *AddressRequest `json:"address,omitempty"`
}

// EnrollRequest enrolls a student in a course for one semester
type EnrollRequest struct {
	CourseID string `json:"courseId" binding:"required" example:"8b2e9f04-31f7-4b52-9e6a-52a9f1a2b3c4"`
	Semester string `json:"semester" binding:"required" example:"Fall 2024"`
}

// GradeRequest carries a raw grade value. Non-numeric or empty input resets
// the enrollment to ungraded rather than failing.
type GradeRequest struct {
	Grade string `json:"grade" example:"92.5"`
}

// SearchStudentsQuery holds the student search filters as raw query values
type SearchStudentsQuery struct {
	Name       string `form:"name"`
	Department string `form:"department"`
	MinGPA     string `form:"minGpa"`
	Status     string `form:"status"` // "active" or "inactive"
	MinCourses string `form:"minCourses"`
}

// EnrollmentResponse is one enrollment entry hydrated with its course. Entries
// whose course no longer exists are filtered out before this is built.
type EnrollmentResponse struct {
	Course      CourseSummary `json:"course"`
	Grade       *float64      `json:"grade,omitempty"`
	Semester    string        `json:"semester"`
	CreditHours int           `json:"creditHours"`
}

// StudentResponse is the full student view returned by the API
type StudentResponse struct {
	StudentID      int64                `json:"studentId"`
	FirstName      string               `json:"firstName"`
	LastName       string               `json:"lastName"`
	Email          string               `json:"email"`
	Department     string               `json:"department"`
	EnrollmentDate time.Time            `json:"enrollmentDate"`
	IsActive       bool                 `json:"isActive"`
	Address        models.Address       `json:"address"`
	Courses        []EnrollmentResponse `json:"courses"`
	GPA            float64              `json:"gpa"`
}

// NewStudentResponse builds the API view of a student. Enrollments referencing
// a course missing from coursesByID (deleted mid-cascade) are dropped from the
// view; the stored record is repaired separately by the cascade itself.
func NewStudentResponse(student *models.Student, coursesByID map[string]*models.Course) *StudentResponse {
	resp := &StudentResponse{
		StudentID:      student.StudentID,
		FirstName:      student.FirstName,
		LastName:       student.LastName,
		Email:          student.Email,
		Department:     student.Department,
		EnrollmentDate: student.EnrollmentDate,
		IsActive:       student.IsActive,
		Address:        student.Address,
		Courses:        make([]EnrollmentResponse, 0, len(student.Courses)),
		GPA:            student.GPA,
	}

	for _, e := range student.Courses {
		course, ok := coursesByID[e.CourseID.String()]
		if !ok {
			continue
		}
		resp.Courses = append(resp.Courses, EnrollmentResponse{
			Course:      NewCourseSummary(course),
			Grade:       e.Grade,
			Semester:    e.Semester,
			CreditHours: e.CreditHours,
		})
	}

	return resp
}
