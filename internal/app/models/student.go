package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tyilmaz/registrar/internal/pkg/apperrors"
)

// Address is the student's postal address, stored embedded in the student record.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

// Enrollment links a student to one course for one semester. The credit hours
// are a snapshot taken at enrollment time, not a live join against the course.
type Enrollment struct {
	CourseID    uuid.UUID `json:"courseId"`
	Grade       *float64  `json:"grade,omitempty"` // nil means not yet graded
	Semester    string    `json:"semester" example:"Fall 2024"`
	CreditHours int       `json:"creditHours"`
}

// Graded reports whether a numeric grade has been recorded for the enrollment.
func (e Enrollment) Graded() bool {
	return e.Grade != nil
}

// Student defines the student model based on the 'students' table.
// Enrollments are embedded in the record; GPA is derived from them and
// refreshed on every enrollment mutation.
type Student struct {
	StudentID      int64        `json:"studentId" db:"student_id" example:"1"` // Assigned from the studentId sequence, immutable
	FirstName      string       `json:"firstName" db:"first_name"`
	LastName       string       `json:"lastName" db:"last_name"`
	Email          string       `json:"email" db:"email"`
	Department     string       `json:"department" db:"department"`
	EnrollmentDate time.Time    `json:"enrollmentDate" db:"enrollment_date"`
	IsActive       bool         `json:"isActive" db:"is_active"`
	Address        Address      `json:"address" db:"address"`
	Courses        []Enrollment `json:"courses" db:"courses"`
	GPA            float64      `json:"gpa" db:"gpa"`
}

// CanEnroll reports whether the student may enroll in the course for the given
// semester. It is false only when an enrollment for the same course and the
// same semester already exists; the same course in another semester is fine.
func (s *Student) CanEnroll(courseID uuid.UUID, semester string) bool {
	for _, e := range s.Courses {
		if e.CourseID == courseID && e.Semester == semester {
			return false
		}
	}
	return true
}

// Enroll appends a new ungraded enrollment for the course, snapshotting the
// course's current credit hours. Enrollment order is insertion order.
func (s *Student) Enroll(course *Course, semester string) error {
	if !s.CanEnroll(course.ID, semester) {
		return apperrors.ErrAlreadyEnrolled
	}
	s.Courses = append(s.Courses, Enrollment{
		CourseID:    course.ID,
		Semester:    semester,
		CreditHours: course.CreditHours,
	})
	return nil
}

// Drop removes every enrollment referencing the course, across all semesters.
// Dropping a course the student is not enrolled in is a no-op, not an error.
// It returns the number of enrollments removed.
func (s *Student) Drop(courseID uuid.UUID) int {
	kept := s.Courses[:0]
	removed := 0
	for _, e := range s.Courses {
		if e.CourseID == courseID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.Courses = kept
	return removed
}

// SetGrade records a grade on the first enrollment matching the course.
// A nil grade resets the enrollment to ungraded.
func (s *Student) SetGrade(courseID uuid.UUID, grade *float64) error {
	for i := range s.Courses {
		if s.Courses[i].CourseID == courseID {
			s.Courses[i].Grade = grade
			return nil
		}
	}
	return apperrors.ErrEnrollmentNotFound
}

// SetCreditHours propagates a course's new credit hours onto every enrollment
// referencing it. Returns the number of enrollments touched.
func (s *Student) SetCreditHours(courseID uuid.UUID, hours int) int {
	updated := 0
	for i := range s.Courses {
		if s.Courses[i].CourseID == courseID {
			s.Courses[i].CreditHours = hours
			updated++
		}
	}
	return updated
}

// RecalculateGPA refreshes the stored GPA from the current enrollments.
func (s *Student) RecalculateGPA() float64 {
	s.GPA = ComputeGPA(s.Courses)
	return s.GPA
}
