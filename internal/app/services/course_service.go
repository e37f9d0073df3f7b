package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tyilmaz/registrar/internal/app/models"
	"github.com/tyilmaz/registrar/internal/app/models/dto"
	"github.com/tyilmaz/registrar/internal/pkg/apperrors"
	"github.com/tyilmaz/registrar/internal/pkg/logger"
	"github.com/tyilmaz/registrar/internal/pkg/validation"
)

// CourseService handles catalog operations. Course removal and credit-hour
// edits fan out to the student records referencing the course; that fan-out is
// per-student and not atomic across students, so partial failures are
// surfaced, never swallowed.
type CourseService struct {
	courseRepo  CourseStore
	studentRepo StudentStore
}

// NewCourseService creates a new course service instance
func NewCourseService(courseRepo CourseStore, studentRepo StudentStore) *CourseService {
	return &CourseService{
		courseRepo:  courseRepo,
		studentRepo: studentRepo,
	}
}

// validateCourse validates catalog data before database operations
func validateCourse(course *models.Course) error {
	if strings.TrimSpace(course.CourseCode) == "" {
		return apperrors.NewValidationError("courseCode", "course code is required")
	}
	if strings.TrimSpace(course.Title) == "" {
		return apperrors.NewValidationError("title", "title is required")
	}
	if !validation.IsValidCreditHours(course.CreditHours) {
		return apperrors.ErrInvalidCreditHours
	}
	return nil
}

// CreateCourse adds a new catalog entry
func (s *CourseService) CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*models.Course, error) {
	course := &models.Course{
		CourseCode:    req.CourseCode,
		Title:         req.Title,
		CreditHours:   req.CreditHours,
		Prerequisites: req.Prerequisites,
		IsActive:      true,
	}
	if req.Description != "" {
		course.Description = &req.Description
	}
	if req.Department != "" {
		course.Department = &req.Department
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	if req.Schedule != nil {
		course.Schedule = &models.Schedule{Days: req.Schedule.Days, Time: req.Schedule.Time, Room: req.Schedule.Room}
	}

	if err := validateCourse(course); err != nil {
		return nil, err
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	return course, nil
}

// GetCourse retrieves a single catalog entry
func (s *CourseService) GetCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

// ListCourses returns the whole catalog
func (s *CourseService) ListCourses(ctx context.Context) ([]*models.Course, error) {
	return s.courseRepo.GetAll(ctx)
}

// GetCourseDetail returns a course together with the students enrolled in it.
// For students enrolled in the course over several semesters the first
// enrollment is shown.
func (s *CourseService) GetCourseDetail(ctx context.Context, id uuid.UUID) (*dto.CourseDetailResponse, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	students, err := s.studentRepo.FindByCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &dto.CourseDetailResponse{
		Course:           course,
		EnrolledStudents: make([]dto.EnrolledStudent, 0, len(students)),
	}
	for _, student := range students {
		for _, e := range student.Courses {
			if e.CourseID != id {
				continue
			}
			detail.EnrolledStudents = append(detail.EnrolledStudents, dto.EnrolledStudent{
				StudentID: student.StudentID,
				FirstName: student.FirstName,
				LastName:  student.LastName,
				Email:     student.Email,
				Grade:     e.Grade,
				Semester:  e.Semester,
			})
			break
		}
	}

	return detail, nil
}

// UpdateCourse rewrites a catalog entry. When the credit hours change, the new
// value is propagated to every enrollment snapshot referencing the course and
// each affected student's GPA is refreshed. Propagation is best-effort across
// students; any failure makes the whole call report a storage error so the
// caller knows to verify and repair.
func (s *CourseService) UpdateCourse(ctx context.Context, id uuid.UUID, req *dto.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previousHours := course.CreditHours

	if req.Title != "" {
		course.Title = req.Title
	}
	if req.Description != "" {
		course.Description = &req.Description
	}
	if req.Department != "" {
		course.Department = &req.Department
	}
	if req.Prerequisites != nil {
		course.Prerequisites = req.Prerequisites
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	if req.Schedule != nil {
		course.Schedule = &models.Schedule{Days: req.Schedule.Days, Time: req.Schedule.Time, Room: req.Schedule.Room}
	}
	course.CreditHours = req.CreditHours

	if err := validateCourse(course); err != nil {
		return nil, err
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}

	if course.CreditHours != previousHours {
		if err := s.propagateCreditHours(ctx, course.ID, course.CreditHours); err != nil {
			return course, err
		}
	}

	return course, nil
}

// DeleteCourse removes a catalog entry after cascading the removal through
// every student enrolled in it, refreshing their GPAs. When any student
// update fails the course row is kept and the call reports a storage error:
// the course must never silently disappear while students still reference it.
// Readers filter dangling references, so a crash mid-cascade degrades to
// stale but harmless data.
func (s *CourseService) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	if _, err := s.courseRepo.GetByID(ctx, id); err != nil {
		return err
	}

	students, err := s.studentRepo.FindByCourse(ctx, id)
	if err != nil {
		return err
	}

	var cascadeErr error
	for _, student := range students {
		if student.Drop(id) == 0 {
			continue
		}
		student.RecalculateGPA()
		if err := s.studentRepo.SaveEnrollments(ctx, student.StudentID, student.Courses, student.GPA); err != nil {
			logger.Error().Err(err).Int64("studentID", student.StudentID).Str("courseID", id.String()).
				Msg("Cascade delete failed for student")
			cascadeErr = errors.Join(cascadeErr, err)
		}
	}

	if cascadeErr != nil {
		return fmt.Errorf("%w: course cascade delete incomplete: %v", apperrors.ErrStorageUnavailable, cascadeErr)
	}

	return s.courseRepo.Delete(ctx, id)
}

// propagateCreditHours pushes a course's new credit hours into every student
// enrollment snapshot referencing it.
func (s *CourseService) propagateCreditHours(ctx context.Context, courseID uuid.UUID, hours int) error {
	students, err := s.studentRepo.FindByCourse(ctx, courseID)
	if err != nil {
		return err
	}

	var propagationErr error
	for _, student := range students {
		if student.SetCreditHours(courseID, hours) == 0 {
			continue
		}
		student.RecalculateGPA()
		if err := s.studentRepo.SaveEnrollments(ctx, student.StudentID, student.Courses, student.GPA); err != nil {
			logger.Error().Err(err).Int64("studentID", student.StudentID).Str("courseID", courseID.String()).
				Msg("Credit-hour propagation failed for student")
			propagationErr = errors.Join(propagationErr, err)
		}
	}

	if propagationErr != nil {
		return fmt.Errorf("%w: credit-hour propagation incomplete: %v", apperrors.ErrStorageUnavailable, propagationErr)
	}

	return nil
}
