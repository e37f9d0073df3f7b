package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tyilmaz/registrar/internal/app/models"
	"github.com/tyilmaz/registrar/internal/app/models/dto"
	"github.com/tyilmaz/registrar/internal/app/repositories"
	"github.com/tyilmaz/registrar/internal/pkg/apperrors"
	"github.com/tyilmaz/registrar/internal/pkg/validation"
)

// StudentService handles student-related operations. It is the only writer of
// student records: identifier assignment is delegated to the sequence store on
// creation, enrollment legality to the model's ledger methods, and the stored
// GPA is refreshed after every enrollment mutation.
type StudentService struct {
	studentRepo  StudentStore
	courseRepo   CourseStore
	sequenceRepo SequenceStore
}

// NewStudentService creates a new student service instance
func NewStudentService(studentRepo StudentStore, courseRepo CourseStore, sequenceRepo SequenceStore) *StudentService {
	return &StudentService{
		studentRepo:  studentRepo,
		courseRepo:   courseRepo,
		sequenceRepo: sequenceRepo,
	}
}

// validateStudentInput checks the shared fields of create and update payloads
// and parses the enrollment date, defaulting it to today when empty.
func validateStudentInput(firstName, lastName, email, department, enrollmentDate string) (time.Time, error) {
	if !validation.IsValidName(strings.TrimSpace(firstName)) {
		return time.Time{}, apperrors.NewValidationError("firstName", "first name is required and at most 100 characters")
	}
	if !validation.IsValidName(strings.TrimSpace(lastName)) {
		return time.Time{}, apperrors.NewValidationError("lastName", "last name is required and at most 100 characters")
	}
	if strings.TrimSpace(department) == "" {
		return time.Time{}, apperrors.NewValidationError("department", "department is required")
	}
	if !validation.IsValidEmail(email) {
		return time.Time{}, apperrors.NewValidationError("email", "invalid email address")
	}

	if enrollmentDate == "" {
		return time.Now(), nil
	}
	parsed, err := time.Parse("2006-01-02", enrollmentDate)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("enrollmentDate", "invalid enrollment date")
	}
	return parsed, nil
}

// CreateStudent registers a new student. The identifier comes from the
// studentId sequence and only from it; when the sequence cannot issue one the
// student is not persisted at all.
func (s *StudentService) CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*models.Student, error) {
	enrollmentDate, err := validateStudentInput(req.FirstName, req.LastName, req.Email, req.Department, req.EnrollmentDate)
	if err != nil {
		return nil, err
	}

	studentID, err := s.sequenceRepo.Next(ctx, models.StudentIDSequence)
	if err != nil {
		return nil, fmt.Errorf("assigning student identifier: %w", err)
	}

	student := &models.Student{
		StudentID:      studentID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Department:     req.Department,
		EnrollmentDate: enrollmentDate,
		IsActive:       true,
		Courses:        []models.Enrollment{},
	}
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}
	if req.Address != nil {
		student.Address = models.Address{Street: req.Address.Street, City: req.Address.City}
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	return student, nil
}

// GetStudent returns the hydrated view of a student: enrollments joined with
// their courses, dangling references filtered out.
func (s *StudentService) GetStudent(ctx context.Context, studentID int64) (*dto.StudentResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	courses, err := s.coursesOf(ctx, student)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponse(student, courses), nil
}

// ListStudents returns all students ordered by identifier
func (s *StudentService) ListStudents(ctx context.Context) ([]*models.Student, error) {
	return s.studentRepo.GetAll(ctx)
}

// UpdateStudent applies a profile update. The stored identifier is preserved
// verbatim no matter what the payload carries; enrollments and GPA are not
// touched by profile updates.
func (s *StudentService) UpdateStudent(ctx context.Context, studentID int64, req *dto.UpdateStudentRequest) (*models.Student, error) {
	enrollmentDate, err := validateStudentInput(req.FirstName, req.LastName, req.Email, req.Department, req.EnrollmentDate)
	if err != nil {
		return nil, err
	}

	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.Email = req.Email
	student.Department = req.Department
	student.EnrollmentDate = enrollmentDate
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}
	if req.Address != nil {
		student.Address = models.Address{Street: req.Address.Street, City: req.Address.City}
	}

	if err := s.studentRepo.UpdateProfile(ctx, student); err != nil {
		return nil, err
	}

	return student, nil
}

// DeleteStudent removes a student record. No cascade: courses are unaffected.
func (s *StudentService) DeleteStudent(ctx context.Context, studentID int64) error {
	return s.studentRepo.Delete(ctx, studentID)
}

// EnrollInCourse adds an enrollment for the semester, snapshotting the
// course's credit hours, and refreshes the stored GPA.
func (s *StudentService) EnrollInCourse(ctx context.Context, studentID int64, courseID uuid.UUID, semester string) (*models.Student, error) {
	if strings.TrimSpace(semester) == "" {
		return nil, apperrors.NewValidationError("semester", "semester is required")
	}

	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if err := student.Enroll(course, semester); err != nil {
		return nil, err
	}
	student.RecalculateGPA()

	if err := s.studentRepo.SaveEnrollments(ctx, student.StudentID, student.Courses, student.GPA); err != nil {
		return nil, err
	}

	return student, nil
}

// DropCourse removes every enrollment of the course, across semesters, and
// refreshes the stored GPA. Dropping a course the student is not enrolled in
// is a no-op.
func (s *StudentService) DropCourse(ctx context.Context, studentID int64, courseID uuid.UUID) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	student.Drop(courseID)
	student.RecalculateGPA()

	if err := s.studentRepo.SaveEnrollments(ctx, student.StudentID, student.Courses, student.GPA); err != nil {
		return nil, err
	}

	return student, nil
}

// RecordGrade parses the raw grade and sets it on the student's enrollment in
// the course, then refreshes the stored GPA. Non-numeric input is stored as
// ungraded, never rejected.
func (s *StudentService) RecordGrade(ctx context.Context, studentID int64, courseID uuid.UUID, rawGrade string) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if err := student.SetGrade(courseID, ParseGrade(rawGrade)); err != nil {
		return nil, err
	}
	student.RecalculateGPA()

	if err := s.studentRepo.SaveEnrollments(ctx, student.StudentID, student.Courses, student.GPA); err != nil {
		return nil, err
	}

	return student, nil
}

// SearchStudents parses the raw query filters and runs the search. Numeric
// filters that do not parse are rejected as validation errors.
func (s *StudentService) SearchStudents(ctx context.Context, query dto.SearchStudentsQuery) ([]*models.Student, error) {
	filter := repositories.StudentSearchFilter{
		Name:       strings.TrimSpace(query.Name),
		Department: strings.TrimSpace(query.Department),
	}

	if query.MinGPA != "" {
		minGPA, err := strconv.ParseFloat(query.MinGPA, 64)
		if err != nil {
			return nil, apperrors.NewValidationError("minGpa", "invalid GPA value")
		}
		filter.MinGPA = &minGPA
	}

	if query.Status != "" {
		active := query.Status == "active"
		filter.Active = &active
	}

	if query.MinCourses != "" {
		minCourses, err := strconv.Atoi(query.MinCourses)
		if err != nil {
			return nil, apperrors.NewValidationError("minCourses", "invalid course count")
		}
		filter.MinCourses = &minCourses
	}

	return s.studentRepo.Search(ctx, filter)
}

// ListDepartments returns the distinct departments of all students
func (s *StudentService) ListDepartments(ctx context.Context) ([]string, error) {
	return s.studentRepo.ListDepartments(ctx)
}

// coursesOf loads the courses referenced by a student's enrollments
func (s *StudentService) coursesOf(ctx context.Context, student *models.Student) (map[string]*models.Course, error) {
	ids := make([]uuid.UUID, 0, len(student.Courses))
	seen := make(map[uuid.UUID]bool, len(student.Courses))
	for _, e := range student.Courses {
		if !seen[e.CourseID] {
			seen[e.CourseID] = true
			ids = append(ids, e.CourseID)
		}
	}
	return s.courseRepo.GetByIDs(ctx, ids)
}

// ParseGrade converts raw grade input to a nullable numeric grade. Empty or
// non-numeric input, NaN and infinities all mean "not graded yet".
func ParseGrade(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	grade, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(grade) || math.IsInf(grade, 0) {
		return nil
	}
	return &grade
}
