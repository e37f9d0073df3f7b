package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/tyilmaz/registrar/internal/app/models"
	"github.com/tyilmaz/registrar/internal/app/repositories"
)

// Services defined in this package:
// - StudentService: student records, enrollment mutations, grade recording
// - CourseService: course catalog, credit-hour propagation, cascade delete

// StudentStore is the persistence surface the services need for students.
// Implemented by repositories.StudentRepository.
type StudentStore interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, studentID int64) (*models.Student, error)
	GetAll(ctx context.Context) ([]*models.Student, error)
	UpdateProfile(ctx context.Context, student *models.Student) error
	SaveEnrollments(ctx context.Context, studentID int64, enrollments []models.Enrollment, gpa float64) error
	Delete(ctx context.Context, studentID int64) error
	FindByCourse(ctx context.Context, courseID uuid.UUID) ([]*models.Student, error)
	Search(ctx context.Context, filter repositories.StudentSearchFilter) ([]*models.Student, error)
	ListDepartments(ctx context.Context) ([]string, error)
}

// CourseStore is the persistence surface for the course catalog.
// Implemented by repositories.CourseRepository.
type CourseStore interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[string]*models.Course, error)
	GetAll(ctx context.Context) ([]*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SequenceStore issues unique identifiers from named counters.
// Implemented by repositories.SequenceRepository.
type SequenceStore interface {
	Next(ctx context.Context, name string) (int64, error)
}
