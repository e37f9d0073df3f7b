package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tyilmaz/registrar/internal/app/models"
	"github.com/tyilmaz/registrar/internal/pkg/apperrors"
	"github.com/tyilmaz/registrar/internal/pkg/dberrors"
	"github.com/tyilmaz/registrar/internal/pkg/logger"
)

const courseColumns = `id, course_code, title, description, credit_hours, department, prerequisites, is_active, schedule`

// CourseRepository handles database operations for the course catalog
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		db: db,
	}
}

// Create inserts a new catalog entry, assigning its ID when unset
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	if course.Prerequisites == nil {
		course.Prerequisites = []string{}
	}

	schedule, err := marshalSchedule(course.Schedule)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO courses (` + courseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.Exec(ctx, query,
		course.ID, course.CourseCode, course.Title, course.Description,
		course.CreditHours, course.Department, course.Prerequisites,
		course.IsActive, schedule)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "courses_course_code_key") {
			logger.Warn().Str("courseCode", course.CourseCode).Msg("Attempted to create course with duplicate code")
			return apperrors.ErrCourseCodeExists
		}
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.NewConflictError("course conflicts with an existing record")
		}
		logger.Error().Err(err).Str("courseCode", course.CourseCode).Msg("Error executing create course query")
		return fmt.Errorf("%w: creating course: %v", apperrors.ErrStorageUnavailable, err)
	}

	logger.Info().Str("courseCode", course.CourseCode).Str("courseID", course.ID.String()).Msg("Course created successfully")
	return nil
}

// GetByID retrieves a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	course, err := scanCourse(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("%w: retrieving course %s: %v", apperrors.ErrStorageUnavailable, id, err)
	}
	return course, nil
}

// GetByIDs retrieves several courses at once, keyed by their string ID.
// Missing IDs are simply absent from the map; readers use that to filter
// dangling enrollment references.
func (r *CourseRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[string]*models.Course, error) {
	courses := make(map[string]*models.Course, len(ids))
	if len(ids) == 0 {
		return courses, nil
	}

	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieving courses: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses[course.ID.String()] = course
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

// GetAll retrieves the whole catalog ordered by course code
func (r *CourseRepository) GetAll(ctx context.Context) ([]*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY course_code`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: listing courses: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

// Update rewrites a catalog entry. The course code stays unique across the
// catalog; the ID never changes.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	if course.Prerequisites == nil {
		course.Prerequisites = []string{}
	}

	schedule, err := marshalSchedule(course.Schedule)
	if err != nil {
		return err
	}

	query := `
		UPDATE courses
		SET course_code = $1, title = $2, description = $3, credit_hours = $4,
		    department = $5, prerequisites = $6, is_active = $7, schedule = $8
		WHERE id = $9
	`

	cmdTag, err := r.db.Exec(ctx, query,
		course.CourseCode, course.Title, course.Description, course.CreditHours,
		course.Department, course.Prerequisites, course.IsActive, schedule, course.ID)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "courses_course_code_key") {
			return apperrors.ErrCourseCodeExists
		}
		logger.Error().Err(err).Str("courseID", course.ID.String()).Msg("Error executing update course query")
		return fmt.Errorf("%w: updating course %s: %v", apperrors.ErrStorageUnavailable, course.ID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}

	return nil
}

// Delete removes the course row. The caller is responsible for cascading the
// removal through student enrollments first; see CourseService.DeleteCourse.
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Str("courseID", id.String()).Msg("Error executing delete course query")
		return fmt.Errorf("%w: deleting course %s: %v", apperrors.ErrStorageUnavailable, id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}

	logger.Info().Str("courseID", id.String()).Msg("Course deleted")
	return nil
}

func scanCourse(row rowScanner) (*models.Course, error) {
	var (
		course   models.Course
		schedule []byte
	)

	err := row.Scan(
		&course.ID, &course.CourseCode, &course.Title, &course.Description,
		&course.CreditHours, &course.Department, &course.Prerequisites,
		&course.IsActive, &schedule,
	)
	if err != nil {
		return nil, err
	}

	if len(schedule) > 0 {
		course.Schedule = &models.Schedule{}
		if err := json.Unmarshal(schedule, course.Schedule); err != nil {
			return nil, fmt.Errorf("failed to decode schedule: %w", err)
		}
	}

	return &course, nil
}

func marshalSchedule(schedule *models.Schedule) ([]byte, error) {
	if schedule == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schedule: %w", err)
	}
	return encoded, nil
}
