package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tyilmaz/registrar/internal/app/models"
	"github.com/tyilmaz/registrar/internal/pkg/apperrors"
	"github.com/tyilmaz/registrar/internal/pkg/dberrors"
	"github.com/tyilmaz/registrar/internal/pkg/logger"
)

const studentColumns = `student_id, first_name, last_name, email, department, enrollment_date, is_active, address, courses, gpa`

// StudentSearchFilter holds the optional predicates of a student search.
// Nil pointer fields are skipped entirely.
type StudentSearchFilter struct {
	Name       string
	Department string
	MinGPA     *float64
	Active     *bool
	MinCourses *int
}

// StudentRepository handles student database operations. Each student is one
// row; enrollments live embedded in the row's courses column, so every
// enrollment mutation is a single-row read-modify-write.
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new student row. The caller must have assigned the
// student identifier from the sequence already.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	address, courses, err := marshalEmbedded(student)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO students (` + studentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.Exec(ctx, query,
		student.StudentID, student.FirstName, student.LastName, student.Email,
		student.Department, student.EnrollmentDate, student.IsActive,
		address, courses, student.GPA)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_email_key") {
			logger.Warn().Str("email", student.Email).Msg("Attempted to create student with duplicate email")
			return apperrors.ErrEmailAlreadyExists
		}
		if dberrors.IsDuplicateConstraintError(err, "students_pkey") {
			logger.Warn().Int64("studentID", student.StudentID).Msg("Attempted to create student with duplicate identifier")
			return apperrors.ErrStudentIDExists
		}
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.NewConflictError("student conflicts with an existing record")
		}
		logger.Error().Err(err).Int64("studentID", student.StudentID).Msg("Error executing create student query")
		return fmt.Errorf("%w: creating student: %v", apperrors.ErrStorageUnavailable, err)
	}

	logger.Info().Int64("studentID", student.StudentID).Str("email", student.Email).Msg("Student created successfully")
	return nil
}

// GetByID retrieves a student by identifier
func (r *StudentRepository) GetByID(ctx context.Context, studentID int64) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE student_id = $1`
	student, err := scanStudent(r.db.QueryRow(ctx, query, studentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("%w: retrieving student %d: %v", apperrors.ErrStorageUnavailable, studentID, err)
	}
	return student, nil
}

// GetAll retrieves all students ordered by identifier
func (r *StudentRepository) GetAll(ctx context.Context) ([]*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY student_id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: listing students: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return collectStudents(rows)
}

// UpdateProfile updates a student's profile fields. The identifier and the
// enrollment list are left untouched.
func (r *StudentRepository) UpdateProfile(ctx context.Context, student *models.Student) error {
	address, err := json.Marshal(student.Address)
	if err != nil {
		return fmt.Errorf("failed to encode address: %w", err)
	}

	query := `
		UPDATE students
		SET first_name = $1, last_name = $2, email = $3, department = $4,
		    enrollment_date = $5, is_active = $6, address = $7
		WHERE student_id = $8
	`

	cmdTag, err := r.db.Exec(ctx, query,
		student.FirstName, student.LastName, student.Email, student.Department,
		student.EnrollmentDate, student.IsActive, address, student.StudentID)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Int64("studentID", student.StudentID).Msg("Error executing update student query")
		return fmt.Errorf("%w: updating student %d: %v", apperrors.ErrStorageUnavailable, student.StudentID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// SaveEnrollments writes back a student's enrollment list together with the
// GPA derived from it. This is the single write path of every enrollment
// mutation; concurrent writers to the same student are last-write-wins.
func (r *StudentRepository) SaveEnrollments(ctx context.Context, studentID int64, enrollments []models.Enrollment, gpa float64) error {
	if enrollments == nil {
		enrollments = []models.Enrollment{}
	}
	courses, err := json.Marshal(enrollments)
	if err != nil {
		return fmt.Errorf("failed to encode enrollments: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE students SET courses = $1, gpa = $2 WHERE student_id = $3`,
		courses, gpa, studentID)

	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error writing enrollments")
		return fmt.Errorf("%w: saving enrollments of student %d: %v", apperrors.ErrStorageUnavailable, studentID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// Delete removes a student row. Deleting a student has no effect on courses.
func (r *StudentRepository) Delete(ctx context.Context, studentID int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM students WHERE student_id = $1`, studentID)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error executing delete student query")
		return fmt.Errorf("%w: deleting student %d: %v", apperrors.ErrStorageUnavailable, studentID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	logger.Info().Int64("studentID", studentID).Msg("Student deleted")
	return nil
}

// FindByCourse returns every student with at least one enrollment referencing
// the course. Used by the cascade delete and the credit-hour propagation.
func (r *StudentRepository) FindByCourse(ctx context.Context, courseID uuid.UUID) ([]*models.Student, error) {
	query := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE EXISTS (
			SELECT 1 FROM jsonb_array_elements(courses) AS enrollment
			WHERE enrollment->>'courseId' = $1
		)
		ORDER BY student_id
	`

	rows, err := r.db.Query(ctx, query, courseID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: finding students by course %s: %v", apperrors.ErrStorageUnavailable, courseID, err)
	}
	defer rows.Close()

	return collectStudents(rows)
}

// likeEscaper neutralizes LIKE wildcards in user input so a search for "100%"
// matches the literal text
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildSearchQuery translates the filter into a select over the students
// table. Absent filter fields contribute no predicate at all.
func buildSearchQuery(sb squirrel.StatementBuilderType, filter StudentSearchFilter) squirrel.SelectBuilder {
	builder := sb.Select(studentColumns).
		From("students").
		OrderBy("last_name", "first_name")

	if filter.Name != "" {
		pattern := "%" + likeEscaper.Replace(filter.Name) + "%"
		builder = builder.Where(squirrel.Or{
			squirrel.ILike{"first_name": pattern},
			squirrel.ILike{"last_name": pattern},
		})
	}
	if filter.Department != "" {
		builder = builder.Where(squirrel.Eq{"department": filter.Department})
	}
	if filter.MinGPA != nil {
		builder = builder.Where(squirrel.GtOrEq{"gpa": *filter.MinGPA})
	}
	if filter.Active != nil {
		builder = builder.Where(squirrel.Eq{"is_active": *filter.Active})
	}
	if filter.MinCourses != nil {
		builder = builder.Where(squirrel.Expr("jsonb_array_length(courses) >= ?", *filter.MinCourses))
	}

	return builder
}

// Search returns students matching the filter, ordered by last then first name
func (r *StudentRepository) Search(ctx context.Context, filter StudentSearchFilter) ([]*models.Student, error) {
	sql, args, err := buildSearchQuery(r.sb, filter).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building student search SQL")
		return nil, fmt.Errorf("failed to build student search query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: searching students: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return collectStudents(rows)
}

// ListDepartments returns the distinct departments students belong to
func (r *StudentRepository) ListDepartments(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT department FROM students ORDER BY department`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing departments: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var departments []string
	for rows.Next() {
		var department string
		if err := rows.Scan(&department); err != nil {
			return nil, err
		}
		departments = append(departments, department)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return departments, nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (*models.Student, error) {
	var (
		student models.Student
		address []byte
		courses []byte
	)

	err := row.Scan(
		&student.StudentID, &student.FirstName, &student.LastName, &student.Email,
		&student.Department, &student.EnrollmentDate, &student.IsActive,
		&address, &courses, &student.GPA,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(address, &student.Address); err != nil {
		return nil, fmt.Errorf("failed to decode address: %w", err)
	}
	if err := json.Unmarshal(courses, &student.Courses); err != nil {
		return nil, fmt.Errorf("failed to decode enrollments: %w", err)
	}

	return &student, nil
}

func collectStudents(rows pgx.Rows) ([]*models.Student, error) {
	var students []*models.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return students, nil
}

func marshalEmbedded(student *models.Student) (address, courses []byte, err error) {
	address, err = json.Marshal(student.Address)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode address: %w", err)
	}

	enrollments := student.Courses
	if enrollments == nil {
		enrollments = []models.Enrollment{}
	}
	courses, err = json.Marshal(enrollments)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode enrollments: %w", err)
	}

	return address, courses, nil
}
