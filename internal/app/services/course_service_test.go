package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyilmaz/registrar/internal/app/models"
	"github.com/tyilmaz/registrar/internal/app/models/dto"
	"github.com/tyilmaz/registrar/internal/pkg/apperrors"
)

type catalogFixture struct {
	students *fakeStudentStore
	courses  *fakeCourseStore
	catalog  *CourseService
	service  *StudentService
}

func newCatalogFixture() *catalogFixture {
	students := newFakeStudentStore()
	courses := newFakeCourseStore()
	return &catalogFixture{
		students: students,
		courses:  courses,
		catalog:  NewCourseService(courses, students),
		service:  NewStudentService(students, courses, newFakeSequenceStore()),
	}
}

func validCourseRequest(code string, hours int) *dto.CreateCourseRequest {
	return &dto.CreateCourseRequest{
		CourseCode:  code,
		Title:       code + " title",
		CreditHours: hours,
	}
}

func TestCreateCourse_Validation(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	_, err := f.catalog.CreateCourse(ctx, validCourseRequest("CS101", 0))
	assert.ErrorIs(t, err, apperrors.ErrInvalidCreditHours)

	_, err = f.catalog.CreateCourse(ctx, validCourseRequest("CS101", 7))
	assert.ErrorIs(t, err, apperrors.ErrInvalidCreditHours)

	_, err = f.catalog.CreateCourse(ctx, &dto.CreateCourseRequest{Title: "No code", CreditHours: 3})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.catalog.CreateCourse(ctx, &dto.CreateCourseRequest{CourseCode: "CS101", CreditHours: 3})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	course, err := f.catalog.CreateCourse(ctx, validCourseRequest("CS101", 3))
	require.NoError(t, err)
	assert.True(t, course.IsActive)
}

func TestCreateCourse_AcceptsAnyNonEmptyCode(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	// Codes are unique text, not a fixed format
	var course *models.Course
	var err error
	for _, code := range []string{"Bio-101", "CS101H", "ENGL1A", "7", "intro to pottery"} {
		course, err = f.catalog.CreateCourse(ctx, validCourseRequest(code, 3))
		require.NoError(t, err, code)
		assert.Equal(t, code, course.CourseCode)
	}
	assert.NotEqual(t, uuid.Nil, course.ID)

	_, err = f.catalog.CreateCourse(ctx, validCourseRequest("CS101", 4))
	assert.ErrorIs(t, err, apperrors.ErrCourseCodeExists)
}

func TestDeleteCourse_CascadesAcrossStudents(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	course, err := f.catalog.CreateCourse(ctx, validCourseRequest("CS101", 3))
	require.NoError(t, err)
	kept, err := f.catalog.CreateCourse(ctx, validCourseRequest("MATH201", 4))
	require.NoError(t, err)

	a, err := f.service.CreateStudent(ctx, validCreateRequest("a@example.edu"))
	require.NoError(t, err)
	b, err := f.service.CreateStudent(ctx, validCreateRequest("b@example.edu"))
	require.NoError(t, err)

	for _, id := range []int64{a.StudentID, b.StudentID} {
		_, err = f.service.EnrollInCourse(ctx, id, course.ID, "Fall 2024")
		require.NoError(t, err)
		_, err = f.service.EnrollInCourse(ctx, id, kept.ID, "Fall 2024")
		require.NoError(t, err)
		_, err = f.service.RecordGrade(ctx, id, course.ID, "97")
		require.NoError(t, err)
		_, err = f.service.RecordGrade(ctx, id, kept.ID, "70")
		require.NoError(t, err)
	}

	require.NoError(t, f.catalog.DeleteCourse(ctx, course.ID))

	_, err = f.courses.GetByID(ctx, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)

	// Neither student retains the enrollment, and GPA excludes the removed course
	for _, id := range []int64{a.StudentID, b.StudentID} {
		student, err := f.students.GetByID(ctx, id)
		require.NoError(t, err)
		require.Len(t, student.Courses, 1)
		assert.Equal(t, kept.ID, student.Courses[0].CourseID)
		assert.InDelta(t, 1.7, student.GPA, 1e-9)
	}
}

func TestDeleteCourse_PartialCascadeFailureReported(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	course, err := f.catalog.CreateCourse(ctx, validCourseRequest("CS101", 3))
	require.NoError(t, err)

	a, err := f.service.CreateStudent(ctx, validCreateRequest("a@example.edu"))
	require.NoError(t, err)
	b, err := f.service.CreateStudent(ctx, validCreateRequest("b@example.edu"))
	require.NoError(t, err)
	for _, id := range []int64{a.StudentID, b.StudentID} {
		_, err = f.service.EnrollInCourse(ctx, id, course.ID, "Fall 2024")
		require.NoError(t, err)
	}

	f.students.saveErrFor[b.StudentID] = errors.New("connection reset")

	err = f.catalog.DeleteCourse(ctx, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)

	// The course must not silently disappear while a student still references it
	_, err = f.courses.GetByID(ctx, course.ID)
	assert.NoError(t, err)
}

func TestDeleteCourse_NotFound(t *testing.T) {
	f := newCatalogFixture()
	err := f.catalog.DeleteCourse(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestUpdateCourse_PropagatesCreditHours(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	course, err := f.catalog.CreateCourse(ctx, validCourseRequest("CS101", 3))
	require.NoError(t, err)
	other, err := f.catalog.CreateCourse(ctx, validCourseRequest("MATH201", 4))
	require.NoError(t, err)

	student, err := f.service.CreateStudent(ctx, validCreateRequest("ada@example.edu"))
	require.NoError(t, err)
	_, err = f.service.EnrollInCourse(ctx, student.StudentID, course.ID, "Fall 2024")
	require.NoError(t, err)
	_, err = f.service.EnrollInCourse(ctx, student.StudentID, other.ID, "Fall 2024")
	require.NoError(t, err)
	_, err = f.service.RecordGrade(ctx, student.StudentID, course.ID, "97")
	require.NoError(t, err)
	_, err = f.service.RecordGrade(ctx, student.StudentID, other.ID, "70")
	require.NoError(t, err)

	updated, err := f.catalog.UpdateCourse(ctx, course.ID, &dto.UpdateCourseRequest{CreditHours: 6})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.CreditHours)

	stored, err := f.students.GetByID(ctx, student.StudentID)
	require.NoError(t, err)
	assert.Equal(t, 6, stored.Courses[0].CreditHours)
	// GPA reweighted by the new snapshot: (4.0*6 + 1.7*4) / 10
	assert.InDelta(t, (4.0*6+1.7*4)/10, stored.GPA, 1e-9)
}

func TestUpdateCourse_InvalidCreditHours(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	course, err := f.catalog.CreateCourse(ctx, validCourseRequest("CS101", 3))
	require.NoError(t, err)

	_, err = f.catalog.UpdateCourse(ctx, course.ID, &dto.UpdateCourseRequest{CreditHours: 9})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCreditHours)

	stored, err := f.courses.GetByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.CreditHours)
}

func TestGetCourseDetail_ListsEnrolledStudents(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	course, err := f.catalog.CreateCourse(ctx, validCourseRequest("CS101", 3))
	require.NoError(t, err)

	student, err := f.service.CreateStudent(ctx, validCreateRequest("ada@example.edu"))
	require.NoError(t, err)
	_, err = f.service.EnrollInCourse(ctx, student.StudentID, course.ID, "Fall 2024")
	require.NoError(t, err)
	_, err = f.service.RecordGrade(ctx, student.StudentID, course.ID, "88")
	require.NoError(t, err)

	detail, err := f.catalog.GetCourseDetail(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, detail.EnrolledStudents, 1)
	enrolled := detail.EnrolledStudents[0]
	assert.Equal(t, student.StudentID, enrolled.StudentID)
	assert.Equal(t, "Fall 2024", enrolled.Semester)
	require.NotNil(t, enrolled.Grade)
	assert.Equal(t, 88.0, *enrolled.Grade)
}
