package services

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyilmaz/registrar/internal/app/models"
	"github.com/tyilmaz/registrar/internal/app/models/dto"
	"github.com/tyilmaz/registrar/internal/pkg/apperrors"
)

type serviceFixture struct {
	students  *fakeStudentStore
	courses   *fakeCourseStore
	sequences *fakeSequenceStore
	service   *StudentService
}

func newServiceFixture() *serviceFixture {
	students := newFakeStudentStore()
	courses := newFakeCourseStore()
	sequences := newFakeSequenceStore()
	return &serviceFixture{
		students:  students,
		courses:   courses,
		sequences: sequences,
		service:   NewStudentService(students, courses, sequences),
	}
}

func validCreateRequest(email string) *dto.CreateStudentRequest {
	return &dto.CreateStudentRequest{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      email,
		Department: "Computer Science",
	}
}

func (f *serviceFixture) addCourse(t *testing.T, code string, hours int) *models.Course {
	t.Helper()
	course := &models.Course{
		ID:          uuid.New(),
		CourseCode:  code,
		Title:       code + " title",
		CreditHours: hours,
		IsActive:    true,
	}
	require.NoError(t, f.courses.Create(context.Background(), course))
	return course
}

func TestCreateStudent_AssignsSequentialIdentifier(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	first, err := f.service.CreateStudent(ctx, validCreateRequest("ada@example.edu"))
	require.NoError(t, err)
	second, err := f.service.CreateStudent(ctx, validCreateRequest("grace@example.edu"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.StudentID)
	assert.Equal(t, int64(2), second.StudentID)
	assert.True(t, first.IsActive)
	assert.Empty(t, first.Courses)
	assert.Equal(t, 0.0, first.GPA)
	assert.False(t, first.EnrollmentDate.IsZero())
}

func TestCreateStudent_Validation(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*dto.CreateStudentRequest)
	}{
		{"missing first name", func(r *dto.CreateStudentRequest) { r.FirstName = " " }},
		{"missing last name", func(r *dto.CreateStudentRequest) { r.LastName = "" }},
		{"missing department", func(r *dto.CreateStudentRequest) { r.Department = "" }},
		{"bad email", func(r *dto.CreateStudentRequest) { r.Email = "not-an-email" }},
		{"bad enrollment date", func(r *dto.CreateStudentRequest) { r.EnrollmentDate = "2024-13-45" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest("ada@example.edu")
			tc.mutate(req)
			_, err := f.service.CreateStudent(ctx, req)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}

	// Nothing persisted, nothing drawn from the sequence
	students, _ := f.students.GetAll(ctx)
	assert.Empty(t, students)
	id, err := f.sequences.Next(ctx, models.StudentIDSequence)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestCreateStudent_DuplicateEmail(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	_, err := f.service.CreateStudent(ctx, validCreateRequest("ada@example.edu"))
	require.NoError(t, err)

	_, err = f.service.CreateStudent(ctx, validCreateRequest("ada@example.edu"))
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestCreateStudent_SequenceFailure(t *testing.T) {
	f := newServiceFixture()
	f.sequences.err = apperrors.ErrStorageUnavailable
	ctx := context.Background()

	_, err := f.service.CreateStudent(ctx, validCreateRequest("ada@example.edu"))
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)

	// No student may be persisted with a partial or default identifier
	students, _ := f.students.GetAll(ctx)
	assert.Empty(t, students)
}

func TestCreateStudent_ConcurrentIdentifiersDistinctAndGapless(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	const n = 50

	ids := make([]int64, n)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			student, err := f.service.CreateStudent(ctx, validCreateRequest(uuid.NewString()+"@example.edu"))
			if err != nil {
				errs <- err
				return
			}
			ids[i] = student.StudentID
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for i := 0; i < n; i++ {
		assert.Equal(t, int64(i+1), ids[i], "identifiers must be distinct with no gaps")
	}
}

func TestUpdateStudent_PreservesIdentifier(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	created, err := f.service.CreateStudent(ctx, validCreateRequest("ada@example.edu"))
	require.NoError(t, err)

	updated, err := f.service.UpdateStudent(ctx, created.StudentID, &dto.UpdateStudentRequest{
		StudentID:  9999, // must be ignored
		FirstName:  "Ada",
		LastName:   "King",
		Email:      "ada@example.edu",
		Department: "Mathematics",
	})
	require.NoError(t, err)
	assert.Equal(t, created.StudentID, updated.StudentID)

	stored, err := f.students.GetByID(ctx, created.StudentID)
	require.NoError(t, err)
	assert.Equal(t, created.StudentID, stored.StudentID)
	assert.Equal(t, "King", stored.LastName)
	assert.Equal(t, "Mathematics", stored.Department)
}

func TestUpdateStudent_NotFound(t *testing.T) {
	f := newServiceFixture()
	_, err := f.service.UpdateStudent(context.Background(), 42, &dto.UpdateStudentRequest{
		FirstName: "A", LastName: "B", Email: "a@b.edu", Department: "CS",
	})
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestEnrollInCourse(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	course := f.addCourse(t, "CS101", 3)

	student, err := f.service.CreateStudent(ctx, validCreateRequest("ada@example.edu"))
	require.NoError(t, err)

	enrolled, err := f.service.EnrollInCourse(ctx, student.StudentID, course.ID, "Fall 2024")
	require.NoError(t, err)
	require.Len(t, enrolled.Courses, 1)
	assert.Equal(t, course.ID, enrolled.Courses[0].CourseID)
	assert.Equal(t, 3, enrolled.Courses[0].CreditHours)
	assert.Nil(t, enrolled.Courses[0].Grade)
	assert.Equal(t, 0.0, enrolled.GPA)

	// Duplicate (course, semester) fails; a different semester succeeds
	_, err = f.service.EnrollInCourse(ctx, student.StudentID, course.ID, "Fall 2024")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled)

	again, err := f.service.EnrollInCourse(ctx, student.StudentID, course.ID, "Spring 2025")
	require.NoError(t, err)
	assert.Len(t, again.Courses, 2)
}

func TestEnrollInCourse_Failures(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	course := f.addCourse(t, "CS101", 3)

	student, err := f.service.CreateStudent(ctx, validCreateRequest("ada@example.edu"))
	require.NoError(t, err)

	_, err = f.service.EnrollInCourse(ctx, 42, course.ID, "Fall 2024")
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	_, err = f.service.EnrollInCourse(ctx, student.StudentID, uuid.New(), "Fall 2024")
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)

	_, err = f.service.EnrollInCourse(ctx, student.StudentID, course.ID, "  ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestDropCourse(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	course := f.addCourse(t, "CS101", 3)
	other := f.addCourse(t, "MATH201", 4)

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

	// (4.0*3 + 1.7*4) / 7
	stored, _ := f.students.GetByID(ctx, student.StudentID)
	assert.InDelta(t, (4.0*3+1.7*4)/7, stored.GPA, 1e-9)

	dropped, err := f.service.DropCourse(ctx, student.StudentID, course.ID)
	require.NoError(t, err)
	require.Len(t, dropped.Courses, 1)
	assert.InDelta(t, 1.7, dropped.GPA, 1e-9)

	// Dropping an unknown course is a no-op, not an error
	unchanged, err := f.service.DropCourse(ctx, student.StudentID, uuid.New())
	require.NoError(t, err)
	assert.Len(t, unchanged.Courses, 1)
	assert.InDelta(t, 1.7, unchanged.GPA, 1e-9)
}

func TestRecordGrade(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	course := f.addCourse(t, "CS101", 3)

	student, err := f.service.CreateStudent(ctx, validCreateRequest("ada@example.edu"))
	require.NoError(t, err)
	_, err = f.service.EnrollInCourse(ctx, student.StudentID, course.ID, "Fall 2024")
	require.NoError(t, err)

	graded, err := f.service.RecordGrade(ctx, student.StudentID, course.ID, "93")
	require.NoError(t, err)
	require.NotNil(t, graded.Courses[0].Grade)
	assert.Equal(t, 93.0, *graded.Courses[0].Grade)
	assert.InDelta(t, 3.9, graded.GPA, 1e-9)

	// Non-numeric input stores "ungraded" and zeroes the GPA, not an error
	ungraded, err := f.service.RecordGrade(ctx, student.StudentID, course.ID, "incomplete")
	require.NoError(t, err)
	assert.Nil(t, ungraded.Courses[0].Grade)
	assert.Equal(t, 0.0, ungraded.GPA)

	_, err = f.service.RecordGrade(ctx, student.StudentID, uuid.New(), "80")
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotFound)
}

func TestParseGrade(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{"92.5", gradeValue(92.5)},
		{" 80 ", gradeValue(80)},
		{"0", gradeValue(0)},
		{"-5", gradeValue(-5)}, // permissive: out-of-range values are stored as-is
		{"", nil},
		{"abc", nil},
		{"NaN", nil},
		{"+Inf", nil},
	}

	for _, tc := range tests {
		got := ParseGrade(tc.raw)
		if tc.want == nil {
			assert.Nil(t, got, "raw %q", tc.raw)
		} else {
			require.NotNil(t, got, "raw %q", tc.raw)
			assert.Equal(t, *tc.want, *got)
		}
	}
}

func gradeValue(g float64) *float64 {
	return &g
}

func TestSearchStudents_FilterParsing(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	_, err := f.service.SearchStudents(ctx, dto.SearchStudentsQuery{MinGPA: "high"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.service.SearchStudents(ctx, dto.SearchStudentsQuery{MinCourses: "two"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.service.SearchStudents(ctx, dto.SearchStudentsQuery{
		Name:       " lovelace ",
		Department: "Computer Science",
		MinGPA:     "3.5",
		Status:     "inactive",
		MinCourses: "2",
	})
	require.NoError(t, err)

	filter := f.students.lastFilter
	assert.Equal(t, "lovelace", filter.Name)
	assert.Equal(t, "Computer Science", filter.Department)
	require.NotNil(t, filter.MinGPA)
	assert.Equal(t, 3.5, *filter.MinGPA)
	require.NotNil(t, filter.Active)
	assert.False(t, *filter.Active)
	require.NotNil(t, filter.MinCourses)
	assert.Equal(t, 2, *filter.MinCourses)
}

func TestGetStudent_FiltersDanglingCourseReferences(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	course := f.addCourse(t, "CS101", 3)
	doomed := f.addCourse(t, "CS999", 3)

	student, err := f.service.CreateStudent(ctx, validCreateRequest("ada@example.edu"))
	require.NoError(t, err)
	_, err = f.service.EnrollInCourse(ctx, student.StudentID, course.ID, "Fall 2024")
	require.NoError(t, err)
	_, err = f.service.EnrollInCourse(ctx, student.StudentID, doomed.ID, "Fall 2024")
	require.NoError(t, err)

	// Simulate a crash mid-cascade: the course is gone but the student
	// still references it. The reader must filter the dangling entry.
	require.NoError(t, f.courses.Delete(ctx, doomed.ID))

	resp, err := f.service.GetStudent(ctx, student.StudentID)
	require.NoError(t, err)
	require.Len(t, resp.Courses, 1)
	assert.Equal(t, "CS101", resp.Courses[0].Course.CourseCode)
}
