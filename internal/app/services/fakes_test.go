package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tyilmaz/registrar/internal/app/models"
	"github.com/tyilmaz/registrar/internal/app/repositories"
	"github.com/tyilmaz/registrar/internal/pkg/apperrors"
)

// fakeSequenceStore issues identifiers from in-memory counters under a mutex,
// mirroring the atomic increment contract of the real store.
type fakeSequenceStore struct {
	mu       sync.Mutex
	counters map[string]int64
	err      error
}

func newFakeSequenceStore() *fakeSequenceStore {
	return &fakeSequenceStore{counters: make(map[string]int64)}
}

func (f *fakeSequenceStore) Next(_ context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.counters[name]++
	return f.counters[name], nil
}

// fakeStudentStore keeps students in a map. saveErrFor injects per-student
// write failures to exercise partial cascade behavior.
type fakeStudentStore struct {
	mu         sync.Mutex
	students   map[int64]*models.Student
	saveErrFor map[int64]error
	lastFilter repositories.StudentSearchFilter
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{
		students:   make(map[int64]*models.Student),
		saveErrFor: make(map[int64]error),
	}
}

func cloneStudent(s *models.Student) *models.Student {
	clone := *s
	clone.Courses = append([]models.Enrollment(nil), s.Courses...)
	return &clone
}

func (f *fakeStudentStore) Create(_ context.Context, student *models.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.students[student.StudentID]; exists {
		return apperrors.ErrStudentIDExists
	}
	for _, existing := range f.students {
		if existing.Email == student.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	f.students[student.StudentID] = cloneStudent(student)
	return nil
}

func (f *fakeStudentStore) GetByID(_ context.Context, studentID int64) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	student, ok := f.students[studentID]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return cloneStudent(student), nil
}

func (f *fakeStudentStore) GetAll(_ context.Context) ([]*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	students := make([]*models.Student, 0, len(f.students))
	for _, s := range f.students {
		students = append(students, cloneStudent(s))
	}
	return students, nil
}

func (f *fakeStudentStore) UpdateProfile(_ context.Context, student *models.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.students[student.StudentID]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	updated := cloneStudent(student)
	updated.Courses = append([]models.Enrollment(nil), stored.Courses...)
	updated.GPA = stored.GPA
	f.students[student.StudentID] = updated
	return nil
}

func (f *fakeStudentStore) SaveEnrollments(_ context.Context, studentID int64, enrollments []models.Enrollment, gpa float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.saveErrFor[studentID]; err != nil {
		return err
	}
	stored, ok := f.students[studentID]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	stored.Courses = append([]models.Enrollment(nil), enrollments...)
	stored.GPA = gpa
	return nil
}

func (f *fakeStudentStore) Delete(_ context.Context, studentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.students[studentID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	delete(f.students, studentID)
	return nil
}

func (f *fakeStudentStore) FindByCourse(_ context.Context, courseID uuid.UUID) ([]*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var students []*models.Student
	for _, s := range f.students {
		for _, e := range s.Courses {
			if e.CourseID == courseID {
				students = append(students, cloneStudent(s))
				break
			}
		}
	}
	return students, nil
}

func (f *fakeStudentStore) Search(_ context.Context, filter repositories.StudentSearchFilter) ([]*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	return nil, nil
}

func (f *fakeStudentStore) ListDepartments(_ context.Context) ([]string, error) {
	return nil, nil
}

// fakeCourseStore keeps the catalog in a map
type fakeCourseStore struct {
	mu      sync.Mutex
	courses map[uuid.UUID]*models.Course
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{courses: make(map[uuid.UUID]*models.Course)}
}

func (f *fakeCourseStore) Create(_ context.Context, course *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	for _, existing := range f.courses {
		if existing.CourseCode == course.CourseCode {
			return apperrors.ErrCourseCodeExists
		}
	}
	clone := *course
	f.courses[course.ID] = &clone
	return nil
}

func (f *fakeCourseStore) GetByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	course, ok := f.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	clone := *course
	return &clone, nil
}

func (f *fakeCourseStore) GetByIDs(_ context.Context, ids []uuid.UUID) (map[string]*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	courses := make(map[string]*models.Course, len(ids))
	for _, id := range ids {
		if course, ok := f.courses[id]; ok {
			clone := *course
			courses[id.String()] = &clone
		}
	}
	return courses, nil
}

func (f *fakeCourseStore) GetAll(_ context.Context) ([]*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	courses := make([]*models.Course, 0, len(f.courses))
	for _, c := range f.courses {
		clone := *c
		courses = append(courses, &clone)
	}
	return courses, nil
}

func (f *fakeCourseStore) Update(_ context.Context, course *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.courses[course.ID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	clone := *course
	f.courses[course.ID] = &clone
	return nil
}

func (f *fakeCourseStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	delete(f.courses, id)
	return nil
}
