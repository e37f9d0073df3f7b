package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func gradePtr(g float64) *float64 {
	return &g
}

func TestComputeGPA_EmptyAndUngraded(t *testing.T) {
	assert.Equal(t, 0.0, ComputeGPA(nil))
	assert.Equal(t, 0.0, ComputeGPA([]Enrollment{}))

	ungraded := []Enrollment{
		{Semester: "Fall 2024", CreditHours: 3},
		{Semester: "Spring 2025", CreditHours: 4},
	}
	assert.Equal(t, 0.0, ComputeGPA(ungraded), "ungraded enrollments must yield exactly 0, not NaN")
}

func TestComputeGPA_Weighting(t *testing.T) {
	enrollments := []Enrollment{
		{Grade: gradePtr(90), CreditHours: 3},
		{Grade: gradePtr(70), CreditHours: 1},
	}
	// (3.7*3 + 1.7*1) / 4
	assert.InDelta(t, 3.2, ComputeGPA(enrollments), 1e-9)
}

func TestComputeGPA_UngradedContributeNothing(t *testing.T) {
	enrollments := []Enrollment{
		{Grade: gradePtr(97), CreditHours: 3},
		{Semester: "Fall 2024", CreditHours: 6}, // ungraded, must not dilute
	}
	assert.InDelta(t, 4.0, ComputeGPA(enrollments), 1e-9)
}

func TestComputeGPA_Pure(t *testing.T) {
	enrollments := []Enrollment{
		{Grade: gradePtr(85), CreditHours: 3},
		{Grade: gradePtr(72), CreditHours: 2},
	}
	first := ComputeGPA(enrollments)
	second := ComputeGPA(enrollments)
	assert.Equal(t, first, second)
	// Input must not be mutated
	assert.Equal(t, 85.0, *enrollments[0].Grade)
	assert.Equal(t, 3, enrollments[0].CreditHours)
}

func TestGradePoints_Breakpoints(t *testing.T) {
	tests := []struct {
		grade  float64
		points float64
	}{
		{100, 4.0},
		{97, 4.0},
		{96.999, 3.9},
		{93, 3.9},
		{92.999, 3.7},
		{90, 3.7},
		{87, 3.3},
		{83, 3.0},
		{80, 2.7},
		{77, 2.3},
		{73, 2.0},
		{70, 1.7},
		{67, 1.3},
		{63, 1.0},
		{60, 0.7},
		{59.999, 0.0},
		{0, 0.0},
		{-20, 0.0},  // out-of-range grades floor at 0.0 rather than erroring
		{150, 4.0},  // and cap at 4.0 above the table
	}

	for _, tc := range tests {
		assert.Equal(t, tc.points, GradePoints(tc.grade), "grade %v", tc.grade)
	}
}

func TestRecalculateGPA_StoresDerivedValue(t *testing.T) {
	s := &Student{
		Courses: []Enrollment{
			{Grade: gradePtr(93), CreditHours: 3},
		},
	}
	got := s.RecalculateGPA()
	assert.InDelta(t, 3.9, got, 1e-9)
	assert.Equal(t, got, s.GPA)
}
