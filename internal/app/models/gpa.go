package models

import "math"

// GradePoints maps a 0-100 grade to its 4.0-scale point value using the fixed
// step table. The table is monotonic but non-linear; breakpoints are strict,
// so 92.999 maps to 3.7 while 93 maps to 3.9. Anything below 60 floors at 0.0,
// including out-of-range input (see ComputeGPA).
func GradePoints(grade float64) float64 {
	switch {
	case grade >= 97:
		return 4.0
	case grade >= 93:
		return 3.9
	case grade >= 90:
		return 3.7
	case grade >= 87:
		return 3.3
	case grade >= 83:
		return 3.0
	case grade >= 80:
		return 2.7
	case grade >= 77:
		return 2.3
	case grade >= 73:
		return 2.0
	case grade >= 70:
		return 1.7
	case grade >= 67:
		return 1.3
	case grade >= 63:
		return 1.0
	case grade >= 60:
		return 0.7
	default:
		return 0.0
	}
}

// ComputeGPA computes the credit-hour-weighted grade point average over the
// graded enrollments. Ungraded enrollments contribute nothing to either sum.
// When no enrollment carries a numeric grade the result is exactly 0, never
// NaN. The function is pure and usable without any storage round-trip.
//
// Grades outside [0,100] are not rejected here: values above 100 cap at 4.0
// and values below 60 (negative included) floor at 0.0 through the step
// table. Range enforcement, if wanted, belongs to the caller.
func ComputeGPA(enrollments []Enrollment) float64 {
	var totalPoints, totalCreditHours float64
	for _, e := range enrollments {
		if e.Grade == nil || math.IsNaN(*e.Grade) {
			continue
		}
		totalPoints += GradePoints(*e.Grade) * float64(e.CreditHours)
		totalCreditHours += float64(e.CreditHours)
	}
	if totalCreditHours == 0 {
		return 0
	}
	return totalPoints / totalCreditHours
}
