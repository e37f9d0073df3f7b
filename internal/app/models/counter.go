package models

// Counter is a named durable sequence. One row exists per sequence name; the
// value is the last identifier issued.
type Counter struct {
	Name  string `json:"name" db:"name" example:"studentId"`
	Value int64  `json:"value" db:"value"`
}

// StudentIDSequence is the counter that backs student identifier assignment.
const StudentIDSequence = "studentId"
