package seed

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	appModels "github.com/tyilmaz/registrar/internal/app/models"
	appRepos "github.com/tyilmaz/registrar/internal/app/repositories"
	"github.com/tyilmaz/registrar/internal/pkg/apperrors"
)

func strPtr(s string) *string { return &s }

// defaultCourses is the starter catalog created on an empty database
var defaultCourses = []appModels.Course{
	{
		CourseCode:  "CS101",
		Title:       "Introduction to Computer Science",
		Description: strPtr("Fundamentals of programming and computational thinking"),
		CreditHours: 4,
		Department:  strPtr("Computer Science"),
		IsActive:    true,
		Schedule: &appModels.Schedule{
			Days: []string{"Monday", "Wednesday"},
			Time: "10:00-11:30",
			Room: "B-204",
		},
	},
	{
		CourseCode:    "CS201",
		Title:         "Data Structures",
		Description:   strPtr("Lists, trees, hash tables and the algorithms over them"),
		CreditHours:   4,
		Department:    strPtr("Computer Science"),
		Prerequisites: []string{"CS101"},
		IsActive:      true,
	},
	{
		CourseCode:  "MATH201",
		Title:       "Linear Algebra",
		CreditHours: 3,
		Department:  strPtr("Mathematics"),
		IsActive:    true,
	},
	{
		CourseCode:  "ENG102",
		Title:       "Academic Writing",
		CreditHours: 2,
		Department:  strPtr("English"),
		IsActive:    true,
	},
}

// CreateDefaultData creates the starter course catalog and a couple of sample
// students if they don't exist. Safe to run on every startup.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	courseRepo := appRepos.NewCourseRepository(dbPool)
	studentRepo := appRepos.NewStudentRepository(dbPool)
	sequenceRepo := appRepos.NewSequenceRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (course catalog)...")
	var finalErr error

	for i := range defaultCourses {
		course := defaultCourses[i]
		err := courseRepo.Create(ctx, &course)
		if err != nil && !errors.Is(err, apperrors.ErrCourseCodeExists) {
			lgr.Error().Err(err).Str("courseCode", course.CourseCode).Msg("Error creating default course")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// Sample students are only created on a fresh database, detected by the
	// student ID sequence never having issued a value.
	if _, err := sequenceRepo.Current(ctx, appModels.StudentIDSequence); err == nil {
		return finalErr
	} else if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return errors.Join(finalErr, err)
	}

	samples := []appModels.Student{
		{
			FirstName:  "Ada",
			LastName:   "Yilmaz",
			Email:      "ada.yilmaz@example.edu",
			Department: "Computer Science",
			Address: appModels.Address{
				Street: "12 University Ave",
				City:   "Ankara",
			},
		},
		{
			FirstName:  "Mehmet",
			LastName:   "Demir",
			Email:      "mehmet.demir@example.edu",
			Department: "Mathematics",
		},
	}

	for i := range samples {
		student := samples[i]
		id, err := sequenceRepo.Next(ctx, appModels.StudentIDSequence)
		if err != nil {
			lgr.Error().Err(err).Msg("Error assigning sample student ID")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		student.StudentID = id
		student.EnrollmentDate = time.Now()
		student.IsActive = true

		if err := studentRepo.Create(ctx, &student); err != nil &&
			!errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			lgr.Error().Err(err).Str("email", student.Email).Msg("Error creating sample student")
			finalErr = errors.Join(finalErr, err)
		}
	}

	return finalErr
}
