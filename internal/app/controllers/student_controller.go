package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tyilmaz/registrar/internal/app/models/dto"
	"github.com/tyilmaz/registrar/internal/app/services"
	"github.com/tyilmaz/registrar/internal/middleware"
)

// StudentController handles student record and enrollment operations
type StudentController struct {
	studentService *services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService) *StudentController {
	return &StudentController{
		studentService: studentService,
	}
}

// parseStudentID reads the numeric student identifier from the path. On failure
// it writes the 400 response itself and reports ok=false.
func parseStudentID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("studentId"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, "Invalid student ID")
		errorDetail = errorDetail.WithDetails("Student ID must be a valid number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// parseCourseID reads the course UUID from the path
func parseCourseID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("courseId"))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, "Invalid course ID")
		errorDetail = errorDetail.WithDetails("Course ID must be a valid UUID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return uuid.Nil, false
	}
	return id, true
}

// GetAllStudents retrieves all students
// @Summary Get all students
// @Description Retrieves all student records
// @Tags students
// @Accept json
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Student} "Students retrieved successfully"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /students [get]
func (c *StudentController) GetAllStudents(ctx *gin.Context) {
	students, err := c.studentService.ListStudents(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      students,
		Timestamp: time.Now(),
	})
}

// SearchStudents searches students by filters
// @Summary Search students
// @Description Searches students by name, department, GPA, status and course load. All filters are optional and combined with AND.
// @Tags students
// @Accept json
// @Produce json
// @Param name query string false "Substring match on first or last name, case-insensitive"
// @Param department query string false "Exact department match"
// @Param minGpa query number false "Minimum GPA, inclusive"
// @Param status query string false "active or inactive"
// @Param minCourses query int false "Minimum number of enrollments"
// @Success 200 {object} dto.APIResponse{data=[]models.Student} "Matching students"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter value"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /students/search [get]
func (c *StudentController) SearchStudents(ctx *gin.Context) {
	var query dto.SearchStudentsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid search parameters")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	students, err := c.studentService.SearchStudents(ctx, query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      students,
		Timestamp: time.Now(),
	})
}

// CreateStudent handles student registration
// @Summary Register a new student
// @Description Creates a student record. The student ID is assigned from an atomic sequence and cannot be supplied by the caller.
// @Tags students
// @Accept json
// @Produce json
// @Param request body dto.CreateStudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=models.Student} "Student created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid student data"
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	req := middleware.ValidatedBody(ctx).(*dto.CreateStudentRequest)

	student, err := c.studentService.CreateStudent(ctx, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      student,
		Timestamp: time.Now(),
	})
}

// GetStudentByID retrieves a student by ID
// @Summary Get student by ID
// @Description Retrieves a student with each enrollment hydrated with its course details
// @Tags students
// @Accept json
// @Produce json
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /students/{studentId} [get]
func (c *StudentController) GetStudentByID(ctx *gin.Context) {
	id, ok := parseStudentID(ctx)
	if !ok {
		return
	}

	student, err := c.studentService.GetStudent(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      student,
		Timestamp: time.Now(),
	})
}

// UpdateStudent updates a student's profile
// @Summary Update student
// @Description Updates profile fields of a student. The stored student ID is immutable; any studentId in the payload is ignored.
// @Tags students
// @Accept json
// @Produce json
// @Param studentId path int true "Student ID"
// @Param request body dto.UpdateStudentRequest true "Updated student information"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid student data"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /students/{studentId} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, ok := parseStudentID(ctx)
	if !ok {
		return
	}

	req := middleware.ValidatedBody(ctx).(*dto.UpdateStudentRequest)

	student, err := c.studentService.UpdateStudent(ctx, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      student,
		Timestamp: time.Now(),
	})
}

// DeleteStudent removes a student record
// @Summary Delete student
// @Description Deletes a student and all of their enrollments
// @Tags students
// @Accept json
// @Produce json
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.SuccessResponse "Student deleted successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /students/{studentId} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	id, ok := parseStudentID(ctx)
	if !ok {
		return
	}

	if err := c.studentService.DeleteStudent(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Student deleted successfully",
	})
}

// EnrollInCourse enrolls a student in a course
// @Summary Enroll student in a course
// @Description Adds an enrollment for the given course and semester. A student may retake a course in a different semester but not hold two enrollments for the same course in the same semester.
// @Tags students
// @Accept json
// @Produce json
// @Param studentId path int true "Student ID"
// @Param request body dto.EnrollRequest true "Course and semester"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student enrolled successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid enrollment data"
// @Failure 404 {object} dto.ErrorResponse "Student or course not found"
// @Failure 409 {object} dto.ErrorResponse "Already enrolled for that semester"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /students/{studentId}/courses [post]
func (c *StudentController) EnrollInCourse(ctx *gin.Context) {
	id, ok := parseStudentID(ctx)
	if !ok {
		return
	}

	req := middleware.ValidatedBody(ctx).(*dto.EnrollRequest)

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, "Invalid course ID")
		errorDetail = errorDetail.WithDetails("Course ID must be a valid UUID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	student, err := c.studentService.EnrollInCourse(ctx, id, courseID, req.Semester)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      student,
		Timestamp: time.Now(),
	})
}

// DropCourse removes a student's enrollments in a course
// @Summary Drop a course
// @Description Removes every enrollment of the student in the given course and recalculates the GPA. Dropping a course the student is not enrolled in is a no-op.
// @Tags students
// @Accept json
// @Produce json
// @Param studentId path int true "Student ID"
// @Param courseId path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Course dropped"
// @Failure 400 {object} dto.ErrorResponse "Invalid identifier"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /students/{studentId}/courses/{courseId} [delete]
func (c *StudentController) DropCourse(ctx *gin.Context) {
	id, ok := parseStudentID(ctx)
	if !ok {
		return
	}
	courseID, ok := parseCourseID(ctx)
	if !ok {
		return
	}

	student, err := c.studentService.DropCourse(ctx, id, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      student,
		Timestamp: time.Now(),
	})
}

// UpdateGrade records a grade for an enrollment
// @Summary Record a grade
// @Description Sets the grade on the student's enrollment in the given course and recalculates the GPA. A non-numeric grade value resets the enrollment to ungraded.
// @Tags students
// @Accept json
// @Produce json
// @Param studentId path int true "Student ID"
// @Param courseId path string true "Course ID"
// @Param request body dto.GradeRequest true "Grade value"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Grade recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid identifier"
// @Failure 404 {object} dto.ErrorResponse "Student or enrollment not found"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /students/{studentId}/courses/{courseId}/grade [put]
func (c *StudentController) UpdateGrade(ctx *gin.Context) {
	id, ok := parseStudentID(ctx)
	if !ok {
		return
	}
	courseID, ok := parseCourseID(ctx)
	if !ok {
		return
	}

	req := middleware.ValidatedBody(ctx).(*dto.GradeRequest)

	student, err := c.studentService.RecordGrade(ctx, id, courseID, req.Grade)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      student,
		Timestamp: time.Now(),
	})
}

// GetDepartments lists the distinct departments of registered students
// @Summary List departments
// @Description Retrieves the distinct departments across all student records
// @Tags students
// @Accept json
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]string} "Departments retrieved successfully"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /departments [get]
func (c *StudentController) GetDepartments(ctx *gin.Context) {
	departments, err := c.studentService.ListDepartments(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      departments,
		Timestamp: time.Now(),
	})
}
