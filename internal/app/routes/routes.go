package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tyilmaz/registrar/internal/app/controllers"
	"github.com/tyilmaz/registrar/internal/app/models/dto"
	"github.com/tyilmaz/registrar/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	studentController *controllers.StudentController,
	courseController *controllers.CourseController,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// Student routes
	students := v1.Group("/students")
	{
		students.GET("", studentController.GetAllStudents)
		students.POST("", middleware.ValidateRequest(dto.CreateStudentRequest{}), studentController.CreateStudent)
		students.GET("/search", studentController.SearchStudents)
		students.GET("/:studentId", studentController.GetStudentByID)
		students.PUT("/:studentId", middleware.ValidateRequest(dto.UpdateStudentRequest{}), studentController.UpdateStudent)
		students.DELETE("/:studentId", studentController.DeleteStudent)

		// Enrollment routes nested under a student
		students.POST("/:studentId/courses", middleware.ValidateRequest(dto.EnrollRequest{}), studentController.EnrollInCourse)
		students.DELETE("/:studentId/courses/:courseId", studentController.DropCourse)
		students.PUT("/:studentId/courses/:courseId/grade", middleware.ValidateRequest(dto.GradeRequest{}), studentController.UpdateGrade)
	}

	// Course catalog routes
	courses := v1.Group("/courses")
	{
		courses.GET("", courseController.GetAllCourses)
		courses.POST("", middleware.ValidateRequest(dto.CreateCourseRequest{}), courseController.CreateCourse)
		courses.GET("/:id", courseController.GetCourseByID)
		courses.PUT("/:id", middleware.ValidateRequest(dto.UpdateCourseRequest{}), courseController.UpdateCourse)
		courses.DELETE("/:id", courseController.DeleteCourse)
	}

	// Distinct departments across student records
	v1.GET("/departments", studentController.GetDepartments)
}
