package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edu-dashboard-api/internal/database"
	"edu-dashboard-api/internal/models"
	"edu-dashboard-api/internal/repository"
)

type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type CreateLessonRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content"`
	Position int    `json:"position"`
}

// GetCourses handles GET /api/courses
func GetCourses(c *gin.Context) {
	p := pageFromQuery(c)
	courses, total, err := repository.ListCourses(c.Request.Context(), database.GetDB(), p)
	if err != nil {
		respondError(c, err, "Failed to fetch courses")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"courses": courses,
		"count":   len(courses),
		"total":   total,
		"page":    p.Page,
		"limit":   p.Limit,
	})
}

// GetCourseByID handles GET /api/courses/:id
func GetCourseByID(c *gin.Context) {
	course, err := repository.GetCourse(c.Request.Context(), database.GetDB(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch course")
		return
	}
	c.JSON(http.StatusOK, course)
}

// CreateCourse handles POST /api/courses
// The authenticated user becomes the course instructor.
func CreateCourse(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course := models.Course{Title: req.Title, Description: req.Description, InstructorID: userID}
	if err := repository.CreateCourse(c.Request.Context(), database.GetDB(), &course); err != nil {
		respondError(c, err, "Failed to create course")
		return
	}
	notify(c, "course", course.ID, userID, false)
	c.JSON(http.StatusCreated, course)
}

// GetLessons handles GET /api/courses/:id/lessons
func GetLessons(c *gin.Context) {
	lessons, err := repository.ListLessons(c.Request.Context(), database.GetDB(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch lessons")
		return
	}
	c.JSON(http.StatusOK, gin.H{"lessons": lessons, "count": len(lessons)})
}

// CreateLesson handles POST /api/courses/:id/lessons
func CreateLesson(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lesson := models.Lesson{
		CourseID: c.Param("id"),
		Title:    req.Title,
		Content:  req.Content,
		Position: req.Position,
	}
	if err := repository.CreateLesson(c.Request.Context(), database.GetDB(), &lesson); err != nil {
		respondError(c, err, "Failed to create lesson")
		return
	}
	notify(c, "lesson", lesson.ID, userID, false)
	c.JSON(http.StatusCreated, lesson)
}
