package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edu-dashboard-api/internal/database"
	"edu-dashboard-api/internal/models"
	"edu-dashboard-api/internal/repository"
)

type CreateQuizRequest struct {
	CourseID string `json:"courseId" binding:"required"`
	Title    string `json:"title" binding:"required"`
	MaxScore int    `json:"maxScore"`
}

type AttemptRequest struct {
	Score *int `json:"score" binding:"required"`
}

// GetQuizzes handles GET /api/quizzes
// Optional query param: courseId to filter quizzes of one course.
func GetQuizzes(c *gin.Context) {
	quizzes, err := repository.ListQuizzes(c.Request.Context(), database.GetDB(), c.Query("courseId"))
	if err != nil {
		respondError(c, err, "Failed to fetch quizzes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes, "count": len(quizzes)})
}

// CreateQuiz handles POST /api/quizzes
func CreateQuiz(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz := models.Quiz{CourseID: req.CourseID, Title: req.Title, MaxScore: req.MaxScore}
	if err := repository.CreateQuiz(c.Request.Context(), database.GetDB(), &quiz); err != nil {
		respondError(c, err, "Failed to create quiz")
		return
	}
	notify(c, "quiz", quiz.ID, userID, false)
	c.JSON(http.StatusCreated, quiz)
}

// CreateAttempt handles POST /api/quizzes/:id/attempts
// Attempts are private: only the user's own windows refresh.
func CreateAttempt(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req AttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attempt := models.QuizAttempt{QuizID: c.Param("id"), UserID: userID, Score: *req.Score}
	if err := repository.RecordAttempt(c.Request.Context(), database.GetDB(), &attempt); err != nil {
		respondError(c, err, "Failed to record attempt")
		return
	}
	notify(c, "attempt", attempt.ID, userID, true)
	c.JSON(http.StatusCreated, attempt)
}
