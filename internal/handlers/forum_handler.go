package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edu-dashboard-api/internal/database"
	"edu-dashboard-api/internal/models"
	"edu-dashboard-api/internal/repository"
)

type CreateThreadRequest struct {
	CourseID string `json:"courseId"`
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body"`
}

// GetThreads handles GET /api/forum/threads
func GetThreads(c *gin.Context) {
	threads, err := repository.ListThreads(c.Request.Context(), database.GetDB(), c.Query("courseId"), pageFromQuery(c))
	if err != nil {
		respondError(c, err, "Failed to fetch threads")
		return
	}
	c.JSON(http.StatusOK, gin.H{"threads": threads, "count": len(threads)})
}

// CreateThread handles POST /api/forum/threads
func CreateThread(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	thread := models.ForumThread{CourseID: req.CourseID, AuthorID: userID, Title: req.Title, Body: req.Body}
	if err := repository.CreateThread(c.Request.Context(), database.GetDB(), &thread); err != nil {
		respondError(c, err, "Failed to create thread")
		return
	}
	notify(c, "thread", thread.ID, userID, false)
	c.JSON(http.StatusCreated, thread)
}
