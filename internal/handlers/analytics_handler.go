package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edu-dashboard-api/internal/database"
	"edu-dashboard-api/internal/repository"
)

// GetSummary handles GET /api/analytics/summary
func GetSummary(c *gin.Context) {
	s, err := repository.Summarize(c.Request.Context(), database.GetDB())
	if err != nil {
		respondError(c, err, "Failed to compute summary")
		return
	}
	c.JSON(http.StatusOK, s)
}
