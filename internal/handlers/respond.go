package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"edu-dashboard-api/internal/realtime"
	"edu-dashboard-api/internal/repository"
)

// respondError maps repository errors onto status codes. Anything
// unrecognised is a 500 carrying fallback as its message.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrInvalidScore):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func requireUser(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in token",
		})
		return "", false
	}
	return userID, true
}

// pageFromQuery reads page (default 1), limit and sort (asc|desc on
// created_at, default desc).
func pageFromQuery(c *gin.Context) repository.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(repository.DefaultLimit)))
	return repository.Page{
		Page:  page,
		Limit: limit,
		Asc:   strings.EqualFold(c.Query("sort"), "asc"),
	}.Normalize()
}

// notify broadcasts a change event to dashboard windows. Private events
// only reach the acting user's windows.
func notify(c *gin.Context, entity, id, userID string, private bool) {
	log := zerolog.Ctx(c.Request.Context())
	evt := realtime.NewEvent(entity, "created", id, userID)
	n, err := realtime.GetHub().Publish(evt, private)
	if err != nil {
		log.Error().Err(err).Str("event", evt.Type).Str("id", id).Msg("publish change event")
		return
	}
	log.Debug().Str("event", evt.Type).Str("id", id).Int("windows", n).Msg("change event published")
}
