package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"edu-dashboard-api/internal/middleware"
	"edu-dashboard-api/internal/models"
	"edu-dashboard-api/internal/realtime"
)

type eventSink struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (s *eventSink) Send(m []byte) bool {
	var e realtime.Event
	if json.Unmarshal(m, &e) != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return true
}

func (s *eventSink) Close() {}

func (s *eventSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

func listen(t *testing.T, userID string) *eventSink {
	t.Helper()
	sink := &eventSink{}
	realtime.GetHub().Register(userID, sink)
	t.Cleanup(func() { realtime.GetHub().Unregister(userID, sink) })
	return sink
}

func courseRouter() http.Handler {
	r := protected()
	r.GET("/api/courses", GetCourses)
	r.POST("/api/courses", CreateCourse)
	r.GET("/api/courses/:id", GetCourseByID)
	r.GET("/api/courses/:id/lessons", GetLessons)
	r.POST("/api/courses/:id/lessons", CreateLesson)
	return r
}

func TestCreateCourse_Success(t *testing.T) {
	setupDB(t)
	other := listen(t, "u-2")
	r := courseRouter()

	w := do(t, r, http.MethodPost, "/api/courses", "u-1", map[string]string{"title": "Go 101", "description": "basics"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.Course](t, w)
	require.Equal(t, "u-1", created.InstructorID)
	require.NotEmpty(t, created.ID)

	// course events reach every user's windows
	require.Equal(t, []string{"course_created"}, other.types())

	list := do(t, r, http.MethodGet, "/api/courses?limit=5", "u-2", nil)
	require.Equal(t, http.StatusOK, list.Code)
	resp := decode[struct {
		Courses []models.Course `json:"courses"`
		Total   int64           `json:"total"`
		Limit   int             `json:"limit"`
	}](t, list)
	require.EqualValues(t, 1, resp.Total)
	require.Equal(t, 5, resp.Limit)
	require.Equal(t, "Go 101", resp.Courses[0].Title)
}

func TestCreateCourse_Validation(t *testing.T) {
	setupDB(t)
	r := courseRouter()
	require.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/courses", "u-1", map[string]string{}).Code)
	require.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodPost, "/api/courses", "", map[string]string{"title": "x"}).Code)
}

func TestLessons(t *testing.T) {
	setupDB(t)
	r := courseRouter()
	course := decode[models.Course](t, do(t, r, http.MethodPost, "/api/courses", "u-1", map[string]string{"title": "Go"}))

	w := do(t, r, http.MethodPost, "/api/courses/"+course.ID+"/lessons", "u-1", map[string]string{"title": "Intro"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, 1, decode[models.Lesson](t, w).Position)

	got := do(t, r, http.MethodGet, "/api/courses/"+course.ID, "u-1", nil)
	require.Equal(t, http.StatusOK, got.Code)
	require.Len(t, decode[models.Course](t, got).Lessons, 1)

	require.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/courses/missing", "u-1", nil).Code)
	require.Equal(t, http.StatusNotFound,
		do(t, r, http.MethodPost, "/api/courses/missing/lessons", "u-1", map[string]string{"title": "x"}).Code)
}

func TestCreateCourse_LogsPublishedEvent(t *testing.T) {
	setupDB(t)
	listen(t, "u-log")
	var buf bytes.Buffer
	r := gin.New()
	r.Use(middleware.RequestLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)), middleware.JWTAuthMiddleware())
	r.POST("/api/courses", CreateCourse)

	w := do(t, r, http.MethodPost, "/api/courses", "u-log", map[string]string{"title": "Logging"})
	require.Equal(t, http.StatusCreated, w.Code)

	out := buf.String()
	require.Contains(t, out, `"message":"change event published"`)
	require.Contains(t, out, `"event":"course_created"`)
}
