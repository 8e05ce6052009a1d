package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"edu-dashboard-api/internal/database"
	"edu-dashboard-api/internal/models"
)

func TestLogin_CreatesUserIfNotExists(t *testing.T) {
	setupDB(t)
	r := gin.New()
	r.POST("/api/login", Login)

	w := do(t, r, http.MethodPost, "/api/login", "", map[string]string{
		"username": "newuser",
		"password": "sha256-from-fe",
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[LoginResponse](t, w)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, models.RoleStudent, resp.Role)

	var stored models.User
	require.NoError(t, database.GetDB().Where("username = ?", "newuser").First(&stored).Error)
	require.NotEqual(t, "sha256-from-fe", stored.Password)
	require.Equal(t, stored.ID, resp.UserID)
}

func TestLogin_VerifiesPassword(t *testing.T) {
	setupDB(t)
	r := gin.New()
	r.POST("/api/login", Login)

	creds := map[string]string{"username": "alice", "password": "right"}
	first := do(t, r, http.MethodPost, "/api/login", "", creds)
	require.Equal(t, http.StatusOK, first.Code)

	again := do(t, r, http.MethodPost, "/api/login", "", creds)
	require.Equal(t, http.StatusOK, again.Code)
	require.Equal(t, decode[LoginResponse](t, first).UserID, decode[LoginResponse](t, again).UserID)

	creds["password"] = "wrong"
	require.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodPost, "/api/login", "", creds).Code)
}

func TestLogin_BadRequest(t *testing.T) {
	setupDB(t)
	r := gin.New()
	r.POST("/api/login", Login)

	w := do(t, r, http.MethodPost, "/api/login", "", map[string]string{"username": "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
