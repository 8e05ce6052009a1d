package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"edu-dashboard-api/internal/dashboard"
	"edu-dashboard-api/internal/database"
	"edu-dashboard-api/internal/query"
	"edu-dashboard-api/internal/realtime"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	readLimit  = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled at Gin level; allow upgrade from any origin here
		return true
	},
}

// wsConn adds write deadlines and a read limit to a websocket connection.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) ReadJSON(v any) error { return c.conn.ReadJSON(v) }

func (c *wsConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close() error { return c.conn.Close() }

// DashboardSocket handles GET /api/ws/dashboard
// Each connection is one dashboard window over the shared query client.
// It requires JWT middleware to have set "user_id" in context.
func DashboardSocket(queries *query.Client, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		conn.SetReadLimit(readLimit)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		session, err := dashboard.NewSession(&wsConn{conn: conn}, queries, userID,
			dashboard.Catalog(database.GetDB(), userID), log)
		if err != nil {
			log.Error().Err(err).Msg("dashboard session")
			_ = conn.Close()
			return
		}

		hub := realtime.GetHub()
		hub.Register(userID, session)
		defer hub.Unregister(userID, session)

		// Heartbeat: send periodic pings; close on error
		go func() {
			ticker := time.NewTicker(pingPeriod)
			defer ticker.Stop()
			for {
				select {
				case <-session.Done():
					return
				case <-ticker.C:
					if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
						session.Close()
						return
					}
				}
			}
		}()

		log.Info().Str("session", session.ID).Str("user_id", userID).Msg("dashboard window opened")
		err = session.Run(c.Request.Context())
		log.Info().Str("session", session.ID).Err(err).Msg("dashboard window closed")
	}
}
