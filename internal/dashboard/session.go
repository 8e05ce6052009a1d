package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"edu-dashboard-api/internal/focus"
	"edu-dashboard-api/internal/models"
	"edu-dashboard-api/internal/query"
	"edu-dashboard-api/internal/realtime"
)

// Conn is the message transport of a window. *websocket.Conn satisfies it.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// Frame is a server to window message.
type Frame struct {
	Type  string          `json:"type"` // snapshot, state, event or error
	View  *View           `json:"view,omitempty"`
	Views []View          `json:"views,omitempty"`
	Event *realtime.Event `json:"event,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Message is a window to server message.
type Message struct {
	Type   string `json:"type"` // focus, refetch, enable, disable, reset or snapshot
	Widget string `json:"widget,omitempty"`
}

const outboundBuffer = 64

// Session is one live dashboard window. It implements realtime.Client so
// change events published on the hub refresh the affected widgets.
type Session struct {
	ID     string
	UserID string

	conn   Conn
	focus  *focus.Emitter
	board  *Board
	logger zerolog.Logger

	out       chan Frame
	done      chan struct{}
	closeOnce sync.Once
}

var _ realtime.Client = (*Session)(nil)

// NewSession mounts widgets over a view of c whose focus source is the
// window's own emitter.
func NewSession(conn Conn, c *query.Client, userID string, widgets []Widget, logger zerolog.Logger) (*Session, error) {
	s := &Session{
		ID:     models.NewID(),
		UserID: userID,
		conn:   conn,
		focus:  focus.NewEmitter(),
		out:    make(chan Frame, outboundBuffer),
		done:   make(chan struct{}),
	}
	s.logger = logger.With().Str("session", s.ID).Str("user_id", userID).Logger()

	board, err := NewBoard(c.With(query.WithFocusSource(s.focus)), widgets, s.pushView)
	if err != nil {
		return nil, err
	}
	s.board = board
	return s, nil
}

// Run writes frames and handles inbound messages until the connection
// fails, ctx ends or Close is called.
func (s *Session) Run(ctx context.Context) error {
	go s.writeLoop()
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	s.push(Frame{Type: "snapshot", Views: s.board.Views()})
	for {
		var m Message
		if err := s.conn.ReadJSON(&m); err != nil {
			s.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		s.handle(m)
	}
}

func (s *Session) handle(m Message) {
	var err error
	switch m.Type {
	case "focus":
		s.focus.Focus()
	case "refetch":
		err = s.board.Refetch(m.Widget)
	case "enable", "disable":
		err = s.board.SetEnabled(m.Widget, m.Type == "enable")
	case "reset":
		err = s.board.Reset(m.Widget)
	case "snapshot":
		s.push(Frame{Type: "snapshot", Views: s.board.Views()})
	default:
		err = errors.New("unknown message type " + m.Type)
	}
	if err != nil {
		s.logger.Debug().Err(err).Str("type", m.Type).Msg("message rejected")
		s.push(Frame{Type: "error", Error: err.Error()})
	}
}

// Send receives a hub event and refetches the widgets watching its entity.
func (s *Session) Send(message []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	var evt realtime.Event
	if err := json.Unmarshal(message, &evt); err != nil {
		s.logger.Warn().Err(err).Msg("undecodable hub event")
		return false
	}
	refreshed := s.board.Invalidate(evt.Entity)
	s.logger.Debug().Str("event", evt.Type).Strs("widgets", refreshed).Msg("event received")
	return s.push(Frame{Type: "event", Event: &evt})
}

// Close unmounts every widget and closes the connection. Safe to call more
// than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.board != nil {
			s.board.Close()
		}
		_ = s.conn.Close()
		s.logger.Debug().Msg("session closed")
	})
}

// Done is closed once the session has been closed.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) pushView(v View) {
	s.push(Frame{Type: "state", View: &v})
}

// push queues f without blocking; a window too slow to drain its buffer
// loses frames and catches up on the next snapshot.
func (s *Session) push(f Frame) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.out <- f:
		return true
	default:
		s.logger.Warn().Str("type", f.Type).Msg("outbound buffer full, frame dropped")
		return false
	}
}

func (s *Session) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case f := <-s.out:
			if err := s.conn.WriteJSON(f); err != nil {
				s.logger.Debug().Err(err).Msg("write failed")
				s.Close()
				return
			}
		}
	}
}
