package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"edu-dashboard-api/internal/realtime"
)

// pipeConn hands inbound messages to ReadJSON and records written frames.
type pipeConn struct {
	in     chan []byte
	out    chan []byte
	closed chan struct{}
	once   sync.Once
}

func newPipeConn() *pipeConn {
	return &pipeConn{
		in:     make(chan []byte, 8),
		out:    make(chan []byte, 256),
		closed: make(chan struct{}),
	}
}

func (p *pipeConn) ReadJSON(v any) error {
	select {
	case raw := <-p.in:
		return json.Unmarshal(raw, v)
	case <-p.closed:
		return io.EOF
	}
}

func (p *pipeConn) WriteJSON(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case p.out <- raw:
		return nil
	case <-p.closed:
		return io.ErrClosedPipe
	}
}

func (p *pipeConn) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

func (p *pipeConn) send(t *testing.T, m Message) {
	t.Helper()
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	p.in <- raw
}

// next returns the next frame of one of the given types, skipping others.
func (p *pipeConn) next(t *testing.T, types ...string) Frame {
	t.Helper()
	deadline := time.After(waitFor)
	for {
		select {
		case raw := <-p.out:
			var f Frame
			require.NoError(t, json.Unmarshal(raw, &f))
			for _, typ := range types {
				if f.Type == typ {
					return f
				}
			}
		case <-deadline:
			t.Fatalf("no %v frame", types)
		}
	}
}

func startSession(t *testing.T, widgets ...Widget) (*Session, *pipeConn, chan error) {
	t.Helper()
	c, _ := newClient()
	conn := newPipeConn()
	s, err := NewSession(conn, c, "u-1", widgets, zerolog.Nop())
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() { errc <- s.Run(context.Background()) }()
	t.Cleanup(s.Close)
	return s, conn, errc
}

func TestSession_SnapshotAndStateFrames(t *testing.T) {
	var cnt counter
	_, conn, _ := startSession(t, cnt.widget("courses", "course"))

	snap := conn.next(t, "snapshot")
	require.Len(t, snap.Views, 1)
	require.Equal(t, "courses", snap.Views[0].Widget)

	for {
		f := conn.next(t, "state")
		if f.View.Status == "success" {
			require.EqualValues(t, 1, f.View.Data)
			break
		}
	}
}

func TestSession_RefetchMessage(t *testing.T) {
	var cnt counter
	_, conn, _ := startSession(t, cnt.widget("courses"))
	require.Eventually(t, func() bool { return cnt.n.Load() == 1 }, waitFor, tick)

	conn.send(t, Message{Type: "refetch", Widget: "courses"})
	require.Eventually(t, func() bool { return cnt.n.Load() == 2 }, waitFor, tick)

	conn.send(t, Message{Type: "refetch", Widget: "nope"})
	f := conn.next(t, "error")
	require.Contains(t, f.Error, "unknown widget")
}

func TestSession_FocusSkipsFreshWidgets(t *testing.T) {
	var cnt counter
	_, conn, _ := startSession(t, cnt.widget("courses"))
	require.Eventually(t, func() bool { return cnt.n.Load() == 1 }, waitFor, tick)

	// stale time is zero and the fake clock never moves, so the entry
	// written at mount is not older than StaleTime yet
	conn.send(t, Message{Type: "focus"})
	conn.send(t, Message{Type: "snapshot"})
	conn.next(t, "snapshot")
	conn.next(t, "snapshot")
	require.EqualValues(t, 1, cnt.n.Load())
}

func TestSession_HubEventRefreshesWatchers(t *testing.T) {
	var courses, quizzes counter
	s, conn, _ := startSession(t, courses.widget("courses", "course"), quizzes.widget("quizzes", "quiz"))
	require.Eventually(t, func() bool { return courses.n.Load() == 1 && quizzes.n.Load() == 1 }, waitFor, tick)

	hub := realtime.NewHub()
	hub.Register(s.UserID, s)
	n, err := hub.Publish(realtime.NewEvent("course", "created", "c-1", "u-2"), false)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	f := conn.next(t, "event")
	require.Equal(t, "course_created", f.Event.Type)
	require.Eventually(t, func() bool { return courses.n.Load() == 2 }, waitFor, tick)
	require.EqualValues(t, 1, quizzes.n.Load())
}

func TestSession_CloseEndsRunAndRejectsEvents(t *testing.T) {
	var cnt counter
	s, _, errc := startSession(t, cnt.widget("courses"))

	s.Close()
	select {
	case err := <-errc:
		require.ErrorIs(t, err, io.EOF)
	case <-time.After(waitFor):
		t.Fatal("Run did not return")
	}
	require.False(t, s.Send([]byte(`{"type":"course_created","entity":"course"}`)))

	_, open := <-s.Done()
	require.False(t, open)
}

func TestSession_ContextCancelStopsRun(t *testing.T) {
	c, _ := newClient()
	conn := newPipeConn()
	s, err := NewSession(conn, c, "u-1", nil, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-errc:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(waitFor):
		t.Fatal("Run did not return")
	}
}
