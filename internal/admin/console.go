package admin

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/forgenet/arenacore/internal/logging"
)

// DispatchFunc runs one operator console line (the same surface as the
// stdin console) and returns its textual result.
type DispatchFunc func(line string) string

// Console serves the remote operator console over WebSocket. Every
// connected session must carry a valid operator token; while at least
// one session is attached, log output is teed to it.
type Console struct {
	Key      []byte
	Dispatch DispatchFunc

	mu       sync.Mutex
	sessions map[*session]struct{}
}

type session struct {
	conn *websocket.Conn
	role string
}

// NewConsole builds a Console signing/verifying tokens with key.
func NewConsole(key []byte, dispatch DispatchFunc) *Console {
	return &Console{Key: key, Dispatch: dispatch, sessions: make(map[*session]struct{})}
}

// Handler returns the HTTP handler to mount at e.g. "/ws/console".
func (c *Console) Handler() http.HandlerFunc {
	return c.handle
}

func (c *Console) handle(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	claims, err := ValidateToken(c.Key, strings.TrimPrefix(auth, "Bearer "))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		logging.Printf("admin: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	sess := &session{conn: conn, role: claims.Role}
	c.attach(sess)
	defer c.detach(sess)

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		line := strings.TrimSpace(string(data))
		if line == "" {
			continue
		}
		if sess.role != RoleOperator && !isReadOnlyCommand(line) {
			c.writeLine(ctx, conn, "forbidden: read-only session")
			continue
		}
		result := c.Dispatch(line)
		c.writeLine(ctx, conn, result)
	}
}

func isReadOnlyCommand(line string) bool {
	cmd := strings.Fields(line)
	if len(cmd) == 0 {
		return false
	}
	switch cmd[0] {
	case "status", "serverinfo", "systeminfo", "locations", "sectorlist":
		return true
	default:
		return false
	}
}

func (c *Console) writeLine(ctx context.Context, conn *websocket.Conn, line string) {
	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_ = conn.Write(writeCtx, websocket.MessageText, []byte(line))
}

func (c *Console) attach(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[s] = struct{}{}
	logging.SetTee(&teeWriter{c})
}

func (c *Console) detach(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, s)
	if len(c.sessions) == 0 {
		logging.SetTee(nil)
	}
}

// teeWriter broadcasts logged lines to every attached operator session.
type teeWriter struct{ c *Console }

func (t *teeWriter) Write(p []byte) (int, error) {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	for s := range t.c.sessions {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = s.conn.Write(ctx, websocket.MessageText, p)
		cancel()
	}
	return len(p), nil
}
