// internal/httpserver/ws.go
//
// WebSocket transport for one game session: GET /game/{id}/ws.
// Client → server: {"type":"guess","letter":"a"} | {"type":"reset"} | {"type":"state"}
// Server → client: {"type":"state"|"error","payload":...,"timestamp":...}
//
// Every message gets exactly one reply; the session mutex keeps guesses
// from several sockets (or REST calls) on the same game sequential.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/apps/go-server/internal/auth"
	"github.com/robalobadob/hangman/apps/go-server/internal/db"
	"github.com/robalobadob/hangman/apps/go-server/internal/store"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsMaxMessage = 512
)

type wsIn struct {
	Type   string `json:"type"`
	Letter string `json:"letter,omitempty"`
}

type wsOut struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp int64  `json:"timestamp"`
}

// wsConn serialises writes; gorilla allows one concurrent writer.
type wsConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *wsConn) send(typ string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.WriteJSON(wsOut{Type: typ, Payload: payload, Timestamp: time.Now().UnixMilli()})
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == s.cfg.Server.ClientOrigin || !s.cfg.IsProduction()
		},
	}
}

// handleWS upgrades after the ownership check, so strangers get a plain 404.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFor(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	o := db.Owner{AnonID: auth.AnonID(r)}
	if me := auth.UserFrom(r.Context()); me != nil {
		o = db.Owner{UserID: me.ID}
	}

	raw, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("websocket upgrade")
		return
	}
	conn := &wsConn{Conn: raw}
	defer conn.Close()

	logger := log.With().Str("gameId", sess.ID).Str("client", uuid.NewString()).Logger()
	logger.Debug().Msg("websocket connected")

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(wsPingPeriod)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := conn.ping(); err != nil {
					return
				}
			}
		}
	}()

	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	if err := conn.send("state", s.viewOf(sess, sess.Snapshot())); err != nil {
		return
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug().Err(err).Msg("websocket read")
			}
			return
		}
		if err := s.handleWSMessage(r, conn, sess, o, data, logger); err != nil {
			logger.Debug().Err(err).Msg("websocket write")
			return
		}
	}
}

func (s *Server) handleWSMessage(r *http.Request, conn *wsConn, sess *store.Session, o db.Owner, data []byte, logger zerolog.Logger) error {
	var in wsIn
	if err := json.Unmarshal(data, &in); err != nil {
		return conn.send("error", map[string]string{"error": "bad_json"})
	}
	switch in.Type {
	case "state":
		return conn.send("state", s.viewOf(sess, sess.Snapshot()))
	case "guess":
		if sess.Daily != "" {
			return conn.send("error", map[string]string{"error": "use_daily_guess"})
		}
		res, err := s.applyGuess(r.Context(), sess, in.Letter)
		if err != nil {
			_, code := guessErrorCode(err)
			return conn.send("error", map[string]string{"error": code})
		}
		return conn.send("state", s.guessViewOf(sess, res))
	case "reset":
		if sess.Daily != "" {
			return conn.send("error", map[string]string{"error": "daily_cannot_reset"})
		}
		snap, err := s.reset(r.Context(), sess, o)
		if err != nil {
			_, code := guessErrorCode(err)
			return conn.send("error", map[string]string{"error": code})
		}
		logger.Debug().Msg("round reset")
		return conn.send("state", s.viewOf(sess, snap))
	default:
		return conn.send("error", map[string]string{"error": "unknown_type"})
	}
}
