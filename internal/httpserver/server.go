// internal/httpserver/server.go
//
// HTTP server wiring for the hangman backend. This is the presentation
// adapter: it owns the sessions, forwards letters to their engines and
// renders snapshots as JSON.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, request log).
//   - Public endpoints: "/", "/health", "/words".
//   - Game endpoints (optional auth): POST /game/new, POST /game/guess,
//     GET /game/{id}, POST /game/{id}/reset, GET /game/{id}/ws.
//   - Daily word endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - A background sweep drops sessions that finished or went idle
//     (SESSION_FINISHED_MINUTES / SESSION_IDLE_MINUTES); it stops on Shutdown.
//   - The secret word only leaves the server inside a finished snapshot.
//   - History and stats writes are best effort; a failing DB never fails a guess.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/apps/go-server/internal/auth"
	"github.com/robalobadob/hangman/apps/go-server/internal/config"
	"github.com/robalobadob/hangman/apps/go-server/internal/db"
	"github.com/robalobadob/hangman/apps/go-server/internal/game"
	"github.com/robalobadob/hangman/apps/go-server/internal/store"
	"github.com/robalobadob/hangman/apps/go-server/internal/words"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Config *config.Config
	Store  store.Store
	DB     *sql.DB
	Auth   *auth.Service
	Words  *words.Pool
	// Random supplies the word picker for each new engine; nil means crypto/rand.
	Random func() game.RandomSource
}

// Server bundles router, session store, and DB handle.
type Server struct {
	r     *chi.Mux
	cfg   *config.Config
	store store.Store
	db    *sql.DB
	auth  *auth.Service
	words *words.Pool
	rnd   func() game.RandomSource
	http  *http.Server
	daily *dailyServer

	idleTTL     time.Duration
	finishedTTL time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
}

const sweepInterval = time.Minute

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:     chi.NewRouter(),
		cfg:   d.Config,
		store: d.Store,
		db:    d.DB,
		auth:  d.Auth,
		words: d.Words,
		rnd:   d.Random,

		idleTTL:     d.Config.Game.IdleTTL,
		finishedTTL: d.Config.Game.FinishedTTL,
		stop:        make(chan struct{}),
	}
	if s.rnd == nil {
		s.rnd = func() game.RandomSource { return game.CryptoSource{} }
	}
	if s.idleTTL <= 0 {
		s.idleTTL = 2 * time.Hour
	}
	if s.finishedTTL <= 0 {
		s.finishedTTL = 15 * time.Minute
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(jsonContentType)
	s.r.Use(corsFor(s.cfg.Server.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "hangman-go",
			"endpoints": []string{"/health", "/words", "POST /game/new", "POST /game/guess", "/daily/*", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.store.Len()})
	})
	s.r.Get("/words", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"categories": s.words.Stats(), "total": s.words.Len()})
	})

	// Game endpoints: OPTIONAL AUTH (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.auth.Optional())
		// long-lived, so outside the request timeout
		r.Get("/game/{id}/ws", s.handleWS)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(s.cfg.Server.Timeout))
			r.Post("/game/new", s.handleNewGame)
			r.Post("/game/guess", s.handleGuess)
			r.Get("/game/{id}", s.handleGetGame)
			r.Post("/game/{id}/reset", s.handleReset)
			s.mountDaily(r)
		})
	})

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(s.cfg.Server.Timeout))
		s.mountAuthRoutes(r)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	go s.sweepLoop(sweepInterval)
	return s
}

// Start begins serving HTTP on addr. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s.http.ListenAndServe()
}

// Shutdown stops the session sweep and gracefully stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

func (s *Server) sweepLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-t.C:
			s.sweep(context.Background(), now)
		}
	}
}

// sweep deletes expired sessions and forgets past daily rounds.
func (s *Server) sweep(ctx context.Context, now time.Time) int {
	n := 0
	for _, sess := range s.store.List(ctx) {
		if !sess.Expired(now, s.idleTTL, s.finishedTTL) {
			continue
		}
		if err := s.store.Delete(ctx, sess.ID); err == nil {
			n++
		}
	}
	if s.daily != nil {
		s.daily.prune(now)
	}
	if n > 0 {
		log.Debug().Int("expired", n).Int("active", s.store.Len()).Msg("session sweep")
	}
	return n
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFor enables credentialed CORS for a single origin.
func corsFor(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("requestId", chimw.GetReqID(r.Context())).
			Msg("request")
	})
}

// ------------------------------ helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// owner identifies the caller: the logged-in user, else the anonymous cookie.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) db.Owner {
	if me := auth.UserFrom(r.Context()); me != nil {
		return db.Owner{UserID: me.ID}
	}
	return db.Owner{AnonID: s.auth.EnsureAnonID(w, r)}
}

// sessionFor loads a session the caller may play. A user keeps access to
// sessions started anonymously in the same browser.
func (s *Server) sessionFor(r *http.Request, id string) (*store.Session, error) {
	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if me := auth.UserFrom(r.Context()); me != nil && sess.Owner == me.ID {
		return sess, nil
	}
	if anon := auth.AnonID(r); anon != "" && sess.Owner == anon {
		return sess, nil
	}
	return nil, store.ErrNotFound
}
