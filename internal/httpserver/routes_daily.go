// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily word.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start (or resume) today's round
//   - POST /daily/guess       → guess a letter in a daily round, by gameId
//   - GET  /daily/leaderboard → today's winners (or ?date=YYYY-MM-DD)
//
// Everyone draws the same word per day: the engine's RandomSource is an
// HMAC of the date, so the daily round goes through the ordinary Start path.
// One finished result per player and day is persisted, under the owner and
// date the round was started with. A player who logs in mid-round keeps
// the round through the anonymous cookie.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/apps/go-server/internal/auth"
	"github.com/robalobadob/hangman/apps/go-server/internal/daily"
	"github.com/robalobadob/hangman/apps/go-server/internal/db"
	"github.com/robalobadob/hangman/apps/go-server/internal/game"
	"github.com/robalobadob/hangman/apps/go-server/internal/store"
)

type dailyServer struct {
	srv     *Server
	results *daily.Store
	salt    string
	now     func() time.Time

	mu    sync.Mutex
	date  string            // day the index below belongs to
	today map[string]string // owner ID → session ID of today's round
}

func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:     s,
		results: daily.NewStore(s.db),
		salt:    s.cfg.Game.DailySalt,
		now:     time.Now,
		today:   make(map[string]string),
	}
	s.daily = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleGuess)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// rollover drops the index when the day changes. Callers hold d.mu.
func (d *dailyServer) rollover(date string) {
	if d.date != date {
		d.date = date
		d.today = make(map[string]string)
	}
}

func (d *dailyServer) prune(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rollover(daily.DateKey(now))
}

// identities lists every ID the caller may have played under: the account
// and, when logged in, the anonymous cookie of this browser.
func identities(r *http.Request, o db.Owner) []string {
	ids := []string{o.ID()}
	if o.UserID != "" {
		if anon := auth.AnonID(r); anon != "" {
			ids = append(ids, anon)
		}
	}
	return ids
}

// ----------------------------------------------------------------------------
// /daily/new

type dailyNewRes struct {
	Date   string    `json:"date"`
	Played bool      `json:"played"`
	Game   *gameView `json:"game,omitempty"`
}

// handleNew returns today's session, creating it on first call.
// Players with a stored result for today get Played=true and no game.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	o := d.srv.owner(w, r)
	ids := identities(r, o)
	now := d.now().UTC()
	date := daily.DateKey(now)

	for _, id := range ids {
		played, err := d.results.AlreadyPlayed(r.Context(), id, date)
		if err != nil {
			log.Error().Err(err).Str("user", id).Msg("daily played check")
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		if played {
			writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
			return
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.rollover(date)
	for _, id := range ids {
		sid, ok := d.today[id]
		if !ok {
			continue
		}
		if sess, err := d.srv.store.Get(r.Context(), sid); err == nil {
			d.today[o.ID()] = sid
			v := d.srv.viewOf(sess, sess.Snapshot())
			writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Game: &v})
			return
		}
	}

	src := daily.Source{Date: now, Salt: d.salt}
	sess := store.NewSession(o.ID(), "daily", game.New(src))
	sess.Daily = date
	snap, round, err := sess.Start(d.srv.words.Words())
	if err != nil {
		log.Error().Err(err).Msg("start daily")
		writeError(w, http.StatusInternalServerError, "configuration_error")
		return
	}
	if err := d.srv.store.Save(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	d.srv.recordStart(r.Context(), round, o, "daily")
	d.today[o.ID()] = sess.ID

	v := d.srv.viewOf(sess, snap)
	writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Game: &v})
}

// ----------------------------------------------------------------------------
// /daily/guess

// handleGuess applies a letter to the caller's daily round and stores the
// result once the round finishes.
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, err := d.srv.sessionFor(r, req.GameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if sess.Daily == "" {
		writeError(w, http.StatusConflict, "not_daily")
		return
	}

	res, err := d.srv.applyGuess(r.Context(), sess, req.Letter)
	if err != nil {
		writeGuessError(w, err)
		return
	}
	if res.Finished {
		d.record(r.Context(), sess, res.Snapshot)
	}
	writeJSON(w, http.StatusOK, d.srv.guessViewOf(sess, res))
}

// record stores a finished round; a second result for the same day is ignored.
func (d *dailyServer) record(ctx context.Context, sess *store.Session, snap game.Snapshot) {
	day, err := time.Parse("2006-01-02", sess.Daily)
	if err != nil {
		log.Error().Err(err).Str("date", sess.Daily).Msg("daily session date")
		return
	}
	err = d.results.InsertResult(ctx, daily.Result{
		UserID:     sess.Owner,
		Date:       sess.Daily,
		WordIndex:  daily.WordIndex(day, d.salt, d.srv.words.Len()),
		Won:        snap.Status == game.StatusWon,
		WrongCount: snap.WrongCount,
		ElapsedMs:  int(sess.Elapsed().Milliseconds()),
	})
	if err != nil {
		log.Warn().Err(err).Str("user", sess.Owner).Str("date", sess.Daily).Msg("insert daily result")
	}
}

// ----------------------------------------------------------------------------
// /daily/leaderboard

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "bad_date")
		return
	}
	rows, err := d.results.Leaderboard(r.Context(), date, 20)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
