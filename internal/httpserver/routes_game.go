// internal/httpserver/routes_game.go
//
// REST endpoints for ordinary rounds:
//   - POST /game/new          → start a session (optional category)
//   - POST /game/guess        → apply one letter
//   - GET  /game/{id}         → current state (?format=text for the board)
//   - POST /game/{id}/reset   → new round on the same session

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/apps/go-server/internal/auth"
	"github.com/robalobadob/hangman/apps/go-server/internal/db"
	"github.com/robalobadob/hangman/apps/go-server/internal/game"
	"github.com/robalobadob/hangman/apps/go-server/internal/render"
	"github.com/robalobadob/hangman/apps/go-server/internal/store"
	"github.com/robalobadob/hangman/apps/go-server/internal/words"
)

// gameView is what clients render: the snapshot plus drawing and status line.
type gameView struct {
	GameID   string `json:"gameId"`
	Category string `json:"category,omitempty"`
	game.Snapshot
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

func (s *Server) viewOf(sess *store.Session, snap game.Snapshot) gameView {
	return gameView{
		GameID:   sess.ID,
		Category: sess.Category,
		Snapshot: snap,
		Stage:    render.Stage(snap.WrongCount),
		Message:  render.Message(snap, s.words.Prompt(sess.Category)),
	}
}

// guessView is a gameView plus per-guess feedback.
type guessView struct {
	GameID string `json:"gameId"`
	game.GuessResult
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

func (s *Server) guessViewOf(sess *store.Session, res game.GuessResult) guessView {
	return guessView{
		GameID:      sess.ID,
		GuessResult: res,
		Stage:       render.Stage(res.WrongCount),
		Message:     render.Message(res.Snapshot, s.words.Prompt(sess.Category)),
	}
}

// ------------------------------ GAME ---------------------------------------

type newGameReq struct {
	Category string `json:"category"` // optional; empty plays the whole pool
}

// handleNewGame creates a session with a fresh engine and starts its first round.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
	}
	pool, err := s.words.Category(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_category")
		return
	}

	o := s.owner(w, r)
	sess := store.NewSession(o.ID(), req.Category, game.New(s.rnd()))
	snap, round, err := sess.Start(pool)
	if err != nil {
		log.Error().Err(err).Str("category", req.Category).Msg("start game")
		writeError(w, http.StatusInternalServerError, "configuration_error")
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.recordStart(r.Context(), round, o, req.Category)

	writeJSON(w, http.StatusOK, s.viewOf(sess, snap))
}

type guessReq struct {
	GameID string `json:"gameId"`
	Letter string `json:"letter"`
}

// handleGuess applies one letter to the caller's session.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, err := s.sessionFor(r, req.GameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if sess.Daily != "" {
		writeError(w, http.StatusConflict, "use_daily_guess")
		return
	}
	res, err := s.applyGuess(r.Context(), sess, req.Letter)
	if err != nil {
		writeGuessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.guessViewOf(sess, res))
}

// handleGetGame returns the current snapshot; ?format=text gives the board
// as a terminal client prints it.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFor(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, render.Board(sess.Snapshot(), s.words.Prompt(sess.Category)))
		return
	}
	writeJSON(w, http.StatusOK, s.viewOf(sess, sess.Snapshot()))
}

// handleReset starts a new round on an existing session.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFor(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if sess.Daily != "" {
		writeError(w, http.StatusConflict, "daily_cannot_reset")
		return
	}
	snap, err := s.reset(r.Context(), sess, s.owner(w, r))
	if err != nil {
		writeGuessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.viewOf(sess, snap))
}

// ------------------------- shared game flow --------------------------------

func (s *Server) reset(ctx context.Context, sess *store.Session, o db.Owner) (game.Snapshot, error) {
	pool, err := s.words.Category(sess.Category)
	if err != nil {
		return game.Snapshot{}, err
	}
	snap, round, err := sess.Start(pool)
	if err != nil {
		return game.Snapshot{}, err
	}
	s.recordStart(ctx, round, o, sess.Category)
	return snap, nil
}

// applyGuess forwards a letter and records progress. Ignored guesses touch nothing.
func (s *Server) applyGuess(ctx context.Context, sess *store.Session, letter string) (game.GuessResult, error) {
	res, round, err := sess.Guess(letter)
	if err != nil || res.Ignored {
		return res, err
	}
	if s.db == nil {
		return res, nil
	}
	if err := db.UpdateGame(ctx, s.db, round, string(res.Status), len(res.Guessed), res.WrongCount); err != nil {
		log.Warn().Err(err).Str("round", round).Msg("update game")
	}
	if res.Finished {
		log.Info().Str("gameId", sess.ID).Str("status", string(res.Status)).Int("wrong", res.WrongCount).Msg("round finished")
		if me := auth.UserFrom(ctx); me != nil {
			if err := s.auth.BumpStats(ctx, me.ID, res.Status == game.StatusWon); err != nil {
				log.Warn().Err(err).Str("user", me.ID).Msg("bump stats")
			}
		}
	}
	return res, nil
}

func (s *Server) recordStart(ctx context.Context, round string, o db.Owner, category string) {
	if s.db == nil {
		return
	}
	if err := db.InsertGame(ctx, s.db, round, o, category, time.Now()); err != nil {
		log.Warn().Err(err).Str("round", round).Msg("insert game row")
	}
}

// writeGuessError maps engine and pool errors to HTTP responses.
func writeGuessError(w http.ResponseWriter, err error) {
	status, code := guessErrorCode(err)
	writeError(w, status, code)
}

func guessErrorCode(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, game.ErrNotStarted):
		return http.StatusConflict, "not_started"
	case errors.Is(err, words.ErrUnknownCategory):
		return http.StatusBadRequest, "unknown_category"
	default:
		log.Error().Err(err).Msg("game error")
		return http.StatusInternalServerError, "internal_error"
	}
}
