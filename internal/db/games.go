// internal/db/games.go
//
// Round history: one row per round, keyed by round ID, owned by a user or
// an anonymous cookie until the guest signs up.

package db

import (
	"context"
	"database/sql"
	"time"
)

// GameRow is one row of game history. The secret word is never stored.
type GameRow struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Status     string `json:"status"`
	Guesses    int    `json:"guesses"`
	WrongCount int    `json:"wrongCount"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

// Owner identifies who played a game: a user or an anonymous cookie.
type Owner struct {
	UserID string
	AnonID string
}

// ID is the user ID when logged in, else the anonymous ID.
func (o Owner) ID() string {
	if o.UserID != "" {
		return o.UserID
	}
	return o.AnonID
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// InsertGame records the start of a round.
func InsertGame(ctx context.Context, db *sql.DB, id string, o Owner, category string, startedAt time.Time) error {
	_, err := db.ExecContext(ctx, `
        INSERT INTO games (id, user_id, anonymous_id, category, status, started_at)
        VALUES (?, ?, ?, ?, 'playing', ?)`,
		id, nullable(o.UserID), nullable(o.AnonID), category, startedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// UpdateGame stores progress; finished rounds also get finished_at.
func UpdateGame(ctx context.Context, db *sql.DB, id string, status string, guesses, wrong int) error {
	var finished any
	if status != "playing" {
		finished = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := db.ExecContext(ctx, `
        UPDATE games SET status=?, guesses=?, wrong_count=?, finished_at=COALESCE(finished_at, ?)
        WHERE id=?`,
		status, guesses, wrong, finished, id,
	)
	return err
}

// RecentGames returns a user's latest games, newest first.
func RecentGames(ctx context.Context, db *sql.DB, userID string, limit int) ([]GameRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx, `
        SELECT id, category, status, guesses, wrong_count, started_at, COALESCE(finished_at, '')
        FROM games WHERE user_id=? ORDER BY started_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameRow{}
	for rows.Next() {
		var g GameRow
		if err := rows.Scan(&g.ID, &g.Category, &g.Status, &g.Guesses, &g.WrongCount, &g.StartedAt, &g.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ClaimAnonGames transfers anonymous games to a user account after auth.
func ClaimAnonGames(ctx context.Context, db *sql.DB, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := db.ExecContext(ctx,
		`UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	return err
}
