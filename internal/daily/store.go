// internal/daily/store.go
//
// Persistence for daily results: one row per player and date, and the
// per-date leaderboard of winners (fewest misses, then fastest).

package daily

import (
	"context"
	"database/sql"
)

// Result is one player's finished daily round.
type Result struct {
	UserID     string `json:"userId"`
	Date       string `json:"date"`
	WordIndex  int    `json:"wordIndex"`
	Won        bool   `json:"won"`
	WrongCount int    `json:"wrongCount"`
	ElapsedMs  int    `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID finished the daily round for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?`,
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult stores a result; a second result for the same user and date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, word_index, won, wrong_count, elapsed_ms)
		VALUES(?,?,?,?,?,?)`, r.UserID, r.Date, r.WordIndex, r.Won, r.WrongCount, r.ElapsedMs,
	)
	return err
}

type LBRow struct {
	UserID     string `json:"userId"`
	Username   string `json:"username,omitempty"`
	WrongCount int    `json:"wrongCount"`
	ElapsedMs  int    `json:"elapsedMs"`
}

// Leaderboard lists the day's winners: fewest misses, then fastest.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.user_id, COALESCE(u.username, ''), r.wrong_count, r.elapsed_ms
		FROM daily_results r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.date=? AND r.won=1
		ORDER BY r.wrong_count ASC, r.elapsed_ms ASC, r.created_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Username, &r.WrongCount, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
