// internal/daily/daily.go
//
// Deterministic word of the day.
// The index is an HMAC-SHA256 of the UTC date keyed by DAILY_SALT, so every
// player draws the same word without any shared state.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/hangman/apps/go-server/internal/game"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % poolLen.
func WordIndex(date time.Time, salt string, poolLen int) int {
	if poolLen <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(poolLen))
}

// Source picks the day's word for whatever pool size the engine asks about.
type Source struct {
	Date time.Time
	Salt string
}

var _ game.RandomSource = Source{}

func (s Source) Intn(n int) int { return WordIndex(s.Date, s.Salt, n) }
