// internal/game/types.go
//
// Core type definitions for the hangman game engine.
// Defines:
//   - Status: derived state of a round (playing/won/lost).
//   - Snapshot: the observable state handed to presentation code.
//   - GuessResult: a Snapshot plus per-guess feedback.
//   - RandomSource: injectable word selection.

package game

import "errors"

const (
	// MaskSymbol stands in for a letter that has not been guessed yet.
	MaskSymbol = '_'

	// MaxWrongGuesses is one less than the number of gallows stages.
	MaxWrongGuesses = 6
)

// Status is derived from the engine state, never stored.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Terminal reports whether no further guess can change the round.
func (s Status) Terminal() bool { return s == StatusWon || s == StatusLost }

var (
	// ErrConfiguration is returned by Start for an unusable word pool.
	ErrConfiguration = errors.New("configuration error: word pool must be non-empty and every word needs a letter")
	// ErrInvalidInput is returned by Guess for anything but one letter a–z.
	ErrInvalidInput = errors.New("invalid input: guess must be a single letter")
	// ErrNotStarted is returned by Guess before any Start.
	ErrNotStarted = errors.New("game not started")
)

// Snapshot is an immutable read of the engine. Word is only populated once
// the round is won or lost.
type Snapshot struct {
	Reveal            []string `json:"reveal"`
	Status            Status   `json:"status"`
	WrongCount        int      `json:"wrongCount"`
	AttemptsRemaining int      `json:"attemptsRemaining"`
	Guessed           []string `json:"guessed"`
	WrongLetters      []string `json:"wrongLetters"`
	Word              string   `json:"word,omitempty"`
}

// GuessResult is returned by Guess.
//   - Ignored:  the letter was a repeat or the round was already over.
//   - Finished: this very guess moved the round to won or lost.
type GuessResult struct {
	Snapshot
	Letter     string `json:"letter"`
	WasCorrect bool   `json:"wasCorrect"`
	Ignored    bool   `json:"ignored"`
	Finished   bool   `json:"finished"`
}

// RandomSource picks an index in [0, n). *math/rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// FixedSource always picks the same index (modulo n).
type FixedSource int

func (f FixedSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(f) % n
	if i < 0 {
		i += n
	}
	return i
}
