// internal/game/engine.go
//
// Core game engine for a single hangman round.
// Responsibilities:
//   - Pick a secret word from a pool through an injectable RandomSource.
//   - Mask letters a–z (either case); everything else is visible from the start.
//   - Apply single-letter guesses: reveal matches case-insensitively while
//     keeping the original casing, count misses.
//   - Track state transitions: playing → won/lost. Both are terminal.
//
// Notes:
//   - An Engine is owned by exactly one caller at a time and is not safe for
//     concurrent use; the session layer serialises access.
//   - Repeated letters and guesses after the round ended are no-ops, not errors.
package game

import (
	"crypto/rand"
	"math/big"
	"sort"
	"unicode/utf8"
)

// Engine holds the state of one round. The zero value is not usable; call New.
type Engine struct {
	src RandomSource

	word    []rune // original casing
	lower   []rune
	reveal  []rune
	guessed map[rune]struct{}
	order   []rune // guess order, for the wrong-letter list
	wrong   int
}

// New constructs an engine. A nil src falls back to CryptoSource.
func New(src RandomSource) *Engine {
	if src == nil {
		src = CryptoSource{}
	}
	return &Engine{src: src}
}

// Start draws a word from pool and resets every field of the round.
// It fails with ErrConfiguration if pool is empty or any entry has no letter,
// leaving the previous round untouched.
func (e *Engine) Start(pool []string) (Snapshot, error) {
	if len(pool) == 0 {
		return Snapshot{}, ErrConfiguration
	}
	for _, w := range pool {
		if !hasLetter(w) {
			return Snapshot{}, ErrConfiguration
		}
	}

	word := []rune(pool[e.src.Intn(len(pool))])
	e.word = word
	e.lower = make([]rune, len(word))
	e.reveal = make([]rune, len(word))
	for i, r := range word {
		e.lower[i] = toLower(r)
		if isLetter(r) {
			e.reveal[i] = MaskSymbol
		} else {
			e.reveal[i] = r
		}
	}
	e.guessed = make(map[rune]struct{})
	e.order = nil
	e.wrong = 0
	return e.Snapshot(), nil
}

// Guess applies one letter.
//
// Validation:
//   - letter must be exactly one rune in a–z or A–Z (ErrInvalidInput).
//   - Start must have been called (ErrNotStarted).
//
// A terminal round or an already-guessed letter returns the current snapshot
// with Ignored set. On the sixth miss the whole word is revealed.
func (e *Engine) Guess(letter string) (GuessResult, error) {
	if utf8.RuneCountInString(letter) != 1 {
		return GuessResult{}, ErrInvalidInput
	}
	r, _ := utf8.DecodeRuneInString(letter)
	if !isLetter(r) {
		return GuessResult{}, ErrInvalidInput
	}
	if e.word == nil {
		return GuessResult{}, ErrNotStarted
	}
	r = toLower(r)

	res := GuessResult{Letter: string(r)}
	if e.status().Terminal() {
		res.Ignored = true
		res.Snapshot = e.Snapshot()
		return res, nil
	}
	if _, seen := e.guessed[r]; seen {
		res.Ignored = true
		res.WasCorrect = e.contains(r)
		res.Snapshot = e.Snapshot()
		return res, nil
	}

	e.guessed[r] = struct{}{}
	e.order = append(e.order, r)

	if e.contains(r) {
		res.WasCorrect = true
		for i, c := range e.lower {
			if c == r {
				e.reveal[i] = e.word[i]
			}
		}
	} else {
		e.wrong++
		if e.wrong >= MaxWrongGuesses {
			copy(e.reveal, e.word)
		}
	}

	res.Snapshot = e.Snapshot()
	res.Finished = res.Status.Terminal()
	return res, nil
}

// Snapshot returns a copy of the observable state.
func (e *Engine) Snapshot() Snapshot {
	st := e.status()
	s := Snapshot{
		Reveal:            make([]string, len(e.reveal)),
		Status:            st,
		WrongCount:        e.wrong,
		AttemptsRemaining: MaxWrongGuesses - e.wrong,
		Guessed:           make([]string, 0, len(e.order)),
		WrongLetters:      []string{},
	}
	for i, r := range e.reveal {
		s.Reveal[i] = string(r)
	}
	for _, r := range e.order {
		s.Guessed = append(s.Guessed, string(r))
		if !e.contains(r) {
			s.WrongLetters = append(s.WrongLetters, string(r))
		}
	}
	sort.Strings(s.Guessed)
	if st.Terminal() {
		s.Word = string(e.word)
	}
	return s
}

// status: a loss takes precedence since the loss reveal clears every mask.
func (e *Engine) status() Status {
	switch {
	case e.word == nil:
		return StatusPlaying
	case e.wrong >= MaxWrongGuesses:
		return StatusLost
	case !e.masked():
		return StatusWon
	default:
		return StatusPlaying
	}
}

func (e *Engine) masked() bool {
	for i, r := range e.reveal {
		if r == MaskSymbol && isLetter(e.word[i]) {
			return true
		}
	}
	return false
}

func (e *Engine) contains(r rune) bool {
	for _, c := range e.lower {
		if c == r {
			return true
		}
	}
	return false
}

// isLetter matches ASCII letters only; accented letters stay visible.
func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func hasLetter(s string) bool {
	for _, r := range s {
		if isLetter(r) {
			return true
		}
	}
	return false
}

// CryptoSource draws indexes from crypto/rand.
type CryptoSource struct{}

func (CryptoSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(nBig.Int64())
}
