// internal/render/text.go
//
// Package render turns engine snapshots into text for terminal and
// websocket clients: gallows stages, the spaced-out word, status lines.
package render

import (
	"strconv"
	"strings"

	"github.com/robalobadob/hangman/apps/go-server/internal/game"
)

// Stages has one drawing per wrong guess, from empty gallows to full figure.
var Stages = [game.MaxWrongGuesses + 1]string{
	`
   +---+
   |   |
       |
       |
       |
       |
  =========`,
	`
   +---+
   |   |
   O   |
       |
       |
       |
  =========`,
	`
   +---+
   |   |
   O   |
   |   |
       |
       |
  =========`,
	`
   +---+
   |   |
   O   |
  /|   |
       |
       |
  =========`,
	`
   +---+
   |   |
   O   |
  /|\  |
       |
       |
  =========`,
	`
   +---+
   |   |
   O   |
  /|\  |
  /    |
       |
  =========`,
	`
   +---+
   |   |
   O   |
  /|\  |
  / \  |
       |
  =========`,
}

// Stage returns the drawing for a wrong count, clamped to the valid range.
func Stage(wrong int) string {
	if wrong < 0 {
		wrong = 0
	}
	if wrong >= len(Stages) {
		wrong = len(Stages) - 1
	}
	return Stages[wrong]
}

// Word joins the reveal with single spaces; word gaps show as three spaces.
func Word(reveal []string) string {
	return strings.Join(reveal, " ")
}

// Attempts is the "Attempts: N" line.
func Attempts(s game.Snapshot) string {
	return "Attempts: " + strconv.Itoa(s.AttemptsRemaining)
}

// Wrong is the "Wrong: a, b" line, empty before the first miss.
func Wrong(s game.Snapshot) string {
	if len(s.WrongLetters) == 0 {
		return ""
	}
	return "Wrong: " + strings.Join(s.WrongLetters, ", ")
}

// DefaultPrompt is the in-progress line when the word list names none.
const DefaultPrompt = "Guess the word!"

// Message is the status line shown above the word. prompt is used while
// the round is playing; empty means DefaultPrompt.
func Message(s game.Snapshot, prompt string) string {
	switch s.Status {
	case game.StatusWon:
		return "You win! The word was: " + s.Word
	case game.StatusLost:
		return "You lost! The word was: " + s.Word
	}
	if prompt == "" {
		return DefaultPrompt
	}
	return prompt
}

// Board renders everything a text client shows for one snapshot.
func Board(s game.Snapshot, prompt string) string {
	var b strings.Builder
	b.WriteString(Stage(s.WrongCount))
	b.WriteString("\n\n  ")
	b.WriteString(Word(s.Reveal))
	b.WriteString("\n\n")
	b.WriteString(Attempts(s))
	if w := Wrong(s); w != "" {
		b.WriteString("\n")
		b.WriteString(w)
	}
	b.WriteString("\n")
	b.WriteString(Message(s, prompt))
	b.WriteString("\n")
	return b.String()
}
