// internal/words/words.go
//
// Word pool management for the game engine.
//
// Responsibilities:
//   - Load the pool from a file named by WORDS_FILE, or fall back to the
//     embedded default (assets/words.yaml).
//   - Keep words grouped by category; the full pool is every category merged.
//
// File formats:
//   - *.yaml / *.yml:
//       categories:
//         anime: [naruto, one piece]
//         animals: [tiger, falcon]
//       prompts:                     # optional in-progress line per category
//         anime: Guess the anime title!
//   - anything else: one entry per line, '#' starts a comment line. All
//     entries go into the "default" category.
//
// Constraints:
//   • Entries are trimmed but keep their casing (the engine matches
//     case-insensitively and displays the original).
//   • Entries without a single letter a–z are dropped; duplicates (ignoring
//     case) are dropped per category.
//   • A pool with no words is an error.

package words

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/hangman/apps/go-server/assets"
)

// DefaultCategory holds entries from plain-text files.
const DefaultCategory = "default"

var (
	ErrEmptyPool       = errors.New("words: pool is empty")
	ErrUnknownCategory = errors.New("words: unknown category")
)

// Pool is an immutable, categorised list of candidate secret words.
type Pool struct {
	categories map[string][]string
	prompts    map[string]string
	names      []string // sorted
	all        []string
}

type yamlFile struct {
	Categories map[string][]string `yaml:"categories"`
	Prompts    map[string]string   `yaml:"prompts"`
}

// Load reads the pool at path; an empty path loads the embedded default.
func Load(path string) (*Pool, error) {
	if path == "" {
		data, err := assets.DefaultWords()
		if err != nil {
			return nil, fmt.Errorf("words: read embedded pool: %w", err)
		}
		return ParseYAML(data)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("words: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseText(data)
	}
}

// ParseYAML builds a pool from a `categories:` document.
func ParseYAML(data []byte) (*Pool, error) {
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("words: parse yaml: %w", err)
	}
	p, err := newPool(f.Categories)
	if err != nil {
		return nil, err
	}
	for name, prompt := range f.Prompts {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := p.categories[name]; ok && strings.TrimSpace(prompt) != "" {
			p.prompts[name] = strings.TrimSpace(prompt)
		}
	}
	return p, nil
}

// ParseText builds a single-category pool from newline separated entries.
func ParseText(data []byte) (*Pool, error) {
	var list []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		list = append(list, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("words: scan: %w", err)
	}
	return newPool(map[string][]string{DefaultCategory: list})
}

func newPool(raw map[string][]string) (*Pool, error) {
	p := &Pool{categories: make(map[string][]string, len(raw)), prompts: make(map[string]string)}
	for name, list := range raw {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		clean := normalize(list)
		if len(clean) == 0 {
			continue
		}
		p.categories[name] = append(p.categories[name], clean...)
	}
	for name := range p.categories {
		p.names = append(p.names, name)
	}
	sort.Strings(p.names)
	for _, name := range p.names {
		p.all = append(p.all, p.categories[name]...)
	}
	if len(p.all) == 0 {
		return nil, ErrEmptyPool
	}
	return p, nil
}

// normalize trims entries and drops letterless ones and case-insensitive duplicates.
func normalize(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, w := range list {
		w = strings.TrimSpace(w)
		if !hasLetter(w) {
			continue
		}
		k := strings.ToLower(w)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, w)
	}
	return out
}

func hasLetter(s string) bool {
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}

// Words returns every word of every category (a copy).
func (p *Pool) Words() []string {
	return append([]string(nil), p.all...)
}

// Category returns the words of one category; "" means the whole pool.
func (p *Pool) Category(name string) ([]string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return p.Words(), nil
	}
	list, ok := p.categories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return append([]string(nil), list...), nil
}

// Categories returns the category names, sorted.
func (p *Pool) Categories() []string {
	return append([]string(nil), p.names...)
}

// Stats returns the number of words per category.
func (p *Pool) Stats() map[string]int {
	out := make(map[string]int, len(p.names))
	for _, name := range p.names {
		out[name] = len(p.categories[name])
	}
	return out
}

// Prompt is the in-progress line for a category, or "" when the file sets
// none. A name that is not a category (the whole pool, the daily word)
// uses the prompt of the only category when there is exactly one.
func (p *Pool) Prompt(category string) string {
	name := strings.ToLower(strings.TrimSpace(category))
	if _, ok := p.categories[name]; !ok && len(p.names) == 1 {
		name = p.names[0]
	}
	return p.prompts[name]
}

// Len returns the total number of words.
func (p *Pool) Len() int { return len(p.all) }
