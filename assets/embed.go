// assets/embed.go
//
// Embedded defaults shipped inside the binary: the anime word pool used
// when WORDS_FILE is empty.

package assets

import (
	"embed"
	"io/fs"
)

//go:embed words.yaml
var FS embed.FS

// DefaultWords returns the embedded, categorised word pool (YAML).
func DefaultWords() ([]byte, error) {
	return fs.ReadFile(FS, "words.yaml")
}
