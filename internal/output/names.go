package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const timestampLayout = "20060102150405"

// maxVersions bounds the "-2", "-3"… suffix search.
const maxVersions = 1000

// Namer derives artifact names from the roster file name and a timestamp:
// family.txt becomes family-Matched-20241201093000.txt and
// family-Debug-20241201093000.txt.
type Namer struct {
	Dir   string
	Base  string
	Stamp string
}

// NewNamer builds a Namer for rosterPath that writes into dir. An empty dir
// means the roster's own directory.
func NewNamer(rosterPath, dir string, at time.Time) Namer {
	base := filepath.Base(rosterPath)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	if dir == "" {
		dir = filepath.Dir(rosterPath)
	}
	return Namer{Dir: dir, Base: base, Stamp: at.Format(timestampLayout)}
}

// Result returns an unused path for the result file with the given
// extension (".txt", ".json").
func (n Namer) Result(ext string) (string, error) {
	return n.available("Matched", ext)
}

// Debug returns an unused path for the debug log.
func (n Namer) Debug() (string, error) {
	return n.available("Debug", ".txt")
}

func (n Namer) available(kind, ext string) (string, error) {
	stem := filepath.Join(n.Dir, fmt.Sprintf("%s-%s-%s", n.Base, kind, n.Stamp))
	for version := 1; version <= maxVersions; version++ {
		candidate := stem + ext
		if version > 1 {
			candidate = fmt.Sprintf("%s-%d%s", stem, version, ext)
		}
		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("output: stat %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("output: no free name for %s after %d versions", stem+ext, maxVersions)
}
