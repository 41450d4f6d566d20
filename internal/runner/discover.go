package runner

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/coderun/internal/lang"
)

const msgDirectoryNotFound = "Code directory not found"

// Locate returns the path of the first entry in dir whose name ends with the
// language extension. Entries are taken in the order the filesystem returns
// them; no sorting is applied, so with several matches the pick is unspecified.
func Locate(dir string, l lang.Language) (string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", newError(KindDirectoryNotFound, err, msgDirectoryNotFound)
	}

	// os.ReadDir sorts by name; Readdirnames keeps enumeration order.
	f, err := os.Open(dir)
	if err != nil {
		return "", newError(KindDirectoryNotFound, err, msgDirectoryNotFound)
	}
	names, err := f.Readdirnames(-1)
	_ = f.Close()
	if err != nil {
		return "", newError(KindDirectoryNotFound, err, msgDirectoryNotFound)
	}

	var matches []string
	for _, name := range names {
		if strings.HasSuffix(name, l.Extension) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return "", newError(KindNoSourceFile, nil, "%s", l.NoSourceMessage())
	}

	if len(matches) > 1 {
		slog.Debug("multiple candidates, using first", "dir", dir, "selected", matches[0], "ignored", matches[1:])
	}
	return filepath.Join(dir, matches[0]), nil
}
