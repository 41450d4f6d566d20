package runner

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/ppiankov/coderun/internal/lang"
)

func mustLang(t *testing.T, name string) lang.Language {
	t.Helper()
	l, err := lang.Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func requireInterpreter(t *testing.T, l lang.Language) {
	t.Helper()
	if _, err := exec.LookPath(l.Interpreter); err != nil {
		t.Skipf("%s not on PATH", l.Interpreter)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
