package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadSettings_Valid(t *testing.T) {
	content := `
dir: /srv/code
language: javascript
timeout: 10s
idle_timeout: 2m
wait: 500ms
max_source_bytes: 51200
journal: /var/lib/coderun/runs.db
interpreters:
  python: /opt/py/bin/python3
`
	path := writeTemp(t, content)
	s, err := LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}

	if s.Dir != "/srv/code" {
		t.Errorf("dir: got %q", s.Dir)
	}
	if s.Language != "javascript" {
		t.Errorf("language: got %q", s.Language)
	}
	if s.Timeout != 10*time.Second {
		t.Errorf("timeout: got %v", s.Timeout)
	}
	if s.IdleTimeout != 2*time.Minute {
		t.Errorf("idle_timeout: got %v", s.IdleTimeout)
	}
	if s.Wait != 500*time.Millisecond {
		t.Errorf("wait: got %v", s.Wait)
	}
	if s.MaxSourceBytes != 51200 {
		t.Errorf("max_source_bytes: got %d", s.MaxSourceBytes)
	}
	if s.Journal != "/var/lib/coderun/runs.db" {
		t.Errorf("journal: got %q", s.Journal)
	}
	if s.Interpreter("python") != "/opt/py/bin/python3" {
		t.Errorf("interpreters: got %v", s.Interpreters)
	}
}

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "nonexistent.yml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	def := Defaults()
	if s.Dir != def.Dir || s.Language != def.Language {
		t.Errorf("got dir=%q language=%q, want defaults", s.Dir, s.Language)
	}
	if s.Timeout != 0 || s.Wait != 0 || s.Journal != "" {
		t.Errorf("expected zero optional settings, got %+v", s)
	}
}

func TestLoadSettings_EmptyPath(t *testing.T) {
	s, err := LoadSettings("")
	if err != nil {
		t.Fatal(err)
	}
	if s.Dir != "/app/code" {
		t.Errorf("dir: got %q", s.Dir)
	}
}

func TestLoadSettings_EnvOverride(t *testing.T) {
	t.Setenv("CODERUN_DIR", "/from/env")
	t.Setenv("CODERUN_TIMEOUT", "3s")

	path := writeTemp(t, "dir: /from/file\nlanguage: ruby\n")
	s, err := LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Dir != "/from/env" {
		t.Errorf("env should win over file, got %q", s.Dir)
	}
	if s.Timeout != 3*time.Second {
		t.Errorf("timeout: got %v", s.Timeout)
	}
	if s.Language != "ruby" {
		t.Errorf("language: got %q", s.Language)
	}
}

func TestLoadSettings_InvalidYAML(t *testing.T) {
	path := writeTemp(t, "dir: [invalid\n")
	if _, err := LoadSettings(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown_language":    "language: cobol\n",
		"unknown_interpreter": "interpreters:\n  cobol: /bin/cobc\n",
		"negative_timeout":    "timeout: -1s\n",
		"negative_size":       "max_source_bytes: -5\n",
		"empty_dir":           "dir: \"  \"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadSettings(writeTemp(t, content)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestResolveLanguage(t *testing.T) {
	s := Defaults()
	s.Language = "py"
	s.Interpreters = map[string]string{"py": "python3.12"}

	l, err := s.ResolveLanguage()
	if err != nil {
		t.Fatal(err)
	}
	if l.Name != "python" || l.Interpreter != "python3.12" {
		t.Errorf("got %s via %s", l.Name, l.Interpreter)
	}

	s.Interpreters = nil
	l, err = s.ResolveLanguage()
	if err != nil {
		t.Fatal(err)
	}
	if l.Interpreter != "python3" {
		t.Errorf("default interpreter: got %q", l.Interpreter)
	}
}

func TestYAML(t *testing.T) {
	s := Defaults()
	s.Timeout = 90 * time.Second

	out, err := s.YAML()
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)
	for _, want := range []string{"dir: /app/code", "language: python", "timeout: 1m30s"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
	if strings.Contains(text, "journal") {
		t.Errorf("empty journal should be omitted:\n%s", text)
	}

	// the rendered form must load back
	back, err := LoadSettings(writeTemp(t, text))
	if err != nil {
		t.Fatalf("reload rendered settings: %v", err)
	}
	if back.Timeout != s.Timeout {
		t.Errorf("timeout after reload: got %v", back.Timeout)
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".coderun.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
