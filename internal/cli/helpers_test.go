package cli

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

// runCLI executes the root command with args, isolated from any local config file.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	return runCLIWithConfig(t, filepath.Join(t.TempDir(), "absent.yml"), args...)
}

func runCLIWithConfig(t *testing.T, cfg string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(append([]string{"--config", cfg}, args...))
	root.SetIn(strings.NewReader(""))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	code := Execute(context.Background(), root)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not on PATH")
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
