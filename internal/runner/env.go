package runner

import (
	"os"
	"strings"
)

// runnerEnvPrefix names variables that configure coderun itself.
const runnerEnvPrefix = "CODERUN_"

// programEnv returns os.Environ() without coderun's own settings.
func programEnv() []string {
	return stripRunnerEnv(os.Environ())
}

func stripRunnerEnv(environ []string) []string {
	out := make([]string, 0, len(environ))
	for _, entry := range environ {
		name, _, _ := strings.Cut(entry, "=")
		if strings.HasPrefix(strings.ToUpper(name), runnerEnvPrefix) {
			continue
		}
		out = append(out, entry)
	}
	return out
}
