package reporter

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/coderun/internal/runner"
)

// WriteJSONReport writes the run result as JSON to the given path.
func WriteJSONReport(res *runner.Result, path string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
