// Package executor invokes the external answer-generation process for a
// single query and classifies the outcome.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/newsbot/gateway/internal/config"
)

// errorMarker signals an in-band failure: the process exited cleanly but
// the answer text reports an error instead of an answer.
const errorMarker = "Error:"

// ExecutionError reports a process that exited nonzero.
type ExecutionError struct {
	ExitCode int
	Stderr   string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query process exited with code %d: %s", e.ExitCode, strings.TrimSpace(e.Stderr))
}

// RejectedError reports a process that exited cleanly but returned an
// error message instead of an answer.
type RejectedError struct {
	Output string
}

func (e *RejectedError) Error() string {
	return "query rejected: " + e.Output
}

// Runner executes queries by spawning the configured script, one
// process per query. It holds no state beyond configuration and is safe
// for concurrent use.
type Runner struct {
	cfg config.QueryConfig
}

// NewRunner builds a Runner from query configuration.
func NewRunner(cfg config.QueryConfig) *Runner {
	return &Runner{cfg: cfg}
}

// Execute runs one query and returns the trimmed answer text. The query
// is passed as the sole script argument; the API credential and data
// directory are passed through the environment. Cancelling the context
// kills the subprocess. No retries are performed.
func (r *Runner) Execute(ctx context.Context, query string) (string, error) {
	cmd := exec.CommandContext(ctx, r.cfg.Python, r.cfg.Script, query)
	// Bound the wait after a kill so orphaned grandchildren holding the
	// output pipes cannot stall the request forever.
	cmd.WaitDelay = 5 * time.Second
	cmd.Env = append(os.Environ(),
		"GEMINI_API_KEY="+r.cfg.APIKey,
		"CHROMA_DIR="+r.cfg.DataDir,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ExecutionError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return "", fmt.Errorf("run query process: %w", err)
	}

	answer := strings.TrimSpace(stdout.String())
	if strings.Contains(answer, errorMarker) {
		return "", &RejectedError{Output: answer}
	}
	return answer, nil
}
