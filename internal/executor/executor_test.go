package executor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsbot/gateway/internal/config"
	"github.com/newsbot/gateway/internal/executor"
)

// writeScript drops a shell script into a temp dir so tests exercise a
// real subprocess without depending on python being installed.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "query.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func newRunner(script string) *executor.Runner {
	return executor.NewRunner(config.QueryConfig{
		Python:  "/bin/sh",
		Script:  script,
		APIKey:  "test-key",
		DataDir: "/tmp/chroma",
	})
}

func TestExecuteReturnsTrimmedAnswer(t *testing.T) {
	r := newRunner(writeScript(t, `echo "  the answer  "`))

	answer, err := r.Execute(context.Background(), "any query")
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
}

func TestExecutePassesQueryAsArgument(t *testing.T) {
	r := newRunner(writeScript(t, `echo "$1"`))

	answer, err := r.Execute(context.Background(), "latest news on india")
	require.NoError(t, err)
	assert.Equal(t, "latest news on india", answer)
}

func TestExecutePassesCredentialEnvironment(t *testing.T) {
	r := newRunner(writeScript(t, `echo "$GEMINI_API_KEY $CHROMA_DIR"`))

	answer, err := r.Execute(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "test-key /tmp/chroma", answer)
}

func TestExecuteNonzeroExit(t *testing.T) {
	r := newRunner(writeScript(t, "echo \"index missing\" >&2\nexit 3"))

	_, err := r.Execute(context.Background(), "q")
	var execErr *executor.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 3, execErr.ExitCode)
	assert.Contains(t, execErr.Stderr, "index missing")
}

func TestExecuteErrorMarkerInOutput(t *testing.T) {
	r := newRunner(writeScript(t, `echo "Error: no documents indexed"`))

	_, err := r.Execute(context.Background(), "q")
	var rejErr *executor.RejectedError
	require.ErrorAs(t, err, &rejErr)
	assert.Equal(t, "Error: no documents indexed", rejErr.Output)
}

func TestExecuteContextCancelKillsProcess(t *testing.T) {
	r := newRunner(writeScript(t, "exec sleep 10"))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Execute(ctx, "q")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestExecuteMissingBinary(t *testing.T) {
	r := executor.NewRunner(config.QueryConfig{Python: "/nonexistent-python", Script: "chat_query.py"})

	_, err := r.Execute(context.Background(), "q")
	require.Error(t, err)

	var execErr *executor.ExecutionError
	assert.False(t, errors.As(err, &execErr), "a spawn failure is not a nonzero exit")
}
