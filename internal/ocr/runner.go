package ocr

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/BerylCAtieno/blood-report-api/internal/utils"
)

// maxLoggedStderr bounds how much of a failing command's stderr is logged.
const maxLoggedStderr = 8 << 10

// Runner executes an external program, feeding stdin and collecting both
// output streams.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) (stdout, stderr []byte, err error)
}

type commandRunner struct {
	logger *utils.Logger
}

func NewCommandRunner(logger *utils.Logger) Runner {
	return &commandRunner{logger: logger}
}

func (r *commandRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	logger := r.logger.With(
		"command", name,
		"args", args,
		"duration_ms", time.Since(start).Milliseconds())

	if err != nil {
		logger.Error("ocr.exec.failed",
			"error", err,
			"stderr", clip(stderr.String(), maxLoggedStderr))
		return stdout.Bytes(), stderr.Bytes(), err
	}

	logger.Debug("ocr.exec.ok",
		"stdin_bytes", len(stdin),
		"stdout_bytes", stdout.Len())
	return stdout.Bytes(), stderr.Bytes(), nil
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
