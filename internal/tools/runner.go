package tools

import (
	"context"
	"os/exec"
)

// CommandRunner runs external commands for the code executor tool.
// The abstraction allows mocking command execution in tests.
type CommandRunner interface {
	// RunShell executes a shell command through "sh -c" and returns
	// combined stdout/stderr output. The working directory is set to
	// workDir if non-empty.
	RunShell(ctx context.Context, workDir string, command string) (output []byte, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

// NewRunner creates a new ExecRunner.
func NewRunner() *ExecRunner {
	return &ExecRunner{}
}

// RunShell executes a shell command through "sh -c".
func (r *ExecRunner) RunShell(ctx context.Context, workDir string, command string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	if workDir != "" {
		cmd.Dir = workDir
	}
	return cmd.CombinedOutput()
}

// Verify ExecRunner implements CommandRunner at compile time.
var _ CommandRunner = (*ExecRunner)(nil)
