package tool

import (
	"context"
	"os/exec"
)

// runCommandFunc executes a child process and returns its combined output.
// Both tool implementations go through it so tests can intercept the call.
type runCommandFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
