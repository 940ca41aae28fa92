package clip

import (
	"context"
	"os/exec"
)

// runCommand runs name with args and returns its combined output. Tests replace it.
var runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// runOutput runs name with args and returns stdout only. Tests replace it.
var runOutput = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
