package format

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/cheesejaguar/oxide-release/internal/logger"
)

// outputTailLimit bounds how much tool output is carried into an error.
const outputTailLimit = 2048

// runTool executes an external packaging tool to completion, capturing its
// output. On failure the output tail is folded into the returned error so
// the final report can explain what the tool said.
func runTool(ctx context.Context, dir, path string, args ...string) error {
	logger.DebugKV(ctx, "Running tool", "path", path, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = dir

	var output bytes.Buffer

	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		tail := output.String()
		if len(tail) > outputTailLimit {
			tail = "..." + tail[len(tail)-outputTailLimit:]
		}

		return fmt.Errorf("%s: %w: %s", path, err, strings.TrimSpace(tail))
	}

	return nil
}

// runToolEnv is runTool with extra environment variables appended.
func runToolEnv(ctx context.Context, dir, path string, env []string, args ...string) error {
	logger.DebugKV(ctx, "Running tool", "path", path, "args", strings.Join(args, " "), "env", strings.Join(env, " "))

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = dir
	cmd.Env = append(cmd.Environ(), env...)

	var output bytes.Buffer

	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		tail := output.String()
		if len(tail) > outputTailLimit {
			tail = "..." + tail[len(tail)-outputTailLimit:]
		}

		return fmt.Errorf("%s: %w: %s", path, err, strings.TrimSpace(tail))
	}

	return nil
}
