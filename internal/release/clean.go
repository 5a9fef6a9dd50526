package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	ps "github.com/mitchellh/go-ps"

	"github.com/cheesejaguar/oxide-release/internal/logger"
)

// clean deletes the prior build and output directories. Because it removes
// a build directory another packaging run may be writing to, it refuses to
// proceed while another instance of this executable is running.
func (o *Orchestrator) clean(ctx context.Context) error {
	running, err := anotherInstanceRunning()
	if err != nil {
		return fmt.Errorf("check running processes: %w", err)
	}

	if running {
		return fmt.Errorf("another %s process is running, refusing to clean", selfExecutableName())
	}

	for _, dir := range []string{o.req.Cfg.BuildDir, o.req.Cfg.OutputDir} {
		logger.InfoKV(ctx, "Removing directory", "path", dir)

		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove %s: %w", dir, err)
		}
	}

	return nil
}

// anotherInstanceRunning scans the process table for another live copy of
// this executable.
func anotherInstanceRunning() (bool, error) {
	processes, err := ps.Processes()
	if err != nil {
		return false, err
	}

	self := selfExecutableName()
	selfPID := os.Getpid()

	for _, process := range processes {
		if process.Pid() == selfPID {
			continue
		}

		if process.Executable() == self {
			return true, nil
		}
	}

	return false, nil
}

// selfExecutableName returns this process's executable base name, matching
// what the process table reports.
func selfExecutableName() string {
	return filepath.Base(os.Args[0])
}
