// Package execx runs external commands and streams their output line by
// line to caller-supplied callbacks.
package execx

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// LineFunc receives one output line, without its trailing newline.
type LineFunc func(line string)

// Runner executes a command to completion, invoking onStdout and onStderr
// for each produced line as it appears. A non-nil error means the process
// failed to start or exited non-zero.
type Runner interface {
	Run(ctx context.Context, dir, name string, args []string, onStdout, onStderr LineFunc) error
}

// StreamRunner is the os/exec backed Runner.
type StreamRunner struct{}

func New() *StreamRunner {
	return &StreamRunner{}
}

func (r *StreamRunner) Run(ctx context.Context, dir, name string, args []string, onStdout, onStderr LineFunc) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	var outErr, errErr error
	go func() { defer wg.Done(); outErr = drain(stdout, onStdout) }()
	go func() { defer wg.Done(); errErr = drain(stderr, onStderr) }()

	// Both pipes must be fully drained before Wait closes them.
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if outErr != nil {
		return fmt.Errorf("read stdout: %w", outErr)
	}
	if errErr != nil {
		return fmt.Errorf("read stderr: %w", errErr)
	}
	return nil
}

func drain(pipe io.Reader, fn LineFunc) error {
	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if fn != nil {
			fn(scanner.Text())
		}
	}
	// A scan failure (a line beyond the buffer cap, a read error) stops
	// line delivery; the pipe must still be emptied so Wait can finish.
	if err := scanner.Err(); err != nil {
		_, _ = io.Copy(io.Discard, pipe)
		return err
	}
	return nil
}
