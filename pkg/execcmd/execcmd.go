// Package execcmd runs shell commands on behalf of deployment scripts and captures their output.
package execcmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Run waits for output after the command was killed.
const waitDelay = 2 * time.Second

// ErrMaxBufferExceeded is returned when a command writes more output than the configured max
// buffer.
var ErrMaxBufferExceeded = errors.New("command output exceeded max buffer")

// Error is returned when a command fails. It carries whatever the command wrote before failing.
type Error struct {
	Cmd    string
	Stdout string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Cmd, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code of the command, or -1 if it did not exit normally.
func (e *Error) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}

// Run executes command with `sh -c` and returns its stdout and stderr. If the command fails, the
// returned error is an *Error and the captured output is also returned.
//
// When the VERBOSE environment variable is "true" (or WithVerbose(true) is given) the command and
// its output are logged at debug level and the output is streamed to the process.
func Run(ctx context.Context, command string, opts ...Option) (string, string, error) {
	o := newOptions(opts)

	if o.verbose {
		o.lggr.Debugf("$ %s", command)
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command) //nolint:gosec // running caller-provided commands is the point
	cmd.Dir = o.dir
	// Children of the shell may outlive it when ctx is cancelled and keep the pipes open.
	cmd.WaitDelay = waitDelay
	if len(o.env) > 0 {
		cmd.Env = append(os.Environ(), o.env...)
	}

	stdout := &cappedBuffer{limit: o.maxBuffer}
	stderr := &cappedBuffer{limit: o.maxBuffer}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if o.pipe {
		cmd.Stdout = io.MultiWriter(stdout, o.pipeOut)
		cmd.Stderr = io.MultiWriter(stderr, o.pipeErr)
	}

	err := cmd.Run()
	if err == nil && (stdout.exceeded || stderr.exceeded) {
		err = fmt.Errorf("%w (%d bytes)", ErrMaxBufferExceeded, o.maxBuffer)
	}

	outStr, errStr := stdout.String(), stderr.String()

	if o.verbose {
		o.lggr.Debug(outStr)
	}

	if err != nil {
		o.lggr.Errorw("Command failed", "cmd", command, "error", err, "stderr", errStr)

		return outStr, errStr, &Error{Cmd: command, Stdout: outStr, Stderr: errStr, Err: err}
	}

	if o.verbose && errStr != "" {
		o.lggr.Debug(errStr)
	}

	return outStr, errStr, nil
}

// RunJSON executes command like Run and unmarshals its stdout as JSON into T.
func RunJSON[T any](ctx context.Context, command string, opts ...Option) (T, error) {
	var v T

	stdout, _, err := Run(ctx, command, opts...)
	if err != nil {
		return v, err
	}

	if err = json.Unmarshal([]byte(strings.TrimSpace(stdout)), &v); err != nil {
		return v, fmt.Errorf("failed to parse output of %q as JSON: %w", command, err)
	}

	return v, nil
}

// cappedBuffer accumulates up to limit bytes and silently drops the rest, remembering that it
// did so. It never reports a short write so the command is not killed by a broken pipe.
type cappedBuffer struct {
	buf      strings.Builder
	limit    int
	exceeded bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.limit - b.buf.Len()
	if len(p) > room {
		b.exceeded = true
		if room > 0 {
			b.buf.Write(p[:room])
		}

		return len(p), nil
	}

	b.buf.Write(p)

	return len(p), nil
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}
