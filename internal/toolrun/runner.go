// Package toolrun spawns the external typesetting tools and captures their
// output. The scheduler only sees the Runner interface; tests substitute
// fakes and never touch a real toolchain.
package toolrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// Result is the captured outcome of one tool invocation. A nonzero exit
// code is data, not an error: the scheduler decides what it means.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes one external tool invocation and blocks until it exits.
type Runner interface {
	Run(ctx context.Context, name string, args []string, dir string) (Result, error)
}

// ExecRunner runs tools through os/exec. Output bytes are decoded per the
// configured encoding (see encoding.go); tool diagnostics are assumed to be
// in that encoding regardless of stream.
type ExecRunner struct {
	Decoder *Decoder
}

// Run spawns the tool and drains stdout and stderr concurrently, so a
// chatty processor can never fill a pipe and deadlock. Only spawn failures
// are errors; a tool exiting nonzero yields a Result with that code.
func (r ExecRunner) Run(ctx context.Context, name string, args []string, dir string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, fmt.Errorf("failed to open stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("failed to start %s: %w", name, err)
	}

	var outBuf, errBuf bytes.Buffer
	var eg errgroup.Group
	eg.Go(func() error {
		_, copyErr := io.Copy(&outBuf, stdout)
		return copyErr
	})
	eg.Go(func() error {
		_, copyErr := io.Copy(&errBuf, stderr)
		return copyErr
	})
	drainErr := eg.Wait()
	waitErr := cmd.Wait()

	res := Result{
		Stdout: r.decode(outBuf.Bytes()),
		Stderr: r.decode(errBuf.Bytes()),
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			return res, fmt.Errorf("failed to run %s: %w", name, waitErr)
		}
	}
	if drainErr != nil {
		return res, fmt.Errorf("failed to capture %s output: %w", name, drainErr)
	}
	return res, nil
}

func (r ExecRunner) decode(b []byte) string {
	if r.Decoder == nil {
		return string(b)
	}
	return r.Decoder.Decode(b)
}
