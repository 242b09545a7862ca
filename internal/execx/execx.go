// Package execx models the "run an external binary" capability behind an
// interface so probe and tunnel logic can be tested with a fake instead of
// a real subprocess.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Output captures everything a caller may need from a finished process.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes external binaries. Implementations must honor the
// timeout and never block past it.
type Runner interface {
	// Run executes name with args, waiting at most timeout. A non-zero
	// exit code is not an error; it is reported in Output.
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Output, error)

	// LookPath reports whether the binary exists. A failure here is a
	// DependencyError: no probe depending on the binary can proceed.
	LookPath(name string) (string, error)
}

// DependencyError marks a missing external binary or library. It is fatal
// for the invocation that needs it.
type DependencyError struct {
	Name string
	Err  error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("required dependency %q not available: %v", e.Name, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// IsDependencyError reports whether err wraps a DependencyError.
func IsDependencyError(err error) bool {
	var de *DependencyError
	return errors.As(err, &de)
}

// System is the real Runner backed by os/exec.
type System struct{}

// NewSystemRunner returns the Runner used outside of tests.
func NewSystemRunner() Runner { return &System{} }

func (s *System) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", &DependencyError{Name: name, Err: err}
	}
	return path, nil
}

func (s *System) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Output, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		out.ExitCode = 0
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
		err = nil
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return out, fmt.Errorf("%s timed out after %v", name, timeout)
	default:
		return out, fmt.Errorf("running %s: %w", name, err)
	}
	return out, nil
}

// Fake is a scripted Runner for tests. Calls are matched by binary name.
type Fake struct {
	// Outputs maps binary name to the Output returned for it.
	Outputs map[string]Output

	// Errs maps binary name to a forced error.
	Errs map[string]error

	// Missing lists binaries LookPath should report as absent.
	Missing map[string]bool

	// Calls records every invocation in order.
	Calls [][]string
}

// NewFake returns an empty scripted runner.
func NewFake() *Fake {
	return &Fake{
		Outputs: map[string]Output{},
		Errs:    map[string]error{},
		Missing: map[string]bool{},
	}
}

func (f *Fake) LookPath(name string) (string, error) {
	if f.Missing[name] {
		return "", &DependencyError{Name: name, Err: exec.ErrNotFound}
	}
	return "/usr/bin/" + name, nil
}

func (f *Fake) Run(_ context.Context, _ time.Duration, name string, args ...string) (Output, error) {
	f.Calls = append(f.Calls, append([]string{name}, args...))
	if err := f.Errs[name]; err != nil {
		return Output{}, err
	}
	return f.Outputs[name], nil
}
