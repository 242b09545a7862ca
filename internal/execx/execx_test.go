package execx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeScriptsOutputs(t *testing.T) {
	fake := NewFake()
	fake.Outputs["showmount"] = Output{Stdout: "/srv 10.0.0.0/8\n"}

	out, err := fake.Run(context.Background(), time.Second, "showmount", "-e", "10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, "/srv 10.0.0.0/8\n", out.Stdout)
	assert.Equal(t, [][]string{{"showmount", "-e", "10.0.0.5"}}, fake.Calls)
}

func TestFakeForcedError(t *testing.T) {
	fake := NewFake()
	forced := errors.New("boom")
	fake.Errs["psql"] = forced

	_, err := fake.Run(context.Background(), time.Second, "psql", "uri")
	assert.ErrorIs(t, err, forced)
	assert.Len(t, fake.Calls, 1)
}

func TestFakeLookPath(t *testing.T) {
	fake := NewFake()
	fake.Missing["nmap"] = true

	_, err := fake.LookPath("nmap")
	assert.True(t, IsDependencyError(err))

	path, err := fake.LookPath("ssh")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/ssh", path)
}

func TestDependencyErrorUnwraps(t *testing.T) {
	inner := errors.New("not found")
	err := &DependencyError{Name: "socat", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "socat")
	assert.True(t, IsDependencyError(err))
	assert.False(t, IsDependencyError(errors.New("other")))
}

func TestSystemRunnerNonZeroExitIsNotError(t *testing.T) {
	r := NewSystemRunner()
	out, err := r.Run(context.Background(), 5*time.Second, "sh", "-c", "echo out; echo err >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, out.ExitCode)
	assert.Equal(t, "out\n", out.Stdout)
	assert.Equal(t, "err\n", out.Stderr)
}

func TestSystemRunnerTimeout(t *testing.T) {
	r := NewSystemRunner()
	_, err := r.Run(context.Background(), 50*time.Millisecond, "sleep", "5")
	assert.Error(t, err)
}
