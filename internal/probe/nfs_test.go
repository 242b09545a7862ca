package probe

import (
	"context"
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sam1101-sys/reconkit/internal/execx"
)

// acceptOnce opens a local listener that accepts connections, standing
// in for a reachable service port.
func acceptOnce(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func TestNFSProbeParsesExports(t *testing.T) {
	host, port := acceptOnce(t)

	fake := execx.NewFake()
	fake.Outputs["showmount"] = execx.Output{
		Stdout: "Export list for " + host + ":\n/srv/data 10.0.0.0/8\n",
	}

	p := NewNFSProberWithRunner(Options{}, fake)
	res := p.Probe(context.Background(), host, port)

	require.Nil(t, res.Error)
	assert.True(t, res.Reachable)
	assert.True(t, res.Detected)
	assert.Equal(t, true, res.Findings["exports_found"])
	require.Len(t, fake.Calls, 1)
	assert.Equal(t, []string{"showmount", "-e", host}, fake.Calls[0])
}

func TestNFSProbeShowmountDenied(t *testing.T) {
	host, port := acceptOnce(t)

	fake := execx.NewFake()
	fake.Outputs["showmount"] = execx.Output{ExitCode: 1, Stderr: "clnt_create: RPC failed"}

	p := NewNFSProberWithRunner(Options{}, fake)
	res := p.Probe(context.Background(), host, port)

	require.Nil(t, res.Error)
	assert.Equal(t, false, res.Findings["exports_found"])
	assert.Equal(t, "clnt_create: RPC failed", res.Findings["showmount_error"])
}

func TestNFSProbeUnreachable(t *testing.T) {
	p := NewNFSProberWithRunner(Options{}, execx.NewFake())
	res := p.Probe(context.Background(), "127.0.0.1", 1) // nothing listens here

	require.NotNil(t, res.Error)
	assert.False(t, res.Reachable)
}

func TestPostgresProbeCredentialGating(t *testing.T) {
	host, port := acceptOnce(t)

	fake := execx.NewFake()
	fake.Errs["psql"] = assert.AnError

	p := NewPostgresProberWithRunner(Options{}, fake)
	p.Probe(context.Background(), host, port)
	defaultCalls := len(fake.Calls)

	fake2 := execx.NewFake()
	fake2.Errs["psql"] = assert.AnError
	p2 := NewPostgresProberWithRunner(Options{TryCreds: true}, fake2)
	p2.Probe(context.Background(), host, port)

	// Only the blank-password check runs by default; the full list is
	// attempted with the opt-in flag.
	assert.Greater(t, len(fake2.Calls), defaultCalls)
}
