package tunnel

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sam1101-sys/reconkit/internal/execx"
)

// restartDelay is the fixed pause between keep-alive restarts.
const restartDelay = 3 * time.Second

// SSHDynamicOptions shape the ssh -D SOCKS forward command.
type SSHDynamicOptions struct {
	Host      string
	User      string
	Port      int // ssh port, default 22
	KeyPath   string
	SocksPort int // local SOCKS port, default 1080
}

// SSHDynamicArgs builds the argument list for a dynamic SOCKS forward:
// ssh -N -D 127.0.0.1:<socks> -p <port> [-i key] user@host.
func SSHDynamicArgs(o SSHDynamicOptions) []string {
	if o.Port == 0 {
		o.Port = 22
	}
	if o.SocksPort == 0 {
		o.SocksPort = 1080
	}
	args := []string{"-N", "-D", "127.0.0.1:" + strconv.Itoa(o.SocksPort), "-p", strconv.Itoa(o.Port)}
	if o.KeyPath != "" {
		args = append(args, "-i", o.KeyPath)
	}
	return append(args, o.User+"@"+o.Host)
}

// Connect launches a provider command and, when keepAlive is set,
// restarts it after a fixed delay every time it exits. There is no
// backoff and no retry cap; cancelling ctx is the only way out.
func Connect(ctx context.Context, runner execx.Runner, keepAlive bool, name string, args ...string) error {
	if _, err := runner.LookPath(name); err != nil {
		return err
	}
	for {
		log.Info("starting tunnel", "command", name)
		out, err := runner.Run(ctx, 0, name, args...)
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("running %s: %w", name, err)
		}
		if ctx.Err() != nil {
			return nil
		}
		if !keepAlive {
			if out.ExitCode != 0 {
				return fmt.Errorf("%s exited with code %d", name, out.ExitCode)
			}
			return nil
		}
		log.Warn("tunnel exited, restarting", "command", name, "exit_code", out.ExitCode, "delay", restartDelay)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(restartDelay):
		}
	}
}
