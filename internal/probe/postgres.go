package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sam1101-sys/reconkit/internal/execx"
)

// postgresDefaultCreds is the intentional default-credential list carried
// over from the original enumerator. Only the blank-password check runs by
// default; the rest require the opt-in flag.
var postgresDefaultCreds = []Credential{
	{Username: "postgres", Password: ""},
	{Username: "postgres", Password: "postgres"},
	{Username: "postgres", Password: "password"},
	{Username: "admin", Password: "admin"},
}

// postgresProber drives psql, the collaborator the suite standardizes on
// for PostgreSQL, instead of reimplementing the startup/auth protocol.
type postgresProber struct {
	timeout  time.Duration
	tryCreds bool
	exec     execx.Runner
}

func newPostgresProber(opts Options) Prober {
	return &postgresProber{timeout: opts.timeout(), tryCreds: opts.TryCreds, exec: execx.NewSystemRunner()}
}

// NewPostgresProberWithRunner injects the process runner, for tests.
func NewPostgresProberWithRunner(opts Options, r execx.Runner) Prober {
	return &postgresProber{timeout: opts.timeout(), tryCreds: opts.TryCreds, exec: r}
}

func (p *postgresProber) Service() string        { return "postgres" }
func (p *postgresProber) DefaultPorts() []int    { return []int{5432} }
func (p *postgresProber) RequiredBinary() string { return "psql" }

func (p *postgresProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)
	res.Findings["anonymous_login"] = false
	res.Findings["default_credentials_worked"] = []Credential{}

	if err := tcpCheck(ctx, target, port, p.timeout); err != nil {
		res.failDial(err)
		return res
	}
	res.Reachable = true
	res.Detected = true

	creds := postgresDefaultCreds[:1]
	if p.tryCreds {
		creds = postgresDefaultCreds
	}

	var worked []Credential
	for _, cred := range creds {
		version, ok := p.login(ctx, target, port, cred)
		if !ok {
			continue
		}
		if cred.Password == "" {
			res.Findings["anonymous_login"] = true
		}
		worked = append(worked, cred)
		res.Findings["version"] = version

		if dbs := p.query(ctx, target, port, cred, "SELECT datname FROM pg_database WHERE NOT datistemplate"); dbs != "" {
			res.Findings["databases"] = splitLines(dbs)
		}
		if su := p.query(ctx, target, port, cred, "SELECT current_setting('is_superuser')"); su != "" {
			res.Findings["superuser"] = strings.TrimSpace(su) == "on"
		}
		break
	}
	if len(worked) > 0 {
		res.Findings["default_credentials_worked"] = worked
	}
	return res
}

// login attempts one connection and returns the server version on success.
func (p *postgresProber) login(ctx context.Context, target string, port int, cred Credential) (string, bool) {
	out := p.query(ctx, target, port, cred, "SELECT version()")
	return strings.TrimSpace(out), out != ""
}

func (p *postgresProber) query(ctx context.Context, target string, port int, cred Credential, sql string) string {
	uri := fmt.Sprintf("postgresql://%s:%s@%s:%d/postgres?connect_timeout=%d",
		cred.Username, cred.Password, target, port, int(p.timeout.Seconds()))
	out, err := p.exec.Run(ctx, p.timeout, "psql", uri, "-tA", "-c", sql)
	if err != nil || out.ExitCode != 0 {
		return ""
	}
	return out.Stdout
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
