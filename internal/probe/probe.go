// Package probe implements single-shot, failure-isolated service probes.
//
// Every prober follows the same contract: open one connection to a target
// with a fixed timeout, perform exactly one protocol-specific exchange, and
// classify the outcome into a Result. Operational failures (timeout, refused
// connection, malformed response) are recorded in the result's error field;
// security findings (anonymous access, default credentials, exposed version
// information) live in the findings map and are never conflated with errors.
// A probe never aborts the batch it runs in.
package probe

import (
	"context"
	"time"
)

// DefaultTimeout bounds every network operation a prober performs.
const DefaultTimeout = 5 * time.Second

// Options configures prober construction. Zero values select the defaults
// used by the original enumerators.
type Options struct {
	// Timeout bounds each network operation. Defaults to DefaultTimeout.
	Timeout time.Duration

	// TryCreds enables default-credential attempts for probers that carry a
	// credential list (FTP, PostgreSQL, MySQL, MongoDB). Anonymous and
	// null-session checks are always performed; password guessing is opt-in.
	TryCreds bool

	// Communities overrides the SNMP community strings to try.
	Communities []string
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// Prober is a single-protocol enumerator. Implementations are safe for
// concurrent use; each Probe call is independent.
type Prober interface {
	// Service returns the service name recorded in results ("ftp", "smb", ...).
	Service() string

	// DefaultPorts returns the ports probed when the operator supplies none.
	DefaultPorts() []int

	// Probe performs one probe against target:port and always returns a
	// Result, never panicking and never returning an error: operational
	// failures are folded into the result.
	Probe(ctx context.Context, target string, port int) Result
}

// BinaryDependent is implemented by probers that shell out to an
// external tool. Callers check the binary up front so its absence is a
// fatal dependency failure instead of a per-target error.
type BinaryDependent interface {
	RequiredBinary() string
}

// Credential is a username/password pair from a default-credential list.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Result is the unified per-target record shared by every prober.
type Result struct {
	Target    string `json:"target"`
	Port      int    `json:"port"`
	Service   string `json:"service"`
	Transport string `json:"transport"`
	Timestamp string `json:"timestamp"`

	// Reachable reports whether the transport-level connection succeeded.
	Reachable bool `json:"reachable"`

	// Detected reports whether the response identified the expected service.
	Detected bool `json:"detected"`

	// Findings holds service-specific keys such as "banner", "version" or
	// "anonymous_login_allowed". Consumers must tolerate missing keys.
	Findings map[string]any `json:"findings"`

	// Error describes an operational failure, or is null when the probe
	// completed. A populated Error never coexists with success findings.
	Error *string `json:"error"`
}

func newResult(service, transport, target string, port int) Result {
	return Result{
		Target:    target,
		Port:      port,
		Service:   service,
		Transport: transport,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Findings:  map[string]any{},
	}
}

// fail records an operational failure of the given kind.
func (r *Result) fail(kind Kind, err error) {
	msg := string(kind) + ": " + err.Error()
	r.Error = &msg
}

// failDial records a connection-level failure, distinguishing timeouts.
func (r *Result) failDial(err error) {
	r.fail(classifyDial(err), err)
}
