package probe

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/hirochachacha/go-smb2"
)

// smbProber attempts a null-session SMB2 bind and lists share names.
// Credentials are never tried; the null session itself is the finding.
type smbProber struct {
	timeout time.Duration
}

func newSMBProber(opts Options) Prober {
	return &smbProber{timeout: opts.timeout()}
}

func (p *smbProber) Service() string     { return "smb" }
func (p *smbProber) DefaultPorts() []int { return []int{445} }

func (p *smbProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)

	var dialer net.Dialer
	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	conn, err := dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(target, strconv.Itoa(port)))
	if err != nil {
		res.failDial(err)
		return res
	}
	defer conn.Close()
	res.Reachable = true
	conn.SetDeadline(time.Now().Add(p.timeout))

	d := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			User:     "",
			Password: "",
		},
	}
	session, err := d.Dial(conn)
	if err != nil {
		res.Findings["null_session"] = false
		res.fail(KindProtocol, err)
		return res
	}
	defer session.Logoff()

	res.Detected = true
	res.Findings["null_session"] = true

	shares, err := session.ListSharenames()
	if err != nil {
		res.Findings["share_listing_denied"] = true
		return res
	}
	res.Findings["shares"] = shares
	return res
}
