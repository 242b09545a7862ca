package probe

import (
	"bufio"
	"context"
	"net"
	"strings"
	"time"
)

// smtpProber walks a harmless plaintext SMTP session: banner, EHLO, VRFY,
// EXPN and a MAIL/RCPT pair to the probe's own placeholder address to test
// for open relaying. The session always ends with QUIT.
type smtpProber struct {
	timeout time.Duration
}

func newSMTPProber(opts Options) Prober {
	return &smtpProber{timeout: opts.timeout()}
}

func (p *smtpProber) Service() string     { return "smtp" }
func (p *smtpProber) DefaultPorts() []int { return []int{25, 465, 587} }

func (p *smtpProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)
	res.Findings["starttls"] = false
	res.Findings["vrfy"] = false
	res.Findings["expn"] = false
	res.Findings["open_relay"] = false

	conn, err := dialTCP(ctx, target, port, p.timeout)
	if err != nil {
		res.failDial(err)
		return res
	}
	defer conn.Close()
	res.Reachable = true

	r := bufio.NewReader(conn)

	banner, err := p.readReply(conn, r)
	if err != nil {
		res.fail(KindProtocol, err)
		return res
	}
	res.Detected = true
	res.Findings["banner"] = strings.TrimSpace(strings.Join(banner, " "))

	ehlo, err := p.roundTrip(conn, r, "EHLO test.local")
	if err == nil {
		var exts []string
		var auth []string
		for _, line := range ehlo {
			ext := strings.TrimSpace(line)
			exts = append(exts, ext)
			up := strings.ToUpper(ext)
			if strings.HasPrefix(up, "STARTTLS") {
				res.Findings["starttls"] = true
			}
			if strings.HasPrefix(up, "AUTH") {
				auth = strings.Fields(ext)[1:]
			}
		}
		res.Findings["ehlo"] = exts
		res.Findings["auth"] = auth
	}

	if reply, err := p.roundTrip(conn, r, "VRFY postmaster"); err == nil {
		res.Findings["vrfy"] = replyAccepted(reply)
	}
	if reply, err := p.roundTrip(conn, r, "EXPN postmaster"); err == nil {
		res.Findings["expn"] = replyAccepted(reply)
	}

	// Relay test: both envelope addresses are foreign to the server.
	if reply, err := p.roundTrip(conn, r, "MAIL FROM:<test@test.com>"); err == nil && replyAccepted(reply) {
		if reply, err := p.roundTrip(conn, r, "RCPT TO:<test@test.com>"); err == nil && replyAccepted(reply) {
			res.Findings["open_relay"] = true
		}
	}

	p.roundTrip(conn, r, "QUIT")
	return res
}

// roundTrip sends one command line and reads the full reply.
func (p *smtpProber) roundTrip(conn net.Conn, r *bufio.Reader, cmd string) ([]string, error) {
	if err := writeAll(conn, []byte(cmd+"\r\n"), p.timeout); err != nil {
		return nil, err
	}
	return p.readReply(conn, r)
}

// readReply consumes a possibly multi-line SMTP reply, returning each line.
// Continuation lines use "ddd-"; the final line uses "ddd ".
func (p *smtpProber) readReply(conn net.Conn, r *bufio.Reader) ([]string, error) {
	var lines []string
	for {
		if err := conn.SetReadDeadline(time.Now().Add(p.timeout)); err != nil {
			return lines, err
		}
		line, err := r.ReadString('\n')
		if err != nil {
			if len(lines) > 0 {
				return lines, nil
			}
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		lines = append(lines, line)
		if len(line) < 4 || line[3] == ' ' {
			return lines, nil
		}
	}
}

// replyAccepted reports whether the reply code is 2xx.
func replyAccepted(lines []string) bool {
	return len(lines) > 0 && strings.HasPrefix(lines[0], "2")
}
