package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
)

// ftpDefaultCreds is the intentional default-credential list from the
// original enumerator, attempted only with the opt-in flag. The anonymous
// check always runs.
var ftpDefaultCreds = []Credential{
	{Username: "ftp", Password: "ftp"},
	{Username: "admin", Password: "admin"},
	{Username: "test", Password: "test"},
	{Username: "user", Password: "password"},
}

const ftpWriteProbeName = "pentest_tmp.txt"

// ftpProber grabs the banner, tests anonymous login and, when anonymous
// access works, whether the landing directory is writable (upload then
// delete a marker file).
type ftpProber struct {
	timeout  time.Duration
	tryCreds bool
}

func newFTPProber(opts Options) Prober {
	return &ftpProber{timeout: opts.timeout(), tryCreds: opts.TryCreds}
}

func (p *ftpProber) Service() string     { return "ftp" }
func (p *ftpProber) DefaultPorts() []int { return []int{21} }

func (p *ftpProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)
	res.Findings["anonymous_login_allowed"] = false
	res.Findings["writable_directory"] = false
	res.Findings["default_credentials_worked"] = []Credential{}

	if banner, err := grabBanner(ctx, target, port, p.timeout, 1024); err != nil {
		res.failDial(err)
		return res
	} else if text := strings.TrimSpace(string(banner)); text != "" {
		res.Findings["banner"] = text
		res.Detected = strings.HasPrefix(text, "220")
	}
	res.Reachable = true

	anon := p.login(target, port, "anonymous", "anonymous@test.com", false)
	res.Findings["anonymous_login_allowed"] = anon
	if anon {
		res.Detected = true
		res.Findings["writable_directory"] = p.login(target, port, "anonymous", "anonymous@test.com", true)
	}

	if p.tryCreds {
		var worked []Credential
		for _, cred := range ftpDefaultCreds {
			if p.login(target, port, cred.Username, cred.Password, false) {
				worked = append(worked, cred)
			}
		}
		if len(worked) > 0 {
			res.Detected = true
			res.Findings["default_credentials_worked"] = worked
		}
	}
	return res
}

// login attempts one FTP session; with writeTest it also uploads and
// removes the marker file to prove write access.
func (p *ftpProber) login(target string, port int, user, pass string, writeTest bool) bool {
	conn, err := ftp.Dial(fmt.Sprintf("%s:%d", target, port), ftp.DialWithTimeout(p.timeout))
	if err != nil {
		return false
	}
	defer conn.Quit()

	if err := conn.Login(user, pass); err != nil {
		return false
	}
	if !writeTest {
		return true
	}
	if err := conn.Stor(ftpWriteProbeName, strings.NewReader("pentest")); err != nil {
		return false
	}
	conn.Delete(ftpWriteProbeName)
	return true
}
