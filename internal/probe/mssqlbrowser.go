package probe

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"
)

// mssqlBrowserProber sends the single-byte CLNT_UCAST_EX discovery
// request to the SQL Server Browser service and parses the
// semicolon-delimited instance list from the reply.
type mssqlBrowserProber struct {
	timeout time.Duration
}

func newMSSQLBrowserProber(opts Options) Prober {
	return &mssqlBrowserProber{timeout: opts.timeout()}
}

func (p *mssqlBrowserProber) Service() string     { return "mssql_browser" }
func (p *mssqlBrowserProber) DefaultPorts() []int { return []int{1434} }

func (p *mssqlBrowserProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "udp", target, port)

	var d net.Dialer
	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	conn, err := d.DialContext(dialCtx, "udp", net.JoinHostPort(target, strconv.Itoa(port)))
	if err != nil {
		res.failDial(err)
		return res
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(p.timeout))
	if _, err := conn.Write([]byte{0x03}); err != nil {
		res.fail(KindConnect, err)
		return res
	}

	buf := make([]byte, 65535)
	n, err := conn.Read(buf)
	if err != nil {
		res.fail(classifyDial(err), err)
		return res
	}
	res.Reachable = true

	// Reply is 0x05, a 2-byte length, then the instance string.
	if n < 4 || buf[0] != 0x05 {
		res.fail(KindProtocol, errUnexpectedReply("mssql browser reply"))
		return res
	}
	res.Detected = true

	instances := parseBrowserInstances(string(buf[3:n]))
	if len(instances) > 0 {
		res.Findings["instances"] = instances
		res.Findings["instance_count"] = len(instances)
	}
	return res
}

// parseBrowserInstances splits the ServerName;...;InstanceName;...
// key/value stream into one map per instance. Instances are delimited
// by ";;".
func parseBrowserInstances(payload string) []map[string]string {
	var instances []map[string]string
	for _, chunk := range strings.Split(payload, ";;") {
		chunk = strings.Trim(chunk, ";\x00")
		if chunk == "" {
			continue
		}
		fields := strings.Split(chunk, ";")
		inst := map[string]string{}
		for i := 0; i+1 < len(fields); i += 2 {
			key := fields[i]
			if key == "" {
				continue
			}
			inst[key] = fields[i+1]
		}
		if len(inst) > 0 {
			instances = append(instances, inst)
		}
	}
	return instances
}
