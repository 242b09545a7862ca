package probe

import (
	"context"
	"time"

	"github.com/gosnmp/gosnmp"
)

// snmpDefaultCommunities is the community list the original enumerator
// walked through; overridable from the command line.
var snmpDefaultCommunities = []string{"public", "private", "manager", "admin"}

var snmpSystemOIDs = map[string]string{
	"sysDescr":    ".1.3.6.1.2.1.1.1.0",
	"sysName":     ".1.3.6.1.2.1.1.5.0",
	"sysLocation": ".1.3.6.1.2.1.1.6.0",
	"sysContact":  ".1.3.6.1.2.1.1.4.0",
}

const snmpInterfaceOID = ".1.3.6.1.2.1.2.2.1.2"

// snmpProber tries each community string with a v2c sysDescr GET and, for
// the first community that answers, collects system OIDs and interface
// names.
type snmpProber struct {
	timeout     time.Duration
	communities []string
}

func newSNMPProber(opts Options) Prober {
	communities := opts.Communities
	if len(communities) == 0 {
		communities = snmpDefaultCommunities
	}
	return &snmpProber{timeout: opts.timeout(), communities: communities}
}

func (p *snmpProber) Service() string     { return "snmp" }
func (p *snmpProber) DefaultPorts() []int { return []int{161} }

func (p *snmpProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "udp", target, port)
	res.Findings["valid_communities"] = []string{}

	var valid []string
	var lastErr error
	for _, community := range p.communities {
		client := &gosnmp.GoSNMP{
			Target:    target,
			Port:      uint16(port),
			Community: community,
			Version:   gosnmp.Version2c,
			Timeout:   p.timeout,
			Retries:   0,
			Context:   ctx,
		}
		if err := client.Connect(); err != nil {
			lastErr = err
			continue
		}

		pkt, err := client.Get([]string{snmpSystemOIDs["sysDescr"]})
		if err != nil {
			lastErr = err
			client.Conn.Close()
			continue
		}
		if !snmpUsableReply(pkt) {
			// An agent that answers but refuses the OID is still live.
			res.Reachable = true
			client.Conn.Close()
			continue
		}

		valid = append(valid, community)
		if !res.Detected {
			res.Reachable = true
			res.Detected = true
			p.collect(client, &res)
		}
		client.Conn.Close()
	}

	if len(valid) > 0 {
		res.Findings["valid_communities"] = valid
	} else if !res.Reachable && lastErr != nil {
		// UDP gives no reachability signal without a reply.
		res.fail(classifyDial(lastErr), lastErr)
	}
	return res
}

// snmpUsableReply reports whether the agent returned a real value for
// the requested OID. NoSuchObject/NoSuchInstance replies come from a
// live agent that rejects the OID.
func snmpUsableReply(pkt *gosnmp.SnmpPacket) bool {
	if pkt == nil || len(pkt.Variables) == 0 {
		return false
	}
	t := pkt.Variables[0].Type
	return t != gosnmp.NoSuchObject && t != gosnmp.NoSuchInstance
}

// collect reads the system group and interface table with an already
// validated community.
func (p *snmpProber) collect(client *gosnmp.GoSNMP, res *Result) {
	system := map[string]string{}
	for name, oid := range snmpSystemOIDs {
		pkt, err := client.Get([]string{oid})
		if err != nil || len(pkt.Variables) == 0 {
			continue
		}
		if v := snmpVariableString(pkt.Variables[0]); v != "" {
			system[name] = v
		}
	}
	res.Findings["system"] = system

	var interfaces []string
	client.Walk(snmpInterfaceOID, func(pdu gosnmp.SnmpPDU) error {
		if len(interfaces) >= 25 {
			return nil
		}
		if v := snmpVariableString(pdu); v != "" {
			interfaces = append(interfaces, v)
		}
		return nil
	})
	if len(interfaces) > 0 {
		res.Findings["interfaces"] = interfaces
	}
}

func snmpVariableString(pdu gosnmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}
