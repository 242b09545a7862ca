package probe

import (
	"bytes"
	"context"
	"time"
)

// ldapAnonymousBind is a hand-assembled LDAPMessage:
// SEQUENCE { messageID 1, BindRequest { version 3, name "", simple "" } }.
var ldapAnonymousBind = []byte{
	0x30, 0x0c,
	0x02, 0x01, 0x01,
	0x60, 0x07,
	0x02, 0x01, 0x03,
	0x04, 0x00,
	0x80, 0x00,
}

// ldapProber attempts an anonymous simple bind and, when accepted, a
// base-scope rootDSE search for the naming contexts. Both operations are
// read-only and answered without credentials on misconfigured directories.
type ldapProber struct {
	timeout time.Duration
}

func newLDAPProber(opts Options) Prober {
	return &ldapProber{timeout: opts.timeout()}
}

func (p *ldapProber) Service() string     { return "ldap" }
func (p *ldapProber) DefaultPorts() []int { return []int{389} }

func (p *ldapProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)
	res.Findings["anonymous_bind"] = false

	conn, err := dialTCP(ctx, target, port, p.timeout)
	if err != nil {
		res.failDial(err)
		return res
	}
	defer conn.Close()
	res.Reachable = true

	if err := writeAll(conn, ldapAnonymousBind, p.timeout); err != nil {
		res.fail(KindProtocol, err)
		return res
	}
	reply, err := readSome(conn, 4096, p.timeout)
	if err != nil {
		res.fail(KindProtocol, err)
		return res
	}
	if len(reply) < 2 || reply[0] != 0x30 {
		return res
	}
	res.Detected = true

	// BindResponse is application tag 1 (0x61); resultCode 0 is success.
	if !ldapBindSucceeded(reply) {
		return res
	}
	res.Findings["anonymous_bind"] = true

	search := buildRootDSESearch()
	if err := writeAll(conn, search, p.timeout); err != nil {
		return res
	}
	if entry, err := readSome(conn, 65536, p.timeout); err == nil {
		if nc := extractLDAPAttribute(entry, "defaultNamingContext"); nc != "" {
			res.Findings["naming_context"] = nc
		} else if nc := extractLDAPAttribute(entry, "namingContexts"); nc != "" {
			res.Findings["naming_context"] = nc
		}
	}
	return res
}

// ldapBindSucceeded scans a BindResponse for an ENUMERATED resultCode 0.
func ldapBindSucceeded(reply []byte) bool {
	i := bytes.IndexByte(reply, 0x61)
	if i < 0 {
		return false
	}
	// After the application tag and its length come the resultCode bytes:
	// 0x0a 0x01 <code>.
	rest := reply[i:]
	j := bytes.Index(rest, []byte{0x0a, 0x01})
	return j >= 0 && j+2 < len(rest) && rest[j+2] == 0x00
}

// buildRootDSESearch assembles a base-scope "(objectClass=*)" search of the
// empty DN requesting defaultNamingContext and namingContexts.
func buildRootDSESearch() []byte {
	attr1 := berOctetString("defaultNamingContext")
	attr2 := berOctetString("namingContexts")
	attrs := berSequence(0x30, append(attr1, attr2...))

	filter := append([]byte{0x87, 0x0b}, []byte("objectClass")...) // present filter

	var body []byte
	body = append(body, 0x04, 0x00)       // baseObject ""
	body = append(body, 0x0a, 0x01, 0x00) // scope baseObject
	body = append(body, 0x0a, 0x01, 0x00) // derefAliases never
	body = append(body, 0x02, 0x01, 0x00) // sizeLimit 0
	body = append(body, 0x02, 0x01, 0x00) // timeLimit 0
	body = append(body, 0x01, 0x01, 0x00) // typesOnly false
	body = append(body, filter...)
	body = append(body, attrs...)

	req := berSequence(0x63, body) // SearchRequest application tag 3
	msg := append([]byte{0x02, 0x01, 0x02}, req...)
	return berSequence(0x30, msg)
}

func berOctetString(s string) []byte {
	return append([]byte{0x04, byte(len(s))}, s...)
}

func berSequence(tag byte, body []byte) []byte {
	n := len(body)
	if n < 0x80 {
		return append([]byte{tag, byte(n)}, body...)
	}
	return append([]byte{tag, 0x82, byte(n >> 8), byte(n)}, body...)
}

// extractLDAPAttribute scans a SearchResultEntry for the attribute name and
// returns the first value following it. Values in rootDSE entries are plain
// octet strings, so a loose scan keeps us out of full BER-decoding.
func extractLDAPAttribute(entry []byte, name string) string {
	i := bytes.Index(entry, []byte(name))
	if i < 0 {
		return ""
	}
	rest := entry[i+len(name):]
	// Expect SET-of-values: 0x31 <len> 0x04 <len> <value>.
	j := bytes.IndexByte(rest, 0x31)
	if j < 0 || j+3 >= len(rest) || rest[j+2] != 0x04 {
		return ""
	}
	vlen := int(rest[j+3])
	start := j + 4
	if start+vlen > len(rest) {
		return ""
	}
	return string(rest[start : start+vlen])
}
