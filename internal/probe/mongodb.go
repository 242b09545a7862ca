package probe

import (
	"bytes"
	"context"
	"encoding/binary"
	"net"
	"time"
)

// mongoProber speaks just enough of the MongoDB wire protocol to run two
// admin commands over OP_QUERY: isMaster (always answered, even with auth
// enabled) and listDatabases (refused unless the deployment is open).
type mongoProber struct {
	timeout time.Duration
}

func newMongoProber(opts Options) Prober {
	return &mongoProber{timeout: opts.timeout()}
}

func (p *mongoProber) Service() string     { return "mongodb" }
func (p *mongoProber) DefaultPorts() []int { return []int{27017} }

func (p *mongoProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)
	res.Findings["unauthenticated_access"] = false

	conn, err := dialTCP(ctx, target, port, p.timeout)
	if err != nil {
		res.failDial(err)
		return res
	}
	defer conn.Close()
	res.Reachable = true

	isMaster, err := p.adminCommand(conn, "isMaster")
	if err != nil {
		res.fail(KindProtocol, err)
		return res
	}
	if len(isMaster) == 0 {
		return res
	}
	res.Detected = true
	if v, ok := bsonString(isMaster, "setName"); ok {
		res.Findings["replica_set"] = v
	}

	buildInfo, err := p.adminCommand(conn, "buildInfo")
	if err == nil {
		if v, ok := bsonString(buildInfo, "version"); ok {
			res.Findings["version"] = v
		}
	}

	listDBs, err := p.adminCommand(conn, "listDatabases")
	if err == nil {
		switch {
		case bytes.Contains(listDBs, []byte("databases")):
			res.Findings["unauthenticated_access"] = true
		case bytes.Contains(listDBs, []byte("requires authentication")) ||
			bytes.Contains(listDBs, []byte("Unauthorized")):
			// Auth is enforced; leave the flag false.
		}
	}
	return res
}

// adminCommand sends OP_QUERY {<name>: 1} against admin.$cmd and returns
// the raw reply bytes.
func (p *mongoProber) adminCommand(conn net.Conn, name string) ([]byte, error) {
	if err := writeAll(conn, buildOpQuery(name), p.timeout); err != nil {
		return nil, err
	}
	return readSome(conn, 64*1024, p.timeout)
}

// buildOpQuery assembles OP_QUERY header + flags + "admin.$cmd" +
// numberToSkip/numberToReturn + a one-field int32 BSON document.
func buildOpQuery(command string) []byte {
	doc := buildBSONInt32Doc(command, 1)

	var body bytes.Buffer
	binary.Write(&body, binary.LittleEndian, int32(0)) // flags
	body.WriteString("admin.$cmd")
	body.WriteByte(0)
	binary.Write(&body, binary.LittleEndian, int32(0)) // numberToSkip
	binary.Write(&body, binary.LittleEndian, int32(1)) // numberToReturn
	body.Write(doc)

	var msg bytes.Buffer
	binary.Write(&msg, binary.LittleEndian, int32(16+body.Len())) // messageLength
	binary.Write(&msg, binary.LittleEndian, int32(1))             // requestID
	binary.Write(&msg, binary.LittleEndian, int32(0))             // responseTo
	binary.Write(&msg, binary.LittleEndian, int32(2004))          // OP_QUERY
	msg.Write(body.Bytes())
	return msg.Bytes()
}

func buildBSONInt32Doc(key string, value int32) []byte {
	var elem bytes.Buffer
	elem.WriteByte(0x10) // int32 element
	elem.WriteString(key)
	elem.WriteByte(0)
	binary.Write(&elem, binary.LittleEndian, value)

	var doc bytes.Buffer
	binary.Write(&doc, binary.LittleEndian, int32(4+elem.Len()+1))
	doc.Write(elem.Bytes())
	doc.WriteByte(0)
	return doc.Bytes()
}

// bsonString scans raw reply bytes for a BSON string element with the
// given key. Good enough for pulling single known fields out of a reply
// without a full decoder.
func bsonString(raw []byte, key string) (string, bool) {
	needle := append([]byte{0x02}, append([]byte(key), 0)...)
	i := bytes.Index(raw, needle)
	if i < 0 || i+len(needle)+4 > len(raw) {
		return "", false
	}
	start := i + len(needle)
	strlen := int(binary.LittleEndian.Uint32(raw[start : start+4]))
	if strlen <= 1 || start+4+strlen > len(raw) {
		return "", false
	}
	return string(raw[start+4 : start+4+strlen-1]), true
}
