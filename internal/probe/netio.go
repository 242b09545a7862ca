package probe

import (
	"context"
	"net"
	"strconv"
	"time"
)

// dialTCP opens a TCP connection to host:port honoring both the probe
// timeout and the caller's context.
func dialTCP(ctx context.Context, host string, port int, timeout time.Duration) (net.Conn, error) {
	d := net.Dialer{Timeout: timeout}
	return d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
}

// tcpCheck verifies TCP reachability by connecting and closing immediately.
func tcpCheck(ctx context.Context, host string, port int, timeout time.Duration) error {
	conn, err := dialTCP(ctx, host, port, timeout)
	if err != nil {
		return err
	}
	return conn.Close()
}

// readSome reads at most limit bytes within the timeout. A timeout after
// some data has arrived is not an error: banner-style services often leave
// the connection open after their greeting.
func readSome(conn net.Conn, limit int, timeout time.Duration) ([]byte, error) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	buf := make([]byte, limit)
	n, err := conn.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	return nil, err
}

// writeAll writes payload within the timeout.
func writeAll(conn net.Conn, payload []byte, timeout time.Duration) error {
	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	_, err := conn.Write(payload)
	return err
}

// exchange connects, sends payload (which may be empty for pure banner
// grabs) and reads up to limit response bytes. This is the whole lifecycle
// of most raw-socket probes.
func exchange(ctx context.Context, host string, port int, timeout time.Duration, payload []byte, limit int) ([]byte, error) {
	conn, err := dialTCP(ctx, host, port, timeout)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if len(payload) > 0 {
		if err := writeAll(conn, payload, timeout); err != nil {
			return nil, err
		}
	}
	return readSome(conn, limit, timeout)
}

// grabBanner reads the service greeting without sending anything.
func grabBanner(ctx context.Context, host string, port int, timeout time.Duration, limit int) ([]byte, error) {
	return exchange(ctx, host, port, timeout, nil, limit)
}
