package probe

import (
	"context"
	"errors"
	"net"
)

// Kind labels the operational failure classes recorded in result errors.
// Security findings are never a Kind; they are findings.
type Kind string

const (
	// KindConnect covers refused, unreachable and reset connections.
	KindConnect Kind = "connect"

	// KindTimeout covers any operation exceeding the probe timeout.
	KindTimeout Kind = "timeout"

	// KindProtocol covers unexpected or malformed service responses.
	KindProtocol Kind = "protocol"
)

// classifyDial distinguishes timeouts from other connection-level failures.
func classifyDial(err error) Kind {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindConnect
}
