//go:build windows

package tsnet

import "net"

// widenReceiveBuffer is a no-op on windows; the default receive
// buffer is left alone there.
func widenReceiveBuffer(conn *net.UDPConn) error {
	return nil
}
