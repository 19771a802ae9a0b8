// Package tsnet holds the network defaults and small socket-option
// helpers shared by the server and client entry points: small free
// functions around net, no framework.
package tsnet

import (
	"fmt"
	"net"
)

// DefaultServerAddr and DefaultClientAddr are the default UDP
// endpoints.
const (
	DefaultServerAddr = "0.0.0.0:2137"
	DefaultClientAddr = "0.0.0.0:2138"
)

// MaxPacketSize is comfortably under the 1500-byte Ethernet MTU:
// header(1) + num(3) + checksum(1) +
// name_max+1(32) + max_fields*field_max(1275) + size_field(4).
const MaxPacketSize = 1 + 3 + 1 + 32 + 1275 + 4

// ListenUDP opens a UDP socket at addr and widens its receive buffer
// enough to hold a handful of MaxPacketSize datagrams without the
// kernel dropping bursts under load.
func ListenUDP(addr string) (*net.UDPConn, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("tsnet: resolving %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("tsnet: listening on %s: %w", addr, err)
	}
	if err := widenReceiveBuffer(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// wantRecvBuf is how large a receive buffer widenReceiveBuffer asks
// the kernel for: enough to hold a burst of MaxPacketSize datagrams
// without the kernel dropping them under load.
const wantRecvBuf = 64 * MaxPacketSize
