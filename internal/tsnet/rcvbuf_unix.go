//go:build !windows

package tsnet

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// widenReceiveBuffer asks the kernel for a larger SO_RCVBUF. Not
// fatal if the kernel clamps or ignores it (net.core.rmem_max).
func widenReceiveBuffer(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("tsnet: accessing raw conn: %w", err)
	}
	var sockErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, wantRecvBuf)
	})
	if ctrlErr != nil {
		return fmt.Errorf("tsnet: control: %w", ctrlErr)
	}
	_ = sockErr
	return nil
}
