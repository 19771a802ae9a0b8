//go:build windows

package tslog

import "github.com/op/go-logging"

// getSyslogBackend always falls back to stderr on windows; there is no
// syslog to attach to.
func getSyslogBackend(prefix string) logging.Backend {
	return nil
}
