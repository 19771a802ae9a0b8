// Package tslog sets up process-wide structured logging on top of
// github.com/op/go-logging: syslog when available, a colorized stderr
// backend otherwise, with the level overridable by an environment
// variable.
package tslog

import (
	"os"

	"github.com/op/go-logging"
)

// EnvLevel is the environment variable that overrides the default log
// level.
const EnvLevel = "TS_LOG_LEVEL"

var syslogFormat = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{level:.6s} ▶ %{message}`,
)
var stderrFormat = logging.MustStringFormatter(
	`%{color}tuplespace ▶ %{message}%{color:reset}`,
)

// Setup configures the default go-logging backend and returns a
// logger named prefix. When trySyslog is true it first attempts a
// syslog backend, falling back to stderr if syslog is unavailable.
func Setup(prefix string, defaultLevel logging.Level, trySyslog bool) *logging.Logger {
	log := logging.MustGetLogger(prefix)

	var backend logging.Backend
	if trySyslog {
		backend = getSyslogBackend(prefix)
	}
	if backend == nil {
		backend = logging.NewLogBackend(os.Stderr, prefix, 0)
		logging.SetFormatter(stderrFormat)
	}

	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(levelFromEnv(defaultLevel), prefix)
	logging.SetBackend(leveled)
	return log
}

func levelFromEnv(defaultLevel logging.Level) logging.Level {
	return ResolveLevel(os.Getenv(EnvLevel), defaultLevel)
}

// ResolveLevel parses s (one of the names go-logging uses: CRITICAL,
// ERROR, WARNING, NOTICE, INFO, DEBUG) and returns it, or fallback if s
// is empty or unrecognised. Setup applies EnvLevel itself; callers that
// also accept a --log-level flag resolve the flag with this and apply
// it after Setup, so the flag takes precedence over EnvLevel.
func ResolveLevel(s string, fallback logging.Level) logging.Level {
	switch s {
	case "CRITICAL":
		return logging.CRITICAL
	case "ERROR":
		return logging.ERROR
	case "WARNING":
		return logging.WARNING
	case "NOTICE":
		return logging.NOTICE
	case "INFO":
		return logging.INFO
	case "DEBUG":
		return logging.DEBUG
	default:
		return fallback
	}
}
