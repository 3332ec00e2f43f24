package platform

import (
	"fmt"

	"github.com/go-logr/logr"
)

// WriteFunc is the external debug-logging trait spec.md section 1
// names: "write(level, fmt, …)". level follows syslog numbering,
// 0=emergency through 7=debug; only 3 (error) and 7 (debug) are used by
// LogSink below, matching the core's two logr verbosity levels.
type WriteFunc func(level int, format string, args ...any)

// LogSink adapts a WriteFunc into a logr.LogSink, so every package in
// this module depends only on logr.Logger (SPEC_FULL.md section 11)
// while the actual "how do these bytes reach a log file" decision stays
// external, exactly like WifiDriver and RadioEnumerator.
type LogSink struct {
	write WriteFunc
	name  string
	kv    []any
}

// NewLogSink builds a logr.Logger backed by write.
func NewLogSink(write WriteFunc) logr.Logger {
	return logr.New(&LogSink{write: write})
}

func (s *LogSink) Init(logr.RuntimeInfo) {}

func (s *LogSink) Enabled(level int) bool { return true }

func (s *LogSink) Info(level int, msg string, kv ...any) {
	s.write(7, "%s"+formatKV(append(s.kv, kv...))+" msg=%q", s.name, msg)
}

func (s *LogSink) Error(err error, msg string, kv ...any) {
	s.write(3, "%s"+formatKV(append(s.kv, kv...))+" msg=%q err=%q", s.name, msg, err)
}

func (s *LogSink) WithValues(kv ...any) logr.LogSink {
	return &LogSink{write: s.write, name: s.name, kv: append(append([]any(nil), s.kv...), kv...)}
}

func (s *LogSink) WithName(name string) logr.LogSink {
	full := name
	if s.name != "" {
		full = s.name + "." + name
	}
	return &LogSink{write: s.write, name: full, kv: s.kv}
}

func formatKV(kv []any) string {
	out := ""
	for i := 0; i+1 < len(kv); i += 2 {
		out += fmt.Sprintf(" %v=%v", kv[i], kv[i+1])
	}
	return out
}

var _ logr.LogSink = (*LogSink)(nil)
