// Package logger is the leveled logger shared by the loader, the dashboard and the binaries.
// Lines look like "[WARN] [series] dropped line 7: ..."; the bracketed component comes from a
// Component value each package declares once.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// LogLevel represents severity.
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelTags = [...]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l LogLevel) String() string {
	if l >= LevelDebug && int(l) < len(levelTags) {
		return levelTags[l]
	}
	return fmt.Sprintf("LEVEL(%d)", int32(l))
}

// ParseLevel maps a config or flag value to a level. "warning" is accepted for warn.
func ParseLevel(s string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	}
	return LevelInfo, false
}

var currentLevel = int32(LevelInfo)

var baseLogger = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)

// SetLogLevel parses and sets the global log level. Unknown names are ignored.
func SetLogLevel(s string) {
	if l, ok := ParseLevel(s); ok {
		atomic.StoreInt32(&currentLevel, int32(l))
	}
}

// ValidLevel reports whether s names a known level.
func ValidLevel(s string) bool {
	_, ok := ParseLevel(s)
	return ok
}

// GetLogLevel returns the current global log level.
func GetLogLevel() LogLevel { return LogLevel(atomic.LoadInt32(&currentLevel)) }

// Enabled reports whether messages at l are written.
func Enabled(l LogLevel) bool { return GetLogLevel() <= l }

func output(l LogLevel, component, format string, args []interface{}) {
	if !Enabled(l) {
		return
	}
	msg := format
	// No args: keep pre-formatted text verbatim so a literal % survives.
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if component != "" {
		baseLogger.Printf("[%s] [%s] %s", l, component, msg)
		return
	}
	baseLogger.Printf("[%s] %s", l, msg)
}

func Debugf(format string, a ...interface{}) { output(LevelDebug, "", format, a) }
func Infof(format string, a ...interface{})  { output(LevelInfo, "", format, a) }
func Warnf(format string, a ...interface{})  { output(LevelWarn, "", format, a) }
func Errorf(format string, a ...interface{}) { output(LevelError, "", format, a) }

// TimeTrack logs the elapsed time since start at debug level.
func TimeTrack(start time.Time, label string) {
	Debugf("%s took %s", label, time.Since(start))
}

// Component tags every line with a subsystem name.
type Component string

func (c Component) Debugf(format string, a ...interface{}) { output(LevelDebug, string(c), format, a) }
func (c Component) Infof(format string, a ...interface{})  { output(LevelInfo, string(c), format, a) }
func (c Component) Warnf(format string, a ...interface{})  { output(LevelWarn, string(c), format, a) }
func (c Component) Errorf(format string, a ...interface{}) { output(LevelError, string(c), format, a) }

// TimeTrack logs the elapsed time of label since start at debug level.
func (c Component) TimeTrack(start time.Time, label string) {
	c.Debugf("%s took %s", label, time.Since(start))
}
