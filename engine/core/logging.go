package core

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// LogLevel mirrors the levels of the underlying logger.
type LogLevel = log.Level

const (
	DebugLevel LogLevel = log.DebugLevel
	InfoLevel  LogLevel = log.InfoLevel
	WarnLevel  LogLevel = log.WarnLevel
	ErrorLevel LogLevel = log.ErrorLevel
	FatalLevel LogLevel = log.FatalLevel
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	once.Do(
		func() {
			l := log.NewWithOptions(os.Stderr, log.Options{
				ReportCaller:    true,
				ReportTimestamp: true,
				TimeFormat:      time.RFC3339,
				Prefix:          "Prism 🔺 ",
				// Skip the LogX wrappers so the caller column points at the real site.
				CallerOffset: 1,
			})
			l.SetLevel(log.InfoLevel)
			singleton = &logger{l}
		})
	return singleton
}

// ParseLogLevel converts "debug", "info", "warn", "error" or "fatal".
func ParseLogLevel(level string) (LogLevel, error) {
	return log.ParseLevel(level)
}

func SetLogLevel(level LogLevel) {
	getLogger().SetLevel(level)
}

func GetLogLevel() LogLevel {
	return getLogger().GetLevel()
}

// SetLogOutput redirects log output. The terminal host uses it to keep the
// screen clear of log lines.
func SetLogOutput(w io.Writer) {
	getLogger().SetOutput(w)
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
