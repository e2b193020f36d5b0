package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	DebugMode      bool
	CurrentLevel   LogLevel = LevelWarn
	ShowRaylibInfo bool

	output = termenv.NewOutput(os.Stderr)
	logger = log.New(output, "", log.LstdFlags)
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseLevel maps a config or flag value ("debug", "info", "warn", "error") to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelWarn, fmt.Errorf("unknown log level %q", s)
}

// SetOutput redirects all log output. Color support is detected from w,
// so anything that is not a terminal receives plain text.
func SetOutput(w io.Writer) {
	output = termenv.NewOutput(w)
	logger.SetOutput(output)
}

// SetTimestamps toggles the date/time prefix on every line.
func SetTimestamps(enabled bool) {
	if enabled {
		logger.SetFlags(log.LstdFlags)
	} else {
		logger.SetFlags(0)
	}
}

func levelColor(level LogLevel) termenv.Color {
	switch level {
	case LevelDebug:
		return termenv.ANSICyan
	case LevelInfo:
		return termenv.ANSIBlue
	case LevelWarn:
		return termenv.ANSIYellow
	}
	return termenv.ANSIRed
}

func logMessage(level LogLevel, format string, v ...interface{}) {
	if level < CurrentLevel && !(DebugMode && level == LevelDebug) {
		return
	}
	emit(level, format, v...)
}

func emit(level LogLevel, format string, v ...interface{}) {
	tag := output.String("[" + level.String() + "]").Foreground(levelColor(level))
	logger.Printf(tag.String()+" "+format, v...)
}

func Info(format string, v ...interface{})  { logMessage(LevelInfo, format, v...) }
func Debug(format string, v ...interface{}) { logMessage(LevelDebug, format, v...) }
func Warn(format string, v ...interface{})  { logMessage(LevelWarn, format, v...) }
func Error(format string, v ...interface{}) { logMessage(LevelError, format, v...) }

// RaylibLogCallback forwards raylib trace output into the leveled logger.
// Register it with rl.SetTraceLogCallback before the window is created.
func RaylibLogCallback(level int, text string) {
	formattedText := output.String("[RAYLIB]").Foreground(termenv.ANSIMagenta).String() + " " + text
	switch level {
	case 1, 2: // LOG_TRACE, LOG_DEBUG
		if CurrentLevel <= LevelDebug {
			Debug("%s", formattedText)
		}
	case 3: // LOG_INFO
		if ShowRaylibInfo || CurrentLevel <= LevelInfo {
			emit(LevelInfo, "%s", formattedText)
		}
	case 4: // LOG_WARNING
		Warn("%s", formattedText)
	case 5, 6: // LOG_ERROR, LOG_FATAL
		Error("%s", formattedText)
	}
}
