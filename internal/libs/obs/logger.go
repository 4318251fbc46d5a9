// Package obs provides the process-wide structured JSON logger.
package obs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Instance identifies this process in every record
var Instance = uuid.NewString()

var configureOnce sync.Once

// configure sets the zerolog field layout shared by every logger
func configure() {
	configureOnce.Do(func() {
		zerolog.TimestampFieldName = "timestamp"
		zerolog.LevelFieldName = "level"
		zerolog.MessageFieldName = "message"
		zerolog.ErrorFieldName = "exception"
		zerolog.TimeFieldFormat = time.RFC3339Nano
		zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
		zerolog.LevelFieldMarshalFunc = levelName
		zerolog.ErrorMarshalFunc = marshalException
	})
}

// InitLogger initializes the global logger
func InitLogger(level string) {
	configure()

	// Parse log level
	level = strings.ToLower(level)
	if level == "warning" {
		level = "warn"
	}
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	// Pretty print in development
	if os.Getenv("ENV") == "dev" {
		log.Logger = New(zerolog.ConsoleWriter{Out: os.Stdout})
		return
	}
	log.Logger = New(os.Stdout)
}

// New builds a JSON logger writing one record per line to w
func New(w io.Writer) zerolog.Logger {
	configure()
	return zerolog.New(zerolog.SyncWriter(w)).
		Hook(callerHook{}).
		With().
		Timestamp().
		Str("instance", Instance).
		Logger()
}

// Logger returns a new logger with the given component name
func Logger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

func levelName(l zerolog.Level) string {
	switch l {
	case zerolog.WarnLevel:
		return "WARNING"
	case zerolog.FatalLevel, zerolog.PanicLevel:
		return "CRITICAL"
	case zerolog.NoLevel:
		return "NOTSET"
	default:
		return strings.ToUpper(l.String())
	}
}

// callerHook adds module, function and line of the code that emitted the event
type callerHook struct{}

func (callerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	frame, ok := callerFrame()
	if !ok {
		return
	}
	e.Str("module", strings.TrimSuffix(filepath.Base(frame.File), ".go")).
		Str("function", shortFunction(frame.Function)).
		Int("line", frame.Line)
}

// callerFrame returns the first frame outside the runtime, zerolog and this hook
func callerFrame() (runtime.Frame, bool) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !skipFrame(frame.Function) {
			return frame, true
		}
		if !more {
			return runtime.Frame{}, false
		}
	}
}

func skipFrame(fn string) bool {
	return strings.HasPrefix(fn, "runtime.") ||
		strings.HasPrefix(fn, "github.com/rs/zerolog") ||
		strings.HasSuffix(fn, "/obs.callerHook.Run") ||
		strings.HasSuffix(fn, "/obs.callerFrame") ||
		strings.HasSuffix(fn, "/obs.marshalException") ||
		strings.HasSuffix(fn, "/obs.stackTrace")
}

// shortFunction strips the import path and package name:
// "github.com/x/y/internal/http.(*Handler).HandleStatus" -> "(*Handler).HandleStatus"
func shortFunction(fn string) string {
	if i := strings.LastIndex(fn, "/"); i >= 0 {
		fn = fn[i+1:]
	}
	if i := strings.Index(fn, "."); i >= 0 {
		fn = fn[i+1:]
	}
	return fn
}

// marshalException renders the error chain followed by the stack of the logging call site
func marshalException(err error) interface{} {
	if err == nil {
		return nil
	}
	var b strings.Builder
	for depth := 0; err != nil; depth++ {
		if depth > 0 {
			b.WriteString("caused by: ")
		}
		b.WriteString(err.Error())
		b.WriteByte('\n')
		err = errors.Unwrap(err)
	}
	b.WriteString("stack:\n")
	b.WriteString(stackTrace())
	return strings.TrimSuffix(b.String(), "\n")
}

func stackTrace() string {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		if !skipFrame(frame.Function) {
			b.WriteString(frame.Function)
			b.WriteString("\n\t")
			b.WriteString(frame.File)
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(frame.Line))
			b.WriteByte('\n')
		}
		if !more {
			break
		}
	}
	return b.String()
}
