package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the package-global zerolog logger. level is one of
// zerolog's level names ("debug", "info", "warn", "error"); unknown
// values fall back to "info".
func Init(level string) error {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = zerolog.InfoLevel
		fmt.Fprintf(os.Stderr, "unknown log level %q, defaulting to info\n", level)
	}

	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
	}

	log.Logger = zerolog.New(consoleWriter).
		Level(parsed).
		With().
		Timestamp().
		Logger()

	Info().Str("level", parsed.String()).Msg("logger initialized")
	return nil
}

// WithComponent returns a child logger tagged with a component name, for
// distinguishing module output in multi-pipeline log streams.
func WithComponent(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}

// Event wraps a zerolog event so callers outside this package never
// import zerolog directly.
type Event struct {
	*zerolog.Event
}

func Debug() *Event { return &Event{log.Debug()} }
func Info() *Event  { return &Event{log.Info()} }
func Warn() *Event  { return &Event{log.Warn()} }
func Error() *Event { return &Event{log.Error()} }

func (e *Event) Str(key, value string) *Event {
	e.Event = e.Event.Str(key, value)
	return e
}

func (e *Event) Int(key string, value int) *Event {
	e.Event = e.Event.Int(key, value)
	return e
}

func (e *Event) Float64(key string, value float64) *Event {
	e.Event = e.Event.Float64(key, value)
	return e
}

func (e *Event) Bool(key string, value bool) *Event {
	e.Event = e.Event.Bool(key, value)
	return e
}

func (e *Event) Err(err error) *Event {
	e.Event = e.Event.Err(err)
	return e
}

func (e *Event) Dur(key string, value time.Duration) *Event {
	e.Event = e.Event.Dur(key, value)
	return e
}

func (e *Event) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *Event) Msgf(format string, v ...interface{}) {
	e.Event.Msgf(format, v...)
}
