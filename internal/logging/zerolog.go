package logging

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts zerolog to the Logger interface.
type ZerologLogger struct {
	l zerolog.Logger
}

func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

// NewConsoleLogger writes colourless, human-readable lines to w.
func NewConsoleLogger(w io.Writer) *ZerologLogger {
	cw := zerolog.ConsoleWriter{Out: w, NoColor: true}
	return NewZerologLogger(zerolog.New(cw).With().Timestamp().Logger())
}

func (z *ZerologLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.emit(z.l.Debug(), msg, args)
}

func (z *ZerologLogger) Info(ctx context.Context, msg string, args ...any) {
	z.emit(z.l.Info(), msg, args)
}

func (z *ZerologLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.emit(z.l.Warn(), msg, args)
}

func (z *ZerologLogger) Error(ctx context.Context, msg string, args ...any) {
	z.emit(z.l.Error(), msg, args)
}

func (z *ZerologLogger) With(args ...any) Logger {
	return &ZerologLogger{l: z.l.With().Fields(pairs(args)).Logger()}
}

func (z *ZerologLogger) emit(e *zerolog.Event, msg string, args []any) {
	e.Fields(pairs(args)).Msg(msg)
}

// pairs turns slog-style alternating key/value args into a field map.
// A dangling key is reported under "!BADKEY", as slog does.
func pairs(args []any) map[string]any {
	m := make(map[string]any, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			m["!BADKEY"] = args[i]
			break
		}
		m[fmt.Sprint(args[i])] = args[i+1]
	}
	return m
}
