package zaplogger

import (
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"github.com/Zhima-Mochi/minishop-cart/internal/pkg/logging"
	"go.uber.org/zap"
)

type logger struct{ l *zap.Logger }

// New builds the JSON production logger and binds the fixed fields to it.
func New(opts logging.Options, fixed ...observability.Field) (*logger, error) {
	base, err := logging.NewLogger(opts)
	if err != nil {
		return nil, err
	}
	return Wrap(base.With(toZapFields(fixed)...)), nil
}

// Wrap adapts an existing zap logger to the observability port.
func Wrap(l *zap.Logger) *logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &logger{l: l}
}

func (z *logger) With(fields ...observability.Field) observability.Logger {
	if len(fields) == 0 {
		return &logger{l: z.l}
	}
	return &logger{l: z.l.With(toZapFields(fields)...)}
}

func (z *logger) Debug(msg string, fields ...observability.Field) {
	z.l.Debug(msg, toZapFields(fields)...)
}
func (z *logger) Info(msg string, fields ...observability.Field) {
	z.l.Info(msg, toZapFields(fields)...)
}
func (z *logger) Warn(msg string, fields ...observability.Field) {
	z.l.Warn(msg, toZapFields(fields)...)
}
func (z *logger) Error(msg string, fields ...observability.Field) {
	z.l.Error(msg, toZapFields(fields)...)
}

// Zap exposes the underlying logger for code that must log before the ports are wired.
func (z *logger) Zap() *zap.Logger {
	return z.l
}

// Sync flushes any buffered log entries. Safe to call on shutdown.
func (z *logger) Sync() error {
	return z.l.Sync()
}

func toZapFields(fs []observability.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fs))
	for _, f := range fs {
		if err, ok := f.Value.(error); ok {
			out = append(out, zap.NamedError(f.Key, err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
