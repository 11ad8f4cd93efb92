package log

import (
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Log = (*Logger)(nil)

// Logger is the zap backed Log.
type Logger struct {
	z     *zap.Logger
	level zap.AtomicLevel
}

type options struct {
	format string
	out    io.Writer
	sample bool
}

// Option tunes New.
type Option func(*options)

// WithFormat selects "json" (default) or "console" encoding.
func WithFormat(format string) Option {
	return func(o *options) { o.format = format }
}

// WithOutput redirects entries away from stderr.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithoutSampling writes every entry. The simulation loop logs at tick rate,
// so sampling is on by default.
func WithoutSampling() Option {
	return func(o *options) { o.sample = false }
}

func New(level Level, opts ...Option) *Logger {
	o := options{format: "json", out: os.Stderr, sample: true}
	for _, opt := range opts {
		opt(&o)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if o.format == "console" {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	atom := zap.NewAtomicLevelAt(zapLevels[level])
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(o.out)), atom)
	if o.sample {
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 100)
	}

	return &Logger{z: zap.New(core, zap.ErrorOutput(zapcore.Lock(os.Stderr))), level: atom}
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *Logger {
	return &Logger{z: zap.NewNop(), level: zap.NewAtomicLevelAt(zapLevels[LevelSilent])}
}

func (l *Logger) Log(level Level, msg string, fields ...Field) {
	if !l.checkLevel(level) {
		return
	}
	l.z.Log(zapLevels[level], msg, zapFields(fields)...)
}

func (l *Logger) Debug(msg string, fields ...Field) { l.z.Debug(msg, zapFields(fields)...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.z.Info(msg, zapFields(fields)...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, zapFields(fields)...) }
func (l *Logger) Error(msg string, fields ...Field) { l.z.Error(msg, zapFields(fields)...) }
func (l *Logger) Fatal(msg string, fields ...Field) { l.z.Fatal(msg, zapFields(fields)...) }

// With shares the level with its parent: SetLevel on either affects both.
func (l *Logger) With(fields ...Field) Log {
	return &Logger{z: l.z.With(zapFields(fields)...), level: l.level}
}

func (l *Logger) WithContext(_ context.Context) Log {
	return l
}

func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(zapLevels[level])
}

func (l *Logger) GetLevel() Level {
	cur := l.level.Level()
	for lvl, z := range zapLevels {
		if z == cur {
			return lvl
		}
	}
	return LevelInfo
}

func (l *Logger) Sync() error {
	return l.z.Sync()
}

func (l *Logger) checkLevel(level Level) bool {
	return l.level.Enabled(zapLevels[level])
}

var zapLevels = map[Level]zapcore.Level{
	LevelDebug:  zapcore.DebugLevel,
	LevelInfo:   zapcore.InfoLevel,
	LevelWarn:   zapcore.WarnLevel,
	LevelError:  zapcore.ErrorLevel,
	LevelFatal:  zapcore.FatalLevel,
	LevelSilent: zapcore.FatalLevel + 1,
}

func zapField(f Field) zap.Field {
	switch f.Type {
	case BoolType:
		return zap.Bool(f.Key, f.Value.(bool))
	case DurationType:
		return zap.Duration(f.Key, f.Value.(time.Duration))
	case Float64Type:
		return zap.Float64(f.Key, f.Value.(float64))
	case IntType:
		return zap.Int(f.Key, f.Value.(int))
	case Int64Type:
		return zap.Int64(f.Key, f.Value.(int64))
	case StringType:
		return zap.String(f.Key, f.Value.(string))
	case Uint64Type:
		return zap.Uint64(f.Key, f.Value.(uint64))
	case ErrorType:
		return zap.NamedError(f.Key, f.Value.(error))
	default:
		return zap.Any(f.Key, f.Value)
	}
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = zapField(f)
	}
	return out
}
