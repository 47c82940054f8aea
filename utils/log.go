package utils

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var ErrUnknownLogLevel = errors.New("unknown log level (known: debug, info, warn, error)")

type logLevel int

const (
	DEBUG logLevel = iota
	INFO
	WARN
	ERROR
)

// LogLevel is a log level that can be changed at runtime. The zero value is not usable,
// create one with NewLogLevel.
type LogLevel struct {
	atomicLevel zap.AtomicLevel
}

// The following are necessary for Cobra and Viper, respectively, to unmarshal log level
// CLI/config parameters properly.
var (
	_ pflag.Value              = (*LogLevel)(nil)
	_ encoding.TextUnmarshaler = (*LogLevel)(nil)
)

const timeFormat = "15:04:05.000 02/01/2006 -07:00"

func NewLogLevel(level logLevel) *LogLevel {
	return &LogLevel{atomicLevel: zap.NewAtomicLevelAt(toZapLevel(level))}
}

func toZapLevel(level logLevel) zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		// Should not happen.
		panic(ErrUnknownLogLevel)
	}
}

func (l *LogLevel) Level() zapcore.Level {
	return l.atomicLevel.Level()
}

func (l LogLevel) String() string {
	switch l.atomicLevel.Level() {
	case zapcore.DebugLevel:
		return "debug"
	case zapcore.InfoLevel:
		return "info"
	case zapcore.WarnLevel:
		return "warn"
	case zapcore.ErrorLevel:
		return "error"
	default:
		// Should not happen.
		panic(ErrUnknownLogLevel)
	}
}

func (l LogLevel) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

func (l *LogLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *LogLevel) Set(s string) error {
	var level logLevel
	switch strings.ToLower(s) {
	case "debug":
		level = DEBUG
	case "info":
		level = INFO
	case "warn":
		level = WARN
	case "error":
		level = ERROR
	default:
		return ErrUnknownLogLevel
	}
	if l.atomicLevel == (zap.AtomicLevel{}) {
		l.atomicLevel = zap.NewAtomicLevel()
	}
	l.atomicLevel.SetLevel(toZapLevel(level))
	return nil
}

func (l *LogLevel) Type() string {
	return "LogLevel"
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	return l.Set(string(text))
}

type SimpleLogger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}

type ZapLogger struct {
	*zap.SugaredLogger
	files []io.Closer
}

var _ SimpleLogger = (*ZapLogger)(nil)

func NewNopZapLogger() *ZapLogger {
	return NewZapLoggerWithCore(zapcore.NewNopCore())
}

// LogFile configures rotation of the optional log file.
type LogFile struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// NewZapLogger builds a console logger, plus one JSON core per rotated log file. An unset
// level is initialised to info.
func NewZapLogger(level *LogLevel, colour bool, files ...LogFile) (*ZapLogger, error) {
	if level.atomicLevel == (zap.AtomicLevel{}) {
		level.atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	config := zap.NewProductionConfig()
	config.Sampling = nil
	config.Encoding = "console"
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if colour {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Local().Format(timeFormat))
	}
	config.Level = level.atomicLevel

	log, err := config.Build()
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return &ZapLogger{SugaredLogger: log.Sugar()}, nil
	}

	fileEncoder := config.EncoderConfig
	fileEncoder.EncodeLevel = zapcore.CapitalLevelEncoder
	cores := []zapcore.Core{log.Core()}
	closers := make([]io.Closer, 0, len(files))
	for _, f := range files {
		rotated := &lumberjack.Logger{
			Filename:   f.Path,
			MaxSize:    f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAge:     f.MaxAgeDays,
		}
		closers = append(closers, rotated)
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoder), zapcore.AddSync(rotated), level.atomicLevel))
	}

	zapLogger := NewZapLoggerWithCore(zapcore.NewTee(cores...))
	zapLogger.files = closers
	return zapLogger, nil
}

func NewZapLoggerWithCore(core zapcore.Core) *ZapLogger {
	return &ZapLogger{SugaredLogger: zap.New(core).Sugar()}
}

// Close flushes buffered entries and closes the log files. Console sync errors are
// ignored since stderr often cannot be synced.
func (l *ZapLogger) Close() error {
	_ = l.Sync()
	var errs []error
	for _, f := range l.files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// HTTPLogSettings reads (GET) or replaces (PUT ?level=) the running log level.
func HTTPLogSettings(w http.ResponseWriter, r *http.Request, level *LogLevel) {
	switch r.Method {
	case http.MethodGet:
		fmt.Fprintf(w, "%s\n", level.String())
	case http.MethodPut:
		levelStr := r.URL.Query().Get("level")
		if levelStr == "" {
			http.Error(w, "missing level query parameter", http.StatusBadRequest)
			return
		}

		if err := level.Set(levelStr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		fmt.Fprintf(w, "Replaced log level with '%s' successfully\n", level.String())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
