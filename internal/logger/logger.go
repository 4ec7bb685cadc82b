// Package logger provides structured logging using zap.
//
// Components ask for a child logger with Named so frame-loop messages carry
// the subsystem that produced them ("compositor", "glgpu", "driver", ...).
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger instance.
var Log *zap.Logger

// Sugar is the sugared logger for convenient logging.
var Sugar *zap.SugaredLogger

// FileConfig holds rotating file output settings. An empty Path disables
// file output.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileConfig returns default file logging settings.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  20,
		MaxBackups: 5,
		MaxAgeDays: 14,
		Compress:   true,
	}
}

// Config describes a logger: its level and where entries go.
type Config struct {
	// Level is one of debug, info, warn, error; anything else means info.
	Level   string
	Console bool
	File    FileConfig
}

// New builds a logger from cfg without installing it. With no outputs it
// returns a no-op logger.
func New(cfg Config) *zap.Logger {
	lvl := parseLevel(cfg.Level)

	var cores []zapcore.Core
	if cfg.Console {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig(true)),
			zapcore.AddSync(os.Stdout),
			lvl,
		))
	}
	if cfg.File.Path != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig(false)),
			zapcore.AddSync(rotating(cfg.File)),
			lvl,
		))
	}
	if len(cores) == 0 {
		return zap.NewNop()
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

// encoderConfig is shared by both outputs. The console gets colored levels
// and a short clock; files get ISO 8601 timestamps.
func encoderConfig(console bool) zapcore.EncoderConfig {
	cfg := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		CallerKey:        "caller",
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: " ",
	}
	if console {
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg
}

func rotating(fc FileConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   fc.Path,
		MaxSize:    fc.MaxSizeMB,
		MaxBackups: fc.MaxBackups,
		MaxAge:     fc.MaxAgeDays,
		Compress:   fc.Compress,
		LocalTime:  true,
	}
}

// Init installs a console logger at level, plus a rotating file when
// logFile is set.
func Init(level string, logFile string) error {
	cfg := Config{Level: level, Console: true}
	if logFile != "" {
		cfg.File = DefaultFileConfig(logFile)
	}
	Install(New(cfg))
	return nil
}

// Install makes l the global logger.
func Install(l *zap.Logger) {
	Log = l
	Sugar = l.Sugar()
}

// InitNop installs a logger that discards everything.
func InitNop() {
	Install(zap.NewNop())
}

// parseLevel converts a string level to zapcore.Level.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Sync flushes any buffered log entries.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

// Named returns a child logger for a component. Before Init it returns a
// no-op logger, so constructors can call it unconditionally.
func Named(component string) *zap.Logger {
	if Log == nil {
		return zap.NewNop()
	}
	return Log.Named(component)
}

func Debug(msg string, fields ...zap.Field) { Log.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { Log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Log.Error(msg, fields...) }
