// Package logging builds the process logger. Logs go to a rotating JSON
// file so they never draw over the TUI; verbose commands mirror them to
// the console.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/omergehad405/EduMaster/internal/config"
	"github.com/omergehad405/EduMaster/internal/progression"
)

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// New builds a logger writing to cfg.File. When cfg.Verbose is set and
// console is non-nil, entries are also written to console. The returned
// function flushes and closes the log file.
func New(cfg config.LogConfig, console io.Writer) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	path := cfg.File
	if path == "" {
		if path, err = config.DefaultLogFile(); err != nil {
			return nil, nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     30,
		Compress:   true,
	}

	enc := encoderConfig()
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(file), level),
	}
	if cfg.Verbose && console != nil {
		consoleEnc := enc
		consoleEnc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleEnc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEnc),
			zapcore.Lock(zapcore.AddSync(console)),
			level,
		))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	closer := func() error {
		_ = log.Sync()
		return file.Close()
	}
	return log, closer, nil
}

// IssueReporter forwards progression data-quality issues to log at warn
// level.
func IssueReporter(log *zap.Logger) progression.Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("progression")
	return progression.ReporterFunc(func(i progression.Issue) {
		log.Warn("data integrity issue",
			zap.String("issue", string(i.Kind)),
			zap.String("track", i.TrackID),
			zap.String("lesson", i.LessonID))
	})
}
