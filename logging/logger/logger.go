// Package logger provides a context-aware logrus logger.
//
// Entries carry the trace id found in the context and the build version:
//
//	log.Info(ctx, "issue created", "id", issue.ID)
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ncobase/issues/logging/logger/config"
	"github.com/sirupsen/logrus"
)

// VersionKey is the field name of the build version.
const VersionKey = "version"

// Logger wraps logrus with context-aware, key/value logging methods.
type Logger struct {
	*logrus.Logger
	version string

	mu      sync.Mutex
	logFile *os.File
	logPath string
	stop    chan struct{}
}

// New creates a logger configured from c and returns its cleanup function.
func New(c *config.Config) (*Logger, func(), error) {
	l := &Logger{Logger: logrus.New()}
	cleanup, err := l.Init(c)
	if err != nil {
		return nil, nil, err
	}
	return l, cleanup, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l := &Logger{Logger: logrus.New()}
	l.Logger.SetOutput(io.Discard)
	return l
}

// SetVersion sets the version for logging
func (l *Logger) SetVersion(v string) {
	l.version = v
}

// Init applies the configuration to the logger.
func (l *Logger) Init(c *config.Config) (func(), error) {
	if c == nil {
		return func() {}, nil
	}

	l.SetLevel(logrus.Level(c.Level))

	switch c.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	switch c.Output {
	case "stderr":
		l.Logger.SetOutput(os.Stderr)
	case "file":
		if c.OutputFile == "" {
			return nil, fmt.Errorf("logger output is file but output_file is empty")
		}
		l.logPath = c.OutputFile
		if err := l.setupLogFile(); err != nil {
			return nil, err
		}
		l.stop = make(chan struct{})
		go l.periodicLogRotation()
	case "discard":
		l.Logger.SetOutput(io.Discard)
	default:
		l.Logger.SetOutput(os.Stdout)
	}

	return l.close, nil
}

func (l *Logger) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stop != nil {
		close(l.stop)
		l.stop = nil
	}
	if l.logFile != nil {
		_ = l.logFile.Close()
		l.logFile = nil
	}
}

func (l *Logger) setupLogFile() error {
	if err := os.MkdirAll(filepath.Dir(l.logPath), 0o755); err != nil {
		return err
	}
	return l.rotateLog()
}

func (l *Logger) rotateLog() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	logFilePath := fmt.Sprintf("%s.%s.log", strings.TrimSuffix(l.logPath, ".log"), time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}

	old := l.logFile
	l.logFile = f
	l.Logger.SetOutput(f)
	if old != nil {
		_ = old.Close()
	}
	return nil
}

func (l *Logger) periodicLogRotation() {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := l.rotateLog(); err != nil {
				l.Logger.Errorf("Error rotating log: %v", err)
			}
		case <-l.stop:
			return
		}
	}
}

// entryFromContext creates a new log entry with fields from context
func (l *Logger) entryFromContext(ctx context.Context, keyvals []any) *logrus.Entry {
	fields := logrus.Fields{}

	if ctx != nil {
		if traceID := getTraceID(ctx); traceID != "" {
			fields[traceKey] = traceID
		}
	}
	if l.version != "" {
		fields[VersionKey] = l.version
	}

	for i := 0; i < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		if i+1 >= len(keyvals) {
			fields["!BADKEY"] = key
			break
		}
		val := keyvals[i+1]
		if err, ok := val.(error); ok && err != nil {
			val = err.Error()
		}
		fields[key] = val
	}

	return l.WithFields(fields)
}

func (l *Logger) log(ctx context.Context, level logrus.Level, msg string, keyvals ...any) {
	if !l.IsLevelEnabled(level) {
		return
	}
	l.entryFromContext(ctx, keyvals).Log(level, msg)
}

func (l *Logger) Debug(ctx context.Context, msg string, keyvals ...any) {
	l.log(ctx, logrus.DebugLevel, msg, keyvals...)
}
func (l *Logger) Info(ctx context.Context, msg string, keyvals ...any) {
	l.log(ctx, logrus.InfoLevel, msg, keyvals...)
}
func (l *Logger) Warn(ctx context.Context, msg string, keyvals ...any) {
	l.log(ctx, logrus.WarnLevel, msg, keyvals...)
}
func (l *Logger) Error(ctx context.Context, msg string, keyvals ...any) {
	l.log(ctx, logrus.ErrorLevel, msg, keyvals...)
}

// SetOutput sets the output destination for the logger
func (l *Logger) SetOutput(out io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Logger.SetOutput(out)
}
