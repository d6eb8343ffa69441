package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Level уровень логирования
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger файловый логгер с уровнями
// Пишет одновременно в файл и stdout
type Logger struct {
	out   *log.Logger
	file  *os.File
	level Level
}

// New создает логгер, пишущий в указанный файл и stdout
// level: "debug", "info", "warn", "error" (по умолчанию info)
func New(filePath string, level string) (*Logger, error) {
	var writers []io.Writer
	writers = append(writers, os.Stdout)

	var file *os.File
	if filePath != "" {
		if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
			return nil, fmt.Errorf("logger: failed to create log directory: %w", err)
		}

		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logger: failed to open log file: %w", err)
		}
		file = f
		writers = append(writers, f)
	}

	return &Logger{
		out:   log.New(io.MultiWriter(writers...), "", log.LstdFlags|log.Lmicroseconds),
		file:  file,
		level: parseLevel(level),
	}, nil
}

// parseLevel конвертирует строку в уровень логирования
func parseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Debug логирует сообщение уровня DEBUG
func (l *Logger) Debug(format string, v ...interface{}) {
	l.log(LevelDebug, "DEBUG", format, v...)
}

// Info логирует сообщение уровня INFO
func (l *Logger) Info(format string, v ...interface{}) {
	l.log(LevelInfo, "INFO", format, v...)
}

// Warn логирует сообщение уровня WARN
func (l *Logger) Warn(format string, v ...interface{}) {
	l.log(LevelWarn, "WARN", format, v...)
}

// Error логирует сообщение уровня ERROR
func (l *Logger) Error(format string, v ...interface{}) {
	l.log(LevelError, "ERROR", format, v...)
}

// Fatal логирует сообщение уровня FATAL и завершает процесс
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.log(LevelError, "FATAL", format, v...)
	l.Close()
	os.Exit(1)
}

func (l *Logger) log(level Level, tag string, format string, v ...interface{}) {
	if level < l.level {
		return
	}
	l.out.Printf("["+tag+"] "+format, v...)
}

// Close закрывает файл логов
func (l *Logger) Close() {
	if l.file != nil {
		_ = l.file.Close()
	}
}
