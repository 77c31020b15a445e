// 指示: miu200521358
// Package logging はアプリ共通のロガーを提供する。
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
)

// LogLevel はログ出力レベルを表す。
type LogLevel string

const (
	// LOG_LEVEL_DEBUG はデバッグレベル。
	LOG_LEVEL_DEBUG LogLevel = "debug"
	// LOG_LEVEL_INFO は情報レベル。
	LOG_LEVEL_INFO LogLevel = "info"
	// LOG_LEVEL_WARN は警告レベル。
	LOG_LEVEL_WARN LogLevel = "warn"
	// LOG_LEVEL_ERROR はエラーレベル。
	LOG_LEVEL_ERROR LogLevel = "error"
)

// ILogger はログ出力契約を表す。
type ILogger interface {
	// Debug はデバッグログを出力する。
	Debug(format string, params ...any)
	// Info は情報ログを出力する。
	Info(format string, params ...any)
	// Warn は警告ログを出力する。
	Warn(format string, params ...any)
	// Error はエラーログを出力する。
	Error(format string, params ...any)
	// IsDebugEnabled はデバッグログが有効か返す。
	IsDebugEnabled() bool
}

// Logger はlogrusによるILogger実装。
type Logger struct {
	entry *logrus.Logger
}

var (
	defaultLogger ILogger = NewLogger(LOG_LEVEL_INFO, os.Stderr)
	defaultMu     sync.RWMutex
	dumpConfig    = &spew.ConfigState{Indent: "  ", DisableCapacities: true, DisablePointerAddresses: true, SortKeys: true}
)

// NewLogger は出力先とレベルを指定してロガーを生成する。
func NewLogger(level LogLevel, out io.Writer) *Logger {
	entry := logrus.New()
	entry.SetOutput(out)
	entry.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    true,
		TimestampFormat:  "15:04:05.000",
		DisableSorting:   false,
		QuoteEmptyFields: true,
	})
	entry.SetLevel(ParseLevel(string(level)))
	return &Logger{entry: entry}
}

// ParseLevel は文字列からlogrusのレベルを解決する。不明な値はINFOとする。
func ParseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

// Debug はデバッグログを出力する。
func (l *Logger) Debug(format string, params ...any) {
	l.entry.Debugf(format, params...)
}

// Info は情報ログを出力する。
func (l *Logger) Info(format string, params ...any) {
	l.entry.Infof(format, params...)
}

// Warn は警告ログを出力する。
func (l *Logger) Warn(format string, params ...any) {
	l.entry.Warnf(format, params...)
}

// Error はエラーログを出力する。
func (l *Logger) Error(format string, params ...any) {
	l.entry.Errorf(format, params...)
}

// IsDebugEnabled はデバッグログが有効か返す。
func (l *Logger) IsDebugEnabled() bool {
	return l.entry.IsLevelEnabled(logrus.DebugLevel)
}

// DefaultLogger は既定ロガーを返す。
func DefaultLogger() ILogger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger は既定ロガーを差し替える。nilは無視する。
func SetDefaultLogger(logger ILogger) {
	if logger == nil {
		return
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// Dump はデバッグ用に値の内容を文字列化する。
func Dump(values ...any) string {
	return dumpConfig.Sdump(values...)
}
