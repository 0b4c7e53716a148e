// Package logging configures the shared logrus logger: a compact line format
// and an optional rotating log file.
package logging

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/router-for-me/oauthloop/internal/config"
	"github.com/router-for-me/oauthloop/internal/util"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	setupOnce sync.Once
	writerMu  sync.Mutex
	logWriter *lumberjack.Logger
)

// LogFormatter defines a custom log format for logrus.
// Format: [2026-10-19 20:14:04] [a1b2c3d4] [debug] [google_auth.go:131] OAuth flow idle -> port_binding
type LogFormatter struct{}

// logFieldOrder lists the only fields that are printed, in display order.
// Anything else attached to an entry is dropped.
var logFieldOrder = []string{"state", "port", "attempt", "error"}

// Format renders a single log entry with custom formatting.
func (m *LogFormatter) Format(entry *log.Entry) ([]byte, error) {
	var buffer *bytes.Buffer
	if entry.Buffer != nil {
		buffer = entry.Buffer
	} else {
		buffer = &bytes.Buffer{}
	}

	timestamp := entry.Time.Format("2006-01-02 15:04:05")
	message := strings.TrimRight(entry.Message, "\r\n")

	reqID := "--------"
	if id, ok := entry.Data["request_id"].(string); ok && id != "" {
		reqID = id
	}

	level := entry.Level.String()
	if level == "warning" {
		level = "warn"
	}
	levelStr := fmt.Sprintf("%-5s", level)

	var fieldsStr string
	if len(entry.Data) > 0 {
		var fields []string
		for _, k := range logFieldOrder {
			if v, ok := entry.Data[k]; ok {
				fields = append(fields, fmt.Sprintf("%s=%v", k, v))
			}
		}
		if len(fields) > 0 {
			fieldsStr = " " + strings.Join(fields, " ")
		}
	}

	var formatted string
	if entry.Caller != nil {
		formatted = fmt.Sprintf("[%s] [%s] [%s] [%s:%d] %s%s\n", timestamp, reqID, levelStr, filepath.Base(entry.Caller.File), entry.Caller.Line, message, fieldsStr)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] [%s] %s%s\n", timestamp, reqID, levelStr, message, fieldsStr)
	}
	buffer.WriteString(formatted)

	return buffer.Bytes(), nil
}

// SetupBaseLogger configures the shared logrus instance.
// It is safe to call multiple times; initialization happens only once.
func SetupBaseLogger() {
	setupOnce.Do(func() {
		log.SetOutput(os.Stderr)
		log.SetReportCaller(true)
		log.SetFormatter(&LogFormatter{})
		log.RegisterExitHandler(CloseLogOutputs)
	})
}

// ResolveLogDirectory determines the directory used for application logs.
// WRITABLE_PATH wins, then the configured log-dir, then ./logs.
func ResolveLogDirectory(cfg *config.Config) string {
	if base := util.WritablePath(); base != "" {
		return filepath.Join(base, "logs")
	}
	if cfg != nil && strings.TrimSpace(cfg.LogDir) != "" {
		dir, err := util.ResolvePath(cfg.LogDir)
		if err != nil {
			log.Warnf("Failed to resolve log-dir %q: %v", cfg.LogDir, err)
		} else if dir != "" {
			return dir
		}
	}
	return "logs"
}

// ConfigureLogOutput sets the log level and switches the destination between
// a rotating file and stderr. Stdout is left for the login result.
func ConfigureLogOutput(cfg *config.Config) error {
	SetupBaseLogger()

	if cfg == nil {
		cfg = &config.Config{}
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	writerMu.Lock()
	defer writerMu.Unlock()

	if logWriter != nil {
		_ = logWriter.Close()
		logWriter = nil
	}

	if !cfg.LoggingToFile {
		log.SetOutput(os.Stderr)
		return nil
	}

	logDir := ResolveLogDirectory(cfg)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("logging: failed to create log directory: %w", err)
	}
	maxSize := cfg.LogMaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	logWriter = &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "oauthloop.log"),
		MaxSize:    maxSize,
		MaxBackups: cfg.LogMaxBackups,
		Compress:   false,
	}
	log.SetOutput(logWriter)
	return nil
}

// CloseLogOutputs flushes and closes the log file, if one is open.
func CloseLogOutputs() {
	writerMu.Lock()
	defer writerMu.Unlock()

	if logWriter != nil {
		_ = logWriter.Close()
		logWriter = nil
	}
}
