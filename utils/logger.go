/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is the logger type handed out by NewLogger.
type Logger = logrus.Logger

const timestampLayout = "2006-01-02 15:04:05.000"

var (
	consoleLevel     = ParseLogLevel(EnvDefaultString("LOG_LEVEL", "info"))
	consoleLogFormat = EnvDefaultString("CONSOLE_LOG_FORMAT", "text")
	consoleWriter    io.Writer = os.Stderr

	fileLogEnabled    = EnvDefaultBool("FILE_LOG_ENABLED", false)
	fileLogDir        = EnvDefaultString("FILE_LOG_DIR", "logs")
	fileLogMaxAgeDays = 7

	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}
)

// ConfigureFileLog turns on daily rolling file output for loggers created
// afterwards. An empty dir disables it.
func ConfigureFileLog(dir string, maxAgeDays int) {
	fileLogEnabled = dir != ""
	if dir != "" {
		fileLogDir = dir
	}
	if maxAgeDays >= 0 {
		fileLogMaxAgeDays = maxAgeDays
	}
}

// ConfigureConsoleLogFormat selects "json" or "text" for loggers created
// afterwards.
func ConfigureConsoleLogFormat(format string) {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		consoleLogFormat = "json"
	} else {
		consoleLogFormat = "text"
	}
}

// ConfigureConsoleWriter redirects console output. Nil restores stderr.
func ConfigureConsoleWriter(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	consoleWriter = w
}

// ParseLogLevel maps a level name to a logrus level, defaulting to info.
func ParseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

// ConfigureLogLevel applies a level to every registered logger and to those
// created afterwards.
func ConfigureLogLevel(levelStr string) {
	consoleLevel = ParseLogLevel(levelStr)
	loggerRegistryMu.RLock()
	for _, lg := range loggerRegistry {
		lg.SetLevel(consoleLevel)
	}
	loggerRegistryMu.RUnlock()
	logrus.SetLevel(consoleLevel)
}

// SetLoggerLevel changes the level of one named logger.
func SetLoggerLevel(name string, lvlStr string) bool {
	loggerRegistryMu.RLock()
	lg, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		return false
	}
	lg.SetLevel(ParseLogLevel(lvlStr))
	return true
}

// NewLogger returns the named logger, creating and registering it on first
// use. Output goes through hooks so console and file can use different
// formatters.
func NewLogger(name string) *logrus.Logger {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	if lg, ok := loggerRegistry[name]; ok {
		return lg
	}

	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(consoleLevel)
	if consoleLogFormat == "json" {
		l.SetFormatter(&JSONLogFormatter{LoggerName: name})
	} else {
		l.SetFormatter(&Log4jFormatter{LoggerName: name, Color: true, NameWidth: 10})
	}
	l.AddHook(&writerHook{formatter: l.Formatter, writer: func() io.Writer { return consoleWriter }})
	if fileLogEnabled {
		w := &dailyFileWriter{dir: fileLogDir, prefix: strings.ToLower(name), maxAgeDays: fileLogMaxAgeDays}
		l.AddHook(&writerHook{
			formatter: &Log4jFormatter{LoggerName: name, NameWidth: 10},
			writer:    func() io.Writer { return w },
		})
	}
	loggerRegistry[name] = l
	return l
}

type writerHook struct {
	formatter logrus.Formatter
	writer    func() io.Writer
}

func (h *writerHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *writerHook) Fire(e *logrus.Entry) error {
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.writer().Write(b)
	return err
}

// dailyFileWriter writes to <dir>/<prefix>-<date>.log and removes files
// older than maxAgeDays when the date rolls over.
type dailyFileWriter struct {
	dir        string
	prefix     string
	maxAgeDays int

	mu      sync.Mutex
	curDate string
	file    *os.File
}

func (w *dailyFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	today := time.Now().Format("2006-01-02")
	if w.file == nil || w.curDate != today {
		if w.file != nil {
			_ = w.file.Close()
		}
		if err := os.MkdirAll(w.dir, 0o755); err != nil {
			return 0, err
		}
		f, err := os.OpenFile(filepath.Join(w.dir, w.prefix+"-"+today+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return 0, err
		}
		w.file, w.curDate = f, today
		w.cleanup()
	}
	return w.file.Write(p)
}

func (w *dailyFileWriter) cleanup() {
	if w.maxAgeDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -w.maxAgeDays).Format("2006-01-02")
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		name := e.Name()
		date := strings.TrimSuffix(strings.TrimPrefix(name, w.prefix+"-"), ".log")
		if len(date) == len(cutoff) && date < cutoff {
			_ = os.Remove(filepath.Join(w.dir, name))
		}
	}
}

// Log4jFormatter renders "time LEVEL pid --- [name] : message k=v ...".
type Log4jFormatter struct {
	LoggerName string
	Color      bool
	NameWidth  int
}

func (f *Log4jFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	lvl := fmt.Sprintf("%5s", strings.ToUpper(entry.Level.String()))
	name := f.LoggerName
	if f.NameWidth > 0 {
		name = fmt.Sprintf("%"+strconv.Itoa(f.NameWidth)+"s", limitRunes(name, f.NameWidth))
	}
	pid := fmt.Sprintf("%-6d", os.Getpid())
	if f.Color {
		lvl = colorLevel(lvl, entry.Level)
		name = colorWrap(name, ansiCyan)
		pid = colorWrap(pid, ansiMagenta)
	}

	var b strings.Builder
	b.WriteString(entry.Time.Format(timestampLayout))
	b.WriteString(" ")
	b.WriteString(lvl)
	b.WriteString(" ")
	b.WriteString(pid)
	b.WriteString(" --- [")
	b.WriteString(name)
	b.WriteString("] : ")
	b.WriteString(entry.Message)
	for _, k := range sortedKeys(entry.Data) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// JSONLogFormatter renders one JSON object per line.
type JSONLogFormatter struct {
	LoggerName string
}

func (f *JSONLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	rec := struct {
		Time    string                 `json:"time"`
		Level   string                 `json:"level"`
		Logger  string                 `json:"logger"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields,omitempty"`
	}{
		Time:    entry.Time.Format(timestampLayout),
		Level:   entry.Level.String(),
		Logger:  f.LoggerName,
		Message: entry.Message,
	}
	if len(entry.Data) > 0 {
		rec.Fields = make(map[string]interface{}, len(entry.Data))
		for k, v := range entry.Data {
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			rec.Fields[k] = v
		}
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiYellow  = "\x1b[33m"
	ansiGreen   = "\x1b[32m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

func colorWrap(s, code string) string { return code + s + ansiReset }

func colorLevel(s string, level logrus.Level) string {
	switch level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return colorWrap(s, ansiRed)
	case logrus.WarnLevel:
		return colorWrap(s, ansiYellow)
	case logrus.InfoLevel:
		return colorWrap(s, ansiGreen)
	case logrus.DebugLevel:
		return colorWrap(s, ansiBlue)
	default:
		return colorWrap(s, ansiMagenta)
	}
}

func limitRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func sortedKeys(m logrus.Fields) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func EnvDefaultString(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	}
	return def
}

func EnvDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return def
		}
		return n
	}
	return def
}

func EnvDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return def
		}
		return d
	}
	return def
}
