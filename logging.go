package ember

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log entry
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var logLevelNames = map[LogLevel]string{
	DebugLevel: "debug",
	InfoLevel:  "info",
	WarnLevel:  "warning",
	ErrorLevel: "error",
	FatalLevel: "fatal",
}

var logLevelColors = map[LogLevel]string{
	DebugLevel: "\033[36m", // Cyan
	InfoLevel:  "\033[32m", // Green
	WarnLevel:  "\033[33m", // Yellow
	ErrorLevel: "\033[31m", // Red
	FatalLevel: "\033[35m", // Magenta
}

const colorReset = "\033[0m"

// ParseLogLevel maps a configured level name to a LogLevel, defaulting to
// info for unknown names
func ParseLogLevel(name string) LogLevel {
	switch strings.ToLower(name) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}

// LogEntry represents a single log entry
type LogEntry struct {
	Level     LogLevel               `json:"level"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Channel   string                 `json:"channel,omitempty"`
}

// Logger interface defines the logging contract
type Logger interface {
	Debug(message string, context ...map[string]interface{})
	Info(message string, context ...map[string]interface{})
	Warn(message string, context ...map[string]interface{})
	Error(message string, context ...map[string]interface{})
	Fatal(message string, context ...map[string]interface{})
	Log(level LogLevel, message string, context ...map[string]interface{})
	WithContext(context map[string]interface{}) Logger
}

// Driver interface for different logging backends
type Driver interface {
	Write(entry LogEntry) error
	Close() error
}

// LogManager manages multiple logging channels and drivers
type LogManager struct {
	channels       map[string]*LogChannel
	defaultChannel string
	mutex          sync.RWMutex
}

// LogChannel is a named sink with its own driver and minimum level
type LogChannel struct {
	name    string
	driver  Driver
	level   LogLevel
	context map[string]interface{}
}

// NewLogManager creates a new log manager
func NewLogManager() *LogManager {
	return &LogManager{
		channels:       make(map[string]*LogChannel),
		defaultChannel: "console",
	}
}

// AddChannel adds a new logging channel
func (lm *LogManager) AddChannel(name string, driver Driver, level LogLevel) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	lm.channels[name] = &LogChannel{
		name:    name,
		driver:  driver,
		level:   level,
		context: make(map[string]interface{}),
	}
}

// Channel gets a specific logging channel, falling back to the default
func (lm *LogManager) Channel(name string) Logger {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	if channel, exists := lm.channels[name]; exists {
		return channel
	}
	if channel, exists := lm.channels[lm.defaultChannel]; exists {
		return channel
	}
	return &NullLogger{}
}

// Default returns the default logging channel
func (lm *LogManager) Default() Logger {
	return lm.Channel(lm.defaultChannel)
}

// Broadcast writes one entry to every channel that accepts its level
func (lm *LogManager) Broadcast(level LogLevel, message string, context ...map[string]interface{}) {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	for _, channel := range lm.channels {
		channel.Log(level, message, context...)
	}
}

// Close closes all logging channels
func (lm *LogManager) Close() error {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	var failed []string
	for name, channel := range lm.channels {
		if err := channel.driver.Close(); err != nil {
			failed = append(failed, fmt.Sprintf("channel %s: %v", name, err))
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("errors closing channels: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (c *LogChannel) Debug(message string, context ...map[string]interface{}) {
	c.Log(DebugLevel, message, context...)
}

func (c *LogChannel) Info(message string, context ...map[string]interface{}) {
	c.Log(InfoLevel, message, context...)
}

func (c *LogChannel) Warn(message string, context ...map[string]interface{}) {
	c.Log(WarnLevel, message, context...)
}

func (c *LogChannel) Error(message string, context ...map[string]interface{}) {
	c.Log(ErrorLevel, message, context...)
}

func (c *LogChannel) Fatal(message string, context ...map[string]interface{}) {
	c.Log(FatalLevel, message, context...)
}

func (c *LogChannel) Log(level LogLevel, message string, context ...map[string]interface{}) {
	if level < c.level {
		return
	}

	entry := LogEntry{
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
		Channel:   c.name,
		Context:   c.mergeContext(context...),
	}

	c.driver.Write(entry)
}

func (c *LogChannel) WithContext(context map[string]interface{}) Logger {
	return &LogChannel{
		name:    c.name,
		driver:  c.driver,
		level:   c.level,
		context: c.mergeContext(context),
	}
}

func (c *LogChannel) mergeContext(contexts ...map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{})
	for k, v := range c.context {
		merged[k] = v
	}
	for _, ctx := range contexts {
		for k, v := range ctx {
			merged[k] = v
		}
	}
	return merged
}

// ConsoleDriver outputs to stdout/stderr with optional colors
type ConsoleDriver struct {
	colorize bool
}

// NewConsoleDriver creates a console driver
func NewConsoleDriver(colorize bool) *ConsoleDriver {
	return &ConsoleDriver{colorize: colorize}
}

func (cd *ConsoleDriver) Write(entry LogEntry) error {
	levelName := strings.ToUpper(logLevelNames[entry.Level])

	var output string
	if cd.colorize {
		output = fmt.Sprintf("%s[%s]%s [%s] %s",
			logLevelColors[entry.Level],
			levelName,
			colorReset,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Message,
		)
	} else {
		output = fmt.Sprintf("[%s] [%s] %s",
			levelName,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Message,
		)
	}

	if len(entry.Context) > 0 {
		if contextJSON, err := json.Marshal(entry.Context); err == nil {
			output += fmt.Sprintf(" Context: %s", string(contextJSON))
		}
	}

	output += "\n"

	writer := os.Stdout
	if entry.Level >= ErrorLevel {
		writer = os.Stderr
	}

	_, err := writer.Write([]byte(output))
	return err
}

func (cd *ConsoleDriver) Close() error {
	return nil
}

// FileDriver outputs to size-rotated log files, keeping a bounded number of
// rotated files. Format is "json" (one object per line) or "text".
type FileDriver struct {
	path        string
	file        *os.File
	format      string
	maxSize     int64
	maxFiles    int
	currentSize int64
	mutex       sync.Mutex
}

// NewFileDriver creates a file driver, creating the log directory if needed
func NewFileDriver(path, format string, maxSize int64, maxFiles int) (*FileDriver, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %v", err)
		}
	}

	fd := &FileDriver{
		path:     path,
		format:   format,
		maxSize:  maxSize,
		maxFiles: maxFiles,
	}
	if err := fd.openFile(); err != nil {
		return nil, err
	}
	return fd, nil
}

func (fd *FileDriver) openFile() error {
	file, err := os.OpenFile(fd.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	if stat, err := file.Stat(); err == nil {
		fd.currentSize = stat.Size()
	}

	fd.file = file
	return nil
}

func (fd *FileDriver) Write(entry LogEntry) error {
	fd.mutex.Lock()
	defer fd.mutex.Unlock()

	var line []byte
	if fd.format == "json" {
		data, err := json.Marshal(map[string]interface{}{
			"level":     logLevelNames[entry.Level],
			"message":   entry.Message,
			"timestamp": entry.Timestamp.Format(time.RFC3339),
			"channel":   entry.Channel,
			"context":   entry.Context,
		})
		if err != nil {
			return err
		}
		line = data
	} else {
		text := fmt.Sprintf("[%s] [%s] %s",
			strings.ToUpper(logLevelNames[entry.Level]),
			entry.Timestamp.Format(time.RFC3339),
			entry.Message,
		)
		if len(entry.Context) > 0 {
			if contextJSON, err := json.Marshal(entry.Context); err == nil {
				text += " " + string(contextJSON)
			}
		}
		line = []byte(text)
	}
	line = append(line, '\n')

	if fd.currentSize+int64(len(line)) > fd.maxSize {
		if err := fd.rotate(); err != nil {
			return err
		}
	}

	n, err := fd.file.Write(line)
	if err != nil {
		return err
	}

	fd.currentSize += int64(n)
	return nil
}

func (fd *FileDriver) rotate() error {
	fd.file.Close()

	for i := fd.maxFiles - 1; i > 0; i-- {
		oldPath := fmt.Sprintf("%s.%d", fd.path, i)
		newPath := fmt.Sprintf("%s.%d", fd.path, i+1)

		if i == fd.maxFiles-1 {
			os.Remove(newPath)
		}
		if _, err := os.Stat(oldPath); err == nil {
			os.Rename(oldPath, newPath)
		}
	}

	if _, err := os.Stat(fd.path); err == nil {
		os.Rename(fd.path, fd.path+".1")
	}

	fd.currentSize = 0
	return fd.openFile()
}

func (fd *FileDriver) Close() error {
	fd.mutex.Lock()
	defer fd.mutex.Unlock()

	if fd.file != nil {
		return fd.file.Close()
	}
	return nil
}

// NullLogger discards all log entries
type NullLogger struct{}

func (nl *NullLogger) Debug(message string, context ...map[string]interface{})               {}
func (nl *NullLogger) Info(message string, context ...map[string]interface{})                {}
func (nl *NullLogger) Warn(message string, context ...map[string]interface{})                {}
func (nl *NullLogger) Error(message string, context ...map[string]interface{})               {}
func (nl *NullLogger) Fatal(message string, context ...map[string]interface{})               {}
func (nl *NullLogger) Log(level LogLevel, message string, context ...map[string]interface{}) {}
func (nl *NullLogger) WithContext(context map[string]interface{}) Logger                     { return nl }

var globalLogManager *LogManager

// SetupLogging configures the global log manager from the snapshot's logging
// section: a console channel always, plus a rotated file channel when a file
// path is configured.
func SetupLogging(sink LoggingSinkConfig) error {
	manager := NewLogManager()

	level := ParseLogLevel(sink.Level)
	manager.AddChannel("console", NewConsoleDriver(true), level)

	if sink.FilePath != "" {
		fileDriver, err := NewFileDriver(sink.FilePath, sink.Format, sink.MaxSize, sink.MaxFiles)
		if err != nil {
			return fmt.Errorf("failed to setup file logging: %v", err)
		}
		manager.AddChannel("file", fileDriver, level)
	}

	globalLogManager = manager
	return nil
}

// Log returns the default global logger
func Log() Logger {
	if globalLogManager != nil {
		return globalLogManager.Default()
	}
	return &NullLogger{}
}

func logAll(level LogLevel, message string, context ...map[string]interface{}) {
	if globalLogManager != nil {
		globalLogManager.Broadcast(level, message, context...)
	}
}

func Debug(message string, context ...map[string]interface{}) {
	logAll(DebugLevel, message, context...)
}

func Info(message string, context ...map[string]interface{}) {
	logAll(InfoLevel, message, context...)
}

func Warn(message string, context ...map[string]interface{}) {
	logAll(WarnLevel, message, context...)
}

func Error(message string, context ...map[string]interface{}) {
	logAll(ErrorLevel, message, context...)
}

func Fatal(message string, context ...map[string]interface{}) {
	logAll(FatalLevel, message, context...)
}
