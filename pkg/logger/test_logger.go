package logger

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger is a logger implementation for testing that captures all log messages
type TestLogger struct {
	mu       sync.Mutex
	messages []LogMessage
	buffer   *bytes.Buffer
	zerolog  *zerolog.Logger
}

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Error   string
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	nop := zerolog.Nop()
	return &TestLogger{
		buffer:  &bytes.Buffer{},
		zerolog: &nop,
	}
}

func (l *TestLogger) root() *boundTestLogger {
	return &boundTestLogger{sink: l}
}

func (l *TestLogger) Debug(msg string) { l.root().Debug(msg) }
func (l *TestLogger) Info(msg string)  { l.root().Info(msg) }
func (l *TestLogger) Warn(msg string)  { l.root().Warn(msg) }
func (l *TestLogger) Error(msg string) { l.root().Error(msg) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.root().DebugWithFields(msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.root().InfoWithFields(msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.root().WarnWithFields(msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.root().ErrorWithFields(msg, fields)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.root().WithField(key, value)
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return l.root().WithFields(fields)
}

func (l *TestLogger) WithError(err error) Logger {
	return l.root().WithError(err)
}

func (l *TestLogger) WithContext(ctx context.Context) Logger {
	return l
}

func (l *TestLogger) GetZerolog() *zerolog.Logger {
	return l.zerolog
}

// record captures a log message
func (l *TestLogger) record(msg LogMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, msg)

	fmt.Fprintf(l.buffer, "[%s] %s", msg.Level, msg.Message)
	if len(msg.Fields) > 0 {
		fmt.Fprintf(l.buffer, " fields=%v", msg.Fields)
	}
	if msg.Error != "" {
		fmt.Fprintf(l.buffer, " error=%s", msg.Error)
	}
	fmt.Fprintln(l.buffer)
}

// GetMessages returns all captured log messages
func (l *TestLogger) GetMessages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	messages := make([]LogMessage, len(l.messages))
	copy(messages, l.messages)
	return messages
}

// GetMessagesByLevel returns all messages of a specific level
func (l *TestLogger) GetMessagesByLevel(level string) []LogMessage {
	var filtered []LogMessage
	for _, msg := range l.GetMessages() {
		if msg.Level == level {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

// HasMessage checks if a message with the given text was logged
func (l *TestLogger) HasMessage(text string) bool {
	for _, msg := range l.GetMessages() {
		if msg.Message == text {
			return true
		}
	}
	return false
}

// HasError checks if an error was logged
func (l *TestLogger) HasError() bool {
	return len(l.GetMessagesByLevel("ERROR")) > 0
}

// Clear clears all captured messages
func (l *TestLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = l.messages[:0]
	l.buffer.Reset()
}

// String returns all log messages as a string
func (l *TestLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buffer.String()
}

// boundTestLogger carries fields and an error for a TestLogger
type boundTestLogger struct {
	sink   *TestLogger
	fields map[string]interface{}
	err    string
}

func (b *boundTestLogger) log(level, msg string, extra map[string]interface{}) {
	var fields map[string]interface{}
	if len(b.fields) > 0 || len(extra) > 0 {
		fields = b.merge(extra)
	}
	b.sink.record(LogMessage{Level: level, Message: msg, Fields: fields, Error: b.err})
}

func (b *boundTestLogger) merge(extra map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(b.fields)+len(extra))
	for k, v := range b.fields {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

func (b *boundTestLogger) Debug(msg string) { b.log("DEBUG", msg, nil) }
func (b *boundTestLogger) Info(msg string)  { b.log("INFO", msg, nil) }
func (b *boundTestLogger) Warn(msg string)  { b.log("WARN", msg, nil) }
func (b *boundTestLogger) Error(msg string) { b.log("ERROR", msg, nil) }

func (b *boundTestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	b.log("DEBUG", msg, fields)
}

func (b *boundTestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	b.log("INFO", msg, fields)
}

func (b *boundTestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	b.log("WARN", msg, fields)
}

func (b *boundTestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	b.log("ERROR", msg, fields)
}

func (b *boundTestLogger) WithField(key string, value interface{}) Logger {
	return b.WithFields(map[string]interface{}{key: value})
}

func (b *boundTestLogger) WithFields(fields map[string]interface{}) Logger {
	return &boundTestLogger{sink: b.sink, fields: b.merge(fields), err: b.err}
}

func (b *boundTestLogger) WithError(err error) Logger {
	if err == nil {
		return b
	}
	return &boundTestLogger{sink: b.sink, fields: b.fields, err: err.Error()}
}

func (b *boundTestLogger) WithContext(ctx context.Context) Logger {
	return b
}

func (b *boundTestLogger) GetZerolog() *zerolog.Logger {
	return b.sink.zerolog
}
