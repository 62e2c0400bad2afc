package gcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/logging"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/andywolf/ghcomment/internal/security"
)

// Severity levels for structured logs
type Severity string

const (
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// LogEntry is a structured log entry in the Cloud Logging JSON format
type LogEntry struct {
	Severity  Severity               `json:"severity"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	SessionID string                 `json:"session_id"`
	Labels    map[string]string      `json:"labels,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// entryLogger is the part of *logging.Logger used for remote delivery.
type entryLogger interface {
	Log(e logging.Entry)
	Flush() error
}

// CloudLogger writes sanitized structured log entries either as JSON lines
// to a writer or to Cloud Logging.
type CloudLogger struct {
	writer    io.Writer
	remote    entryLogger
	client    io.Closer
	sessionID string
	labels    map[string]string
	sanitizer *security.LogSanitizer

	mu     sync.Mutex
	closed bool
}

// CloudLoggerOption allows configuring the CloudLogger
type CloudLoggerOption func(*CloudLogger)

// WithWriter sets the writer for JSON output
func WithWriter(w io.Writer) CloudLoggerOption {
	return func(cl *CloudLogger) {
		cl.writer = w
	}
}

// WithLabels adds custom labels to all log entries
func WithLabels(labels map[string]string) CloudLoggerOption {
	return func(cl *CloudLogger) {
		for k, v := range labels {
			cl.labels[k] = v
		}
	}
}

// WithSessionID overrides the generated session ID
func WithSessionID(id string) CloudLoggerOption {
	return func(cl *CloudLogger) {
		cl.sessionID = id
		cl.labels["session_id"] = id
	}
}

// WithSanitizer replaces the default sanitizer, e.g. to add known secrets
func WithSanitizer(s *security.LogSanitizer) CloudLoggerOption {
	return func(cl *CloudLogger) {
		cl.sanitizer = s
	}
}

// withEntryLogger routes entries to a remote logger instead of the writer
func withEntryLogger(l entryLogger) CloudLoggerOption {
	return func(cl *CloudLogger) {
		cl.remote = l
	}
}

// NewCloudLogger creates a logger that writes JSON lines to stderr unless
// another writer is given. Each logger gets a fresh session ID.
func NewCloudLogger(opts ...CloudLoggerOption) *CloudLogger {
	sessionID := uuid.NewString()
	cl := &CloudLogger{
		writer:    os.Stderr,
		sessionID: sessionID,
		labels: map[string]string{
			"session_id": sessionID,
			"component":  "ghcomment",
		},
		sanitizer: security.NewLogSanitizer(),
	}

	for _, opt := range opts {
		opt(cl)
	}

	return cl
}

// RemoteConfig selects the Cloud Logging destination
type RemoteConfig struct {
	ProjectID string
	LogID     string
}

// NewRemoteLogger creates a CloudLogger that sends entries to Cloud Logging.
func NewRemoteLogger(ctx context.Context, cfg RemoteConfig, loggerOpts []CloudLoggerOption, opts ...option.ClientOption) (*CloudLogger, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("project ID is required for cloud logging")
	}
	if cfg.LogID == "" {
		return nil, fmt.Errorf("log ID is required for cloud logging")
	}

	client, err := logging.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create logging client: %w", err)
	}

	cl := NewCloudLogger(loggerOpts...)
	cl.remote = client.Logger(cfg.LogID, logging.CommonLabels(cl.labels))
	cl.client = client
	return cl, nil
}

// SessionID returns the session ID attached to every entry
func (cl *CloudLogger) SessionID() string {
	return cl.sessionID
}

// Log writes a structured log entry
func (cl *CloudLogger) Log(severity Severity, message string, fields map[string]interface{}) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.closed {
		return
	}

	entry := LogEntry{
		Severity:  severity,
		Message:   cl.sanitizer.Sanitize(message),
		Timestamp: time.Now().UTC(),
		SessionID: cl.sessionID,
		Labels:    cl.labels,
		Fields:    cl.sanitizeFields(fields),
	}

	if cl.remote != nil {
		cl.remote.Log(toLoggingEntry(entry))
		return
	}

	if cl.writer == nil {
		return
	}
	fmt.Fprintln(cl.writer, FormatEntry(entry))
}

func (cl *CloudLogger) sanitizeFields(fields map[string]interface{}) map[string]interface{} {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if s, ok := v.(string); ok {
			out[k] = cl.sanitizer.Sanitize(s)
			continue
		}
		out[k] = v
	}
	return out
}

func toLoggingEntry(e LogEntry) logging.Entry {
	payload := map[string]interface{}{
		"message":    e.Message,
		"session_id": e.SessionID,
	}
	for k, v := range e.Fields {
		payload[k] = v
	}
	return logging.Entry{
		Timestamp: e.Timestamp,
		Severity:  logging.ParseSeverity(string(e.Severity)),
		Payload:   payload,
	}
}

// Debug logs msg at DEBUG severity
func (cl *CloudLogger) Debug(msg string) {
	cl.Log(SeverityDebug, msg, nil)
}

// Info logs msg at INFO severity
func (cl *CloudLogger) Info(msg string) {
	cl.Log(SeverityInfo, msg, nil)
}

// Infof logs a formatted message at INFO severity
func (cl *CloudLogger) Infof(format string, args ...interface{}) {
	cl.Log(SeverityInfo, fmt.Sprintf(format, args...), nil)
}

// Warning logs msg at WARNING severity
func (cl *CloudLogger) Warning(msg string) {
	cl.Log(SeverityWarning, msg, nil)
}

// Warningf logs a formatted message at WARNING severity
func (cl *CloudLogger) Warningf(format string, args ...interface{}) {
	cl.Log(SeverityWarning, fmt.Sprintf(format, args...), nil)
}

// Error logs msg at ERROR severity
func (cl *CloudLogger) Error(msg string) {
	cl.Log(SeverityError, msg, nil)
}

// Errorf logs a formatted message at ERROR severity
func (cl *CloudLogger) Errorf(format string, args ...interface{}) {
	cl.Log(SeverityError, fmt.Sprintf(format, args...), nil)
}

var prefixPattern = regexp.MustCompile(`^\[[^\]]+\]\s*`)

// Write implements io.Writer so a *log.Logger can feed the CloudLogger.
// A leading "[component] " prefix is stripped and "Warning: " or "Error: "
// select the severity.
func (cl *CloudLogger) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	msg = prefixPattern.ReplaceAllString(msg, "")
	severity, msg := DetectSeverity(msg)
	cl.Log(severity, msg, nil)
	return len(p), nil
}

// DetectSeverity maps the "Warning: " and "Error: " prefixes written by the
// local loggers to a severity and returns the message without the prefix.
func DetectSeverity(msg string) (Severity, string) {
	switch {
	case strings.HasPrefix(msg, "Error: "):
		return SeverityError, strings.TrimPrefix(msg, "Error: ")
	case strings.HasPrefix(msg, "Warning: "):
		return SeverityWarning, strings.TrimPrefix(msg, "Warning: ")
	default:
		return SeverityInfo, msg
	}
}

// Flush ensures all buffered logs are delivered
func (cl *CloudLogger) Flush() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.closed {
		return nil
	}
	if cl.remote != nil {
		return cl.remote.Flush()
	}
	if syncer, ok := cl.writer.(interface{ Sync() error }); ok {
		return syncer.Sync()
	}
	return nil
}

// Close flushes remaining logs and releases the Cloud Logging client
func (cl *CloudLogger) Close() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.closed {
		return nil
	}
	cl.closed = true

	var err error
	if cl.remote != nil {
		err = cl.remote.Flush()
	}
	if cl.client != nil {
		if cerr := cl.client.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// FormatEntry formats a LogEntry as a JSON line
func FormatEntry(entry LogEntry) string {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"severity":"ERROR","message":"failed to marshal log entry: %v"}`, err)
	}
	return string(data)
}
