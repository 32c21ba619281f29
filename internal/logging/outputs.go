package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ConsoleOutput formats logs for human readability.
type ConsoleOutput struct {
	mu     sync.Mutex
	writer io.Writer
	color  bool
}

type ConsoleOutputOption func(*ConsoleOutput)

func WithColor(enabled bool) ConsoleOutputOption {
	return func(c *ConsoleOutput) {
		c.color = enabled
	}
}

func NewConsoleOutput(useStderr bool, opts ...ConsoleOutputOption) *ConsoleOutput {
	writer := os.Stdout
	if useStderr {
		writer = os.Stderr
	}

	c := &ConsoleOutput{writer: writer, color: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func getSeverityColor(s Severity) string {
	switch s {
	case DEBUG:
		return "\033[37m"
	case INFO:
		return "\033[32m"
	case WARN:
		return "\033[33m"
	case ERROR:
		return "\033[31m"
	case FATAL:
		return "\033[35m"
	default:
		return ""
	}
}

func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	var result string
	for k, v := range fields {
		result += fmt.Sprintf("%s=%v ", k, v)
	}
	return result
}

func (o *ConsoleOutput) Write(e LogEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	timestamp := time.Unix(0, e.Time).Format("2006-01-02 15:04:05.000")

	var levelColor, resetColor string
	if o.color {
		levelColor = getSeverityColor(e.Severity)
		resetColor = "\033[0m"
	}

	basic := fmt.Sprintf("%s %s%-5s%s [%s:%d] %s",
		timestamp, levelColor, e.Severity, resetColor, e.File, e.Line, e.Message)

	if e.RunID != "" {
		basic += fmt.Sprintf(" [run=%s]", e.RunID)
	}
	if e.Generation > 0 {
		basic += fmt.Sprintf(" [gen=%d]", e.Generation)
	}
	if len(e.Fields) > 0 {
		basic += " " + formatFields(e.Fields)
	}

	_, err := fmt.Fprintln(o.writer, basic)
	return err
}

func (o *ConsoleOutput) Sync() error {
	if syncer, ok := o.writer.(interface{ Sync() error }); ok {
		return syncer.Sync()
	}
	return nil
}

func (o *ConsoleOutput) Close() error {
	if closer, ok := o.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// JSONFileOutput writes one JSON object per line, for machine-readable logs.
type JSONFileOutput struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

func NewJSONFileOutput(path string) (*JSONFileOutput, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONFileOutput{file: f, enc: json.NewEncoder(f)}, nil
}

type jsonLogRecord struct {
	Time       string                 `json:"time"`
	Severity   string                 `json:"severity"`
	Message    string                 `json:"message"`
	File       string                 `json:"file"`
	Line       int                    `json:"line"`
	RunID      string                 `json:"run_id,omitempty"`
	Generation int                    `json:"generation,omitempty"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

func (o *JSONFileOutput) Write(e LogEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.enc.Encode(jsonLogRecord{
		Time:       time.Unix(0, e.Time).UTC().Format(time.RFC3339Nano),
		Severity:   e.Severity.String(),
		Message:    e.Message,
		File:       e.File,
		Line:       e.Line,
		RunID:      e.RunID,
		Generation: e.Generation,
		Fields:     e.Fields,
	})
}

func (o *JSONFileOutput) Sync() error {
	return o.file.Sync()
}

func (o *JSONFileOutput) Close() error {
	return o.file.Close()
}
