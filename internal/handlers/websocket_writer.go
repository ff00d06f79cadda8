package handlers

import (
	"strings"

	plog "github.com/phuslu/log"
	"github.com/ternarybob/arbor/levels"
	"github.com/ternarybob/arbor/models"
	"github.com/ternarybob/arbor/writers"

	"github.com/ternarybob/lectio/internal/common"
)

// logQueueSize bounds the buffered channel between the logger and the
// websocket broadcaster.
const logQueueSize = 1000

// defaultExcludePatterns filters out the chatter the streaming itself
// generates; without it every broadcast would log and re-broadcast.
var defaultExcludePatterns = []string{
	"WebSocket client connected",
	"WebSocket client disconnected",
	"HTTP request",
	"HTTP response",
	"Publishing event",
}

// WebSocketWriter is an arbor writer that forwards log entries to the
// websocket handler for live streaming.
type WebSocketWriter struct {
	handler         *WebSocketHandler
	writer          writers.IChannelWriter
	minLevel        levels.LogLevel
	excludePatterns []string
}

// NewWebSocketWriter creates the writer from the websocket config section.
func NewWebSocketWriter(handler *WebSocketHandler, config models.WriterConfiguration, wsConfig *common.WebSocketConfig) (*WebSocketWriter, error) {
	w := &WebSocketWriter{
		handler:         handler,
		minLevel:        levels.InfoLevel,
		excludePatterns: defaultExcludePatterns,
	}
	if wsConfig != nil {
		w.minLevel = parseLogLevel(wsConfig.MinLevel)
		if len(wsConfig.ExcludePatterns) > 0 {
			w.excludePatterns = wsConfig.ExcludePatterns
		}
	}

	cw, err := writers.NewChannelWriter(config, logQueueSize, w.process)
	if err != nil {
		return nil, err
	}
	cw.Start()
	w.writer = cw
	return w, nil
}

// Stream submits one log entry for broadcast, applying the level and
// pattern filters.
func (w *WebSocketWriter) Stream(entry models.LogEvent) error {
	return w.process(entry)
}

// process filters one log entry and broadcasts it when it passes.
func (w *WebSocketWriter) process(entry models.LogEvent) error {
	level := plogToArborLevel(entry.Level)
	if level < w.minLevel {
		return nil
	}
	for _, pattern := range w.excludePatterns {
		if strings.Contains(entry.Message, pattern) {
			return nil
		}
	}

	w.handler.BroadcastLog(LogEntry{
		Timestamp: entry.Timestamp.Format("15:04:05"),
		Level:     levelString(level),
		Message:   entry.Message,
	})
	return nil
}

func plogToArborLevel(level plog.Level) levels.LogLevel {
	switch level {
	case plog.ErrorLevel:
		return levels.ErrorLevel
	case plog.WarnLevel:
		return levels.WarnLevel
	case plog.DebugLevel:
		return levels.DebugLevel
	default:
		return levels.InfoLevel
	}
}

func parseLogLevel(level string) levels.LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return levels.ErrorLevel
	case "warn", "warning":
		return levels.WarnLevel
	case "debug":
		return levels.DebugLevel
	default:
		return levels.InfoLevel
	}
}

func levelString(level levels.LogLevel) string {
	switch level {
	case levels.ErrorLevel:
		return "error"
	case levels.WarnLevel:
		return "warn"
	case levels.DebugLevel:
		return "debug"
	default:
		return "info"
	}
}

// Write implements the arbor IWriter interface.
func (w *WebSocketWriter) Write(data []byte) (int, error) {
	return w.writer.Write(data)
}

// WithLevel updates the minimum broadcast level and returns self.
func (w *WebSocketWriter) WithLevel(level plog.Level) writers.IWriter {
	w.minLevel = plogToArborLevel(level)
	return w
}

// GetFilePath returns empty; this writer is not file-based.
func (w *WebSocketWriter) GetFilePath() string {
	return ""
}

// Close drains the queue and stops the channel writer.
func (w *WebSocketWriter) Close() error {
	return w.writer.Close()
}
