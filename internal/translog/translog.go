// Package translog appends per-request transcript records to daily JSONL
// files. Writes are best-effort: a failed write is logged and dropped, it
// never affects request handling.
package translog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tmarkell/quotebot/internal/logging"
)

// Record is one completed request/reply exchange.
type Record struct {
	Timestamp        time.Time `json:"timestamp"`
	RequestID        string    `json:"requestId"`
	ConversationID   string    `json:"conversationId"`
	UserMessage      string    `json:"userMessage"`
	AIResponse       string    `json:"aiResponse"`
	ProcessingTimeMs int64     `json:"processingTimeMs"`
}

// Writer appends records to <dir>/transcripts-YYYY-MM-DD.jsonl, rolling to a
// new file as the date changes. A disabled writer discards everything.
type Writer struct {
	dir     string
	enabled bool
	log     *logging.Logger

	mu   sync.Mutex
	day  string
	file *os.File
}

// New creates a transcript writer. When enabled, the directory is created on
// first write.
func New(dir string, enabled bool, log *logging.Logger) *Writer {
	return &Writer{
		dir:     dir,
		enabled: enabled,
		log:     log.Sub("translog"),
	}
}

// Append writes one record. Errors are swallowed after logging.
func (w *Writer) Append(rec Record) {
	if !w.enabled {
		return
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	line, err := json.Marshal(rec)
	if err != nil {
		w.log.Warn().Err(err).Msg("dropping transcript record")
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.fileFor(rec.Timestamp)
	if err != nil {
		w.log.Warn().Err(err).Msg("dropping transcript record")
		return
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		w.log.Warn().Err(err).Msg("transcript write failed")
	}
}

// Close releases the current file handle.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	w.day = ""
	return err
}

// fileFor returns the open handle for the record's date, rolling files at
// midnight. Caller holds w.mu.
func (w *Writer) fileFor(ts time.Time) (*os.File, error) {
	day := ts.Format("2006-01-02")
	if w.file != nil && w.day == day {
		return w.file, nil
	}
	if w.file != nil {
		w.file.Close()
		w.file = nil
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating transcript dir: %w", err)
	}
	path := filepath.Join(w.dir, fmt.Sprintf("transcripts-%s.jsonl", day))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening transcript file: %w", err)
	}
	w.file = f
	w.day = day
	return f, nil
}
