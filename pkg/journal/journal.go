package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RefreshRecord captures one refresh attempt end to end for audit and
// later analysis of crawler reliability.
type RefreshRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	Sequence       int       `json:"sequence"`
	ItemID         int64     `json:"item_id"`
	ItemName       string    `json:"item_name"`
	CrawlerSuccess bool      `json:"crawler_success"`
	Forced         bool      `json:"forced"`
	DataUpdated    bool      `json:"data_updated"`
	PriceChanged   bool      `json:"price_changed"`
	PriceBefore    string    `json:"price_before,omitempty"`
	PriceAfter     string    `json:"price_after,omitempty"`
	Message        string    `json:"message,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}

// Writer persists refresh records to a directory as JSON files.
type Writer struct {
	dir   string
	mu    sync.Mutex
	seq   int
	nowFn func() time.Time
}

// NewWriter constructs a journal writer.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "journal"
	}
	_ = os.MkdirAll(dir, 0o755)
	return &Writer{dir: dir, nowFn: time.Now}
}

// WriteRefresh writes a refresh record to a timestamped JSON file and
// returns the path it landed at.
func (w *Writer) WriteRefresh(rec *RefreshRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("journal: nil record")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.nowFn()
	}

	w.mu.Lock()
	w.seq++
	rec.Sequence = w.seq
	w.mu.Unlock()

	name := fmt.Sprintf("refresh_%s_%05d.json", rec.Timestamp.UTC().Format("20060102_150405"), rec.Sequence)
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
