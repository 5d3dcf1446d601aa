// Package journal appends every classified observation to a JSONL file per
// run day so a run can be audited after the fact.
package journal

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"stock-sentiment-roi/internal/types"
)

// Entry is one journal line.
type Entry struct {
	Time      string      `json:"time"`
	RunID     string      `json:"run_id,omitempty"`
	Ticker    string      `json:"ticker"`
	Date      types.Date  `json:"date"`
	Sentiment types.Label `json:"sentiment"`
	Headline  string      `json:"headline,omitempty"`
	Raw       string      `json:"raw,omitempty"`
}

type Journal struct {
	dir   string
	runID string
	now   func() time.Time
	mu    sync.Mutex
}

// New returns a journal writing under dir. An empty dir falls back to
// SENTIMENT_JOURNAL_DIR, then "logs".
func New(dir, runID string) *Journal {
	if dir == "" {
		dir = os.Getenv("SENTIMENT_JOURNAL_DIR")
	}
	if dir == "" {
		dir = "logs"
	}
	return &Journal{dir: dir, runID: runID, now: time.Now}
}

// Dir returns the directory the journal writes to.
func (j *Journal) Dir() string { return j.dir }

func (j *Journal) dailyPath(t time.Time) string {
	return filepath.Join(j.dir, "observations", t.Format(types.DateLayout)+".jsonl")
}

// Append writes o as one line. It is safe for concurrent use.
func (j *Journal) Append(o types.Observation) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	e := Entry{
		Time:      now.Format(time.RFC3339),
		RunID:     j.runID,
		Ticker:    o.Ticker,
		Date:      o.Date,
		Sentiment: o.Sentiment,
		Headline:  o.Headline,
		Raw:       o.Raw,
	}

	p := j.dailyPath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips journal files last modified more than retentionDays ago
// and removes the originals. It returns the number of files compressed.
func (j *Journal) CompressOlder(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	cutoff := j.now().AddDate(0, 0, -retentionDays)
	compressed := 0
	err := filepath.WalkDir(j.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(p, ".jsonl") {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, err := os.Stat(gz); err == nil {
			_ = os.Remove(p)
			return nil
		}
		if err := gzipFile(p, gz); err != nil {
			return nil
		}
		_ = os.Remove(p)
		compressed++
		return nil
	})
	if os.IsNotExist(err) {
		return 0, nil
	}
	return compressed, err
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
