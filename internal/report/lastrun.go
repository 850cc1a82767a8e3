package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LastRun persists the date of the previous report in a text file.
type LastRun struct {
	path string
}

// NewLastRun creates a file-backed last-run store at path.
func NewLastRun(path string) *LastRun { return &LastRun{path: path} }

// Load returns the saved date, or the zero time when nothing was saved yet.
func (l *LastRun) Load() (time.Time, error) {
	data, err := os.ReadFile(filepath.Clean(l.path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("read last run: %w", err)
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last run %q: %w", strings.TrimSpace(string(data)), err)
	}
	return t, nil
}

// Save records t as the last run date.
func (l *LastRun) Save(t time.Time) error {
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create last run dir: %w", err)
		}
	}
	if err := os.WriteFile(l.path, []byte(t.Format(dateLayout)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write last run: %w", err)
	}
	return nil
}
