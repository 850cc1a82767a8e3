package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobsift/internal/domain/record"
)

// Renderer turns a document into a file body.
type Renderer interface {
	Render(w io.Writer, doc Document) error
	Extension() string
}

// Config holds writer settings.
type Config struct {
	Dir          string
	Prefix       string
	DateField    string
	SiteURL      string
	Descriptions bool
}

// Writer renders records to <dir>/<prefix>_<date>.<ext> and advances the last run.
type Writer struct {
	cfg      Config
	renderer Renderer
	lastRun  *LastRun
	now      func() time.Time
	logger   *zap.Logger
}

// NewWriter creates a report writer.
func NewWriter(cfg Config, renderer Renderer, lastRun *LastRun, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{cfg: cfg, renderer: renderer, lastRun: lastRun, now: time.Now, logger: logger}
}

// Write splits records around the previous run, renders them and returns the
// path written.
func (w *Writer) Write(ctx context.Context, records []*record.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	since, err := w.lastRun.Load()
	if err != nil {
		return "", err
	}
	now := w.now()
	fresh, older := Split(records, since, w.cfg.DateField)

	var buf bytes.Buffer
	doc := Document{
		Generated:    now,
		Since:        since,
		Fresh:        fresh,
		Older:        older,
		SiteURL:      w.cfg.SiteURL,
		Descriptions: w.cfg.Descriptions,
	}
	if err := w.renderer.Render(&buf, doc); err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.cfg.Dir, 0o750); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s.%s", w.cfg.Prefix, now.Format(dateLayout), w.renderer.Extension())
	path := filepath.Join(w.cfg.Dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	if err := w.lastRun.Save(now); err != nil {
		return path, err
	}

	w.logger.Info("Report written",
		zap.String("path", path),
		zap.Int("fresh", len(fresh)),
		zap.Int("older", len(older)),
	)
	return path, nil
}
