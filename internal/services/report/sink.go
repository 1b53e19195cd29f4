package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avolkov/moex-reporter/internal/common"
	"github.com/avolkov/moex-reporter/internal/interfaces"
)

// Sink persists reports to timestamped files and forwards them to a
// notifier. Persistence failure is fatal for a run; notification failure
// is logged and swallowed.
type Sink struct {
	dir      string
	notifier interfaces.Notifier // nil when notification is not configured
	logger   *common.Logger
	now      func() time.Time
}

// NewSink creates a report sink. notifier may be nil to disable forwarding.
func NewSink(dir string, notifier interfaces.Notifier, logger *common.Logger) *Sink {
	return &Sink{
		dir:      dir,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Persist writes the report body to reports/auto_report_<YYYYMMDD_HHMM>.txt
// and returns the written path. Any failure here fails the run.
func (s *Sink) Persist(body string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory %s: %w", s.dir, err)
	}

	filename := fmt.Sprintf("auto_report_%s.txt", s.now().Format("20060102_1504"))
	path := filepath.Join(s.dir, filename)

	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}

	s.logger.Info().Str("path", path).Int("bytes", len(body)).Msg("Report saved")
	return path, nil
}

// Notify forwards the report to the configured notifier, best-effort.
func (s *Sink) Notify(ctx context.Context, body string) {
	if s.notifier == nil {
		s.logger.Info().Msg("Notification disabled: telegram credentials not set")
		return
	}

	if err := s.notifier.SendReport(ctx, body); err != nil {
		s.logger.Warn().Err(err).Msg("Report notification failed")
		return
	}

	s.logger.Info().Msg("Report sent to Telegram")
}
