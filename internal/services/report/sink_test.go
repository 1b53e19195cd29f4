package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/avolkov/moex-reporter/internal/common"
)

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) SendReport(ctx context.Context, report string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, report)
	return nil
}

func TestPersist_WritesTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(dir, nil, common.NewSilentLogger())
	sink.now = func() time.Time {
		return time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	}

	path, err := sink.Persist("отчет")
	if err != nil {
		t.Fatalf("Persist returned error: %v", err)
	}

	want := filepath.Join(dir, "auto_report_20260829_1030.txt")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report file unreadable: %v", err)
	}
	if string(data) != "отчет" {
		t.Errorf("file contents = %q", data)
	}
}

func TestPersist_CreatesReportsDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	sink := NewSink(dir, nil, common.NewSilentLogger())

	if _, err := sink.Persist("body"); err != nil {
		t.Fatalf("Persist returned error: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("reports directory not created: %v", err)
	}
}

func TestPersist_ReportsPathBlockedByFileFails(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "reports")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o644); err != nil {
		t.Fatal(err)
	}

	sink := NewSink(blocker, nil, common.NewSilentLogger())
	if _, err := sink.Persist("body"); err == nil {
		t.Error("expected error when the reports path is a regular file")
	}
}

func TestNotify_NilNotifierIsNoop(t *testing.T) {
	sink := NewSink(t.TempDir(), nil, common.NewSilentLogger())
	sink.Notify(context.Background(), "body") // must not panic
}

func TestNotify_ForwardsReport(t *testing.T) {
	notifier := &fakeNotifier{}
	sink := NewSink(t.TempDir(), notifier, common.NewSilentLogger())

	sink.Notify(context.Background(), "отчет")

	if len(notifier.sent) != 1 || notifier.sent[0] != "отчет" {
		t.Errorf("sent = %v, want one report", notifier.sent)
	}
}

func TestNotify_FailureIsSwallowed(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("telegram down")}
	sink := NewSink(t.TempDir(), notifier, common.NewSilentLogger())

	// Notification failure must not propagate — the run still succeeds
	sink.Notify(context.Background(), "отчет")
}
