package logger

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// HourlySink is an append-only text sink bucketed by UTC date and hour:
// <Dir>/2006-01-02/15.log. Each bucket is a lumberjack file, so an unusually
// busy hour still rotates by size.
type HourlySink struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int

	mu     sync.Mutex
	bucket string
	w      *lumberjack.Logger
	now    func() time.Time
}

func NewHourlySink(dir string, maxSizeMB int) *HourlySink {
	return &HourlySink{Dir: dir, MaxSizeMB: maxSizeMB, now: time.Now}
}

// Path returns the bucket file for t.
func (s *HourlySink) Path(t time.Time) string {
	t = t.UTC()
	return filepath.Join(s.Dir, t.Format("2006-01-02"), t.Format("15")+".log")
}

// Append writes block followed by a blank separator line.
func (s *HourlySink) Append(_ context.Context, block string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	path := s.Path(now())
	if path != s.bucket || s.w == nil {
		if s.w != nil {
			_ = s.w.Close()
		}
		s.w = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    max(1, s.MaxSizeMB),
			MaxBackups: max(0, s.MaxBackups),
		}
		s.bucket = path
	}
	if !strings.HasSuffix(block, "\n") {
		block += "\n"
	}
	_, err := io.WriteString(s.w, block+"\n")
	return err
}

func (s *HourlySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return nil
	}
	err := s.w.Close()
	s.w = nil
	s.bucket = ""
	return err
}
