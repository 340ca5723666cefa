package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/John-Robertt/mediacopy/internal/domain"
)

func outcome(src string, failed bool) domain.Outcome {
	o := domain.Outcome{
		SessionID:       "s1",
		Source:          src,
		DeleteAfterCopy: true,
		SourceStatus:    domain.SourceStatusTrashed,
		StartedAt:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		FinishedAt:      time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC),
		Dests: []domain.DestResult{
			{Dest: "/D1", Target: "/D1/" + filepath.Base(src), Status: domain.DestStatusCopied},
		},
	}
	if failed {
		o.Dests = append(o.Dests, domain.DestResult{Dest: "/D2", Status: domain.DestStatusFailed, ErrorCode: domain.ErrCodeFileAccess})
	}
	o.Finalize()
	return o
}

func TestRecordAndRecent(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "state", "journal.db"))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	defer s.Close()

	if err := s.Record(outcome("/src/a.jpg", false)); err != nil {
		t.Fatalf("Record 失败：%v", err)
	}
	if err := s.Record(outcome("/src/b.png", true)); err != nil {
		t.Fatalf("Record 失败：%v", err)
	}

	got, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent 失败：%v", err)
	}
	if len(got) != 2 {
		t.Fatalf("期望 2 条，实际 %d", len(got))
	}
	latest := got[0].Outcome
	if latest.Source != "/src/b.png" || latest.Summary.Failed != 1 || len(latest.Dests) != 2 {
		t.Fatalf("最新记录不符合预期：%+v", latest)
	}
	if !latest.DeleteAfterCopy || latest.SourceStatus != domain.SourceStatusTrashed {
		t.Fatalf("源文件状态不符合预期：%+v", latest)
	}
	if !latest.StartedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Fatalf("时间不符合预期：%v", latest.StartedAt)
	}

	one, err := s.Recent(context.Background(), 1)
	if err != nil || len(one) != 1 {
		t.Fatalf("limit=1 应返回 1 条：%d %v", len(one), err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	p := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(p)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := s.Record(outcome("/src/a.jpg", false)); err != nil {
		t.Fatalf("Record 失败：%v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close 失败：%v", err)
	}

	s2, err := Open(p)
	if err != nil {
		t.Fatalf("重新打开失败：%v", err)
	}
	defer s2.Close()
	got, err := s2.Recent(context.Background(), 0)
	if err != nil || len(got) != 1 {
		t.Fatalf("重新打开后应保留记录：%d %v", len(got), err)
	}
}
