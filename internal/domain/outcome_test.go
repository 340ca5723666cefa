package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestOutcome_Finalize_SummaryAndUTC(t *testing.T) {
	o := Outcome{
		Source:       "/src/a.jpg",
		SourceStatus: SourceStatusKept,
		StartedAt:    time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt:   time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Dests: []DestResult{
			{Dest: "/d1", Status: DestStatusCopied},
			{Dest: "/d2", Status: DestStatusFailed, ErrorCode: ErrCodeFileAccess},
			{Dest: "/d3", Status: DestStatusCopied},
		},
	}

	o.Finalize()

	if o.Summary.Copied != 2 || o.Summary.Failed != 1 {
		t.Fatalf("summary 统计不正确：%+v", o.Summary)
	}
	if o.OK() {
		t.Fatalf("存在失败的目标时 OK() 不应为 true")
	}
	// dests 必须保持计划顺序。
	if o.Dests[0].Dest != "/d1" || o.Dests[1].Dest != "/d2" || o.Dests[2].Dest != "/d3" {
		t.Fatalf("dests 顺序被改变：%+v", o.Dests)
	}

	b, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !bytes.Contains(b, []byte("\"started_at\":\"2026-02-09T02:00:00Z\"")) {
		t.Fatalf("started_at 不是 UTC RFC3339：%s", string(b))
	}
}

func TestOutcome_MarshalJSON_NilDests(t *testing.T) {
	b, err := json.Marshal(Outcome{SourceStatus: SourceStatusTrashed})
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !bytes.Contains(b, []byte("\"dests\":[]")) {
		t.Fatalf("nil dests 应输出为 []：%s", string(b))
	}
}

func TestOutcome_OK_TrashFailed(t *testing.T) {
	o := Outcome{SourceStatus: SourceStatusTrashFailed}
	o.Finalize()
	if o.OK() {
		t.Fatalf("回收失败时 OK() 不应为 true")
	}
}
