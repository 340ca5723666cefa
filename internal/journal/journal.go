// Package journal 把每次处置的 Outcome 记录到 SQLite，供 history 子命令查询。
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/John-Robertt/mediacopy/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS dispositions (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id        TEXT NOT NULL,
	source            TEXT NOT NULL,
	delete_after_copy INTEGER NOT NULL,
	source_status     TEXT NOT NULL,
	source_error      TEXT NOT NULL DEFAULT '',
	copied            INTEGER NOT NULL,
	failed            INTEGER NOT NULL,
	dests_json        TEXT NOT NULL,
	started_at        TEXT NOT NULL,
	finished_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dispositions_session ON dispositions(session_id);
`

// Store 是 journal 的 SQLite 存储。
type Store struct {
	db   *sql.DB
	path string
}

// Entry 是一条历史记录。
type Entry struct {
	ID      int64
	Outcome domain.Outcome
}

// Open 打开（必要时创建）journal 数据库。
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("创建 journal 目录失败：%w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开 sqlite 失败：%w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("执行 %q 失败：%w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("初始化 schema 失败：%w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path 返回数据库文件路径。
func (s *Store) Path() string { return s.path }

// Close 关闭数据库连接。
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record 写入一条 Outcome。
func (s *Store) Record(out domain.Outcome) error {
	return s.RecordContext(context.Background(), out)
}

// RecordContext 与 Record 相同，但允许传入 ctx。
func (s *Store) RecordContext(ctx context.Context, out domain.Outcome) error {
	dests := out.Dests
	if dests == nil {
		dests = []domain.DestResult{}
	}
	b, err := json.Marshal(dests)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO dispositions
	(session_id, source, delete_after_copy, source_status, source_error, copied, failed, dests_json, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		out.SessionID,
		out.Source,
		boolToInt(out.DeleteAfterCopy),
		out.SourceStatus,
		out.SourceErrorMsg,
		out.Summary.Copied,
		out.Summary.Failed,
		string(b),
		out.StartedAt.UTC().Format(time.RFC3339Nano),
		out.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("写入 journal 失败：%w", err)
	}
	return nil
}

// Recent 按时间倒序返回最近 limit 条记录；limit<=0 表示不限制。
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	q := `
SELECT id, session_id, source, delete_after_copy, source_status, source_error, copied, failed, dests_json, started_at, finished_at
FROM dispositions ORDER BY id DESC`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("查询 journal 失败：%w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                 Entry
			del               int
			destsJSON         string
			started, finished string
		)
		o := &e.Outcome
		if err := rows.Scan(&e.ID, &o.SessionID, &o.Source, &del, &o.SourceStatus, &o.SourceErrorMsg,
			&o.Summary.Copied, &o.Summary.Failed, &destsJSON, &started, &finished); err != nil {
			return nil, fmt.Errorf("读取 journal 失败：%w", err)
		}
		o.DeleteAfterCopy = del != 0
		if err := json.Unmarshal([]byte(destsJSON), &o.Dests); err != nil {
			return nil, fmt.Errorf("解析 dests_json 失败（id=%d）：%w", e.ID, err)
		}
		o.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		o.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
