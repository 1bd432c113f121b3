package db

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// captureHandler keeps the attributes of every record it sees.
type captureHandler struct {
	mu      sync.Mutex
	records []map[string]slog.Value
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := map[string]slog.Value{"msg": slog.StringValue(r.Message)}
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value
		return true
	})
	h.records = append(h.records, m)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) last(t *testing.T) map[string]slog.Value {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.records) == 0 {
		t.Fatal("no sql records logged")
	}
	return h.records[len(h.records)-1]
}

func TestBuildDSN(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want string
	}{
		{"memory", ":memory:", ":memory:"},
		{"plain path", filepath.Join(dir, "sub", "c.db"), "file:" + filepath.Join(dir, "sub", "c.db") + "?_foreign_keys=on"},
		{"file uri", "file:x.db", "file:x.db?_foreign_keys=on"},
		{"file uri with query", "file:x.db?mode=ro", "file:x.db?mode=ro&_foreign_keys=on"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.path)
			if err != nil {
				t.Fatalf("buildDSN: %v", err)
			}
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("buildDSN(%q) = %q, want prefix %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "climate.db")
	conn, err := Open(path, false, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = Close(conn) }()

	if _, err := conn.Exec(`CREATE TABLE t (id INTEGER)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
}

func TestOpen_TraceLogsStatements(t *testing.T) {
	h := &captureHandler{}
	conn, err := Open(":memory:", true, slog.New(h))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = Close(conn) }()

	if _, err := conn.Exec(`CREATE TABLE t (id INTEGER, name TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := conn.Exec(`INSERT INTO t (id, name) VALUES (?, ?)`, 1, "alice"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got := h.last(t)
	if got["op"].String() != "exec" {
		t.Errorf("op = %q, want exec", got["op"].String())
	}
	if got["sql"].String() != `INSERT INTO t (id, name) VALUES (?, ?)` {
		t.Errorf("sql = %q", got["sql"].String())
	}
	if args := got["args"].Any().([]string); len(args) != 2 || args[1] != "alice" {
		t.Errorf("args = %v, want [1 alice]", args)
	}

	var name string
	if err := conn.QueryRow(`SELECT name FROM t WHERE id = ?`, 1).Scan(&name); err != nil {
		t.Fatalf("query: %v", err)
	}
	if got := h.last(t); got["op"].String() != "query" {
		t.Errorf("op = %q, want query", got["op"].String())
	}
}

func TestOpen_TraceExecRunsEveryStatement(t *testing.T) {
	h := &captureHandler{}
	conn, err := Open(":memory:", true, slog.New(h))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = Close(conn) }()

	body := `CREATE TABLE a (id INTEGER);
CREATE TABLE b (id INTEGER);`
	if _, err := conn.Exec(body); err != nil {
		t.Fatalf("exec: %v", err)
	}

	var n int
	if err := conn.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name IN ('a', 'b')`).Scan(&n); err != nil {
		t.Fatalf("count tables: %v", err)
	}
	if n != 2 {
		t.Errorf("created %d tables, want 2", n)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	var logged bool
	for _, r := range h.records {
		if r["sql"].String() == body && r["op"].String() == "exec" {
			logged = true
		}
	}
	if !logged {
		t.Error("multi-statement exec was not logged")
	}
}

func TestClose_Nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Errorf("Close(nil) = %v", err)
	}
}

func TestTracingDriver_OpenUnsupported(t *testing.T) {
	if _, err := NewTracingConnector(":memory:", nil).Driver().Open(":memory:"); err == nil {
		t.Error("Driver().Open returned nil error")
	}
}
