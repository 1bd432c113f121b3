package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
)

var errOpenUnsupported = errors.New("sqlite3-trace: open through sql.OpenDB(NewTracingConnector(...))")

// NewTracingConnector returns a connector that logs each statement with its
// arguments and duration. A nil logger means slog.Default().
func NewTracingConnector(dsn string, logger *slog.Logger) driver.Connector {
	if logger == nil {
		logger = slog.Default()
	}
	return &tracingConnector{dsn: dsn, logger: logger}
}

type tracingConnector struct {
	dsn    string
	logger *slog.Logger
}

func (c *tracingConnector) Driver() driver.Driver { return tracingDriver{} }

func (c *tracingConnector) Connect(context.Context) (driver.Conn, error) {
	conn, err := (&sqlite3.SQLiteDriver{}).Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return &tracingConn{conn: conn, logger: c.logger}, nil
}

type tracingDriver struct{}

func (tracingDriver) Open(string) (driver.Conn, error) { return nil, errOpenUnsupported }

type tracingConn struct {
	conn   driver.Conn
	logger *slog.Logger
}

func (c *tracingConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *tracingConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var (
		stmt driver.Stmt
		err  error
	)
	if p, ok := c.conn.(driver.ConnPrepareContext); ok {
		stmt, err = p.PrepareContext(ctx, query)
	} else {
		stmt, err = c.conn.Prepare(query)
	}
	if err != nil {
		return nil, err
	}
	return &tracingStmt{stmt: stmt, query: query, logger: c.logger}, nil
}

// ExecContext runs query directly on the connection. sqlite executes every
// statement of a multi-statement body this way; a prepared statement would
// stop after the first.
func (c *tracingConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	e, ok := c.conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	defer logStatement(c.logger, "exec", query, values(args), time.Now())
	return e.ExecContext(ctx, query, args)
}

func (c *tracingConn) Close() error { return c.conn.Close() }

func (c *tracingConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *tracingConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if b, ok := c.conn.(driver.ConnBeginTx); ok {
		return b.BeginTx(ctx, opts)
	}
	//nolint:staticcheck // SA1019: fallback for conns without BeginTx
	return c.conn.Begin()
}

type tracingStmt struct {
	stmt   driver.Stmt
	query  string
	logger *slog.Logger
}

func (s *tracingStmt) Close() error  { return s.stmt.Close() }
func (s *tracingStmt) NumInput() int { return s.stmt.NumInput() }

func (s *tracingStmt) Exec(args []driver.Value) (driver.Result, error) {
	defer s.trace("exec", args, time.Now())
	//nolint:staticcheck // SA1019: required by driver.Stmt
	return s.stmt.Exec(args)
}

func (s *tracingStmt) Query(args []driver.Value) (driver.Rows, error) {
	defer s.trace("query", args, time.Now())
	//nolint:staticcheck // SA1019: required by driver.Stmt
	return s.stmt.Query(args)
}

func (s *tracingStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	e, ok := s.stmt.(driver.StmtExecContext)
	if !ok {
		return s.Exec(values(args))
	}
	defer s.trace("exec", values(args), time.Now())
	return e.ExecContext(ctx, args)
}

func (s *tracingStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	q, ok := s.stmt.(driver.StmtQueryContext)
	if !ok {
		return s.Query(values(args))
	}
	defer s.trace("query", values(args), time.Now())
	return q.QueryContext(ctx, args)
}

func (s *tracingStmt) trace(op string, args []driver.Value, start time.Time) {
	logStatement(s.logger, op, s.query, args, start)
}

func logStatement(logger *slog.Logger, op, query string, args []driver.Value, start time.Time) {
	printable := make([]string, len(args))
	for i, a := range args {
		printable[i] = formatArg(a)
	}
	logger.Debug("sql",
		"op", op,
		"sql", query,
		"args", printable,
		"took", time.Since(start),
	)
}

func values(args []driver.NamedValue) []driver.Value {
	out := make([]driver.Value, len(args))
	for i := range args {
		out[i] = args[i].Value
	}
	return out
}

func formatArg(v driver.Value) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
