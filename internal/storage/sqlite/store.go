package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"tasksvc/internal/models"
)

// Store wraps access to the SQLite database file.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	echo   bool
}

// Open initializes the SQLite store and ensures the schema exists. The
// schema setup is idempotent, so reopening an existing database keeps its
// data. When echo is set, every statement is logged at debug level before
// it runs.
func Open(dbPath string, logger *slog.Logger, echo bool) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger, echo: echo}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmt := `CREATE TABLE IF NOT EXISTS tasks (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_name TEXT NOT NULL,
            task_description TEXT
        );`

	s.logStmt(stmt)
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func (s *Store) logStmt(query string) {
	if s.echo {
		s.logger.Debug("executing statement", slog.String("stmt", query))
	}
}

// Session is a transactional handle scoped to one logical unit of work.
// Callers must Commit and should defer Rollback so the transaction is
// released on every exit path; Rollback after a successful Commit is a
// no-op.
type Session struct {
	tx    *sql.Tx
	store *Store
	done  bool
}

// Begin opens a new transaction scoped to the caller.
func (s *Store) Begin(ctx context.Context) (*Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Session{tx: tx, store: s}, nil
}

// Commit finishes the transaction, making its writes visible.
func (sess *Session) Commit() error {
	if sess.done {
		return nil
	}
	sess.done = true
	if err := sess.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards the transaction unless it was already committed.
func (sess *Session) Rollback() error {
	if sess.done {
		return nil
	}
	sess.done = true
	if err := sess.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// CreateTask inserts a new task within the session's transaction and
// returns the persisted representation including the generated id.
func (sess *Session) CreateTask(ctx context.Context, in models.TaskCreate) (models.Task, error) {
	if in.TaskName == nil {
		return models.Task{}, fmt.Errorf("task name is required")
	}

	insert := `INSERT INTO tasks(task_name, task_description) VALUES(?, ?)`
	sess.store.logStmt(insert)
	res, err := sess.tx.ExecContext(ctx, insert, *in.TaskName, nullableDescription(in.TaskDescription))
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("task id: %w", err)
	}

	query := `SELECT id, task_name, task_description FROM tasks WHERE id = ?`
	sess.store.logStmt(query)
	var row taskRow
	err = sess.tx.QueryRowContext(ctx, query, id).
		Scan(&row.ID, &row.TaskName, &row.TaskDescription)
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return row.toModel(), nil
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	query := `SELECT id, task_name, task_description FROM tasks WHERE id = ?`
	s.logStmt(query)
	var row taskRow
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&row.ID, &row.TaskName, &row.TaskDescription)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task not found")
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return row.toModel(), nil
}

// CountTasks returns the number of persisted tasks.
func (s *Store) CountTasks(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM tasks`
	s.logStmt(query)
	var count int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}
