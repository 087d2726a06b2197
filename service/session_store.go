package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/aiwolfdial/storyteller-server/model"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var (
	ErrRoomNotFound = errors.New("部屋が見つかりません")
	ErrRoomExists   = errors.New("部屋が既に存在します")
)

const schema = `
CREATE TABLE IF NOT EXISTS game_rooms (
	room_code  TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS game_secrets (
	room_code  TEXT PRIMARY KEY REFERENCES game_rooms(room_code) ON DELETE CASCADE,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

// SessionStore は公開状態と秘密状態を別のテーブルに JSON 文書として保存する
type SessionStore struct {
	db *sql.DB
}

func OpenSessionStore(path string) (*SessionStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	slog.Info("セッションストアを開きました", "path", path)
	return &SessionStore{db: db}, nil
}

func (s *SessionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SessionStore) CreateRoom(ctx context.Context, code string, public *model.Session, secret *model.SecretState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	publicData, err := json.Marshal(public)
	if err != nil {
		return fmt.Errorf("marshal public state: %w", err)
	}
	secretData, err := json.Marshal(secret)
	if err != nil {
		return fmt.Errorf("marshal secret state: %w", err)
	}
	now := time.Now().UTC().UnixMilli()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO game_rooms (room_code, data, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		code, string(publicData), now, now,
	); err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("create room %s: %w", code, ErrRoomExists)
		}
		return fmt.Errorf("insert room: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO game_secrets (room_code, data, updated_at) VALUES (?, ?, ?)`,
		code, string(secretData), now,
	); err != nil {
		return fmt.Errorf("insert secret: %w", err)
	}
	return tx.Commit()
}

func (s *SessionStore) SavePublic(ctx context.Context, code string, public *model.Session) error {
	data, err := json.Marshal(public)
	if err != nil {
		return fmt.Errorf("marshal public state: %w", err)
	}
	return s.update(ctx, `UPDATE game_rooms SET data = ?, updated_at = ? WHERE room_code = ?`, code, data)
}

func (s *SessionStore) SaveSecret(ctx context.Context, code string, secret *model.SecretState) error {
	data, err := json.Marshal(secret)
	if err != nil {
		return fmt.Errorf("marshal secret state: %w", err)
	}
	return s.update(ctx, `UPDATE game_secrets SET data = ?, updated_at = ? WHERE room_code = ?`, code, data)
}

func (s *SessionStore) update(ctx context.Context, query string, code string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, query, string(data), time.Now().UTC().UnixMilli(), code)
	if err != nil {
		return fmt.Errorf("update %s: %w", code, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update %s: %w", code, ErrRoomNotFound)
	}
	return nil
}

func (s *SessionStore) LoadPublic(ctx context.Context, code string) (*model.Session, error) {
	var session model.Session
	if err := s.load(ctx, `SELECT data FROM game_rooms WHERE room_code = ?`, code, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) LoadSecret(ctx context.Context, code string) (*model.SecretState, error) {
	var secret model.SecretState
	if err := s.load(ctx, `SELECT data FROM game_secrets WHERE room_code = ?`, code, &secret); err != nil {
		return nil, err
	}
	return &secret, nil
}

func (s *SessionStore) load(ctx context.Context, query string, code string, dest any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var data string
	if err := s.db.QueryRowContext(ctx, query, code).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("load %s: %w", code, ErrRoomNotFound)
		}
		return fmt.Errorf("load %s: %w", code, err)
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", code, err)
	}
	return nil
}

func (s *SessionStore) RoomExists(ctx context.Context, code string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM game_rooms WHERE room_code = ?`, code).Scan(&count); err != nil {
		return false, fmt.Errorf("count room %s: %w", code, err)
	}
	return count > 0, nil
}

func (s *SessionStore) DeleteRoom(ctx context.Context, code string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM game_rooms WHERE room_code = ?`, code); err != nil {
		return fmt.Errorf("delete room %s: %w", code, err)
	}
	return nil
}

func isConstraintError(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
