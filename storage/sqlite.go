package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jawat-my/saferoute/model"
	"github.com/jawat-my/saferoute/utils"
)

// SqliteStorage implements Storage using SQLite as the backend.
type SqliteStorage struct {
	db *sql.DB
}

var _ Storage = (*SqliteStorage)(nil)

func NewSqliteStorage(dsn string) (*SqliteStorage, error) {
	// Only create parent directories if not using in-memory SQLite (":memory:").
	if dsn != ":memory:" && dsn != "" {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, utils.Errorf("failed to create db directory %q: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Create tables if not exist
	sqlStmt := `
CREATE TABLE IF NOT EXISTS relay_records (
	id TEXT PRIMARY KEY,
	operation TEXT,
	status TEXT,
	request_body TEXT,
	response_body TEXT,
	error TEXT,
	archive_url TEXT,
	created_at INTEGER
);
CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	user_id TEXT UNIQUE,
	address TEXT,
	family_size INTEGER,
	vulnerabilities JSON,
	payload TEXT,
	last_lat REAL,
	last_lon REAL,
	updated_at INTEGER
);
`
	if _, err := db.Exec(sqlStmt); err != nil {
		return nil, err
	}
	return &SqliteStorage{db: db}, nil
}

func (s *SqliteStorage) SaveRecord(ctx context.Context, rec *model.RelayRecord) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO relay_records (id, operation, status, request_body, response_body, error, archive_url, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET operation=excluded.operation, status=excluded.status, request_body=excluded.request_body, response_body=excluded.response_body, error=excluded.error, archive_url=excluded.archive_url, created_at=excluded.created_at
`, rec.ID.String(), rec.Operation, rec.Status, rec.RequestBody, rec.ResponseBody, rec.Error, rec.ArchiveURL, rec.CreatedAt.Unix())
	return err
}

func (s *SqliteStorage) GetRecord(ctx context.Context, id uuid.UUID) (*model.RelayRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, operation, status, request_body, response_body, error, archive_url, created_at FROM relay_records WHERE id=?`, id.String())
	return scanRecord(row.Scan)
}

func (s *SqliteStorage) ListRecords(ctx context.Context, limit int) ([]*model.RelayRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, operation, status, request_body, response_body, error, archive_url, created_at FROM relay_records ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []*model.RelayRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// scanRecord decodes one relay_records row from either a Row or Rows scan.
func scanRecord(scan func(dest ...any) error) (*model.RelayRecord, error) {
	var rec model.RelayRecord
	var idStr string
	var createdAt int64
	if err := scan(&idStr, &rec.Operation, &rec.Status, &rec.RequestBody, &rec.ResponseBody, &rec.Error, &rec.ArchiveURL, &createdAt); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("malformed record id %q: %w", idStr, err)
	}
	rec.ID = id
	rec.CreatedAt = time.Unix(createdAt, 0)
	return &rec, nil
}

func (s *SqliteStorage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	vulns, err := json.Marshal(profile.Vulnerabilities)
	if err != nil {
		return fmt.Errorf("failed to marshal profile vulnerabilities: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO profiles (id, user_id, address, family_size, vulnerabilities, payload, last_lat, last_lon, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET address=excluded.address, family_size=excluded.family_size, vulnerabilities=excluded.vulnerabilities, payload=excluded.payload, last_lat=excluded.last_lat, last_lon=excluded.last_lon, updated_at=excluded.updated_at
`, profile.ID.String(), profile.UserID, profile.Address, profile.FamilySize, vulns, profile.Payload, profile.LastLat, profile.LastLon, profile.UpdatedAt.Unix())
	return err
}

func (s *SqliteStorage) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, user_id, address, family_size, vulnerabilities, payload, last_lat, last_lon, updated_at FROM profiles WHERE user_id=?`, userID)
	return scanProfile(row.Scan)
}

func scanProfile(scan func(dest ...any) error) (*model.Profile, error) {
	var profile model.Profile
	var idStr string
	var vulns []byte
	var updatedAt int64
	if err := scan(&idStr, &profile.UserID, &profile.Address, &profile.FamilySize, &vulns, &profile.Payload, &profile.LastLat, &profile.LastLon, &updatedAt); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("malformed profile id %q: %w", idStr, err)
	}
	profile.ID = id
	if err := json.Unmarshal(vulns, &profile.Vulnerabilities); err != nil {
		return nil, err
	}
	profile.UpdatedAt = time.Unix(updatedAt, 0)
	return &profile, nil
}

// Close closes the underlying SQL database connection.
func (s *SqliteStorage) Close() error {
	return s.db.Close()
}
