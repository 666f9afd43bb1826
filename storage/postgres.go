package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/jawat-my/saferoute/model"
)

// PostgresStorage implements Storage using PostgreSQL, selected when a
// DATABASE_URL is present.
type PostgresStorage struct {
	db *sql.DB
}

var _ Storage = (*PostgresStorage)(nil)

func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	sqlStmt := `
CREATE TABLE IF NOT EXISTS relay_records (
	id TEXT PRIMARY KEY,
	operation TEXT,
	status TEXT,
	request_body TEXT,
	response_body TEXT,
	error TEXT,
	archive_url TEXT,
	created_at BIGINT
);
CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	user_id TEXT UNIQUE,
	address TEXT,
	family_size INTEGER,
	vulnerabilities JSONB,
	payload TEXT,
	last_lat DOUBLE PRECISION,
	last_lon DOUBLE PRECISION,
	updated_at BIGINT
);
`
	if _, err := db.Exec(sqlStmt); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresStorage{db: db}, nil
}

func (s *PostgresStorage) SaveRecord(ctx context.Context, rec *model.RelayRecord) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO relay_records (id, operation, status, request_body, response_body, error, archive_url, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT(id) DO UPDATE SET operation=excluded.operation, status=excluded.status, request_body=excluded.request_body, response_body=excluded.response_body, error=excluded.error, archive_url=excluded.archive_url, created_at=excluded.created_at
`, rec.ID.String(), rec.Operation, rec.Status, rec.RequestBody, rec.ResponseBody, rec.Error, rec.ArchiveURL, rec.CreatedAt.Unix())
	return err
}

func (s *PostgresStorage) GetRecord(ctx context.Context, id uuid.UUID) (*model.RelayRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, operation, status, request_body, response_body, error, archive_url, created_at FROM relay_records WHERE id=$1`, id.String())
	return scanRecord(row.Scan)
}

func (s *PostgresStorage) ListRecords(ctx context.Context, limit int) ([]*model.RelayRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, operation, status, request_body, response_body, error, archive_url, created_at FROM relay_records ORDER BY created_at DESC, id LIMIT $1`, limit)
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

func (s *PostgresStorage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	vulns, err := json.Marshal(profile.Vulnerabilities)
	if err != nil {
		return fmt.Errorf("failed to marshal profile vulnerabilities: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO profiles (id, user_id, address, family_size, vulnerabilities, payload, last_lat, last_lon, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT(user_id) DO UPDATE SET address=excluded.address, family_size=excluded.family_size, vulnerabilities=excluded.vulnerabilities, payload=excluded.payload, last_lat=excluded.last_lat, last_lon=excluded.last_lon, updated_at=excluded.updated_at
`, profile.ID.String(), profile.UserID, profile.Address, profile.FamilySize, vulns, profile.Payload, profile.LastLat, profile.LastLon, profile.UpdatedAt.Unix())
	return err
}

func (s *PostgresStorage) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, user_id, address, family_size, vulnerabilities, payload, last_lat, last_lon, updated_at FROM profiles WHERE user_id=$1`, userID)
	return scanProfile(row.Scan)
}

// Close closes the underlying SQL database connection.
func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
