package storage

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jawat-my/saferoute/model"
)

// MemoryStorage implements Storage in-memory (for fallback/dev mode)
type MemoryStorage struct {
	records  map[uuid.UUID]*model.RelayRecord
	profiles map[string]*model.Profile // userID -> profile
	mu       sync.Mutex
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records:  make(map[uuid.UUID]*model.RelayRecord),
		profiles: make(map[string]*model.Profile),
	}
}

func (m *MemoryStorage) SaveRecord(ctx context.Context, rec *model.RelayRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *MemoryStorage) GetRecord(ctx context.Context, id uuid.UUID) (*model.RelayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *rec
	return &cp, nil
}

func (m *MemoryStorage) ListRecords(ctx context.Context, limit int) ([]*model.RelayRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.RelayRecord, 0, len(m.records))
	for _, rec := range m.records {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStorage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *profile
	m.profiles[profile.UserID] = &cp
	return nil
}

func (m *MemoryStorage) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *profile
	return &cp, nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
