package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/informaticaucm/seguimiento-api/internal/models"
	appErrors "github.com/informaticaucm/seguimiento-api/pkg/errors"
)

type mockRoomRepo struct {
	rooms     []models.Room
	listCalls int
}

func (m *mockRoomRepo) List(ctx context.Context) ([]models.Room, error) {
	m.listCalls++
	return m.rooms, nil
}

func (m *mockRoomRepo) FindByID(ctx context.Context, id int64) (*models.Room, error) {
	for _, room := range m.rooms {
		if room.ID == id {
			return &room, nil
		}
	}
	return nil, sql.ErrNoRows
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = map[string][]byte{}
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) Invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		delete(m.entries, key)
	}
}

func TestRoomServiceListUsesCache(t *testing.T) {
	repo := &mockRoomRepo{rooms: []models.Room{
		{ID: 1, Building: "Norte", Kind: "Aula", Number: "101"},
	}}
	cache := NewCacheService(&memoryCacheRepo{}, nil, time.Minute, nil, true)
	svc := NewRoomService(repo, cache, nil)

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.listCalls)
}

func TestRoomServiceGet(t *testing.T) {
	repo := &mockRoomRepo{rooms: []models.Room{
		{ID: 1, Building: "Norte", Kind: "Aula", Number: "101"},
	}}
	svc := NewRoomService(repo, nil, nil)

	room, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Aula 101", room.Name())

	_, err = svc.Get(context.Background(), 42)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)

	_, err = svc.Get(context.Background(), 0)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidID.Code, appErr.Code)
}
