package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/informaticaucm/seguimiento-api/internal/models"
	appErrors "github.com/informaticaucm/seguimiento-api/pkg/errors"
)

type roomRepository interface {
	List(ctx context.Context) ([]models.Room, error)
	FindByID(ctx context.Context, id int64) (*models.Room, error)
}

const roomCatalogueCacheKey = "rooms:catalogue"

// RoomService serves the room catalogue, fronted by the catalogue cache.
type RoomService struct {
	repo   roomRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewRoomService constructs a RoomService. cache may be nil.
func NewRoomService(repo roomRepository, cache *CacheService, logger *zap.Logger) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{repo: repo, cache: cache, logger: logger}
}

// List returns the catalogue ordered by building, kind, number.
func (s *RoomService) List(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if s.cache.Get(ctx, roomCatalogueCacheKey, &rooms) {
		return rooms, nil
	}

	rooms, err := s.repo.List(ctx)
	if err != nil {
		return nil, wrapStore(err, "could not list rooms")
	}
	s.cache.Set(ctx, roomCatalogueCacheKey, rooms)
	return rooms, nil
}

// Get returns one room.
func (s *RoomService) Get(ctx context.Context, id int64) (*models.Room, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidID, "room id must be a positive integer")
	}

	var room models.Room
	key := fmt.Sprintf("rooms:%d", id)
	if s.cache.Get(ctx, key, &room) {
		return &room, nil
	}

	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, wrapStore(err, "could not load room")
	}
	s.cache.Set(ctx, key, found)
	return found, nil
}
