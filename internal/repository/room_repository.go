package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/informaticaucm/seguimiento-api/internal/models"
)

// RoomRepository reads the room catalogue.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns the full catalogue in display order.
func (r *RoomRepository) List(ctx context.Context) ([]models.Room, error) {
	query := `SELECT id, building, kind, number, created_at, updated_at
        FROM rooms ORDER BY building, kind, number`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, err
	}
	return rooms, nil
}

// FindByID fetches a room by ID.
func (r *RoomRepository) FindByID(ctx context.Context, id int64) (*models.Room, error) {
	query := `SELECT id, building, kind, number, created_at, updated_at
        FROM rooms WHERE id = $1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListIDs returns every room ID in display order. Used as the universe
// when the resolver must fall back to "anywhere".
func (r *RoomRepository) ListIDs(ctx context.Context) ([]int64, error) {
	query := "SELECT id FROM rooms ORDER BY building, kind, number"
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, err
	}
	return ids, nil
}
