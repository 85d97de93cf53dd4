package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/informaticaucm/seguimiento-api/internal/models"
)

// TeacherRepository reads teacher records.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByID fetches a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	query := `SELECT id, email, full_name, active, created_at, updated_at
        FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// List returns teachers ordered by name.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	query := `SELECT id, email, full_name, active, created_at, updated_at
        FROM teachers ORDER BY full_name`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, err
	}
	return teachers, nil
}
