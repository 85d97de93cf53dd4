package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestRoomRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "building", "kind", "number", "created_at", "updated_at"}).
		AddRow(int64(1), "Norte", "Aula", "101", now, now).
		AddRow(int64(2), "Norte", "Laboratorio", "B2", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms ORDER BY building, kind, number")).
		WillReturnRows(rows)

	rooms, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	require.Equal(t, "Aula 101", rooms[0].Name())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 42)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryListIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	rows := sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)).AddRow(int64(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM rooms ORDER BY building, kind, number")).
		WillReturnRows(rows)

	ids, err := repo.ListIDs(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}
