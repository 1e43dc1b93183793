package repository

import (
	"context"
	"regexp"
	"testing"

	"circle/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestThreadRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewThreadRepository(db)

	mock.ExpectQuery(`SELECT threads\.\*`).
		WillReturnError(gorm.ErrRecordNotFound)

	thread, err := repo.GetByID(context.Background(), 99)
	assert.Error(t, err)
	assert.Nil(t, thread)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThreadRepository_ByAuthor_CarriesCounts(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewThreadRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "content", "like_count", "reply_count"}).
		AddRow(1, 7, "hello", 3, 2).
		AddRow(2, 7, "again", 0, 0)
	mock.ExpectQuery(`SELECT threads\.\*.+like_count.+reply_count.+FROM "threads" WHERE user_id = .+ ORDER BY created_at DESC`).
		WillReturnRows(rows)

	threads, err := repo.ByAuthor(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, 3, threads[0].LikeCount)
	assert.Equal(t, 2, threads[0].ReplyCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThreadRepository_ToggleLike_RemovesExisting(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewThreadRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE user_id = $1 AND thread_id = $2`)).
		WithArgs(1, 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	liked, err := repo.ToggleLike(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThreadRepository_ToggleLike_InsertsWhenAbsent(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewThreadRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE user_id = $1 AND thread_id = $2`)).
		WithArgs(1, 10).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "likes" .+ ON CONFLICT \("user_id","thread_id"\) DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	liked, err := repo.ToggleLike(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThreadRepository_Delete_CascadesLikesAndReplies(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewThreadRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE thread_id = $1`)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "replies" WHERE thread_id = $1`)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "threads" WHERE "threads"."id" = $1`)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
