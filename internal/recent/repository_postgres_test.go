package recent

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestRecord_UpsertsAndTrimsInOneTransaction(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewPostgresRepository(gdb)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "recently_viewed" \("user_id","product_id","viewed_at"\) VALUES \(\$1,\$2,\$3\) ON CONFLICT \("user_id","product_id"\) DO UPDATE SET "viewed_at"="excluded"\."viewed_at" RETURNING "id"`).
		WithArgs(42, 7, at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`DELETE FROM "recently_viewed" WHERE user_id = \$1 AND id NOT IN \(SELECT "?id"? FROM "recently_viewed" WHERE user_id = \$2 ORDER BY viewed_at DESC, id DESC LIMIT \$3\)`).
		WithArgs(42, 42, Keep).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Record(t.Context(), 42, 7, at, Keep))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_TrimFailureRollsBack(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewPostgresRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "recently_viewed"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`DELETE FROM "recently_viewed"`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Record(t.Context(), 42, 7, time.Now(), Keep)
	assert.ErrorContains(t, err, "recent.Record")
	assert.NoError(t, mock.ExpectationsWereMet())
}
