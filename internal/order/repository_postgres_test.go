package order

import (
	"testing"

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

func TestLinkGuestOrders_MatchesEmailCaseInsensitively(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewPostgresRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET "user_id"=\$1,"updated_at"=\$2 WHERE user_id IS NULL AND lower\(email\) = \$3`).
		WithArgs(42, sqlmock.AnyArg(), "guest@example.com").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := repo.LinkGuestOrders(t.Context(), 42, "Guest@Example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApply_StatusChangedRollsBack(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewPostgresRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET .*id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.Apply(t.Context(), 7, Change{From: StatusShipped, To: StatusDelivered})
	assert.ErrorIs(t, err, ErrStatusChanged)
	assert.NoError(t, mock.ExpectationsWereMet())
}
