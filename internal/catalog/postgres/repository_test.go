//go:build unit

package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestCreateConflictPairInsertsBothDirections(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO conflicts").WithArgs(int64(1), int64(2)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO conflicts").WithArgs(int64(2), int64(1)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.CreateConflictPair(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateConflictPairRollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO conflicts").WithArgs(int64(1), int64(2)).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.CreateConflictPair(context.Background(), 1, 2)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteConflictPairDeletesBothDirections(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM conflicts").WithArgs(int64(1), int64(2)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.DeleteConflictPair(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupHasConflicts(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"exists"}).AddRow(true)
	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(7)).WillReturnRows(rows)

	has, err := repo.GroupHasConflicts(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, has)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictMatrixOrdersByGroupIDs(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"group_id_a", "group_id_b"}).
		AddRow(int64(1), int64(2)).
		AddRow(int64(2), int64(1))
	mock.ExpectQuery("SELECT group_id_a, group_id_b FROM conflicts").WillReturnRows(rows)

	matrix, err := repo.ConflictMatrix(context.Background())
	require.NoError(t, err)
	assert.Len(t, matrix, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
