package messages

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"seq", "id", "sender", "recipient", "type", "payload", "signature", "processed", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+messages.*RETURNING\s+seq,\s*created_at`).
		WithArgs("m1", "alice", "bob", 1, "cGF5bG9hZA==", "sig").
		WillReturnRows(sqlmock.NewRows([]string{"seq", "created_at"}).AddRow(int64(7), now))

	m, err := repo.Create(context.Background(), &models.Message{
		ID: "m1", Sender: "alice", Recipient: "bob", Type: 1, Payload: "cGF5bG9hZA==", Signature: "sig",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), m.Seq)
	assert.True(t, m.CreatedAt.Equal(now))
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+messages`).WillReturnError(errors.New("dup"))

	_, err := repo.Create(context.Background(), &models.Message{ID: "m1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestList_PreservesOrder(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)FROM\s+messages\s+WHERE\s+recipient\s*=\s*\$1\s+ORDER\s+BY\s+seq`).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(1), "m1", "alice", "bob", 1, "p1", "s1", false, now).
			AddRow(int64(2), "m2", "carol", "bob", 2, "p2", "s2", true, now))

	got, err := repo.List(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "m2", got[1].ID)
	assert.True(t, got[1].Processed)
}

func TestListByProcessed(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)WHERE\s+recipient\s*=\s*\$1\s+AND\s+processed\s*=\s*\$2`).
		WithArgs("bob", true).
		WillReturnRows(sqlmock.NewRows(cols))

	got, err := repo.ListByProcessed(context.Background(), "bob", true)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListAfter(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)seq\s*>\s*COALESCE\(\(SELECT\s+seq\s+FROM\s+messages\s+WHERE\s+id\s*=\s*\$2\s+AND\s+recipient\s*=\s*\$1\),\s*0\)`).
		WithArgs("bob", "m1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(2), "m2", "alice", "bob", 1, "p", "s", false, now))

	got, err := repo.ListAfter(context.Background(), "bob", "m1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "m2", got[0].ID)
}

func TestList_QueryError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM\s+messages`).WillReturnError(errors.New("boom"))

	_, err := repo.List(context.Background(), "bob")
	require.Error(t, err)
}

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)WHERE\s+id\s*=\s*\$1\s+AND\s+\(recipient\s*=\s*\$2\s+OR\s+sender\s*=\s*\$2\)`).
		WithArgs("m1", "bob").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), "m1", "alice", "bob", 1, "p", "s", false, now))

	m, err := repo.Get(context.Background(), "bob", "m1")
	require.NoError(t, err)
	assert.Equal(t, "alice", m.Sender)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM\s+messages`).WithArgs("m1", "eve").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "eve", "m1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSetProcessed(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)UPDATE\s+messages\s+SET\s+processed\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1\s+AND\s+recipient\s*=\s*\$2`).
		WithArgs("m1", "bob", true).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), "m1", "alice", "bob", 1, "p", "s", true, now))

	m, err := repo.SetProcessed(context.Background(), "bob", "m1", true)
	require.NoError(t, err)
	assert.True(t, m.Processed)
}

func TestSetProcessed_NotRecipient(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)UPDATE\s+messages`).WithArgs("m1", "alice", true).WillReturnError(sql.ErrNoRows)

	_, err := repo.SetProcessed(context.Background(), "alice", "m1", true)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
