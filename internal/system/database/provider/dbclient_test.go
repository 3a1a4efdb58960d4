package provider

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbmodel "github.com/wso2/psd2-consent-mgt/internal/system/database/model"
)

var testQuery = dbmodel.DBQuery{
	ID:            "TEST_QUERY",
	Query:         "SELECT NAME FROM T WHERE ID = ? AND ORG_ID = ?",
	PostgresQuery: "SELECT NAME FROM T WHERE ID = ? AND ORG_ID = ? LIMIT 1",
}

func newClient(t *testing.T, driver, dbType string) (DBClientInterface, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDBClient(sqlx.NewDb(db, driver), dbType), mock
}

func TestDBClient_QueryNormalizesBytes(t *testing.T) {
	client, mock := newClient(t, "mysql", "mysql")
	mock.ExpectQuery(testQuery.Query).WithArgs("id-1", "org-1").
		WillReturnRows(sqlmock.NewRows([]string{"NAME"}).AddRow([]byte("alice")))

	rows, err := client.Query(testQuery, "id-1", "org-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0]["NAME"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBClient_PostgresRebind(t *testing.T) {
	client, mock := newClient(t, "pgx", "postgres")
	mock.ExpectQuery("SELECT NAME FROM T WHERE ID = $1 AND ORG_ID = $2 LIMIT 1").WithArgs("id-1", "org-1").
		WillReturnRows(sqlmock.NewRows([]string{"NAME"}))

	rows, err := client.Query(testQuery, "id-1", "org-1")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBClient_ExecuteTx(t *testing.T) {
	client, mock := newClient(t, "mysql", "mysql")
	update := dbmodel.DBQuery{ID: "TEST_UPDATE", Query: "UPDATE T SET NAME = ? WHERE ID = ?"}
	mock.ExpectBegin()
	mock.ExpectExec(update.Query).WithArgs("bob", "id-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := client.BeginTx()
	require.NoError(t, err)
	affected, err := client.ExecuteTx(tx, update, "bob", "id-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBClient_QueryError(t *testing.T) {
	client, mock := newClient(t, "mysql", "mysql")
	mock.ExpectQuery(testQuery.Query).WillReturnError(assert.AnError)

	_, err := client.Query(testQuery, "id-1", "org-1")
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorContains(t, err, "TEST_QUERY")
}
