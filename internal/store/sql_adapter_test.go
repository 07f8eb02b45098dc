// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-resource-keeper/internal/config"
	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/models"
)

func newTestSQLAdapter(t *testing.T, d sqlDialect) (*sqlAdapter, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	l := logger.Nop()
	var classifier ErrorClassificator = NewPostgresErrorClassifier()
	if d.name == sqliteDialect.name {
		classifier = NewSQLiteErrorClassifier()
	}

	a := newSQLAdapter(d, config.DB{}, nil, l)
	a.DB = &DB{DB: db, dialect: d.name, errorClassificator: classifier, logger: l}
	a.schemas["person"] = testSchema()
	return a, mock
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func TestSQLAdapter_Model(t *testing.T) {
	a, mock := newTestSQLAdapter(t, postgresDialect)

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "res_pet"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO resource_schemas`)).
		WithArgs("pet", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := a.Model(context.Background(), "pet", models.Schema{"name": {Type: models.StringType}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	_, err = a.schema("pet")
	assert.NoError(t, err)
}

func TestSQLAdapter_Model_TableError(t *testing.T) {
	a, mock := newTestSQLAdapter(t, postgresDialect)

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))

	err := a.Model(context.Background(), "pet", models.Schema{})
	assert.ErrorIs(t, err, ErrExecutingStatement)

	_, err = a.schema("pet")
	assert.ErrorIs(t, err, ErrUnknownResource)
}

func TestSQLAdapter_NotConnected(t *testing.T) {
	a := newSQLAdapter(postgresDialect, config.DB{}, nil, logger.Nop())

	assert.ErrorIs(t, a.Model(context.Background(), "person", testSchema()), ErrNotConnected)
	_, err := a.Find(context.Background(), "person", "1")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, a.Close())
}

func TestSQLAdapter_Connect_Error(t *testing.T) {
	boom := errors.New("connection refused")
	a := newSQLAdapter(postgresDialect, config.DB{}, func(context.Context, config.DB, *logger.Logger) (*DB, error) {
		return nil, boom
	}, logger.Nop())

	err := a.Connect(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestSQLAdapter_Find(t *testing.T) {
	a, mock := newTestSQLAdapter(t, postgresDialect)

	rows := sqlmock.NewRows([]string{"id", "data"}).
		AddRow("1", []byte(`{"name":"Ann","pets":["2"]}`))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, data FROM "res_person" WHERE id = $1`)).
		WithArgs("1").
		WillReturnRows(rows)

	rec, err := a.Find(context.Background(), "person", "1")
	require.NoError(t, err)
	assert.Equal(t, "1", rec.ID())
	assert.Equal(t, "Ann", rec["name"])
	assert.Equal(t, []string{"2"}, rec.RefIDs("pets"))
}

func TestSQLAdapter_Find_NotFound(t *testing.T) {
	a, mock := newTestSQLAdapter(t, postgresDialect)

	mock.ExpectQuery("SELECT id, data").
		WithArgs("9").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data"}))

	_, err := a.Find(context.Background(), "person", "9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLAdapter_Find_UnknownResource(t *testing.T) {
	a, _ := newTestSQLAdapter(t, postgresDialect)

	_, err := a.Find(context.Background(), "ghost", "1")
	assert.ErrorIs(t, err, ErrUnknownResource)
}

func TestSQLAdapter_FindMany(t *testing.T) {
	a, mock := newTestSQLAdapter(t, sqliteDialect)

	rows := sqlmock.NewRows([]string{"id", "data"}).
		AddRow("1", []byte(`{"name":"Ann"}`)).
		AddRow("2", []byte(`{"name":"Bob"}`))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, data FROM "res_person" WHERE json_extract(data, '$."age"') = ? ORDER BY rowid`)).
		WithArgs(3.0).
		WillReturnRows(rows)

	recs, err := a.FindMany(context.Background(), "person", models.Query{Filter: map[string]any{"age": 3.0}})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Bob", recs[1]["name"])
}

func TestSQLAdapter_FindMany_InvalidQuery(t *testing.T) {
	a, _ := newTestSQLAdapter(t, sqliteDialect)

	_, err := a.FindMany(context.Background(), "person", models.Query{Sort: []models.SortField{{Field: "color"}}})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestSQLAdapter_FindMany_QueryError(t *testing.T) {
	a, mock := newTestSQLAdapter(t, postgresDialect)

	mock.ExpectQuery("SELECT id, data").WillReturnError(pgError(pgerrcode.ConnectionFailure))

	_, err := a.FindMany(context.Background(), "person", models.Query{})
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

func TestSQLAdapter_Create(t *testing.T) {
	a, mock := newTestSQLAdapter(t, postgresDialect)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "res_person" (id,data) VALUES ($1,$2::jsonb)`)).
		WithArgs("1", `{"name":"Ann"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, err := a.Create(context.Background(), "person", models.Record{"id": "1", "name": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, models.Record{"id": "1", "name": "Ann"}, rec)
}

func TestSQLAdapter_Create_GeneratesID(t *testing.T) {
	a, mock := newTestSQLAdapter(t, sqliteDialect)

	mock.ExpectExec("INSERT INTO").
		WithArgs(sqlmock.AnyArg(), `{}`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec, err := a.Create(context.Background(), "person", models.Record{})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID())
}

func TestSQLAdapter_Create_Conflict(t *testing.T) {
	a, mock := newTestSQLAdapter(t, postgresDialect)

	mock.ExpectExec("INSERT INTO").
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	_, err := a.Create(context.Background(), "person", models.Record{"id": "1"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSQLAdapter_Update(t *testing.T) {
	a, mock := newTestSQLAdapter(t, postgresDialect)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "res_person" SET data = $1::jsonb, updated_at = NOW() WHERE id = $2`)).
		WithArgs(`{"name":"Bob"}`, "1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, err := a.Update(context.Background(), "person", "1", models.Record{"name": "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "1", rec.ID())
	assert.Equal(t, "Bob", rec["name"])
}

func TestSQLAdapter_Update_NotFound(t *testing.T) {
	a, mock := newTestSQLAdapter(t, postgresDialect)

	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := a.Update(context.Background(), "person", "1", models.Record{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLAdapter_Delete(t *testing.T) {
	a, mock := newTestSQLAdapter(t, sqliteDialect)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "res_person" WHERE id = ?`)).
		WithArgs("1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM").
		WithArgs("2").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM").
		WithArgs("3").
		WillReturnError(sql.ErrConnDone)

	require.NoError(t, a.Delete(context.Background(), "person", "1"))
	assert.ErrorIs(t, a.Delete(context.Background(), "person", "2"), ErrNotFound)
	assert.ErrorIs(t, a.Delete(context.Background(), "person", "3"), ErrExecutingStatement)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresErrorClassifier(t *testing.T) {
	c := NewPostgresErrorClassifier()

	assert.True(t, c.IsUniqueViolation(pgError(pgerrcode.UniqueViolation)))
	assert.False(t, c.IsUniqueViolation(pgError(pgerrcode.ForeignKeyViolation)))
	assert.False(t, c.IsUniqueViolation(errors.New("plain")))

	assert.Equal(t, Retryable, c.Classify(pgError(pgerrcode.DeadlockDetected)))
	assert.Equal(t, NonRetryable, c.Classify(pgError(pgerrcode.UniqueViolation)))
	assert.Equal(t, NonRetryable, c.Classify(nil))
}

func TestSQLiteErrorClassifier_Plain(t *testing.T) {
	c := NewSQLiteErrorClassifier()
	assert.False(t, c.IsUniqueViolation(errors.New("plain")))
	assert.Equal(t, NonRetryable, c.Classify(errors.New("plain")))
}

func Test_sqliteFile(t *testing.T) {
	assert.Equal(t, "data.db", sqliteFile("file:data.db?_fk=1"))
	assert.Equal(t, "/tmp/x.db", sqliteFile("/tmp/x.db"))
}
