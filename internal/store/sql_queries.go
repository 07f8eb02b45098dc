// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-resource-keeper/migrations"
	"github.com/MKhiriev/go-resource-keeper/models"
)

const (
	schemasTable = "resource_schemas"
	tablePrefix  = "res_"
)

const (
	createPostgresTable = `CREATE TABLE IF NOT EXISTS %s (
		id         TEXT PRIMARY KEY,
		data       JSONB NOT NULL DEFAULT '{}',
		seq        BIGSERIAL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`

	createSQLiteTable = `CREATE TABLE IF NOT EXISTS %s (
		id         TEXT PRIMARY KEY,
		data       TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	upsertSchemaSuffix = `ON CONFLICT (name) DO UPDATE SET definition = EXCLUDED.definition, updated_at = EXCLUDED.updated_at`
)

// sqlDialect captures the differences between the SQL backends.
type sqlDialect struct {
	name        string
	placeholder sq.PlaceholderFormat
	createTable string
	orderColumn string
	now         string
}

var (
	postgresDialect = sqlDialect{
		name:        migrations.DialectPostgres,
		placeholder: sq.Dollar,
		createTable: createPostgresTable,
		orderColumn: "seq",
		now:         "NOW()",
	}

	sqliteDialect = sqlDialect{
		name:        migrations.DialectSQLite,
		placeholder: sq.Question,
		createTable: createSQLiteTable,
		orderColumn: "rowid",
		now:         "CURRENT_TIMESTAMP",
	}
)

func (d sqlDialect) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.placeholder)
}

func (d sqlDialect) isPostgres() bool {
	return d.name == migrations.DialectPostgres
}

// tableName returns the quoted table of a resource. Resource names are
// restricted to [a-zA-Z0-9_] at registration.
func tableName(name string) string {
	return `"` + tablePrefix + name + `"`
}

// jsonPath returns a SQLite JSON path for field. Field names never contain
// quotes.
func jsonPath(field string) string {
	return `'$."` + field + `"'`
}

// jsonValue wraps a JSON argument in the dialect's column type.
func (d sqlDialect) jsonValue(data string) any {
	if d.isPostgres() {
		return sq.Expr("?::jsonb", data)
	}
	return data
}

func (d sqlDialect) createTableQuery(name string) string {
	return fmt.Sprintf(d.createTable, tableName(name))
}

func (d sqlDialect) buildUpsertSchemaQuery(name string, schema models.Schema) (string, []any, error) {
	definition, err := json.Marshal(schema)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return d.builder().
		Insert(schemasTable).
		Columns("name", "definition", "updated_at").
		Values(name, d.jsonValue(string(definition)), sq.Expr(d.now)).
		Suffix(upsertSchemaSuffix).
		ToSql()
}

func (d sqlDialect) buildFindQuery(name, id string) (string, []any, error) {
	return d.builder().
		Select("id", "data").
		From(tableName(name)).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func (d sqlDialect) buildFindManyQuery(name string, schema models.Schema, q models.Query) (string, []any, error) {
	query := d.builder().
		Select("id", "data").
		From(tableName(name))

	if len(q.IDs) > 0 {
		query = query.Where(sq.Eq{"id": q.IDs})
	}

	for _, field := range sortedKeys(q.Filter) {
		cond, err := d.filterCondition(field, schema[field], q.Filter[field])
		if err != nil {
			return "", nil, err
		}
		query = query.Where(cond)
	}

	orderBy := make([]string, 0, len(q.Sort)+1)
	for _, s := range q.Sort {
		expr := d.fieldExpr(s.Field)
		if s.Desc {
			expr += " DESC"
		} else {
			expr += " ASC"
		}
		orderBy = append(orderBy, expr)
	}
	orderBy = append(orderBy, d.orderColumn)
	query = query.OrderBy(orderBy...)

	if q.Limit > 0 {
		query = query.Limit(uint64(q.Limit))
	}
	if q.Offset > 0 {
		if q.Limit <= 0 && !d.isPostgres() {
			// sqlite only accepts OFFSET after LIMIT
			query = query.Limit(math.MaxInt64)
		}
		query = query.Offset(uint64(q.Offset))
	}

	return query.ToSql()
}

func (d sqlDialect) fieldExpr(field string) string {
	if field == models.IDKey {
		return "id"
	}
	if d.isPostgres() {
		return "data->'" + field + "'"
	}
	return "json_extract(data, " + jsonPath(field) + ")"
}

func (d sqlDialect) filterCondition(field string, def models.Field, value any) (sq.Sqlizer, error) {
	if field == models.IDKey {
		return sq.Eq{"id": value}, nil
	}

	if d.isPostgres() {
		if def.Many {
			value = []any{value}
		}
		containment, err := json.Marshal(map[string]any{field: value})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		return sq.Expr("data @> ?::jsonb", string(containment)), nil
	}

	if def.Many {
		return sq.Expr("EXISTS (SELECT 1 FROM json_each(data, "+jsonPath(field)+") WHERE json_each.value = ?)", value), nil
	}
	if value == nil {
		return sq.Expr(d.fieldExpr(field) + " IS NULL"), nil
	}
	return sq.Expr(d.fieldExpr(field)+" = ?", value), nil
}

func (d sqlDialect) buildInsertQuery(name, id, data string) (string, []any, error) {
	return d.builder().
		Insert(tableName(name)).
		Columns("id", "data").
		Values(id, d.jsonValue(data)).
		ToSql()
}

func (d sqlDialect) buildUpdateQuery(name, id, data string) (string, []any, error) {
	return d.builder().
		Update(tableName(name)).
		Set("data", d.jsonValue(data)).
		Set("updated_at", sq.Expr(d.now)).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func (d sqlDialect) buildDeleteQuery(name, id string) (string, []any, error) {
	return d.builder().
		Delete(tableName(name)).
		Where(sq.Eq{"id": id}).
		ToSql()
}

// encodeRecord returns the JSON payload stored in the data column.
func encodeRecord(rec models.Record) (string, error) {
	payload := make(map[string]any, len(rec))
	for k, v := range rec {
		if k != models.IDKey {
			payload[k] = v
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncodingRecord, err)
	}
	return string(data), nil
}

func decodeRecord(id string, data []byte) (models.Record, error) {
	rec := models.Record{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncodingRecord, err)
		}
	}
	rec.SetID(id)
	return rec, nil
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
