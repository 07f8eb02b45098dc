// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-resource-keeper/internal/config"
	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/models"
)

type connectFunc func(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error)

// sqlAdapter stores every resource in its own table with the record
// payload in a JSON column. It serves both PostgreSQL and SQLite; the
// differences live in [sqlDialect].
type sqlAdapter struct {
	*DB
	dialect sqlDialect
	cfg     config.DB
	connect connectFunc

	mu      sync.RWMutex
	schemas map[string]models.Schema

	logger *logger.Logger
}

// NewPostgresAdapter returns an [Adapter] backed by PostgreSQL.
func NewPostgresAdapter(cfg config.DB, log *logger.Logger) Adapter {
	return newSQLAdapter(postgresDialect, cfg, NewConnectPostgres, log)
}

// NewSQLiteAdapter returns an [Adapter] backed by a SQLite file.
func NewSQLiteAdapter(cfg config.DB, log *logger.Logger) Adapter {
	return newSQLAdapter(sqliteDialect, cfg, NewConnectSQLite, log)
}

func newSQLAdapter(d sqlDialect, cfg config.DB, connect connectFunc, log *logger.Logger) *sqlAdapter {
	return &sqlAdapter{
		dialect: d,
		cfg:     cfg,
		connect: connect,
		schemas: make(map[string]models.Schema),
		logger:  log,
	}
}

// Connect opens the database and applies catalog migrations.
func (a *sqlAdapter) Connect(ctx context.Context) error {
	db, err := a.connect(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("error connecting %s: %w", a.dialect.name, err)
	}

	if err = db.Migrate(); err != nil {
		a.logger.Err(err).Str("func", "sqlAdapter.Connect").Msg("error applying migrations")
		_ = db.Close()
		return err
	}

	a.DB = db
	return nil
}

func (a *sqlAdapter) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// Model creates the resource table when missing and records the schema in
// the catalog table.
func (a *sqlAdapter) Model(ctx context.Context, name string, schema models.Schema) error {
	if a.DB == nil {
		return ErrNotConnected
	}
	log := logger.FromContext(ctx)

	if _, err := a.ExecContext(ctx, a.dialect.createTableQuery(name)); err != nil {
		log.Err(err).
			Str("func", "sqlAdapter.Model").
			Str("resource", name).
			Msg("failed to create resource table")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	query, args, err := a.dialect.buildUpsertSchemaQuery(name, schema)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err = a.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "sqlAdapter.Model").
			Str("resource", name).
			Msg("failed to save resource schema")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	a.mu.Lock()
	a.schemas[name] = schema.Clone()
	a.mu.Unlock()

	return nil
}

func (a *sqlAdapter) schema(name string) (models.Schema, error) {
	if a.DB == nil {
		return nil, ErrNotConnected
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	s, ok := a.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
	return s, nil
}

func (a *sqlAdapter) Find(ctx context.Context, name, id string) (models.Record, error) {
	if _, err := a.schema(name); err != nil {
		return nil, err
	}

	query, args, err := a.dialect.buildFindQuery(name, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		rowID string
		data  []byte
	)
	err = a.QueryRowContext(ctx, query, args...).Scan(&rowID, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, name, id)
	}
	if err != nil {
		a.logError(ctx, err, "sqlAdapter.Find", name)
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return decodeRecord(rowID, data)
}

func (a *sqlAdapter) FindMany(ctx context.Context, name string, q models.Query) ([]models.Record, error) {
	schema, err := a.schema(name)
	if err != nil {
		return nil, err
	}
	if err = checkQuery(schema, q); err != nil {
		return nil, err
	}

	query, args, err := a.dialect.buildFindManyQuery(name, schema, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := a.QueryContext(ctx, query, args...)
	if err != nil {
		a.logError(ctx, err, "sqlAdapter.FindMany", name)
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	results := make([]models.Record, 0, 16)
	for rows.Next() {
		var (
			rowID string
			data  []byte
		)
		if err = rows.Scan(&rowID, &data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}

		rec, err := decodeRecord(rowID, data)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return results, nil
}

func (a *sqlAdapter) Create(ctx context.Context, name string, rec models.Record) (models.Record, error) {
	if _, err := a.schema(name); err != nil {
		return nil, err
	}

	stored := prepareRecord(rec)
	data, err := encodeRecord(stored)
	if err != nil {
		return nil, err
	}

	query, args, err := a.dialect.buildInsertQuery(name, stored.ID(), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = a.ExecContext(ctx, query, args...); err != nil {
		if a.errorClassificator != nil && a.errorClassificator.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s %q", ErrConflict, name, stored.ID())
		}
		a.logError(ctx, err, "sqlAdapter.Create", name)
		return nil, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return decodeRecord(stored.ID(), []byte(data))
}

func (a *sqlAdapter) Update(ctx context.Context, name, id string, rec models.Record) (models.Record, error) {
	if _, err := a.schema(name); err != nil {
		return nil, err
	}

	data, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}

	query, args, err := a.dialect.buildUpdateQuery(name, id, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if err = a.execAffecting(ctx, "sqlAdapter.Update", name, id, query, args); err != nil {
		return nil, err
	}

	return decodeRecord(id, []byte(data))
}

func (a *sqlAdapter) Delete(ctx context.Context, name, id string) error {
	if _, err := a.schema(name); err != nil {
		return err
	}

	query, args, err := a.dialect.buildDeleteQuery(name, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return a.execAffecting(ctx, "sqlAdapter.Delete", name, id, query, args)
}

// execAffecting runs a statement that must touch exactly the record id.
func (a *sqlAdapter) execAffecting(ctx context.Context, fn, name, id, query string, args []any) error {
	result, err := a.ExecContext(ctx, query, args...)
	if err != nil {
		a.logError(ctx, err, fn, name)
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s %q", ErrNotFound, name, id)
	}
	return nil
}

func (a *sqlAdapter) logError(ctx context.Context, err error, fn, name string) {
	event := logger.FromContext(ctx).Err(err).
		Str("func", fn).
		Str("resource", name)
	if a.errorClassificator != nil {
		event = event.Bool("retryable", a.errorClassificator.Classify(err) == Retryable)
	}
	event.Msg("database operation failed")
}
