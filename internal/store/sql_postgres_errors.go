// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"github.com/jackc/pgerrcode"
)

// ErrorClassification tells whether a failed statement may succeed when
// run again.
type ErrorClassification int

const (
	NonRetryable ErrorClassification = iota
	Retryable
)

// retryablePgCodes are the transient postgres failures: lost connections,
// serialization failures and deadlocks, and a server that is starting up.
var retryablePgCodes = map[string]struct{}{
	pgerrcode.ConnectionException:    {},
	pgerrcode.ConnectionDoesNotExist: {},
	pgerrcode.ConnectionFailure:      {},
	pgerrcode.TransactionRollback:    {},
	pgerrcode.SerializationFailure:   {},
	pgerrcode.DeadlockDetected:       {},
	pgerrcode.CannotConnectNow:       {},
}

// PostgresErrorClassifier reads the SQLSTATE of pgx errors.
type PostgresErrorClassifier struct{}

func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// Classify implements [ErrorClassificator]. Errors that do not come from
// postgres are [NonRetryable].
func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	if _, ok := retryablePgCodes[postgresError(err)]; ok {
		return Retryable
	}
	return NonRetryable
}

// IsUniqueViolation implements [ErrorClassificator].
func (c *PostgresErrorClassifier) IsUniqueViolation(err error) bool {
	return postgresError(err) == pgerrcode.UniqueViolation
}
