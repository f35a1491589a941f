package store

import "errors"

// Storage failures surfaced to callers. Driver causes are wrapped underneath
// these sentinels for operator diagnosis; match with errors.Is.
var (
	// ErrModelNotFound means no active definition matches a name or table.
	ErrModelNotFound = errors.New("model definition not found")

	// ErrDuplicateTableName means an active definition already claims the
	// table name. Logical model names may repeat; table names may not.
	ErrDuplicateTableName = errors.New("table name already in use")

	// ErrTableCreationFailed means materialization could not produce a usable
	// physical table. The metadata write is rolled back before this returns.
	ErrTableCreationFailed = errors.New("table creation failed")

	// ErrInvalidID means a record id does not have the expected UUID shape.
	ErrInvalidID = errors.New("invalid record id")

	// ErrRecordNotFound means no row matched the id (including a row that
	// disappeared concurrently before an update or delete landed).
	ErrRecordNotFound = errors.New("record not found")

	// ErrWriteFailed wraps storage errors on insert or update, including
	// uniqueness violations on generated ids. Writes are never retried.
	ErrWriteFailed = errors.New("write failed")

	// ErrUserNotFound means no user row matched the lookup.
	ErrUserNotFound = errors.New("user not found")
)
