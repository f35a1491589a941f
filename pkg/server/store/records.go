package store

// Record is a row from a dynamically materialized table. Its shape is only
// known at runtime, so it travels as a column-name-keyed map.
type Record map[string]any

// RecordsStore abstracts generic CRUD against an arbitrary named table. Every
// implementation must re-validate each identifier against the grammar
// immediately before use and bind every value as a parameter.
type RecordsStore interface {
	// Create inserts a row with a generated id and UTC creation/update
	// stamps, returning the inserted row.
	Create(table string, data Record) (Record, error)

	// FindAll returns rows matching all filters (equality conjunction),
	// ordered by creation time descending.
	FindAll(table string, filters map[string]any) ([]Record, error)

	// FindByID fetches one row. ErrInvalidID for malformed ids,
	// ErrRecordNotFound for misses.
	FindByID(table, id string) (Record, error)

	// Update applies the given column values and stamps the update time.
	// ErrRecordNotFound when zero rows were affected.
	Update(table, id string, data Record) (Record, error)

	// Delete removes the row. ErrRecordNotFound when zero rows were affected.
	Delete(table, id string) error
}
