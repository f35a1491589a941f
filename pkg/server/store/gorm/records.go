package gorm

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modelgrid/modelgrid/pkg/schema"
	"github.com/modelgrid/modelgrid/pkg/server/store"
)

// Ensure RecordsStore implements store.RecordsStore
var _ store.RecordsStore = (*RecordsStore)(nil)

// RecordsStore implements store.RecordsStore using GORM. It operates on
// tables whose shape is unknown at build time, so every statement is built
// from re-validated identifiers and bound values.
type RecordsStore struct {
	db        *gorm.DB
	listLimit int
}

// NewRecordsStore creates a new RecordsStore. listLimit caps FindAll result
// sets; zero means unlimited.
func NewRecordsStore(db *gorm.DB, listLimit int) *RecordsStore {
	return &RecordsStore{db: db, listLimit: listLimit}
}

// Create inserts a row with a generated v4 UUID id and UTC timestamps,
// returning the inserted row. A uniqueness violation on the generated id is
// surfaced as ErrWriteFailed, not retried.
func (s *RecordsStore) Create(table string, data store.Record) (store.Record, error) {
	quotedTable, err := schema.QuoteIdentifier(table)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	columns := []string{`"id"`, `"createdAt"`, `"updatedAt"`}
	values := []interface{}{id, now, now}
	for _, key := range sortedKeys(data) {
		quoted, err := schema.QuoteIdentifier(key)
		if err != nil {
			return nil, err
		}
		columns = append(columns, quoted)
		values = append(values, data[key])
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		quotedTable, strings.Join(columns, ", "), placeholders,
	)

	records, err := s.queryRecords(query, values...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrWriteFailed, err)
	}
	if len(records) == 0 {
		return nil, store.ErrWriteFailed
	}
	return records[0], nil
}

// FindAll returns rows matching every filter, newest first. Filter keys pass
// the identifier grammar; filter values are bound.
func (s *RecordsStore) FindAll(table string, filters map[string]any) ([]store.Record, error) {
	quotedTable, err := schema.QuoteIdentifier(table)
	if err != nil {
		return nil, err
	}

	query := "SELECT * FROM " + quotedTable
	var args []interface{}

	if len(filters) > 0 {
		conditions := make([]string, 0, len(filters))
		for _, key := range sortedKeys(filters) {
			quoted, err := schema.QuoteIdentifier(key)
			if err != nil {
				return nil, err
			}
			conditions = append(conditions, quoted+" = ?")
			args = append(args, filters[key])
		}
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += ` ORDER BY "createdAt" DESC`

	if s.listLimit > 0 {
		query += " LIMIT ?"
		args = append(args, s.listLimit)
	}

	records, err := s.queryRecords(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records from %q: %w", table, err)
	}
	return records, nil
}

// FindByID fetches a single row by its UUID id.
func (s *RecordsStore) FindByID(table, id string) (store.Record, error) {
	quotedTable, err := schema.QuoteIdentifier(table)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", store.ErrInvalidID, id)
	}

	query := fmt.Sprintf(`SELECT * FROM %s WHERE "id" = ? LIMIT 1`, quotedTable)
	records, err := s.queryRecords(query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch record from %q: %w", table, err)
	}
	if len(records) == 0 {
		return nil, store.ErrRecordNotFound
	}
	return records[0], nil
}

// Update stamps updatedAt and applies the caller-supplied columns. A miss
// (including a row deleted concurrently) reports ErrRecordNotFound.
func (s *RecordsStore) Update(table, id string, data store.Record) (store.Record, error) {
	quotedTable, err := schema.QuoteIdentifier(table)
	if err != nil {
		return nil, err
	}

	setClauses := []string{`"updatedAt" = ?`}
	values := []interface{}{time.Now().UTC()}
	for _, key := range sortedKeys(data) {
		quoted, err := schema.QuoteIdentifier(key)
		if err != nil {
			return nil, err
		}
		setClauses = append(setClauses, quoted+" = ?")
		values = append(values, data[key])
	}
	values = append(values, id)

	query := fmt.Sprintf(
		`UPDATE %s SET %s WHERE "id" = ? RETURNING *`,
		quotedTable, strings.Join(setClauses, ", "),
	)

	records, err := s.queryRecords(query, values...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrWriteFailed, err)
	}
	if len(records) == 0 {
		return nil, store.ErrRecordNotFound
	}
	return records[0], nil
}

// Delete removes the row, reporting ErrRecordNotFound when nothing matched.
func (s *RecordsStore) Delete(table, id string) error {
	quotedTable, err := schema.QuoteIdentifier(table)
	if err != nil {
		return err
	}

	result := s.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE "id" = ?`, quotedTable), id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete record from %q: %w", table, result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrRecordNotFound
	}
	return nil
}

func (s *RecordsStore) queryRecords(query string, args ...interface{}) ([]store.Record, error) {
	rows, err := s.db.Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanRecords(rows)
}
