package gorm

import (
	"database/sql"
	"sort"

	"github.com/modelgrid/modelgrid/pkg/server/store"
)

// scanRecords reads every row into a column-name-keyed map. Byte slices are
// converted to strings; the driver's native types (time.Time, float64, bool)
// pass through untouched.
func scanRecords(rows *sql.Rows) ([]store.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := make([]store.Record, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		record := make(store.Record, len(columns))
		for i, column := range columns {
			if raw, ok := values[i].([]byte); ok {
				record[column] = string(raw)
				continue
			}
			record[column] = values[i]
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// sortedKeys gives a stable column order so generated statements are
// deterministic across runs.
func sortedKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
