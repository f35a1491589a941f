package gorm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/modelgrid/modelgrid/pkg/model"
	"github.com/modelgrid/modelgrid/pkg/schema"
	"github.com/modelgrid/modelgrid/pkg/server/store"
)

// Ensure SchemaStore implements store.SchemaStore
var _ store.SchemaStore = (*SchemaStore)(nil)

// SchemaStore materializes physical tables from field lists using GORM.
type SchemaStore struct {
	db *gorm.DB
}

// NewSchemaStore creates a new SchemaStore
func NewSchemaStore(db *gorm.DB) *SchemaStore {
	return &SchemaStore{db: db}
}

// storageTypes maps declared field types to Postgres column types.
var storageTypes = map[string]string{
	schema.TypeString:  "TEXT",
	schema.TypeText:    "TEXT",
	schema.TypeNumber:  "DOUBLE PRECISION",
	schema.TypeBoolean: "BOOLEAN",
	schema.TypeDate:    "TIMESTAMP",
}

// Materialize issues an idempotent CREATE TABLE for the field list, then
// verifies the table is usable rather than trusting the DDL return code.
func (s *SchemaStore) Materialize(table string, fields model.FieldList) error {
	quotedTable, err := schema.QuoteIdentifier(table)
	if err != nil {
		return err
	}

	columns := []string{`"id" TEXT PRIMARY KEY`}
	for _, field := range fields {
		if err := schema.ValidateFieldType(field.Type); err != nil {
			return err
		}
		quoted, err := schema.QuoteIdentifier(field.Name)
		if err != nil {
			return err
		}

		column := quoted + " " + storageTypes[field.Type]
		if field.Required {
			column += " NOT NULL"
		}
		if field.Unique {
			column += " UNIQUE"
		}
		if field.Default != nil {
			literal, err := defaultLiteral(field.Default, field.Type)
			if err != nil {
				return err
			}
			column += " DEFAULT " + literal
		}
		columns = append(columns, column)
	}
	columns = append(columns,
		`"createdAt" TIMESTAMP DEFAULT CURRENT_TIMESTAMP`,
		`"updatedAt" TIMESTAMP DEFAULT CURRENT_TIMESTAMP`,
	)

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quotedTable, strings.Join(columns, ", "))
	if err := s.db.Exec(ddl).Error; err != nil {
		return fmt.Errorf("%w: %v", store.ErrTableCreationFailed, err)
	}

	return s.verify(table, quotedTable)
}

// TableExists checks the storage engine's catalog for the table.
func (s *SchemaStore) TableExists(table string) (bool, error) {
	if err := schema.ValidateIdentifier(table); err != nil {
		return false, err
	}
	var exists bool
	err := s.db.Raw(
		`SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?)`,
		table,
	).Scan(&exists).Error
	return exists, err
}

// verify confirms the table actually exists after the DDL. The catalog can
// lag behind an acknowledged CREATE on some engines, so a catalog miss falls
// back to a disposable insert-then-delete probe: a probe failure that names
// an undefined table is a hard failure, any other probe failure (for example
// a NOT NULL violation) proves the table is there.
func (s *SchemaStore) verify(table, quotedTable string) error {
	exists, err := s.TableExists(table)
	if err == nil && exists {
		return nil
	}

	probeID := "probe-" + uuid.NewString()
	insertErr := s.db.Exec(
		fmt.Sprintf(`INSERT INTO %s ("id") VALUES (?)`, quotedTable), probeID,
	).Error
	if insertErr != nil {
		if isUndefinedTable(insertErr) {
			return fmt.Errorf("%w: table %q missing after create: %v",
				store.ErrTableCreationFailed, table, insertErr)
		}
		return nil
	}

	_ = s.db.Exec(
		fmt.Sprintf(`DELETE FROM %s WHERE "id" = ?`, quotedTable), probeID,
	).Error
	return nil
}

// defaultLiteral renders a declared default as a SQL literal. Text-ish
// defaults are single-quoted with embedded quotes doubled; this is the one
// place a value reaches statement text, because DEFAULT clauses cannot be
// bound.
func defaultLiteral(value any, fieldType string) (string, error) {
	switch fieldType {
	case schema.TypeString, schema.TypeText, schema.TypeDate:
		text, ok := value.(string)
		if !ok {
			text = fmt.Sprintf("%v", value)
		}
		return "'" + strings.ReplaceAll(text, "'", "''") + "'", nil
	case schema.TypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return "", fmt.Errorf("%w: default %v is not a boolean", schema.ErrUnsupportedType, value)
		}
		if b {
			return "true", nil
		}
		return "false", nil
	case schema.TypeNumber:
		switch value.(type) {
		case float64, float32, int, int64, int32:
			return fmt.Sprintf("%v", value), nil
		}
		return "", fmt.Errorf("%w: default %v is not a number", schema.ErrUnsupportedType, value)
	}
	return "", fmt.Errorf("%w: %q", schema.ErrUnsupportedType, fieldType)
}

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "42P01" // undefined_table
	}
	return strings.Contains(err.Error(), "does not exist")
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "duplicate key value")
}
