package store

import "github.com/modelgrid/modelgrid/pkg/model"

// SchemaStore abstracts physical table materialization.
type SchemaStore interface {
	// Materialize creates the physical table for a field list if it does not
	// exist, then verifies the table is actually usable. Some storage
	// engines acknowledge DDL before the catalog reflects it, so the
	// verification falls back to a disposable probe row when the catalog
	// lookup misses.
	Materialize(table string, fields model.FieldList) error

	// TableExists reports whether the table is present in the catalog.
	TableExists(table string) (bool, error)
}
