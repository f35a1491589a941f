// Package store provides storage abstractions for the modelgrid server.
//
// This package defines interfaces for database operations, allowing the
// server endpoints, the permission evaluator, and the orchestrator to be
// decoupled from the specific database implementation. This enables easier
// testing with mocks and potential support for different storage backends.
//
// # Available Stores
//
//   - DefinitionsStore: model-definition registry (create, resolve, deactivate)
//   - SchemaStore: physical table materialization and verification
//   - RecordsStore: generic CRUD against dynamically materialized tables
//   - UsersStore: user rows consumed by the permission evaluator
//   - HealthStore: connectivity checks
//
// # Usage
//
//	definitions := gorm.NewDefinitionsStore(db, schemaStore)
//	def, warning, err := definitions.Create(spec)
//	if err != nil {
//	    if errors.Is(err, store.ErrDuplicateTableName) {
//	        // Handle conflict
//	    }
//	}
package store
