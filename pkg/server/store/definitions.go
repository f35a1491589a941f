package store

import "github.com/modelgrid/modelgrid/pkg/model"

// DefinitionSpec is the caller-supplied input for creating a model
// definition. TableName is optional; when empty it is derived from Name.
type DefinitionSpec struct {
	Name       string          `json:"name" yaml:"name"`
	TableName  string          `json:"tableName,omitempty" yaml:"tableName,omitempty"`
	Fields     model.FieldList `json:"fields" yaml:"fields"`
	OwnerField string          `json:"ownerField,omitempty" yaml:"ownerField,omitempty"`
	RBAC       model.RBACMap   `json:"rbac" yaml:"rbac"`
}

// DefinitionsStore abstracts the model-definition registry.
type DefinitionsStore interface {
	// Create validates the spec, persists the metadata, and materializes the
	// physical table. The returned warning is non-empty when the logical name
	// is already in use by another active definition (an allowed versioning
	// mechanism). On materialization failure the metadata write is rolled
	// back and ErrTableCreationFailed is returned.
	Create(spec DefinitionSpec) (*model.ModelDefinition, string, error)

	// FindActive resolves an active definition by logical name or table name.
	FindActive(nameOrTable string) (*model.ModelDefinition, error)

	// FindByID fetches a definition by id regardless of its active flag.
	FindByID(id string) (*model.ModelDefinition, error)

	// FindByName returns all active definitions sharing a logical name.
	FindByName(name string) ([]model.ModelDefinition, error)

	// List returns all active definitions, newest first.
	List() ([]model.ModelDefinition, error)

	// Deactivate soft-deletes a definition. The physical table and its rows
	// are retained.
	Deactivate(id string) error

	// DeactivateByNameAndTable soft-deletes the active definition matching
	// both the logical name and the table name.
	DeactivateByNameAndTable(name, table string) error
}
