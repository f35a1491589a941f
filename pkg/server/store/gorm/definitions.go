package gorm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modelgrid/modelgrid/pkg/model"
	"github.com/modelgrid/modelgrid/pkg/schema"
	"github.com/modelgrid/modelgrid/pkg/server/store"
)

// Ensure DefinitionsStore implements store.DefinitionsStore
var _ store.DefinitionsStore = (*DefinitionsStore)(nil)

// DefinitionsStore implements the model-definition registry using GORM.
type DefinitionsStore struct {
	db     *gorm.DB
	schema store.SchemaStore
}

// NewDefinitionsStore creates a new DefinitionsStore. The schema store is
// invoked to materialize the physical table after the metadata write.
func NewDefinitionsStore(db *gorm.DB, schemaStore store.SchemaStore) *DefinitionsStore {
	return &DefinitionsStore{db: db, schema: schemaStore}
}

// deriveTableName lower-cases the model name and pluralizes by simple suffix.
func deriveTableName(name string) string {
	return strings.ToLower(name) + "s"
}

// Create validates the spec, persists the metadata row, and materializes the
// table. The uniqueness boundary is the table name, not the model name:
// reusing a logical name is allowed and only produces a warning.
//
// The metadata insert lands first; a partial unique index on active table
// names turns the concurrent-duplicate race into a 23505 mapped to
// ErrDuplicateTableName. If materialization then fails, the metadata row is
// removed again before the error is returned, so registry and physical layer
// cannot diverge into "registered but no table".
func (s *DefinitionsStore) Create(spec store.DefinitionSpec) (*model.ModelDefinition, string, error) {
	if err := schema.ValidateIdentifier(spec.Name); err != nil {
		return nil, "", err
	}

	table := spec.TableName
	if table == "" {
		table = deriveTableName(spec.Name)
	}
	if err := schema.ValidateIdentifier(table); err != nil {
		return nil, "", err
	}

	if err := schema.ValidateFieldSet(spec.Fields.Names()); err != nil {
		return nil, "", err
	}
	for _, field := range spec.Fields {
		if err := schema.ValidateFieldType(field.Type); err != nil {
			return nil, "", err
		}
	}
	if err := schema.ValidateRBAC(spec.RBAC); err != nil {
		return nil, "", err
	}
	if spec.OwnerField != "" && !spec.Fields.Has(spec.OwnerField) {
		return nil, "", fmt.Errorf("%w: owner field %q is not a declared field",
			schema.ErrInvalidIdentifier, spec.OwnerField)
	}

	// Fail fast on a visible duplicate; the unique index still guards the race.
	var taken int64
	if err := s.db.Model(&model.ModelDefinition{}).
		Where("table_name = ? AND is_active = ?", table, true).
		Count(&taken).Error; err != nil {
		return nil, "", fmt.Errorf("%w: %v", store.ErrWriteFailed, err)
	}
	if taken > 0 {
		return nil, "", fmt.Errorf("%w: %q", store.ErrDuplicateTableName, table)
	}

	warning := ""
	var sameName int64
	if err := s.db.Model(&model.ModelDefinition{}).
		Where("name = ? AND is_active = ?", spec.Name, true).
		Count(&sameName).Error; err != nil {
		return nil, "", fmt.Errorf("%w: %v", store.ErrWriteFailed, err)
	}
	if sameName > 0 {
		warning = fmt.Sprintf(
			"model name %q already has %d active instance(s); creating another table for it",
			spec.Name, sameName,
		)
	}

	def := &model.ModelDefinition{
		ID:         uuid.NewString(),
		Name:       spec.Name,
		Table:      table,
		Fields:     spec.Fields,
		OwnerField: spec.OwnerField,
		RBAC:       spec.RBAC,
		IsActive:   true,
	}
	if err := s.db.Create(def).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, "", fmt.Errorf("%w: %q", store.ErrDuplicateTableName, table)
		}
		return nil, "", fmt.Errorf("%w: %v", store.ErrWriteFailed, err)
	}

	if err := s.schema.Materialize(table, spec.Fields); err != nil {
		// Compensate so the registry never advertises a missing table.
		if delErr := s.db.Delete(&model.ModelDefinition{}, "id = ?", def.ID).Error; delErr != nil {
			return nil, "", fmt.Errorf(
				"%w (and metadata rollback failed: %v)", err, delErr)
		}
		return nil, "", err
	}

	return def, warning, nil
}

// FindActive resolves an active definition by logical name or table name.
// When several active definitions share a logical name the newest wins.
func (s *DefinitionsStore) FindActive(nameOrTable string) (*model.ModelDefinition, error) {
	var def model.ModelDefinition
	err := s.db.
		Where("(name = ? OR table_name = ?) AND is_active = ?", nameOrTable, nameOrTable, true).
		Order("created_at DESC").
		First(&def).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %q", store.ErrModelNotFound, nameOrTable)
		}
		return nil, err
	}
	return &def, nil
}

// FindByID fetches a definition by id, active or not. Deactivation hides a
// model from name resolution, not from direct id lookup.
func (s *DefinitionsStore) FindByID(id string) (*model.ModelDefinition, error) {
	var def model.ModelDefinition
	err := s.db.Where("id = ?", id).First(&def).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %q", store.ErrModelNotFound, id)
		}
		return nil, err
	}
	return &def, nil
}

// FindByName returns all active instances of a logical name, newest first.
func (s *DefinitionsStore) FindByName(name string) ([]model.ModelDefinition, error) {
	var defs []model.ModelDefinition
	err := s.db.
		Where("name = ? AND is_active = ?", name, true).
		Order("created_at DESC").
		Find(&defs).Error
	if err != nil {
		return nil, err
	}
	return defs, nil
}

// List returns all active definitions, newest first.
func (s *DefinitionsStore) List() ([]model.ModelDefinition, error) {
	var defs []model.ModelDefinition
	err := s.db.
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&defs).Error
	if err != nil {
		return nil, err
	}
	return defs, nil
}

// Deactivate flips is_active off. The physical table and its rows survive
// for audit and recovery.
func (s *DefinitionsStore) Deactivate(id string) error {
	result := s.db.Model(&model.ModelDefinition{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %q", store.ErrModelNotFound, id)
	}
	return nil
}

// DeactivateByNameAndTable flips is_active off for the active definition
// matching both the logical name and the table name.
func (s *DefinitionsStore) DeactivateByNameAndTable(name, table string) error {
	result := s.db.Model(&model.ModelDefinition{}).
		Where("name = ? AND table_name = ? AND is_active = ?", name, table, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %q/%q", store.ErrModelNotFound, name, table)
	}
	return nil
}
