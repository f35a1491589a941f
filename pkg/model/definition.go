package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Relation is descriptive metadata only; it is not enforced as a foreign key.
type Relation struct {
	Model string `json:"model"`
	Type  string `json:"type"`
}

// Field describes one column of a materialized table.
type Field struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Required bool      `json:"required"`
	Unique   bool      `json:"unique,omitempty"`
	Default  any       `json:"default,omitempty"`
	Relation *Relation `json:"relation,omitempty"`
}

// FieldList is the ordered field set of a definition, persisted as JSONB.
type FieldList []Field

func (f FieldList) Value() (driver.Value, error) {
	return json.Marshal(f)
}

func (f *FieldList) Scan(value any) error {
	return scanJSON(value, f)
}

// Names returns the field names in declaration order.
func (f FieldList) Names() []string {
	names := make([]string, 0, len(f))
	for _, field := range f {
		names = append(names, field.Name)
	}
	return names
}

// Has reports whether a field with the given name is declared.
func (f FieldList) Has(name string) bool {
	for _, field := range f {
		if field.Name == name {
			return true
		}
	}
	return false
}

// RBACMap maps a role name to the permission tokens it holds on a model,
// persisted as JSONB.
type RBACMap map[string][]string

func (m RBACMap) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *RBACMap) Scan(value any) error {
	return scanJSON(value, m)
}

// Allows reports whether the role holds the permission, honouring the "all"
// wildcard. A role absent from the map holds nothing.
func (m RBACMap) Allows(role, permission string) bool {
	for _, token := range m[role] {
		if token == permission || token == "all" {
			return true
		}
	}
	return false
}

// ModelDefinition is the schema contract for one logical model instance.
// Table names are globally unique among active definitions; logical names
// may repeat.
type ModelDefinition struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	Name       string    `gorm:"column:name" json:"name"`
	Table      string    `gorm:"column:table_name" json:"tableName"`
	Fields     FieldList `gorm:"column:fields;type:jsonb" json:"fields"`
	OwnerField string    `gorm:"column:owner_field" json:"ownerField,omitempty"`
	RBAC       RBACMap   `gorm:"column:rbac;type:jsonb" json:"rbac"`
	IsActive   bool      `gorm:"column:is_active" json:"isActive"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (ModelDefinition) TableName() string {
	return "model_definitions"
}

func scanJSON(value any, dest any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported type %T for JSON column", value)
	}
}
