package dynamic

import (
	"errors"
	"fmt"

	"github.com/modelgrid/modelgrid/pkg/authz"
	"github.com/modelgrid/modelgrid/pkg/identity"
	"github.com/modelgrid/modelgrid/pkg/model"
	"github.com/modelgrid/modelgrid/pkg/schema"
	"github.com/modelgrid/modelgrid/pkg/server/store"
)

// ErrUnknownField means a payload or filter names a field the model does not
// declare. Reported before any SQL is built.
var ErrUnknownField = errors.New("unknown field")

// Authorizer answers whether a caller may perform an operation on a model,
// returning the definition the decision was made against.
type Authorizer interface {
	Authorize(caller *identity.Identity, check authz.Check) (*model.ModelDefinition, error)
}

// Service is the orchestrator in front of the records store. Every operation
// authorizes first, then restricts the payload to declared fields, then
// delegates.
type Service struct {
	authorizer Authorizer
	records    store.RecordsStore
}

// NewService creates a Service.
func NewService(authorizer Authorizer, records store.RecordsStore) *Service {
	return &Service{authorizer: authorizer, records: records}
}

// CreateRecord inserts a row into the model's table. Server-owned columns are
// stripped from the payload, and when the model declares an owner field the
// caller's id is written into it regardless of what the payload says. This is
// the only place identity crosses into row data.
func (s *Service) CreateRecord(caller *identity.Identity, modelName string, data store.Record) (store.Record, error) {
	def, err := s.authorizer.Authorize(caller, authz.Check{
		ModelName:  modelName,
		Permission: schema.PermissionCreate,
	})
	if err != nil {
		return nil, err
	}

	payload := stripServerColumns(data)
	if err := checkDeclaredFields(def, payload); err != nil {
		return nil, err
	}

	if def.OwnerField != "" && caller != nil {
		payload[def.OwnerField] = caller.UserID
	}

	return s.records.Create(def.Table, payload)
}

// ListRecords returns the model's rows, newest first, optionally narrowed by
// equality filters over declared fields (or id).
func (s *Service) ListRecords(caller *identity.Identity, modelName string, filters map[string]any) ([]store.Record, error) {
	def, err := s.authorizer.Authorize(caller, authz.Check{
		ModelName:  modelName,
		Permission: schema.PermissionRead,
	})
	if err != nil {
		return nil, err
	}

	for key := range filters {
		if key == "id" || def.Fields.Has(key) {
			continue
		}
		return nil, fmt.Errorf("%w: filter %q on model %q", ErrUnknownField, key, def.Name)
	}

	return s.records.FindAll(def.Table, filters)
}

// GetRecord fetches one row by id.
func (s *Service) GetRecord(caller *identity.Identity, modelName, id string) (store.Record, error) {
	def, err := s.authorizer.Authorize(caller, authz.Check{
		ModelName:  modelName,
		Permission: schema.PermissionRead,
	})
	if err != nil {
		return nil, err
	}
	return s.records.FindByID(def.Table, id)
}

// UpdateRecord applies the payload to one row. The ownership check, when the
// model declares an owner field, happens inside authorization.
func (s *Service) UpdateRecord(caller *identity.Identity, modelName, id string, data store.Record) (store.Record, error) {
	def, err := s.authorizer.Authorize(caller, authz.Check{
		ModelName:  modelName,
		Permission: schema.PermissionUpdate,
		RecordID:   id,
	})
	if err != nil {
		return nil, err
	}

	payload := stripServerColumns(data)
	if err := checkDeclaredFields(def, payload); err != nil {
		return nil, err
	}

	return s.records.Update(def.Table, id, payload)
}

// DeleteRecord removes one row.
func (s *Service) DeleteRecord(caller *identity.Identity, modelName, id string) error {
	def, err := s.authorizer.Authorize(caller, authz.Check{
		ModelName:  modelName,
		Permission: schema.PermissionDelete,
		RecordID:   id,
	})
	if err != nil {
		return err
	}
	return s.records.Delete(def.Table, id)
}

// stripServerColumns drops the columns the engine owns from a caller payload.
func stripServerColumns(data store.Record) store.Record {
	payload := make(store.Record, len(data))
	for key, value := range data {
		switch key {
		case "id", "createdAt", "updatedAt":
			continue
		}
		payload[key] = value
	}
	return payload
}

// checkDeclaredFields rejects payload keys the definition does not declare.
func checkDeclaredFields(def *model.ModelDefinition, payload store.Record) error {
	for key := range payload {
		if !def.Fields.Has(key) {
			return fmt.Errorf("%w: %q on model %q", ErrUnknownField, key, def.Name)
		}
	}
	return nil
}
