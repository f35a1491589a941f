package authz

import (
	"github.com/stretchr/testify/mock"

	"github.com/modelgrid/modelgrid/pkg/model"
	"github.com/modelgrid/modelgrid/pkg/server/store"
)

type mockDefinitionsStore struct {
	mock.Mock
}

func (m *mockDefinitionsStore) Create(spec store.DefinitionSpec) (*model.ModelDefinition, string, error) {
	args := m.Called(spec)
	def, _ := args.Get(0).(*model.ModelDefinition)
	return def, args.String(1), args.Error(2)
}

func (m *mockDefinitionsStore) FindActive(nameOrTable string) (*model.ModelDefinition, error) {
	args := m.Called(nameOrTable)
	def, _ := args.Get(0).(*model.ModelDefinition)
	return def, args.Error(1)
}

func (m *mockDefinitionsStore) FindByID(id string) (*model.ModelDefinition, error) {
	args := m.Called(id)
	def, _ := args.Get(0).(*model.ModelDefinition)
	return def, args.Error(1)
}

func (m *mockDefinitionsStore) FindByName(name string) ([]model.ModelDefinition, error) {
	args := m.Called(name)
	defs, _ := args.Get(0).([]model.ModelDefinition)
	return defs, args.Error(1)
}

func (m *mockDefinitionsStore) List() ([]model.ModelDefinition, error) {
	args := m.Called()
	defs, _ := args.Get(0).([]model.ModelDefinition)
	return defs, args.Error(1)
}

func (m *mockDefinitionsStore) Deactivate(id string) error {
	return m.Called(id).Error(0)
}

func (m *mockDefinitionsStore) DeactivateByNameAndTable(name, table string) error {
	return m.Called(name, table).Error(0)
}

type mockRecordsStore struct {
	mock.Mock
}

func (m *mockRecordsStore) Create(table string, data store.Record) (store.Record, error) {
	args := m.Called(table, data)
	record, _ := args.Get(0).(store.Record)
	return record, args.Error(1)
}

func (m *mockRecordsStore) FindAll(table string, filters map[string]any) ([]store.Record, error) {
	args := m.Called(table, filters)
	records, _ := args.Get(0).([]store.Record)
	return records, args.Error(1)
}

func (m *mockRecordsStore) FindByID(table, id string) (store.Record, error) {
	args := m.Called(table, id)
	record, _ := args.Get(0).(store.Record)
	return record, args.Error(1)
}

func (m *mockRecordsStore) Update(table, id string, data store.Record) (store.Record, error) {
	args := m.Called(table, id, data)
	record, _ := args.Get(0).(store.Record)
	return record, args.Error(1)
}

func (m *mockRecordsStore) Delete(table, id string) error {
	return m.Called(table, id).Error(0)
}
