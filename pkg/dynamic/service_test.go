package dynamic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/modelgrid/modelgrid/pkg/authz"
	"github.com/modelgrid/modelgrid/pkg/identity"
	"github.com/modelgrid/modelgrid/pkg/model"
	"github.com/modelgrid/modelgrid/pkg/server/store"
)

type stubAuthorizer struct {
	def     *model.ModelDefinition
	err     error
	lastChk authz.Check
}

func (s *stubAuthorizer) Authorize(caller *identity.Identity, check authz.Check) (*model.ModelDefinition, error) {
	s.lastChk = check
	if s.err != nil {
		return nil, s.err
	}
	return s.def, nil
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

func articleDefinition() *model.ModelDefinition {
	return &model.ModelDefinition{
		ID:         "def-1",
		Name:       "Article",
		Table:      "articles",
		OwnerField: "authorId",
		Fields: model.FieldList{
			{Name: "title", Type: "string", Required: true},
			{Name: "authorId", Type: "string"},
		},
		RBAC:     model.RBACMap{"Editor": {"all"}},
		IsActive: true,
	}
}

func TestCreateRecordInjectsOwner(t *testing.T) {
	records := &mockRecordsStore{}
	records.On("Create", "articles", store.Record{
		"title":    "Hello",
		"authorId": "user-1",
	}).Return(store.Record{"id": "rec-1", "title": "Hello", "authorId": "user-1"}, nil)

	service := NewService(&stubAuthorizer{def: articleDefinition()}, records)

	caller := &identity.Identity{UserID: "user-1", Role: "Editor"}
	record, err := service.CreateRecord(caller, "Article", store.Record{
		"title":    "Hello",
		"authorId": "spoofed-user", // overwritten by the caller's id
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", record["authorId"])
	records.AssertExpectations(t)
}

func TestCreateRecordStripsServerColumns(t *testing.T) {
	records := &mockRecordsStore{}
	records.On("Create", "articles", store.Record{
		"title":    "Hello",
		"authorId": "user-1",
	}).Return(store.Record{"id": "rec-1"}, nil)

	service := NewService(&stubAuthorizer{def: articleDefinition()}, records)

	caller := &identity.Identity{UserID: "user-1", Role: "Editor"}
	_, err := service.CreateRecord(caller, "Article", store.Record{
		"title":     "Hello",
		"id":        "attacker-chosen",
		"createdAt": "1970-01-01",
	})
	require.NoError(t, err)
	records.AssertExpectations(t)
}

func TestCreateRecordRejectsUndeclaredField(t *testing.T) {
	service := NewService(&stubAuthorizer{def: articleDefinition()}, &mockRecordsStore{})

	caller := &identity.Identity{UserID: "user-1", Role: "Editor"}
	_, err := service.CreateRecord(caller, "Article", store.Record{"rating": 5})
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestCreateRecordDeniedByAuthorizer(t *testing.T) {
	service := NewService(&stubAuthorizer{err: authz.ErrInsufficientPermission}, &mockRecordsStore{})

	caller := &identity.Identity{UserID: "user-1", Role: "Intern"}
	_, err := service.CreateRecord(caller, "Article", store.Record{"title": "Hello"})
	assert.ErrorIs(t, err, authz.ErrInsufficientPermission)
}

func TestListRecordsPassesFilters(t *testing.T) {
	records := &mockRecordsStore{}
	records.On("FindAll", "articles", map[string]any{"authorId": "user-1"}).
		Return([]store.Record{{"id": "rec-1"}}, nil)

	service := NewService(&stubAuthorizer{def: articleDefinition()}, records)

	caller := &identity.Identity{UserID: "user-1", Role: "Editor"}
	result, err := service.ListRecords(caller, "Article", map[string]any{"authorId": "user-1"})
	require.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestListRecordsRejectsUndeclaredFilter(t *testing.T) {
	service := NewService(&stubAuthorizer{def: articleDefinition()}, &mockRecordsStore{})

	caller := &identity.Identity{UserID: "user-1", Role: "Editor"}
	_, err := service.ListRecords(caller, "Article", map[string]any{"secret": "x"})
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestUpdateRecordCarriesRecordIDIntoCheck(t *testing.T) {
	records := &mockRecordsStore{}
	records.On("Update", "articles", "rec-1", store.Record{"title": "Edited"}).
		Return(store.Record{"id": "rec-1", "title": "Edited"}, nil)

	authorizer := &stubAuthorizer{def: articleDefinition()}
	service := NewService(authorizer, records)

	caller := &identity.Identity{UserID: "user-1", Role: "Editor"}
	_, err := service.UpdateRecord(caller, "Article", "rec-1", store.Record{"title": "Edited"})
	require.NoError(t, err)
	assert.Equal(t, "rec-1", authorizer.lastChk.RecordID)
	assert.Equal(t, "update", authorizer.lastChk.Permission)
}

func TestDeleteRecord(t *testing.T) {
	records := &mockRecordsStore{}
	records.On("Delete", "articles", "rec-1").Return(nil)

	authorizer := &stubAuthorizer{def: articleDefinition()}
	service := NewService(authorizer, records)

	caller := &identity.Identity{UserID: "user-1", Role: "Editor"}
	require.NoError(t, service.DeleteRecord(caller, "Article", "rec-1"))
	assert.Equal(t, "delete", authorizer.lastChk.Permission)
	records.AssertExpectations(t)
}

func TestDeleteRecordNotFoundPassesThrough(t *testing.T) {
	records := &mockRecordsStore{}
	records.On("Delete", "articles", "rec-404").Return(store.ErrRecordNotFound)

	service := NewService(&stubAuthorizer{def: articleDefinition()}, records)

	caller := &identity.Identity{UserID: "user-1", Role: "Editor"}
	err := service.DeleteRecord(caller, "Article", "rec-404")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}
