package gorm

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/modelgrid/modelgrid/pkg/model"
	"github.com/modelgrid/modelgrid/pkg/schema"
	"github.com/modelgrid/modelgrid/pkg/server/store"
)

// stubSchemaStore lets registry tests control materialization outcomes
// without DDL expectations.
type stubSchemaStore struct {
	materializeErr error
	materialized   []string
}

func (s *stubSchemaStore) Materialize(table string, fields model.FieldList) error {
	s.materialized = append(s.materialized, table)
	return s.materializeErr
}

func (s *stubSchemaStore) TableExists(table string) (bool, error) {
	return true, nil
}

func productSpec() store.DefinitionSpec {
	return store.DefinitionSpec{
		Name: "Product",
		Fields: model.FieldList{
			{Name: "name", Type: schema.TypeString, Required: true},
			{Name: "price", Type: schema.TypeNumber},
		},
		RBAC: model.RBACMap{
			"Admin":  {"all"},
			"Editor": {"create", "read", "update"},
		},
	}
}

func expectActiveCount(mock sqlmock.Sqlmock, column string, count int) {
	mock.ExpectQuery(`SELECT count\(.+\) FROM "model_definitions" WHERE ` + column + ` = .+ AND is_active = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

func TestDefinitionsCreate(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	stub := &stubSchemaStore{}
	definitionsStore := NewDefinitionsStore(gormDB, stub)

	expectActiveCount(mock, "table_name", 0)
	expectActiveCount(mock, "name", 0)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "model_definitions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	def, warning, err := definitionsStore.Create(productSpec())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if warning != "" {
		t.Errorf("Create() warning = %q, want empty", warning)
	}
	if def.Table != "products" {
		t.Errorf("Create() table = %q, want products", def.Table)
	}
	if !def.IsActive {
		t.Error("Create() definition should be active")
	}
	if len(stub.materialized) != 1 || stub.materialized[0] != "products" {
		t.Errorf("Create() materialized = %v, want [products]", stub.materialized)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDefinitionsCreateDuplicateTable(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	stub := &stubSchemaStore{}
	definitionsStore := NewDefinitionsStore(gormDB, stub)

	expectActiveCount(mock, "table_name", 1)

	_, _, err := definitionsStore.Create(productSpec())
	if !errors.Is(err, store.ErrDuplicateTableName) {
		t.Errorf("Create() error = %v, want ErrDuplicateTableName", err)
	}
	if len(stub.materialized) != 0 {
		t.Error("Create() should not materialize after a duplicate table name")
	}
}

func TestDefinitionsCreateNameReuseWarning(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	definitionsStore := NewDefinitionsStore(gormDB, &stubSchemaStore{})

	spec := productSpec()
	spec.TableName = "products_v2"

	expectActiveCount(mock, "table_name", 0)
	expectActiveCount(mock, "name", 1)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "model_definitions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, warning, err := definitionsStore.Create(spec)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if warning == "" {
		t.Error("Create() expected a name-reuse warning")
	}
}

func TestDefinitionsCreateUniqueIndexRace(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	definitionsStore := NewDefinitionsStore(gormDB, &stubSchemaStore{})

	expectActiveCount(mock, "table_name", 0)
	expectActiveCount(mock, "name", 0)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "model_definitions"`).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	_, _, err := definitionsStore.Create(productSpec())
	if !errors.Is(err, store.ErrDuplicateTableName) {
		t.Errorf("Create() error = %v, want ErrDuplicateTableName", err)
	}
}

func TestDefinitionsCreateRollsBackMetadataOnMaterializeFailure(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	stub := &stubSchemaStore{
		materializeErr: store.ErrTableCreationFailed,
	}
	definitionsStore := NewDefinitionsStore(gormDB, stub)

	expectActiveCount(mock, "table_name", 0)
	expectActiveCount(mock, "name", 0)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "model_definitions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "model_definitions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, _, err := definitionsStore.Create(productSpec())
	if !errors.Is(err, store.ErrTableCreationFailed) {
		t.Errorf("Create() error = %v, want ErrTableCreationFailed", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDefinitionsCreateValidation(t *testing.T) {
	gormDB, _, db := newMockDB(t)
	defer db.Close()

	definitionsStore := NewDefinitionsStore(gormDB, &stubSchemaStore{})

	tests := []struct {
		name    string
		mutate  func(*store.DefinitionSpec)
		wantErr error
	}{
		{
			"bad model name",
			func(s *store.DefinitionSpec) { s.Name = "Pro duct" },
			schema.ErrInvalidIdentifier,
		},
		{
			"reserved field name",
			func(s *store.DefinitionSpec) {
				s.Fields = append(s.Fields, model.Field{Name: "id", Type: schema.TypeString})
			},
			schema.ErrReservedFieldName,
		},
		{
			"duplicate field name",
			func(s *store.DefinitionSpec) {
				s.Fields = append(s.Fields, model.Field{Name: "name", Type: schema.TypeText})
			},
			schema.ErrDuplicateField,
		},
		{
			"unsupported field type",
			func(s *store.DefinitionSpec) {
				s.Fields = append(s.Fields, model.Field{Name: "blob", Type: "bytea"})
			},
			schema.ErrUnsupportedType,
		},
		{
			"unknown permission token",
			func(s *store.DefinitionSpec) { s.RBAC["Viewer"] = []string{"browse"} },
			schema.ErrInvalidPermission,
		},
		{
			"owner field not declared",
			func(s *store.DefinitionSpec) { s.OwnerField = "createdBy" },
			schema.ErrInvalidIdentifier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := productSpec()
			tt.mutate(&spec)
			_, _, err := definitionsStore.Create(spec)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func definitionRow() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "name", "table_name", "fields", "owner_field", "rbac", "is_active", "created_at", "updated_at",
	}).AddRow(
		"def-1", "Product", "products",
		[]byte(`[{"name":"name","type":"string","required":true}]`),
		"",
		[]byte(`{"Admin":["all"]}`),
		true, now, now,
	)
}

func TestDefinitionsFindActive(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	definitionsStore := NewDefinitionsStore(gormDB, &stubSchemaStore{})

	mock.ExpectQuery(`SELECT \* FROM "model_definitions" WHERE \(name = .+ OR table_name = .+\) AND is_active = .+ ORDER BY created_at DESC`).
		WithArgs("products", "products", true).
		WillReturnRows(definitionRow())

	def, err := definitionsStore.FindActive("products")
	if err != nil {
		t.Fatalf("FindActive() error = %v", err)
	}
	if def.Name != "Product" {
		t.Errorf("FindActive() name = %q, want Product", def.Name)
	}
	if !def.Fields.Has("name") {
		t.Error("FindActive() fields were not decoded from JSONB")
	}
	if !def.RBAC.Allows("Admin", "delete") {
		t.Error("FindActive() rbac was not decoded from JSONB")
	}
}

func TestDefinitionsFindActiveNotFound(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	definitionsStore := NewDefinitionsStore(gormDB, &stubSchemaStore{})

	mock.ExpectQuery(`SELECT \* FROM "model_definitions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := definitionsStore.FindActive("ghosts")
	if !errors.Is(err, store.ErrModelNotFound) {
		t.Errorf("FindActive() error = %v, want ErrModelNotFound", err)
	}
}

func TestDefinitionsDeactivate(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	definitionsStore := NewDefinitionsStore(gormDB, &stubSchemaStore{})

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "model_definitions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := definitionsStore.Deactivate("def-1"); err != nil {
		t.Errorf("Deactivate() error = %v", err)
	}
}

func TestDefinitionsDeactivateNotFound(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	definitionsStore := NewDefinitionsStore(gormDB, &stubSchemaStore{})

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "model_definitions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := definitionsStore.Deactivate("missing")
	if !errors.Is(err, store.ErrModelNotFound) {
		t.Errorf("Deactivate() error = %v, want ErrModelNotFound", err)
	}
}

func TestDefinitionsDeactivateByNameAndTable(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	definitionsStore := NewDefinitionsStore(gormDB, &stubSchemaStore{})

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "model_definitions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := definitionsStore.DeactivateByNameAndTable("Product", "products"); err != nil {
		t.Errorf("DeactivateByNameAndTable() error = %v", err)
	}
}
