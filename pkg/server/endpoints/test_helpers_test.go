package endpoints

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/modelgrid/modelgrid/pkg/audit"
	"github.com/modelgrid/modelgrid/pkg/config"
	"github.com/modelgrid/modelgrid/pkg/model"
	"github.com/modelgrid/modelgrid/pkg/server"
	"github.com/modelgrid/modelgrid/pkg/server/middleware"
)

const testTokenSecret = "endpoint-test-secret"

func init() {
	audit.SetEnabled(false)
}

type testStores struct {
	definitions *mockDefinitionsStore
	records     *mockRecordsStore
	schema      *mockSchemaStore
	users       *mockUsersStore
	health      *mockHealthStore
}

// newTestServer builds a server over mocked stores with all endpoints
// registered. Requests go through the real token middleware, evaluator, and
// orchestrator.
func newTestServer(t *testing.T) (*server.Server, *testStores) {
	t.Helper()

	stores := &testStores{
		definitions: &mockDefinitionsStore{},
		records:     &mockRecordsStore{},
		schema:      &mockSchemaStore{},
		users:       &mockUsersStore{},
		health:      &mockHealthStore{},
	}

	cfg := &config.Config{
		BindAddress:   "127.0.0.1",
		Port:          "0",
		SuperuserRole: "Admin",
		TokenSecret:   testTokenSecret,
	}

	srv := server.NewServer(
		cfg,
		nil,
		stores.definitions,
		stores.records,
		stores.schema,
		stores.users,
		stores.health,
	)
	RegisterAll(srv)

	return srv, stores
}

func bearerToken(t *testing.T, userID, email, role string) string {
	t.Helper()

	claims := middleware.Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testTokenSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func adminToken(t *testing.T) string {
	return bearerToken(t, "admin-1", "admin@example.com", "Admin")
}

func editorToken(t *testing.T) string {
	return bearerToken(t, "user-1", "editor@example.com", "Editor")
}

func postDefinition() *model.ModelDefinition {
	return &model.ModelDefinition{
		ID:         "def-1",
		Name:       "Post",
		Table:      "posts",
		OwnerField: "authorId",
		Fields: model.FieldList{
			{Name: "title", Type: "string", Required: true},
			{Name: "authorId", Type: "string"},
		},
		RBAC: model.RBACMap{
			"Editor": {"create", "read", "update", "delete"},
			"Viewer": {"read"},
		},
		IsActive: true,
	}
}
