package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/modelgrid/modelgrid/pkg/audit"
	"github.com/modelgrid/modelgrid/pkg/config"
	"github.com/modelgrid/modelgrid/pkg/identity"
	"github.com/modelgrid/modelgrid/pkg/model"
	"github.com/modelgrid/modelgrid/pkg/server"
	"github.com/modelgrid/modelgrid/pkg/server/store"
)

// CreateDefinitionResponse is the response from POST /model-definitions
type CreateDefinitionResponse struct {
	Message string                 `json:"message"`
	Model   *model.ModelDefinition `json:"model"`
	Warning string                 `json:"warning,omitempty"`
}

// ListDefinitionsResponse is the response from GET /model-definitions
type ListDefinitionsResponse struct {
	Models           []model.ModelDefinition            `json:"models"`
	GroupedByName    map[string][]model.ModelDefinition `json:"groupedByModelName"`
	Total            int                                `json:"total"`
	UniqueModelNames int                                `json:"uniqueModelNames"`
}

// DefinitionsByNameResponse is the response from GET /model-definitions/name/{name}
type DefinitionsByNameResponse struct {
	Name           string                  `json:"name"`
	Instances      []model.ModelDefinition `json:"instances"`
	TotalInstances int                     `json:"totalInstances"`
	Tables         []string                `json:"tables"`
}

// RegisterDefinitionsEndpoints registers the model-definition management
// endpoints. They are superuser-only: defining a model decides who can touch
// its data, so only the superuser role may do it.
func RegisterDefinitionsEndpoints(s *server.Server) {
	definitionsStore := s.DefinitionsStore
	cfg := s.Config

	router := s.Router.PathPrefix("/model-definitions").Subrouter()
	router.Use(s.TokenAuthenticator.Middleware)
	router.Use(requireSuperuser(cfg))

	router.HandleFunc("", handleCreateDefinition(definitionsStore)).Methods("POST")
	router.HandleFunc("", handleListDefinitions(definitionsStore)).Methods("GET")
	router.HandleFunc("/name/{name}", handleDefinitionsByName(definitionsStore)).Methods("GET")
	router.HandleFunc("/name/{name}/table/{table}", handleDeactivateByNameAndTable(definitionsStore)).Methods("DELETE")
	router.HandleFunc("/{id}", handleGetDefinition(definitionsStore)).Methods("GET")
	router.HandleFunc("/{id}", handleDeactivateDefinition(definitionsStore)).Methods("DELETE")
}

// requireSuperuser rejects callers whose role is not the configured
// superuser role.
func requireSuperuser(cfg *config.Config) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := identity.Get(r.Context())
			if !ok || caller == nil {
				respondWithError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if caller.Role != cfg.SuperuserRole {
				audit.Log(audit.CheckEvent{
					UserID:     caller.UserID,
					ClientIP:   caller.RemoteIP.String(),
					ModelName:  mux.Vars(r)["name"],
					Permission: "manage-definitions",
					Allowed:    false,
				})
				respondWithError(w, http.StatusForbidden, "insufficient permission")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func handleCreateDefinition(definitionsStore store.DefinitionsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := identity.Get(r.Context())

		var spec store.DefinitionSpec
		if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		def, warning, err := definitionsStore.Create(spec)
		if err != nil {
			audit.Log(audit.ModelEvent{
				UserID:       caller.UserID,
				ClientIP:     caller.RemoteIP.String(),
				ModelName:    spec.Name,
				Operation:    "create",
				Success:      false,
				ErrorMessage: err.Error(),
			})
			respondWithMappedError(w, err)
			return
		}

		audit.Log(audit.ModelEvent{
			UserID:    caller.UserID,
			ClientIP:  caller.RemoteIP.String(),
			ModelName: def.Name,
			TableName: def.Table,
			Operation: "create",
			Success:   true,
		})

		respondWithJSON(w, http.StatusCreated, CreateDefinitionResponse{
			Message: fmt.Sprintf("Model %q created with table %q", def.Name, def.Table),
			Model:   def,
			Warning: warning,
		})
	}
}

func handleListDefinitions(definitionsStore store.DefinitionsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defs, err := definitionsStore.List()
		if err != nil {
			respondWithMappedError(w, err)
			return
		}

		grouped := make(map[string][]model.ModelDefinition)
		for _, def := range defs {
			grouped[def.Name] = append(grouped[def.Name], def)
		}

		respondWithJSON(w, http.StatusOK, ListDefinitionsResponse{
			Models:           defs,
			GroupedByName:    grouped,
			Total:            len(defs),
			UniqueModelNames: len(grouped),
		})
	}
}

func handleGetDefinition(definitionsStore store.DefinitionsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		def, err := definitionsStore.FindByID(id)
		if err != nil {
			respondWithMappedError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, def)
	}
}

func handleDefinitionsByName(definitionsStore store.DefinitionsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]

		defs, err := definitionsStore.FindByName(name)
		if err != nil {
			respondWithMappedError(w, err)
			return
		}
		if len(defs) == 0 {
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("no active model named %q", name))
			return
		}

		tables := make([]string, 0, len(defs))
		for _, def := range defs {
			tables = append(tables, def.Table)
		}

		respondWithJSON(w, http.StatusOK, DefinitionsByNameResponse{
			Name:           name,
			Instances:      defs,
			TotalInstances: len(defs),
			Tables:         tables,
		})
	}
}

func handleDeactivateDefinition(definitionsStore store.DefinitionsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := identity.Get(r.Context())
		id := mux.Vars(r)["id"]

		def, err := definitionsStore.FindByID(id)
		if err != nil {
			respondWithMappedError(w, err)
			return
		}

		if err := definitionsStore.Deactivate(id); err != nil {
			respondWithMappedError(w, err)
			return
		}

		audit.Log(audit.ModelEvent{
			UserID:    caller.UserID,
			ClientIP:  caller.RemoteIP.String(),
			ModelName: def.Name,
			TableName: def.Table,
			Operation: "deactivate",
			Success:   true,
		})

		respondWithJSON(w, http.StatusOK, map[string]string{
			"message": fmt.Sprintf("Model %q deactivated; table %q is retained", def.Name, def.Table),
		})
	}
}

func handleDeactivateByNameAndTable(definitionsStore store.DefinitionsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := identity.Get(r.Context())
		vars := mux.Vars(r)
		name := vars["name"]
		table := vars["table"]

		if err := definitionsStore.DeactivateByNameAndTable(name, table); err != nil {
			respondWithMappedError(w, err)
			return
		}

		audit.Log(audit.ModelEvent{
			UserID:    caller.UserID,
			ClientIP:  caller.RemoteIP.String(),
			ModelName: name,
			TableName: table,
			Operation: "deactivate",
			Success:   true,
		})

		respondWithJSON(w, http.StatusOK, map[string]string{
			"message": fmt.Sprintf("Model %q deactivated; table %q is retained", name, table),
		})
	}
}
