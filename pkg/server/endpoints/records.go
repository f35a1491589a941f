package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/modelgrid/modelgrid/pkg/audit"
	"github.com/modelgrid/modelgrid/pkg/authz"
	"github.com/modelgrid/modelgrid/pkg/dynamic"
	"github.com/modelgrid/modelgrid/pkg/identity"
	"github.com/modelgrid/modelgrid/pkg/server"
	"github.com/modelgrid/modelgrid/pkg/server/store"
)

// RegisterDynamicEndpoints registers the record CRUD endpoints for
// runtime-defined models.
func RegisterDynamicEndpoints(s *server.Server) {
	service := s.Dynamic

	router := s.Router.PathPrefix("/dynamic").Subrouter()
	router.Use(s.TokenAuthenticator.Middleware)

	router.HandleFunc("/{modelName}", handleCreateRecord(service)).Methods("POST")
	router.HandleFunc("/{modelName}", handleListRecords(service)).Methods("GET")
	router.HandleFunc("/{modelName}/{id}", handleGetRecord(service)).Methods("GET")
	router.HandleFunc("/{modelName}/{id}", handleUpdateRecord(service)).Methods("PUT")
	router.HandleFunc("/{modelName}/{id}", handleDeleteRecord(service)).Methods("DELETE")
}

func handleCreateRecord(service *dynamic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := identity.Get(r.Context())
		modelName := mux.Vars(r)["modelName"]

		var data store.Record
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		record, err := service.CreateRecord(caller, modelName, data)
		if err != nil {
			auditRecordFailure(caller, modelName, "", "create", err)
			respondWithMappedError(w, err)
			return
		}

		recordID, _ := record["id"].(string)
		auditRecordSuccess(caller, modelName, recordID, "create")

		respondWithJSON(w, http.StatusCreated, record)
	}
}

func handleListRecords(service *dynamic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := identity.Get(r.Context())
		modelName := mux.Vars(r)["modelName"]

		var filters map[string]any
		if query := r.URL.Query(); len(query) > 0 {
			filters = make(map[string]any, len(query))
			for key, values := range query {
				if len(values) > 0 {
					filters[key] = values[0]
				}
			}
		}

		records, err := service.ListRecords(caller, modelName, filters)
		if err != nil {
			respondWithMappedError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, records)
	}
}

func handleGetRecord(service *dynamic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := identity.Get(r.Context())
		vars := mux.Vars(r)

		record, err := service.GetRecord(caller, vars["modelName"], vars["id"])
		if err != nil {
			respondWithMappedError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, record)
	}
}

func handleUpdateRecord(service *dynamic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := identity.Get(r.Context())
		vars := mux.Vars(r)
		modelName := vars["modelName"]
		id := vars["id"]

		var data store.Record
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		record, err := service.UpdateRecord(caller, modelName, id, data)
		if err != nil {
			auditRecordFailure(caller, modelName, id, "update", err)
			respondWithMappedError(w, err)
			return
		}

		auditRecordSuccess(caller, modelName, id, "update")

		respondWithJSON(w, http.StatusOK, record)
	}
}

func handleDeleteRecord(service *dynamic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := identity.Get(r.Context())
		vars := mux.Vars(r)
		modelName := vars["modelName"]
		id := vars["id"]

		if err := service.DeleteRecord(caller, modelName, id); err != nil {
			auditRecordFailure(caller, modelName, id, "delete", err)
			respondWithMappedError(w, err)
			return
		}

		auditRecordSuccess(caller, modelName, id, "delete")

		respondWithJSON(w, http.StatusOK, map[string]string{
			"message": fmt.Sprintf("Record %q deleted from %q", id, modelName),
		})
	}
}

func auditRecordSuccess(caller *identity.Identity, modelName, recordID, operation string) {
	if caller == nil {
		return
	}
	audit.Log(audit.RecordEvent{
		UserID:    caller.UserID,
		ClientIP:  caller.RemoteIP.String(),
		ModelName: modelName,
		RecordID:  recordID,
		Operation: operation,
		Success:   true,
	})
}

// auditRecordFailure emits a CheckEvent for authorization denials and a
// failed RecordEvent for everything else.
func auditRecordFailure(caller *identity.Identity, modelName, recordID, operation string, err error) {
	if caller == nil {
		return
	}
	if errors.Is(err, authz.ErrInsufficientPermission) || errors.Is(err, authz.ErrNotOwner) {
		audit.Log(audit.CheckEvent{
			UserID:       caller.UserID,
			ClientIP:     caller.RemoteIP.String(),
			ModelName:    modelName,
			Permission:   operation,
			Allowed:      false,
			ErrorMessage: err.Error(),
		})
		return
	}
	audit.Log(audit.RecordEvent{
		UserID:       caller.UserID,
		ClientIP:     caller.RemoteIP.String(),
		ModelName:    modelName,
		RecordID:     recordID,
		Operation:    operation,
		Success:      false,
		ErrorMessage: err.Error(),
	})
}
