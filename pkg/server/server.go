package server

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/modelgrid/modelgrid/pkg/authz"
	"github.com/modelgrid/modelgrid/pkg/config"
	"github.com/modelgrid/modelgrid/pkg/dynamic"
	"github.com/modelgrid/modelgrid/pkg/server/middleware"
	"github.com/modelgrid/modelgrid/pkg/server/store"
)

// Server wires the stores, the evaluator, and the orchestrator behind a mux
// router. Endpoints pull their collaborators from here at registration time.
type Server struct {
	Router *mux.Router
	DB     *gorm.DB
	Config *config.Config

	DefinitionsStore store.DefinitionsStore
	RecordsStore     store.RecordsStore
	SchemaStore      store.SchemaStore
	UsersStore       store.UsersStore
	HealthStore      store.HealthStore

	Evaluator *authz.Evaluator
	Dynamic   *dynamic.Service

	TokenAuthenticator *middleware.TokenAuthenticator

	srv *http.Server
}

func NewServer(
	cfg *config.Config,
	db *gorm.DB,
	definitionsStore store.DefinitionsStore,
	recordsStore store.RecordsStore,
	schemaStore store.SchemaStore,
	usersStore store.UsersStore,
	healthStore store.HealthStore,
) *Server {
	evaluator := authz.NewEvaluator(definitionsStore, recordsStore, cfg.SuperuserRole)

	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    cfg.BindAddress + ":" + cfg.Port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Router:             router,
		DB:                 db,
		Config:             cfg,
		DefinitionsStore:   definitionsStore,
		RecordsStore:       recordsStore,
		SchemaStore:        schemaStore,
		UsersStore:         usersStore,
		HealthStore:        healthStore,
		Evaluator:          evaluator,
		Dynamic:            dynamic.NewService(evaluator, recordsStore),
		TokenAuthenticator: middleware.NewTokenAuthenticator([]byte(cfg.TokenSecret)),
		srv:                srv,
	}
}

func (s Server) Start() error {
	return s.srv.ListenAndServe()
}
