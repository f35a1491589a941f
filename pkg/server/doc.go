// Package server provides the HTTP server for the ModelGrid API.
//
// This package wires the stores, the permission evaluator, and the CRUD
// orchestrator behind a gorilla/mux router. Endpoints are registered by the
// endpoints subpackage; requests pass through the token middleware before
// reaching any handler except /status.
//
// # Server Setup
//
//	s := server.NewServer(cfg, db, definitionsStore, recordsStore, schemaStore, usersStore, healthStore)
//	endpoints.RegisterAll(s)
//	log.Fatal(s.Start())
//
// # Endpoints
//
// The endpoints subpackage registers:
//
//   - /status - public health check
//   - /whoami - token introspection
//   - /model-definitions - model definition management (superuser only)
//   - /dynamic/{modelName} - record CRUD for runtime-defined models
package server
