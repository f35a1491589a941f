// Package main provides modelgridctl, the CLI for the ModelGrid dynamic
// model engine.
//
// ModelGrid stores model definitions (fields, ownership, role permissions) in
// a registry table, materializes a physical PostgreSQL table per definition,
// and serves generic CRUD endpoints whose behavior is driven entirely by the
// stored metadata.
//
// # Architecture
//
// The server is organized into several packages:
//
//   - pkg/server: HTTP server and routing
//   - pkg/server/endpoints: REST API endpoint handlers
//   - pkg/server/store: store interfaces and the gorm-backed implementations
//   - pkg/schema: identifier and type validation, DDL rendering
//   - pkg/authz: the permission evaluator (RBAC plus record ownership)
//   - pkg/dynamic: the CRUD orchestrator for runtime-defined models
//   - pkg/model: database models
//   - pkg/db: database connection utilities
//   - pkg/audit: audit logging
//   - pkg/config: configuration management
//
// # Quick Start
//
//	# Run database migrations
//	modelgridctl db migrate
//
//	# Create a user the evaluator can authorize
//	modelgridctl user create admin@example.com Admin
//
//	# Start the server
//	modelgridctl server
//
//	# Load model definitions from a YAML file
//	modelgridctl definitions load ./models.yml
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - MODELGRID_TOKEN_SECRET: HS256 key for verifying bearer tokens
//   - MODELGRID_CONFIG_PATH: Directory holding modelgrid.yml
//   - MODELGRID_LOG_LEVEL: Log level (debug enables SQL logging)
//   - MODELGRID_AUDIT_ENABLED: Set to false to disable audit logging
//   - AUDIT_DATABASE_URL: Optional separate database for audit events
package main
