// Package config provides configuration management for modelgrid.
//
// This package handles loading and validating server configuration from
// environment variables and an optional YAML configuration file.
//
// # Configuration Sources
//
// Configuration is loaded from:
//
//   - Environment variables (primary, MODELGRID_* prefix)
//   - /etc/modelgrid/modelgrid.yml (optional, path overridable via
//     MODELGRID_CONFIG_PATH)
//
// # Key Configuration Options
//
//   - MODELGRID_TOKEN_SECRET: Bearer token verification key (env only)
//   - MODELGRID_SUPERUSER_ROLE: Role that bypasses permission checks
//   - MODELGRID_RECORD_LIST_LIMIT_MAX: List result cap
//   - DATABASE_URL: Database connection
package config
