// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// This package contains concrete implementations that use GORM for database
// operations. The interfaces they implement are defined in pkg/server/store.
// The dynamic stores (records, schema) build raw SQL from identifiers that
// have passed the pkg/schema grammar; values are always bound parameters.
package gorm
