// Package model contains the database models for the metadata layer: model
// definitions and users. The dynamically materialized tables have no static
// model; their rows travel as maps through the records store.
package model
