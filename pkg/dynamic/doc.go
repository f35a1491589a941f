// Package dynamic orchestrates record operations on runtime-defined models.
// It resolves the target model through the authorization layer, injects the
// caller into owned models on create, and delegates storage to the records
// store.
package dynamic
