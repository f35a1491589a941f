// Package schema validates the user-supplied names and type enums that make
// up a model definition. Every identifier that is interpolated into a SQL
// statement anywhere in the server must pass through this package first;
// values are always bound as parameters and never need it.
package schema
