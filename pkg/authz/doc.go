// Package authz decides whether an identity may perform an operation on a
// dynamic model. Decisions combine the model's RBAC map with row ownership;
// the package never touches credentials.
package authz
