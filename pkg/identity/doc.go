// Package identity carries the resolved caller identity through a request.
// The authentication collaborator verifies credentials and hands the server a
// user id and role; this package only transports that result.
package identity
