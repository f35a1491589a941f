// Package audit provides audit logging for modelgrid operations.
//
// This package implements structured audit logging for security-relevant
// operations such as model definition changes, record mutations, and
// permission checks.
//
// # Event Types
//
// The package defines event types for various operations:
//
//   - Model definition events (create/deactivate)
//   - Record mutation events (create/update/delete)
//   - Permission check events (allowed/denied)
//
// # Usage
//
//	audit.Log(audit.RecordEvent{
//	    UserID:    userID,
//	    ModelName: "Post",
//	    Operation: "create",
//	    Success:   true,
//	})
//
// Audit events are logged in RFC5424 syslog format suitable for security
// monitoring, and optionally persisted to an audit database.
package audit
