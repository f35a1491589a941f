package schema

import (
	"errors"
	"fmt"
	"regexp"
)

// Validation failures. Callers match with errors.Is.
var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrUnsupportedType   = errors.New("unsupported field type")
	ErrDuplicateField    = errors.New("duplicate field name")
	ErrReservedFieldName = errors.New("reserved field name")
	ErrInvalidPermission = errors.New("invalid permission token")
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Field types a model definition may declare.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeDate    = "date"
	TypeText    = "text"
)

var fieldTypes = map[string]bool{
	TypeString:  true,
	TypeNumber:  true,
	TypeBoolean: true,
	TypeDate:    true,
	TypeText:    true,
}

// Permission tokens an RBAC map may grant. PermissionAll subsumes the rest.
const (
	PermissionCreate = "create"
	PermissionRead   = "read"
	PermissionUpdate = "update"
	PermissionDelete = "delete"
	PermissionAll    = "all"
)

var permissions = map[string]bool{
	PermissionCreate: true,
	PermissionRead:   true,
	PermissionUpdate: true,
	PermissionDelete: true,
	PermissionAll:    true,
}

// Columns every materialized table owns. Field names may not collide with them.
var reservedColumns = map[string]bool{
	"id":        true,
	"createdAt": true,
	"updatedAt": true,
}

// ValidateIdentifier checks a name against the identifier grammar
// ^[A-Za-z_][A-Za-z0-9_]*$.
func ValidateIdentifier(name string) error {
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// QuoteIdentifier validates a name and returns it double-quoted for use in a
// statement. This is the only way an identifier may reach SQL text.
func QuoteIdentifier(name string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", err
	}
	return `"` + name + `"`, nil
}

// ValidateFieldType checks a declared type against the supported enum.
func ValidateFieldType(t string) error {
	if !fieldTypes[t] {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, t)
	}
	return nil
}

// ValidateFieldName checks the identifier grammar and the reserved column set.
func ValidateFieldName(name string) error {
	if err := ValidateIdentifier(name); err != nil {
		return err
	}
	if reservedColumns[name] {
		return fmt.Errorf("%w: %q", ErrReservedFieldName, name)
	}
	return nil
}

// ValidateFieldSet checks every field name and rejects duplicates within the
// set.
func ValidateFieldSet(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if err := ValidateFieldName(name); err != nil {
			return err
		}
		if seen[name] {
			return fmt.Errorf("%w: %q", ErrDuplicateField, name)
		}
		seen[name] = true
	}
	return nil
}

// ValidatePermission checks a single RBAC permission token.
func ValidatePermission(token string) error {
	if !permissions[token] {
		return fmt.Errorf("%w: %q", ErrInvalidPermission, token)
	}
	return nil
}

// ValidateRBAC checks every permission token in a role-to-permissions map.
func ValidateRBAC(rbac map[string][]string) error {
	for role, tokens := range rbac {
		for _, token := range tokens {
			if err := ValidatePermission(token); err != nil {
				return fmt.Errorf("role %q: %w", role, err)
			}
		}
	}
	return nil
}
