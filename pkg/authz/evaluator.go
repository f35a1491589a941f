package authz

import (
	"errors"
	"fmt"

	"github.com/modelgrid/modelgrid/pkg/identity"
	"github.com/modelgrid/modelgrid/pkg/model"
	"github.com/modelgrid/modelgrid/pkg/schema"
	"github.com/modelgrid/modelgrid/pkg/server/store"
)

// Authorization failures. Endpoints map these to 401 and 403.
var (
	// ErrNotAuthenticated means a guarded operation was attempted without an
	// identity.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInsufficientPermission means the caller's role does not grant the
	// required permission on the model.
	ErrInsufficientPermission = errors.New("insufficient permission")

	// ErrNotOwner means the ownership check rejected a mutation of a row the
	// caller does not own.
	ErrNotOwner = errors.New("record owned by another user")
)

// Check is one authorization question: may the caller exercise Permission on
// ModelName, optionally against the specific record RecordID.
type Check struct {
	ModelName  string
	Permission string
	RecordID   string
}

// Evaluator answers authorization checks against the definition registry.
type Evaluator struct {
	definitions   store.DefinitionsStore
	records       store.RecordsStore
	superuserRole string
}

// NewEvaluator creates an Evaluator. superuserRole names the role that
// bypasses RBAC and ownership entirely.
func NewEvaluator(definitions store.DefinitionsStore, records store.RecordsStore, superuserRole string) *Evaluator {
	return &Evaluator{
		definitions:   definitions,
		records:       records,
		superuserRole: superuserRole,
	}
}

// Authorize resolves the check and returns the active definition it was
// evaluated against, so callers need not resolve the model twice. The
// decision sequence is fixed: an empty permission allows anonymously, then
// the identity is required, then the superuser role bypasses the rest, then
// the model's RBAC map is consulted, and finally ownership is probed for
// mutations of owned models. A role absent from the RBAC map holds no
// permissions at all.
func (e *Evaluator) Authorize(caller *identity.Identity, check Check) (*model.ModelDefinition, error) {
	if check.Permission == "" {
		return nil, nil
	}
	if caller == nil {
		return nil, ErrNotAuthenticated
	}

	superuser := e.superuserRole != "" && caller.Role == e.superuserRole

	if check.ModelName == "" {
		if superuser {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: no model specified", ErrInsufficientPermission)
	}

	def, err := e.definitions.FindActive(check.ModelName)
	if err != nil {
		return nil, err
	}

	if superuser {
		return def, nil
	}

	if !def.RBAC.Allows(caller.Role, check.Permission) {
		return nil, fmt.Errorf("%w: role %q lacks %q on %q",
			ErrInsufficientPermission, caller.Role, check.Permission, def.Name)
	}

	if e.ownershipGated(check.Permission, def, check.RecordID) {
		if err := e.checkOwnership(caller, def, check.RecordID); err != nil {
			return nil, err
		}
	}

	return def, nil
}

// ownershipGated reports whether the check requires a row-ownership probe.
// Reads and creates are never ownership-gated.
func (e *Evaluator) ownershipGated(permission string, def *model.ModelDefinition, recordID string) bool {
	if permission != schema.PermissionUpdate && permission != schema.PermissionDelete {
		return false
	}
	return def.OwnerField != "" && recordID != ""
}

// checkOwnership reads the row and compares its owner column to the caller.
// A missing row or malformed id passes through so the executor reports the
// miss. A row whose owner column is empty or unset belongs to nobody, so only
// the superuser may mutate it.
func (e *Evaluator) checkOwnership(caller *identity.Identity, def *model.ModelDefinition, recordID string) error {
	record, err := e.records.FindByID(def.Table, recordID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) || errors.Is(err, store.ErrInvalidID) {
			return nil
		}
		return err
	}

	owner, _ := record[def.OwnerField].(string)
	if owner == "" || owner != caller.UserID {
		return fmt.Errorf("%w: %q", ErrNotOwner, recordID)
	}
	return nil
}
