package service

import "github.com/taskmanager/task-api/internal/core/domain"

// Authorizer decides whether a caller may perform an operation on a task.
//
// Ownership is the default boundary and ADMIN is a blanket override. Callers
// holding neither USER nor ADMIN are denied every operation.
type Authorizer struct{}

func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

// Authorize evaluates the decision table. resourceOwnerID is ignored for
// OpCreate and OpReadAll, whose scoping is handled by ListScope.
func (a *Authorizer) Authorize(caller domain.Claims, op domain.Operation, resourceOwnerID int64) domain.Decision {
	if !caller.HasAnyKnownRole() {
		return domain.Deny
	}

	switch op {
	case domain.OpCreate, domain.OpReadAll:
		return domain.Allow
	case domain.OpReadOne, domain.OpUpdate, domain.OpDelete:
		if caller.IsAdmin() {
			return domain.Allow
		}
		return domain.Decision(resourceOwnerID == caller.UserID)
	default:
		return domain.Deny
	}
}

// ListScope returns the owner filter for ReadAll. all=true means no filter.
func (a *Authorizer) ListScope(caller domain.Claims) (ownerID int64, all bool) {
	if caller.IsAdmin() {
		return 0, true
	}
	return caller.UserID, false
}
