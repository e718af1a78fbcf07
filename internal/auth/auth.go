// Package auth consumes the identity provider's (userId, role) pair and
// enforces the role gate for each operation. Identity resolution itself is
// external; this package only trusts what the transport hands it.
package auth

import (
	"net/http"

	"github.com/crimenet/report-service/internal/apperr"
)

// Role is an actor role as resolved by the external identity provider.
type Role string

const (
	RoleCitizen Role = "CITIZEN"
	RolePolice  Role = "POLICE"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole validates a raw role string from the transport.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleCitizen, RolePolice, RoleAdmin:
		return Role(raw), true
	}
	return "", false
}

// Operation names a gated operation of the report core.
type Operation string

const (
	OpCreateReport   Operation = "report:create"
	OpGetReport      Operation = "report:get"
	OpListOwnReports Operation = "report:list_own"
	OpListByStatus   Operation = "report:list_by_status"
	OpListByOfficer  Operation = "report:list_by_officer"
	OpListAll        Operation = "report:list_all"
	OpAssignOfficer  Operation = "report:assign"
	OpUpdateStatus   Operation = "report:update_status"
	OpGetTimeline    Operation = "report:timeline"
	OpAddAttachment  Operation = "report:attach"
	OpListTips       Operation = "tip:list"
	OpViewAnalytics  Operation = "analytics:view"
)

// permissions maps each operation to the roles allowed to invoke it.
var permissions = map[Operation][]Role{
	OpCreateReport:   {RoleCitizen, RolePolice, RoleAdmin},
	OpGetReport:      {RoleCitizen, RolePolice, RoleAdmin},
	OpListOwnReports: {RoleCitizen, RolePolice, RoleAdmin},
	OpListByStatus:   {RolePolice, RoleAdmin},
	OpListByOfficer:  {RolePolice, RoleAdmin},
	OpListAll:        {RolePolice, RoleAdmin},
	OpAssignOfficer:  {RolePolice, RoleAdmin},
	OpUpdateStatus:   {RolePolice, RoleAdmin},
	OpGetTimeline:    {RoleCitizen, RolePolice, RoleAdmin},
	OpAddAttachment:  {RoleCitizen, RolePolice, RoleAdmin},
	OpListTips:       {RolePolice, RoleAdmin},
	OpViewAnalytics:  {RolePolice, RoleAdmin},
}

// Decision is the result of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Authorize checks whether role may invoke op. It is called at the top of
// every gated handler, before any store access.
func Authorize(role Role, op Operation) Decision {
	allowed, ok := permissions[op]
	if !ok {
		return Decision{Allowed: false, Reason: "unknown operation"}
	}
	for _, r := range allowed {
		if r == role {
			return Decision{Allowed: true}
		}
	}
	return Decision{Allowed: false, Reason: string(op) + " requires one of the permitted roles"}
}

// Identity is the (userId, role) pair the core operates on.
type Identity struct {
	UserID string
	Role   Role
}

// Header names used by the upstream gateway to convey resolved identity.
const (
	HeaderUserID = "X-User-ID"
	HeaderRole   = "X-User-Role"
)

// FromRequest extracts the caller identity from request headers.
func FromRequest(r *http.Request) (Identity, error) {
	userID := r.Header.Get(HeaderUserID)
	if userID == "" {
		return Identity{}, apperr.Forbidden("missing user identity")
	}
	role, ok := ParseRole(r.Header.Get(HeaderRole))
	if !ok {
		return Identity{}, apperr.Forbidden("missing or unknown role")
	}
	return Identity{UserID: userID, Role: role}, nil
}
