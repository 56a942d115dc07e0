// Package access is the single ownership-based policy consulted by every
// challenge, document and user operation.
package access

import "github.com/aussiebroadwan/leadflow/internal/intake/domain"

type Entity string

const (
	Challenge Entity = "challenge"
	Document  Entity = "document"
	User      Entity = "user"
)

type Action string

const (
	Create     Action = "create"
	Read       Action = "read"
	Update     Action = "update"
	Delete     Action = "delete"
	List       Action = "list"
	UpdateRole Action = "update_role"
)

type Decision int

const (
	Deny Decision = iota
	AllowOwnOnly
	Allow
)

func (d Decision) Permits() bool { return d == Allow || d == AllowOwnOnly }

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case AllowOwnOnly:
		return "allow_own_only"
	default:
		return "deny"
	}
}

// Evaluate decides whether p may perform action on entity. ownerID is the
// resolved owner of the record (or, for list and user actions, the user id
// being addressed); "" means the record has no owner.
func Evaluate(p domain.Principal, entity Entity, action Action, ownerID string) Decision {
	auth, ok := domain.AsAuthenticated(p)
	isAdmin := ok && auth.Role == domain.RoleAdmin
	isOwner := ok && ownerID != "" && ownerID == auth.ID

	ownerOrAdmin := func() Decision {
		switch {
		case isAdmin:
			return Allow
		case isOwner:
			return AllowOwnOnly
		}
		return Deny
	}
	adminOnly := func() Decision {
		if isAdmin {
			return Allow
		}
		return Deny
	}

	switch entity {
	case Challenge, Document:
		switch action {
		case Create:
			return Allow
		case Read, Update, List:
			return ownerOrAdmin()
		case Delete:
			if entity == Challenge {
				return adminOnly()
			}
			return ownerOrAdmin()
		}

	case User:
		switch action {
		case Read, Update:
			return ownerOrAdmin()
		case Create, Delete, List, UpdateRole:
			return adminOnly()
		}
	}

	return Deny
}
