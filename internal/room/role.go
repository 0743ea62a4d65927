package room

import (
	"strings"

	apperrors "github.com/louisbranch/flagfall.space/internal/errors"
)

// Role is an ordered privilege level scoped to one room.
// Comparisons rely on the declaration order: Player < Editor < Admin < Owner.
type Role int

const (
	// RolePlayer competes and submits flags.
	RolePlayer Role = iota
	// RoleEditor authors challenges.
	RoleEditor
	// RoleAdmin manages members and teams.
	RoleAdmin
	// RoleOwner created the room. Exactly one per room.
	RoleOwner
)

// ErrInvalidRole indicates a role label outside the known hierarchy.
var ErrInvalidRole = apperrors.New(apperrors.CodeRoleInvalid, "unrecognized room role")

// Valid reports whether the role is one of the four known levels.
func (r Role) Valid() bool {
	return r >= RolePlayer && r <= RoleOwner
}

// AtLeast reports whether the role holds privileges at or above min.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// Below reports whether the role is strictly lower than other.
func (r Role) Below(other Role) bool {
	return r < other
}

// Label returns the canonical string label for the role.
func (r Role) Label() string {
	switch r {
	case RolePlayer:
		return "PLAYER"
	case RoleEditor:
		return "EDITOR"
	case RoleAdmin:
		return "ADMIN"
	case RoleOwner:
		return "OWNER"
	default:
		return "UNSPECIFIED"
	}
}

// ParseRole converts a role label to a Role value. It fails closed:
// unrecognized input returns ErrInvalidRole rather than defaulting to
// any level of the hierarchy.
func ParseRole(label string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "PLAYER":
		return RolePlayer, nil
	case "EDITOR":
		return RoleEditor, nil
	case "ADMIN":
		return RoleAdmin, nil
	case "OWNER":
		return RoleOwner, nil
	default:
		return 0, apperrors.WithMetadata(apperrors.CodeRoleInvalid, "unrecognized room role", map[string]string{"Label": label})
	}
}
