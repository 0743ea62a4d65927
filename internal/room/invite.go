package room

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/flagfall.space/internal/errors"
)

var (
	// ErrSelfInvite indicates an inviter targeting themself.
	ErrSelfInvite = apperrors.New(apperrors.CodeInviteSelfInvite, "cannot invite yourself")
)

// Invitation is a pending offer to join a room at a given role. At most
// one pending invitation exists per (room, invitee); it is consumed by
// accept or reject.
type Invitation struct {
	RoomID    string
	InviteeID string
	InviterID string
	Role      Role
	InvitedAt time.Time
}

// CreateInvitationInput describes the metadata needed to create an invitation.
type CreateInvitationInput struct {
	RoomID    string
	InviteeID string
	InviterID string
	Role      Role
}

// CreateInvitation validates invite metadata and stamps the invitation.
func CreateInvitation(input CreateInvitationInput, now func() time.Time) (Invitation, error) {
	if now == nil {
		now = time.Now
	}

	normalized, err := NormalizeCreateInvitationInput(input)
	if err != nil {
		return Invitation{}, err
	}

	return Invitation{
		RoomID:    normalized.RoomID,
		InviteeID: normalized.InviteeID,
		InviterID: normalized.InviterID,
		Role:      normalized.Role,
		InvitedAt: now().UTC(),
	}, nil
}

// NormalizeCreateInvitationInput trims and validates invitation metadata.
func NormalizeCreateInvitationInput(input CreateInvitationInput) (CreateInvitationInput, error) {
	input.RoomID = strings.TrimSpace(input.RoomID)
	input.InviteeID = strings.TrimSpace(input.InviteeID)
	input.InviterID = strings.TrimSpace(input.InviterID)
	if !input.Role.Valid() {
		return CreateInvitationInput{}, ErrInvalidRole
	}
	if input.InviteeID != "" && input.InviteeID == input.InviterID {
		return CreateInvitationInput{}, ErrSelfInvite
	}
	return input, nil
}
