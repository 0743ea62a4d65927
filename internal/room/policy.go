package room

import (
	"time"

	apperrors "github.com/louisbranch/flagfall.space/internal/errors"
)

// SubmissionsOpen reports whether flag submission is currently permitted.
// The window is inclusive at both ends; the force-disable flag overrides it.
// This is a pure function of room configuration and wall-clock time.
func SubmissionsOpen(req SolveRequirements, now time.Time) bool {
	if req.IsSubmissionsForceDisabled {
		return false
	}
	return !now.Before(req.SubmissionStart) && !now.After(req.SubmissionEnd)
}

// ChallengesVisible reports whether challenge listings and details are
// visible to room members. When hidden, callers surface challenges as
// absent rather than forbidden.
func ChallengesVisible(req SolveRequirements) bool {
	return !req.AreChallengesHidden
}

// RequireAtLeast returns denied when role is below min.
func RequireAtLeast(role Role, min Role, denied *apperrors.Error) error {
	if role.AtLeast(min) {
		return nil
	}
	return denied
}

// RequireExactly returns denied unless role is exactly want.
func RequireExactly(role Role, want Role, denied *apperrors.Error) error {
	if role == want {
		return nil
	}
	return denied
}

// RequireStrictlyAbove returns denied unless role is strictly higher
// than other. Used for remove-member and invite checks where peers may
// not act on each other.
func RequireStrictlyAbove(role Role, other Role, denied *apperrors.Error) error {
	if other.Below(role) {
		return nil
	}
	return denied
}
