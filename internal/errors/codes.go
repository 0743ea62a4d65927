// Package errors provides structured domain error handling for the rooms engine.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Role errors
	CodeRoleInvalid Code = "ROLE_INVALID"

	// Room errors
	CodeRoomNotFound              Code = "ROOM_NOT_FOUND"
	CodeRoomNameEmpty             Code = "ROOM_NAME_EMPTY"
	CodeRoomNameTooLong           Code = "ROOM_NAME_TOO_LONG"
	CodeRoomDescriptionTooLong    Code = "ROOM_DESCRIPTION_TOO_LONG"
	CodeRoomNameTaken             Code = "ROOM_NAME_TAKEN"
	CodeRoomInvalidWindow         Code = "ROOM_INVALID_SUBMISSION_WINDOW"
	CodeRoomPlayerTeamsNotAllowed Code = "ROOM_PLAYER_TEAMS_NOT_ALLOWED"

	// Room member errors
	CodeMemberNotFound         Code = "MEMBER_NOT_FOUND"
	CodeMemberAlreadyJoined    Code = "MEMBER_ALREADY_JOINED"
	CodeMemberOwnerCannotLeave Code = "MEMBER_OWNER_CANNOT_LEAVE"
	CodeMemberRemoveNotAdmin   Code = "MEMBER_REMOVE_NOT_ADMIN"
	CodeMemberRemoveLowerOnly  Code = "MEMBER_REMOVE_LOWER_ROLES_ONLY"
	CodeMemberRemoveSelf       Code = "MEMBER_REMOVE_SELF"

	// Invitation errors
	CodeInviteNotFound       Code = "INVITE_NOT_FOUND"
	CodeInviteNotAllowed     Code = "INVITE_NOT_ALLOWED"
	CodeInviteLowerRolesOnly Code = "INVITE_LOWER_ROLES_ONLY"
	CodeInviteAlreadyInvited Code = "INVITE_ALREADY_INVITED"
	CodeInviteSelfInvite     Code = "INVITE_SELF_INVITE"
	CodeInviteeNotFound      Code = "INVITEE_NOT_FOUND"

	// Team errors
	CodeTeamNotFound           Code = "TEAM_NOT_FOUND"
	CodeTeamNameEmpty          Code = "TEAM_NAME_EMPTY"
	CodeTeamNameTooLong        Code = "TEAM_NAME_TOO_LONG"
	CodeTeamNameTaken          Code = "TEAM_NAME_TAKEN"
	CodeTeamNotAdmin           Code = "TEAM_NOT_ADMIN"
	CodeTeamCandidateNotMember Code = "TEAM_CANDIDATE_NOT_MEMBER"
	CodeTeamCandidateNotPlayer Code = "TEAM_CANDIDATE_NOT_PLAYER"
	CodeTeamAlreadyHasTeam     Code = "TEAM_ALREADY_HAS_TEAM"
	CodeTeamUserNotInTeam      Code = "TEAM_USER_NOT_IN_TEAM"
	CodeTeamNoTeam             Code = "TEAM_NO_TEAM"

	// Challenge errors
	CodeChallengeNotFound            Code = "CHALLENGE_NOT_FOUND"
	CodeChallengeNotEditor           Code = "CHALLENGE_NOT_EDITOR"
	CodeChallengeNameEmpty           Code = "CHALLENGE_NAME_EMPTY"
	CodeChallengeNameTooLong         Code = "CHALLENGE_NAME_TOO_LONG"
	CodeChallengeNameTaken           Code = "CHALLENGE_NAME_TAKEN"
	CodeChallengeDescriptionEmpty    Code = "CHALLENGE_DESCRIPTION_EMPTY"
	CodeChallengeDescriptionTooLong  Code = "CHALLENGE_DESCRIPTION_TOO_LONG"
	CodeChallengeNegativeMaxAttempts Code = "CHALLENGE_NEGATIVE_MAX_ATTEMPTS"
	CodeChallengeFlagsRequired       Code = "CHALLENGE_FLAGS_REQUIRED"
	CodeChallengeFlagInvalid         Code = "CHALLENGE_FLAG_INVALID"
	CodeChallengeFlagsTooMany        Code = "CHALLENGE_FLAGS_TOO_MANY"
	CodeChallengeTagInvalid          Code = "CHALLENGE_TAG_INVALID"
	CodeChallengeTagsTooMany         Code = "CHALLENGE_TAGS_TOO_MANY"
	CodeChallengeFilterInvalid       Code = "CHALLENGE_FILTER_INVALID"

	// Solve errors
	CodeSolveAlreadySolved         Code = "SOLVE_ALREADY_SOLVED"
	CodeSolveNotAPlayer            Code = "SOLVE_NOT_A_PLAYER"
	CodeSolveNoTeam                Code = "SOLVE_NO_TEAM"
	CodeSolveSubmissionsDisabled   Code = "SOLVE_SUBMISSIONS_DISABLED"
	CodeSolveOtherTeamsNotViewable Code = "SOLVE_OTHER_TEAMS_NOT_VIEWABLE"
	CodeSolveFlagEmpty             Code = "SOLVE_FLAG_EMPTY"
	CodeSolveFlagTooLong           Code = "SOLVE_FLAG_TOO_LONG"

	// User errors
	CodeUserNotFound Code = "USER_NOT_FOUND"
)

// Kind groups codes into the transport-agnostic error taxonomy.
type Kind int

const (
	// KindUnknown represents an unclassified failure.
	KindUnknown Kind = iota
	// KindNotFound indicates the target is absent or invisible to the caller.
	KindNotFound
	// KindForbidden indicates a recognized participant lacks role or relationship.
	KindForbidden
	// KindConflict indicates a uniqueness or state invariant would be violated.
	KindConflict
	// KindInvalidState indicates room configuration or timing disallows the action.
	KindInvalidState
	// KindInvalidInput indicates malformed arguments.
	KindInvalidInput
)

// Kind classifies the code into the engine's error taxonomy.
//
// Non-membership and hidden resources deliberately classify as KindNotFound
// rather than KindForbidden so room existence never leaks to outsiders.
func (c Code) Kind() Kind {
	switch c {
	case CodeRoomNotFound,
		CodeMemberNotFound,
		CodeInviteNotFound,
		CodeInviteeNotFound,
		CodeTeamNotFound,
		CodeTeamCandidateNotMember,
		CodeTeamUserNotInTeam,
		CodeChallengeNotFound,
		CodeUserNotFound:
		return KindNotFound

	case CodeMemberRemoveNotAdmin,
		CodeMemberRemoveLowerOnly,
		CodeInviteNotAllowed,
		CodeInviteLowerRolesOnly,
		CodeTeamNotAdmin,
		CodeTeamCandidateNotPlayer,
		CodeChallengeNotEditor,
		CodeSolveNotAPlayer,
		CodeSolveOtherTeamsNotViewable:
		return KindForbidden

	case CodeRoomNameTaken,
		CodeMemberAlreadyJoined,
		CodeInviteAlreadyInvited,
		CodeTeamNameTaken,
		CodeTeamAlreadyHasTeam,
		CodeChallengeNameTaken,
		CodeSolveAlreadySolved:
		return KindConflict

	case CodeRoomPlayerTeamsNotAllowed,
		CodeMemberOwnerCannotLeave,
		CodeTeamNoTeam,
		CodeSolveNoTeam,
		CodeSolveSubmissionsDisabled:
		return KindInvalidState

	case CodeRoleInvalid,
		CodeRoomNameEmpty,
		CodeRoomNameTooLong,
		CodeRoomDescriptionTooLong,
		CodeRoomInvalidWindow,
		CodeMemberRemoveSelf,
		CodeInviteSelfInvite,
		CodeTeamNameEmpty,
		CodeTeamNameTooLong,
		CodeChallengeNameEmpty,
		CodeChallengeNameTooLong,
		CodeChallengeDescriptionEmpty,
		CodeChallengeDescriptionTooLong,
		CodeChallengeNegativeMaxAttempts,
		CodeChallengeFlagsRequired,
		CodeChallengeFlagInvalid,
		CodeChallengeFlagsTooMany,
		CodeChallengeTagInvalid,
		CodeChallengeTagsTooMany,
		CodeChallengeFilterInvalid,
		CodeSolveFlagEmpty,
		CodeSolveFlagTooLong:
		return KindInvalidInput

	default:
		return KindUnknown
	}
}

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c.Kind() {
	case KindNotFound:
		return codes.NotFound
	case KindForbidden:
		return codes.PermissionDenied
	case KindConflict:
		return codes.AlreadyExists
	case KindInvalidState:
		return codes.FailedPrecondition
	case KindInvalidInput:
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}
