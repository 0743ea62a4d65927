// Package challenge provides the challenge domain model: room-scoped
// challenges with their flag sets, tags, and audit fields.
package challenge

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/flagfall.space/internal/errors"
	"github.com/louisbranch/flagfall.space/internal/id"
)

const (
	// NameMaxLength bounds challenge names.
	NameMaxLength = 64
	// DescriptionMaxLength bounds challenge descriptions.
	DescriptionMaxLength = 2000
	// FlagMaxCount bounds the number of flags on one challenge.
	FlagMaxCount = 10
	// FlagMaxLength bounds the length of one flag value.
	FlagMaxLength = 500
	// TagMaxCount bounds the number of tags on one challenge.
	TagMaxCount = 10
	// TagMaxLength bounds the length of one tag.
	TagMaxLength = 20
)

var (
	// ErrEmptyName indicates a missing challenge name.
	ErrEmptyName = apperrors.New(apperrors.CodeChallengeNameEmpty, "challenge name is required")
	// ErrNameTooLong indicates a challenge name over the limit.
	ErrNameTooLong = apperrors.New(apperrors.CodeChallengeNameTooLong, "challenge name exceeds the maximum length")
	// ErrEmptyDescription indicates a missing challenge description.
	ErrEmptyDescription = apperrors.New(apperrors.CodeChallengeDescriptionEmpty, "challenge description is required")
	// ErrDescriptionTooLong indicates a challenge description over the limit.
	ErrDescriptionTooLong = apperrors.New(apperrors.CodeChallengeDescriptionTooLong, "challenge description exceeds the maximum length")
	// ErrNegativeMaxAttempts indicates a negative attempt budget.
	ErrNegativeMaxAttempts = apperrors.New(apperrors.CodeChallengeNegativeMaxAttempts, "max attempts must be zero or greater")
	// ErrFlagsRequired indicates a challenge without any flags.
	ErrFlagsRequired = apperrors.New(apperrors.CodeChallengeFlagsRequired, "at least one flag is required")
	// ErrFlagInvalid indicates a blank or oversized flag value.
	ErrFlagInvalid = apperrors.New(apperrors.CodeChallengeFlagInvalid, "flags must be non-blank and within the length limit")
	// ErrFlagsTooMany indicates too many flags.
	ErrFlagsTooMany = apperrors.New(apperrors.CodeChallengeFlagsTooMany, "too many flags")
	// ErrTagInvalid indicates a blank or oversized tag.
	ErrTagInvalid = apperrors.New(apperrors.CodeChallengeTagInvalid, "tags must be non-blank and within the length limit")
	// ErrTagsTooMany indicates too many tags.
	ErrTagsTooMany = apperrors.New(apperrors.CodeChallengeTagsTooMany, "too many tags")
)

// Challenge represents a room-scoped challenge. Names are unique within
// a room. Flags are the accepted submission values; tags classify the
// challenge for listings.
type Challenge struct {
	ID          string
	RoomID      string
	Name        string
	Description string
	MaxAttempts int
	CreatorID   string
	UpdaterID   string
	Flags       []string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasFlag reports whether value is a member of the challenge's flag set.
func (c Challenge) HasFlag(value string) bool {
	for _, flag := range c.Flags {
		if flag == value {
			return true
		}
	}
	return false
}

// CreateChallengeInput describes the metadata needed to create a challenge.
type CreateChallengeInput struct {
	RoomID      string
	CreatorID   string
	Name        string
	Description string
	MaxAttempts int
	Flags       []string
	Tags        []string
}

// CreateChallenge creates a new challenge with a generated ID and timestamps.
func CreateChallenge(input CreateChallengeInput, now func() time.Time, idGenerator func() (string, error)) (Challenge, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateChallengeInput(input)
	if err != nil {
		return Challenge{}, err
	}

	challengeID, err := idGenerator()
	if err != nil {
		return Challenge{}, fmt.Errorf("generate challenge id: %w", err)
	}

	createdAt := now().UTC()
	return Challenge{
		ID:          challengeID,
		RoomID:      normalized.RoomID,
		Name:        normalized.Name,
		Description: normalized.Description,
		MaxAttempts: normalized.MaxAttempts,
		CreatorID:   normalized.CreatorID,
		Flags:       normalized.Flags,
		Tags:        normalized.Tags,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// NormalizeCreateChallengeInput trims and validates challenge metadata.
func NormalizeCreateChallengeInput(input CreateChallengeInput) (CreateChallengeInput, error) {
	input.RoomID = strings.TrimSpace(input.RoomID)
	input.CreatorID = strings.TrimSpace(input.CreatorID)
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateChallengeInput{}, ErrEmptyName
	}
	if len(input.Name) > NameMaxLength {
		return CreateChallengeInput{}, ErrNameTooLong
	}
	input.Description = strings.TrimSpace(input.Description)
	if input.Description == "" {
		return CreateChallengeInput{}, ErrEmptyDescription
	}
	if len(input.Description) > DescriptionMaxLength {
		return CreateChallengeInput{}, ErrDescriptionTooLong
	}
	if input.MaxAttempts < 0 {
		return CreateChallengeInput{}, ErrNegativeMaxAttempts
	}
	if err := validateFlags(input.Flags); err != nil {
		return CreateChallengeInput{}, err
	}
	if err := validateTags(input.Tags); err != nil {
		return CreateChallengeInput{}, err
	}
	return input, nil
}

func validateFlags(flags []string) error {
	if len(flags) == 0 {
		return ErrFlagsRequired
	}
	if len(flags) > FlagMaxCount {
		return ErrFlagsTooMany
	}
	for _, flag := range flags {
		if strings.TrimSpace(flag) == "" || len(flag) > FlagMaxLength {
			return ErrFlagInvalid
		}
	}
	return nil
}

func validateTags(tags []string) error {
	if len(tags) > TagMaxCount {
		return ErrTagsTooMany
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" || len(tag) > TagMaxLength {
			return ErrTagInvalid
		}
	}
	return nil
}
