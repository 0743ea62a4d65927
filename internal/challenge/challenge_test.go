package challenge

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validInput() CreateChallengeInput {
	return CreateChallengeInput{
		RoomID:      "room-1",
		CreatorID:   "user-1",
		Name:        "Heap Feng Shui",
		Description: "corrupt the allocator",
		MaxAttempts: 0,
		Flags:       []string{"flag{heap}"},
		Tags:        []string{"pwn"},
	}
}

func TestCreateChallengeStampsAuditFields(t *testing.T) {
	fixedTime := time.Date(2026, time.March, 5, 11, 0, 0, 0, time.UTC)

	created, err := CreateChallenge(validInput(), func() time.Time { return fixedTime }, func() (string, error) {
		return "chal-1", nil
	})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	if created.ID != "chal-1" {
		t.Fatalf("id = %q, want chal-1", created.ID)
	}
	if created.CreatorID != "user-1" {
		t.Fatalf("creator = %q, want user-1", created.CreatorID)
	}
	if created.UpdaterID != "" {
		t.Fatalf("expected empty updater on creation, got %q", created.UpdaterID)
	}
	if !created.CreatedAt.Equal(fixedTime) || !created.UpdatedAt.Equal(fixedTime) {
		t.Fatal("expected timestamps to match fixed time")
	}
}

func TestNormalizeCreateChallengeInputValidation(t *testing.T) {
	tooManyFlags := make([]string, FlagMaxCount+1)
	for i := range tooManyFlags {
		tooManyFlags[i] = "flag{ok}"
	}
	tooManyTags := make([]string, TagMaxCount+1)
	for i := range tooManyTags {
		tooManyTags[i] = "tag"
	}

	tests := []struct {
		name   string
		mutate func(*CreateChallengeInput)
		err    error
	}{
		{"empty name", func(in *CreateChallengeInput) { in.Name = " " }, ErrEmptyName},
		{"name too long", func(in *CreateChallengeInput) { in.Name = strings.Repeat("n", NameMaxLength+1) }, ErrNameTooLong},
		{"empty description", func(in *CreateChallengeInput) { in.Description = "" }, ErrEmptyDescription},
		{"description too long", func(in *CreateChallengeInput) { in.Description = strings.Repeat("d", DescriptionMaxLength+1) }, ErrDescriptionTooLong},
		{"negative max attempts", func(in *CreateChallengeInput) { in.MaxAttempts = -1 }, ErrNegativeMaxAttempts},
		{"no flags", func(in *CreateChallengeInput) { in.Flags = nil }, ErrFlagsRequired},
		{"blank flag", func(in *CreateChallengeInput) { in.Flags = []string{"  "} }, ErrFlagInvalid},
		{"oversized flag", func(in *CreateChallengeInput) { in.Flags = []string{strings.Repeat("f", FlagMaxLength+1)} }, ErrFlagInvalid},
		{"too many flags", func(in *CreateChallengeInput) { in.Flags = tooManyFlags }, ErrFlagsTooMany},
		{"blank tag", func(in *CreateChallengeInput) { in.Tags = []string{""} }, ErrTagInvalid},
		{"oversized tag", func(in *CreateChallengeInput) { in.Tags = []string{strings.Repeat("t", TagMaxLength+1)} }, ErrTagInvalid},
		{"too many tags", func(in *CreateChallengeInput) { in.Tags = tooManyTags }, ErrTagsTooMany},
	}
	for _, tc := range tests {
		input := validInput()
		tc.mutate(&input)
		if _, err := NormalizeCreateChallengeInput(input); !errors.Is(err, tc.err) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.err, err)
		}
	}
}

func TestHasFlag(t *testing.T) {
	c := Challenge{Flags: []string{"flag{a}", "flag{b}"}}
	if !c.HasFlag("flag{b}") {
		t.Fatal("expected flag{b} to match")
	}
	if c.HasFlag("flag{c}") {
		t.Fatal("expected flag{c} not to match")
	}
	if c.HasFlag("FLAG{A}") {
		t.Fatal("expected flag comparison to be case sensitive")
	}
}
