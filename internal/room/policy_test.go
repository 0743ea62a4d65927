package room

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/louisbranch/flagfall.space/internal/errors"
)

func TestSubmissionsOpenWindowBoundaries(t *testing.T) {
	start := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)
	req := SolveRequirements{SubmissionStart: start, SubmissionEnd: end}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"one second before start", start.Add(-time.Second), false},
		{"at start", start, true},
		{"mid window", start.Add(4 * time.Hour), true},
		{"at end", end, true},
		{"one second after end", end.Add(time.Second), false},
	}
	for _, tc := range tests {
		if got := SubmissionsOpen(req, tc.now); got != tc.want {
			t.Fatalf("%s: open = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSubmissionsOpenForceDisabledOverridesWindow(t *testing.T) {
	start := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	req := SolveRequirements{
		IsSubmissionsForceDisabled: true,
		SubmissionStart:            start,
		SubmissionEnd:              start.Add(time.Hour),
	}
	if SubmissionsOpen(req, start.Add(30*time.Minute)) {
		t.Fatal("expected force-disabled room to reject submissions inside the window")
	}
}

func TestChallengesVisible(t *testing.T) {
	if ChallengesVisible(SolveRequirements{AreChallengesHidden: true}) {
		t.Fatal("expected hidden room to be invisible")
	}
	if !ChallengesVisible(SolveRequirements{}) {
		t.Fatal("expected unhidden room to be visible")
	}
}

func TestRequireAtLeast(t *testing.T) {
	denied := apperrors.New(apperrors.CodeTeamNotAdmin, "not an admin")

	if err := RequireAtLeast(RoleAdmin, RoleAdmin, denied); err != nil {
		t.Fatalf("admin at least admin: %v", err)
	}
	if err := RequireAtLeast(RoleOwner, RoleAdmin, denied); err != nil {
		t.Fatalf("owner at least admin: %v", err)
	}
	if err := RequireAtLeast(RoleEditor, RoleAdmin, denied); !errors.Is(err, denied) {
		t.Fatalf("editor at least admin: expected denial, got %v", err)
	}
}

func TestRequireExactly(t *testing.T) {
	denied := apperrors.New(apperrors.CodeSolveNotAPlayer, "not a player")

	if err := RequireExactly(RolePlayer, RolePlayer, denied); err != nil {
		t.Fatalf("player exactly player: %v", err)
	}
	if err := RequireExactly(RoleOwner, RolePlayer, denied); !errors.Is(err, denied) {
		t.Fatalf("owner exactly player: expected denial, got %v", err)
	}
}

func TestRequireStrictlyAbove(t *testing.T) {
	denied := apperrors.New(apperrors.CodeMemberRemoveLowerOnly, "lower roles only")

	if err := RequireStrictlyAbove(RoleAdmin, RolePlayer, denied); err != nil {
		t.Fatalf("admin above player: %v", err)
	}
	if err := RequireStrictlyAbove(RoleAdmin, RoleAdmin, denied); !errors.Is(err, denied) {
		t.Fatalf("admin above admin: expected denial, got %v", err)
	}
	if err := RequireStrictlyAbove(RoleAdmin, RoleOwner, denied); !errors.Is(err, denied) {
		t.Fatalf("admin above owner: expected denial, got %v", err)
	}
}
