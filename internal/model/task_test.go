package model

import (
	"errors"
	"testing"
)

func TestParseTaskFilter(t *testing.T) {
	cases := []struct {
		raw    string
		want   TaskFilter
		status string
	}{
		{raw: "", want: FilterAll, status: ""},
		{raw: "all", want: FilterAll, status: ""},
		{raw: " Open ", want: TaskFilter(TaskStatusOpen), status: "open"},
		{raw: "pending", want: TaskFilter(TaskStatusPending), status: "pending"},
		{raw: "completed", want: TaskFilter(TaskStatusCompleted), status: "completed"},
	}
	for _, tc := range cases {
		got, err := ParseTaskFilter(tc.raw)
		if err != nil {
			t.Fatalf("ParseTaskFilter(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseTaskFilter(%q) = %q, want %q", tc.raw, got, tc.want)
		}
		if got.Status() != tc.status {
			t.Fatalf("Status() for %q = %q, want %q", tc.raw, got.Status(), tc.status)
		}
	}

	if _, err := ParseTaskFilter("archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestOfferDraftValidate(t *testing.T) {
	if err := (OfferDraft{TaskID: 1, Price: 10, Message: "hi"}).Validate(); err != nil {
		t.Fatalf("expected valid draft, got %v", err)
	}
	if err := (OfferDraft{TaskID: 1, Price: 0}).Validate(); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
	if err := (OfferDraft{Price: 5}).Validate(); err == nil {
		t.Fatal("expected missing task id error")
	}
}

func TestReviewDraftValidateRatingRange(t *testing.T) {
	for _, rating := range []int{1, 3, 5} {
		if err := (ReviewDraft{TaskID: 9, Rating: rating}).Validate(); err != nil {
			t.Fatalf("rating %d: unexpected error %v", rating, err)
		}
	}
	for _, rating := range []int{0, 6, -1} {
		if err := (ReviewDraft{TaskID: 9, Rating: rating}).Validate(); !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}
}

func TestTransferValidate(t *testing.T) {
	if err := (Transfer{To: "bc1qxyz", Amount: "0.001"}).Validate(); err != nil {
		t.Fatalf("expected valid transfer, got %v", err)
	}
	if err := (Transfer{To: " ", Amount: "1"}).Validate(); err == nil {
		t.Fatal("expected blank recipient error")
	}
	for _, amount := range []string{"", "0", "-2", "abc"} {
		if err := (Transfer{To: "addr", Amount: amount}).Validate(); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %q: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestParseSkillsAndDisplayName(t *testing.T) {
	got := ParseSkills(" go, sql ,, rust ")
	if len(got) != 3 || got[0] != "go" || got[1] != "sql" || got[2] != "rust" {
		t.Fatalf("unexpected skills: %#v", got)
	}
	if len(ParseSkills("")) != 0 {
		t.Fatal("expected no skills for empty input")
	}
	if name := (Profile{UserID: 12}).DisplayName(); name != "User 12" {
		t.Fatalf("unexpected fallback name %q", name)
	}
	if name := (Profile{UserID: 12, Username: "ann"}).DisplayName(); name != "ann" {
		t.Fatalf("unexpected name %q", name)
	}
}
