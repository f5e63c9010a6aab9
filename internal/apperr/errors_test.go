package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfUnwrapsChains(t *testing.T) {
	base := Application("offers.accept", 403, "not your task")
	wrapped := fmt.Errorf("accept offer 7: %w", base)

	if got := KindOf(wrapped); got != KindApplication {
		t.Fatalf("KindOf = %q, want %q", got, KindApplication)
	}
	if !IsKind(wrapped, KindApplication) {
		t.Fatal("expected IsKind application")
	}
	if IsKind(nil, KindApplication) {
		t.Fatal("nil error must not match any kind")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Fatal("plain errors have no kind")
	}
}

func TestDisplay(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{Transport("tasks.list", errors.New("dial tcp: refused")), "network unavailable, try again"},
		{Application("auth", 401, "invalid captcha"), "invalid captcha"},
		{Application("auth", 500, ""), "request failed"},
		{Permission("offers.create", "you already made an offer"), "you already made an offer"},
		{Shape("tasks.get", "missing task"), "feature unavailable"},
		{errors.New("boom"), "boom"},
	}
	for _, tc := range cases {
		if got := Display(tc.err); got != tc.want {
			t.Fatalf("Display(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestErrorStringIncludesStatusAndCause(t *testing.T) {
	err := &Error{Kind: KindTransport, Op: "wallet.send", Status: 0, Message: "connection failed", Err: errors.New("eof")}
	if got := err.Error(); got != "transport wallet.send: connection failed: eof" {
		t.Fatalf("unexpected error string: %q", got)
	}
	app := Application("tickets.close", 404, "ticket not found")
	if got := app.Error(); got != "application tickets.close (status 404): ticket not found" {
		t.Fatalf("unexpected error string: %q", got)
	}
}
