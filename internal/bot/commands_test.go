package bot

import (
	"strings"
	"testing"
)

func TestParseMention(t *testing.T) {
	valid := map[string]string{
		"<@123456>":  "123456",
		"<@!987654>": "987654",
		"555":        "555",
	}
	for in, want := range valid {
		got, err := parseMention(in)
		if err != nil {
			t.Fatalf("parseMention(%q) unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("parseMention(%q)=%q want %q", in, got, want)
		}
	}

	invalid := []string{"", "<@>", "bob", "<#123456>", "12a34"}
	for _, in := range invalid {
		if _, err := parseMention(in); err == nil {
			t.Fatalf("parseMention(%q) expected error", in)
		}
	}
}

func TestParseTransfer(t *testing.T) {
	cmd, err := parseTransfer([]string{"<@42>", "1,500"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.TargetID != "42" || cmd.Amount != 1500 {
		t.Fatalf("got %+v", cmd)
	}

	bad := [][]string{
		{},
		{"<@42>"},
		{"<@42>", "lots"},
		{"nobody", "100"},
	}
	for _, args := range bad {
		if _, err := parseTransfer(args); err == nil {
			t.Fatalf("parseTransfer(%v) expected error", args)
		}
	}
}

func TestParseTurf(t *testing.T) {
	cmd, err := parseTurf(nil)
	if err != nil || cmd.Action != "list" {
		t.Fatalf("bare turf should list, got %+v %v", cmd, err)
	}

	cmd, err = parseTurf(strings.Fields("capture The Docks"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Action != "capture" || cmd.Name != "The Docks" {
		t.Fatalf("multi-word turf name not joined: %+v", cmd)
	}

	if _, err := parseTurf([]string{"burn"}); err == nil {
		t.Fatalf("unknown subcommand should fail")
	}
	if _, err := parseTurf([]string{"info"}); err == nil {
		t.Fatalf("info without a name should fail")
	}
}

func TestParseHeist(t *testing.T) {
	cmd, err := parseHeist([]string{"BANK", "3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Type != "bank" || cmd.Participants != 3 {
		t.Fatalf("got %+v", cmd)
	}
	if _, err := parseHeist([]string{"bank"}); err == nil {
		t.Fatalf("missing player count should fail")
	}
	if _, err := parseHeist([]string{"bank", "many"}); err == nil {
		t.Fatalf("non-numeric player count should fail")
	}
}

func TestParseHit(t *testing.T) {
	cmd, err := parseHit([]string{"request", "<@9>", "5000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.TargetID != "9" || cmd.Bounty != 5000 {
		t.Fatalf("got %+v", cmd)
	}

	cmd, err = parseHit(nil)
	if err != nil || cmd.Action != "list" {
		t.Fatalf("bare hit should list, got %+v %v", cmd, err)
	}

	if _, err := parseHit([]string{"claim"}); err == nil {
		t.Fatalf("claim without contract id should fail")
	}
}

func TestParseFamily(t *testing.T) {
	cmd, err := parseFamily(strings.Fields("create The Five Points"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Action != "create" || cmd.Name != "The Five Points" {
		t.Fatalf("got %+v", cmd)
	}

	cmd, err = parseFamily([]string{"setrank", "<@7>", "Capo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.TargetID != "7" || cmd.Rank != "capo" {
		t.Fatalf("rank not normalized: %+v", cmd)
	}

	if _, err := parseFamily([]string{"dissolve"}); err == nil {
		t.Fatalf("unknown subcommand should fail")
	}
}

func TestUsageErrorsAreShown(t *testing.T) {
	_, err := parseTransfer(nil)
	msg, known := userMessage(err)
	if !known {
		t.Fatalf("usage error should be player-facing")
	}
	if !strings.Contains(msg, "usage:") {
		t.Fatalf("expected usage text, got %q", msg)
	}
}
