package audit

import "testing"

func TestNormalizePartyName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Acme   Corp. ", "ACME CORP"},
		{"(Beta LLC)", "BETA LLC"},
		{"\"Gamma,  Inc.\"", "GAMMA, INC"},
		{"- - -", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizePartyName(c.in); got != c.want {
			t.Fatalf("NormalizePartyName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPartyKeySymmetry(t *testing.T) {
	a := PartyKey([]string{"Acme Corp", "Beta LLC"})
	b := PartyKey([]string{"Beta LLC", "Acme Corp"})
	if a == "" || a != b {
		t.Fatalf("party key must be order-stable: %q vs %q", a, b)
	}
}

func TestPartyKeyUsesFirstTwoUsableNames(t *testing.T) {
	got := PartyKey([]string{"  ", "Acme Corp", "...", "Beta LLC", "Gamma Inc"})
	if got != "ACME CORP | BETA LLC" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestPartyKeySingleParty(t *testing.T) {
	if got := PartyKey([]string{"Acme Corp"}); got != "ACME CORP" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestPartyKeyNoUsableNames(t *testing.T) {
	if got := PartyKey([]string{"", "  ", "()"}); got != "" {
		t.Fatalf("expected empty key, got %q", got)
	}
	if got := PartyKey(nil); got != "" {
		t.Fatalf("expected empty key for nil, got %q", got)
	}
}
