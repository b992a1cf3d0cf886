package normalize

import "testing"

func TestNormalize_CanonicalMapping(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"VS Code setup", "vs code issue"},
		{"vscode issue", "vs code issue"},
		{"VSCode Setup", "vs code issue"},
		{"trouble with SSH keys", "ssh issue"},
		{"Docker won't start", "docker issue"},
		{"unknown issue", GeneralHelp},
		{"No main topic", GeneralHelp},
		{"Installation of the CLI", "installation help"},
		{"how to install", "installation help"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.raw); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalize_Cleanup(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`"network problems"`, "network problem"},
		{"  weird   spacing   errors ", "weird spacing error"},
		{"Login Questions.", "login question"},
		{"weird build failure..", "weird build failure"},
		{"...", GeneralHelp},
		{"", GeneralHelp},
		{"   ", GeneralHelp},
	}
	for _, tc := range cases {
		if got := Normalize(tc.raw); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"VS Code setup",
		"vscode",
		"ssh problems",
		"unknown issue",
		"random unmatched phrase",
		"Network Errors",
		"install",
		"weird build failure..",
		"trailing dots...",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalize_LongestPatternWins(t *testing.T) {
	// "installation" and "install" both match; the longer pattern must win
	// deterministically (same canonical here, so assert via the rule order).
	if got := Normalize("installation issues"); got != "installation help" {
		t.Errorf("got %q", got)
	}
	// "unknown issue" must beat the shorter "install"-style substrings and
	// never fall through to cleanup.
	if got := Normalize(`"Unknown Issues"`); got != GeneralHelp {
		t.Errorf("got %q", got)
	}
}
