package channel

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		in   string
		cmd  string
		args []string
	}{
		{"/summary", "/summary", nil},
		{"/topics 10", "/topics", []string{"10"}},
		{"/threads 3 5", "/threads", []string{"3", "5"}},
		{"/summary@pulsebot", "/summary", nil},
		{"plain question", "", nil},
		{"", "", nil},
	}
	for _, tc := range cases {
		cmd, args := splitCommand(tc.in)
		if cmd != tc.cmd || len(args) != len(tc.args) {
			t.Errorf("splitCommand(%q) = %q %v, want %q %v", tc.in, cmd, args, tc.cmd, tc.args)
		}
	}
}

func TestArgInt(t *testing.T) {
	args := []string{"7", "junk"}
	if got := argInt(args, 0, 3); got != 7 {
		t.Errorf("got %d", got)
	}
	if got := argInt(args, 1, 3); got != 3 {
		t.Errorf("non-numeric arg must fall back, got %d", got)
	}
	if got := argInt(args, 5, 3); got != 3 {
		t.Errorf("missing arg must fall back, got %d", got)
	}
}

func TestSplitText(t *testing.T) {
	if got := splitText("one line", 100); len(got) != 1 {
		t.Errorf("short text must stay whole: %v", got)
	}

	text := strings.Repeat("line of report output\n", 400)
	chunks := splitText(text, telegramMaxMsgLen)
	if len(chunks) < 2 {
		t.Fatal("long text must split")
	}
	for i, c := range chunks {
		if len(c) > telegramMaxMsgLen {
			t.Errorf("chunk %d too long: %d", i, len(c))
		}
	}
	joined := strings.Join(chunks, "\n")
	if !strings.HasPrefix(joined, "line of report output") {
		t.Error("content mangled by splitting")
	}
}

func TestSplitText_RuneBoundary(t *testing.T) {
	// No newlines, so the cut lands mid-text; it must not split a rune.
	text := strings.Repeat("é", 3000)
	for i, c := range splitText(text, telegramMaxMsgLen) {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d is invalid UTF-8", i)
		}
		if len(c) > telegramMaxMsgLen {
			t.Errorf("chunk %d too long: %d", i, len(c))
		}
	}
}

func TestTelegramAllowList(t *testing.T) {
	tg := NewTelegram(TelegramConfig{
		Token:     "t",
		AllowFrom: []string{"100", " 200 ", "junk"},
		Logger:    testLogger(),
	})
	if !tg.allowed(100) || !tg.allowed(200) {
		t.Error("listed operators must be allowed")
	}
	if tg.allowed(300) {
		t.Error("unlisted user must be rejected")
	}

	open := NewTelegram(TelegramConfig{Token: "t", Logger: testLogger()})
	if !open.allowed(300) {
		t.Error("empty allow list means allow all")
	}
}
