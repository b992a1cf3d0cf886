package channel

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"pulsebot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func testGateway() *Discord {
	return NewDiscord(DiscordConfig{
		Token:           "token",
		GuildID:         "g1",
		ReviewChannelID: "review",
		Channels: map[string]domain.ChannelConfig{
			"c-general": {Name: "general", ChannelID: "c-general", ResponseType: domain.ResponseAnalyticsOnly, Enabled: true},
			"c-welcome": {Name: "welcome", ChannelID: "c-welcome", ResponseType: domain.ResponseWelcome, Enabled: true},
		},
		Logger: testLogger(),
	})
}

func platformMsg(channelID, id, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		ChannelID: channelID,
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: "u1", Username: "alice"},
		Timestamp: time.Now(),
	}
}

func TestResolve_ConfiguredChannel(t *testing.T) {
	d := testGateway()

	msg, ok := d.resolve(platformMsg("c-general", "m1", "hello"))
	if !ok {
		t.Fatal("configured channel must resolve")
	}
	if msg.Channel.Name != "general" || msg.MessageID != "m1" || msg.AuthorName != "alice" {
		t.Errorf("unexpected resolution: %+v", msg)
	}
	if msg.SourceLink != "https://discord.com/channels/g1/c-general/m1" {
		t.Errorf("bad source link: %s", msg.SourceLink)
	}
}

func TestResolve_UnknownChannelDropped(t *testing.T) {
	d := testGateway()

	if _, ok := d.resolve(platformMsg("c-unknown", "m1", "hello")); ok {
		t.Error("unconfigured channel must not reach the core")
	}
}

func TestResolve_PrefersMemberNick(t *testing.T) {
	d := testGateway()
	m := platformMsg("c-general", "m1", "hi")
	m.Member = &discordgo.Member{Nick: "The Captain"}

	msg, _ := d.resolve(m)
	if msg.AuthorName != "The Captain" {
		t.Errorf("expected nick, got %q", msg.AuthorName)
	}
}

func TestBackfill_StopsOnCanceledContext(t *testing.T) {
	d := testGateway() // no session; fetching any channel would fail
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.Backfill(ctx); err == nil {
		t.Error("canceled context must stop the backfill")
	}
}

func TestReviewButtons_CustomIDs(t *testing.T) {
	rows := reviewButtons("m42")
	if len(rows) != 1 {
		t.Fatalf("expected one action row, got %d", len(rows))
	}
	row := rows[0].(discordgo.ActionsRow)
	want := []string{actionApprove + "m42", actionEdit + "m42", actionSkip + "m42"}
	for i, comp := range row.Components {
		btn := comp.(discordgo.Button)
		if btn.CustomID != want[i] {
			t.Errorf("button %d: got %q, want %q", i, btn.CustomID, want[i])
		}
	}
}

func TestReviewEmbed_EmptyDraftPlaceholder(t *testing.T) {
	p := &domain.PendingResponse{IntroContent: "hi all", SourceLink: "link"}
	e := reviewEmbed(p, "pending review")
	if e.Fields[1].Value == "" {
		t.Error("empty drafts need a placeholder so the embed stays valid")
	}
}

func TestModalInputValue(t *testing.T) {
	data := discordgo.ModalSubmitInteractionData{
		CustomID: actionModal + "m1",
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: "draft", Value: "Hello there!"},
			}},
		},
	}
	if got := modalInputValue(data, "draft"); got != "Hello there!" {
		t.Errorf("got %q", got)
	}
	if got := modalInputValue(data, "other"); got != "" {
		t.Errorf("missing input must return empty, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	long := truncate(string(make([]byte, 3000)), discordMaxMsgLen)
	if len(long) != discordMaxMsgLen {
		t.Errorf("expected %d bytes, got %d", discordMaxMsgLen, len(long))
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// Force the cut point into the middle of a multi-byte rune.
	s := strings.Repeat("é", 100)
	got := truncate(s, 20)
	if !utf8.ValidString(got) {
		t.Errorf("truncation split a rune: %q", got)
	}
	if len(got) > 20 {
		t.Errorf("result too long: %d bytes", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("missing ellipsis: %q", got)
	}
}
