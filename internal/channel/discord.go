// Package channel holds the chat-platform adapters. They translate platform
// events into domain types and keep platform SDK details out of the core.
package channel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"pulsebot/internal/bus"
	"pulsebot/internal/domain"
)

const discordMaxMsgLen = 2000

// Decider applies reviewer actions and serves pending drafts. Implemented by
// the engine.
type Decider interface {
	Decide(ctx context.Context, d domain.Decision) string
	PendingDraft(id string) (string, bool)
}

// Discord is the primary gateway: it feeds configured channel messages into
// the bus, runs the review-notice surface for the approval workflow, and
// publishes approved replies.
type Discord struct {
	token           string
	guildID         string
	reviewChannelID string
	channels        map[string]domain.ChannelConfig
	backfillLimit   int

	session *discordgo.Session
	bus     *bus.Bus
	decider Decider
	logger  *slog.Logger
}

type DiscordConfig struct {
	Token           string
	GuildID         string
	ReviewChannelID string
	Channels        map[string]domain.ChannelConfig
	BackfillLimit   int
	Logger          *slog.Logger
}

func NewDiscord(cfg DiscordConfig) *Discord {
	if cfg.BackfillLimit <= 0 {
		cfg.BackfillLimit = 100
	}
	return &Discord{
		token:           cfg.Token,
		guildID:         cfg.GuildID,
		reviewChannelID: cfg.ReviewChannelID,
		channels:        cfg.Channels,
		backfillLimit:   cfg.BackfillLimit,
		logger:          cfg.Logger,
	}
}

func (d *Discord) Name() string { return "discord" }

// AttachDecider wires the engine in after construction; the engine holds this
// adapter as its review surface, so the two are built in sequence.
func (d *Discord) AttachDecider(dec Decider) { d.decider = dec }

// Start connects to the Discord gateway and begins listening.
func (d *Discord) Start(ctx context.Context, b *bus.Bus) error {
	d.bus = b

	session, err := discordgo.New("Bot " + d.token)
	if err != nil {
		return fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent
	d.session = session

	session.AddHandler(d.onMessageCreate)
	session.AddHandler(d.onInteraction)

	if err := session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	d.logger.Info("discord gateway connected",
		"user", session.State.User.Username,
		"channels", len(d.channels),
	)
	return nil
}

func (d *Discord) Stop() error {
	if d.session != nil {
		return d.session.Close()
	}
	return nil
}

func (d *Discord) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}
	if d.guildID != "" && m.GuildID != "" && m.GuildID != d.guildID {
		return
	}

	msg, ok := d.resolve(m.Message)
	if !ok {
		// Unconfigured or disabled channel: not presented to the core.
		return
	}

	d.logger.Debug("discord message received",
		"author", m.Author.Username,
		"channel", msg.Channel.Name,
		"thread", msg.ThreadName,
	)
	d.bus.Publish(msg)
}

// resolve maps a raw platform message onto its configured logical channel.
// Messages inside threads resolve through the thread's parent channel.
func (d *Discord) resolve(m *discordgo.Message) (domain.InboundMessage, bool) {
	channelID := m.ChannelID
	threadID, threadName := "", ""

	cfg, ok := d.channels[channelID]
	if !ok {
		ch, err := d.channel(channelID)
		if err != nil || !ch.IsThread() {
			return domain.InboundMessage{}, false
		}
		parent, okParent := d.channels[ch.ParentID]
		if !okParent {
			return domain.InboundMessage{}, false
		}
		cfg = parent
		channelID = ch.ParentID
		threadID = m.ChannelID
		threadName = ch.Name
	}

	author := m.Author.Username
	if m.Member != nil && m.Member.Nick != "" {
		author = m.Member.Nick
	}

	return domain.InboundMessage{
		Content:    m.Content,
		AuthorID:   m.Author.ID,
		AuthorName: author,
		Channel:    cfg,
		ChannelID:  channelID,
		MessageID:  m.ID,
		ThreadID:   threadID,
		ThreadName: threadName,
		SourceLink: d.messageLink(m.GuildID, m.ChannelID, m.ID),
		Timestamp:  m.Timestamp,
	}, true
}

func (d *Discord) channel(id string) (*discordgo.Channel, error) {
	if d.session == nil {
		return nil, fmt.Errorf("gateway not connected")
	}
	if ch, err := d.session.State.Channel(id); err == nil {
		return ch, nil
	}
	return d.session.Channel(id)
}

func (d *Discord) messageLink(guildID, channelID, messageID string) string {
	if guildID == "" {
		guildID = d.guildID
	}
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

// Backfill replays up to the configured number of recent messages per
// configured channel through the bus. Used on first start, when there is no
// snapshot to load.
func (d *Discord) Backfill(ctx context.Context) error {
	for _, cfg := range d.channels {
		if err := ctx.Err(); err != nil {
			return err
		}
		msgs, err := d.session.ChannelMessages(cfg.ChannelID, d.backfillLimit, "", "", "")
		if err != nil {
			d.logger.Warn("backfill fetch failed", "channel", cfg.Name, "err", err)
			continue
		}
		// Oldest first, so first-seen tie-breaks match arrival order.
		for i := len(msgs) - 1; i >= 0; i-- {
			m := msgs[i]
			if m.Author == nil || m.Author.Bot {
				continue
			}
			if inbound, ok := d.resolve(m); ok {
				d.bus.Publish(inbound)
			}
		}
		d.logger.Info("channel backfilled", "channel", cfg.Name, "messages", len(msgs))
	}
	return nil
}

// --- review surface (domain.ReviewSurface) ---

const (
	actionApprove = "pulse:approve:"
	actionEdit    = "pulse:edit:"
	actionSkip    = "pulse:skip:"
	actionModal   = "pulse:editmodal:"
)

// PostReview posts the review notice with Approve/Edit/Skip buttons to the
// moderator channel.
func (d *Discord) PostReview(ctx context.Context, p *domain.PendingResponse) (string, string, error) {
	msg, err := d.session.ChannelMessageSendComplex(d.reviewChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{reviewEmbed(p, "pending review")},
		Components: reviewButtons(p.Origin.MessageID),
	})
	if err != nil {
		return "", "", fmt.Errorf("post review notice: %w", err)
	}
	return msg.ChannelID, msg.ID, nil
}

// UpdateReview rewrites the notice in place with the current draft.
func (d *Discord) UpdateReview(ctx context.Context, p *domain.PendingResponse) error {
	components := reviewButtons(p.Origin.MessageID)
	embeds := []*discordgo.MessageEmbed{reviewEmbed(p, "edited, pending review")}
	_, err := d.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    p.NoticeChannelID,
		ID:         p.NoticeMessageID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		return fmt.Errorf("update review notice: %w", err)
	}
	return nil
}

// ResolveReview rewrites the notice to its terminal form and removes the
// buttons.
func (d *Discord) ResolveReview(ctx context.Context, p *domain.PendingResponse, resolution string) error {
	var components []discordgo.MessageComponent
	embeds := []*discordgo.MessageEmbed{reviewEmbed(p, resolution)}
	_, err := d.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    p.NoticeChannelID,
		ID:         p.NoticeMessageID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		return fmt.Errorf("resolve review notice: %w", err)
	}
	return nil
}

// PublishReply sends the approved text to the origin channel as a reply to
// the originating message.
func (d *Discord) PublishReply(ctx context.Context, channelID, messageID, text string) error {
	_, err := d.session.ChannelMessageSendReply(channelID, truncate(text, discordMaxMsgLen), &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
		GuildID:   d.guildID,
	})
	if err != nil {
		return fmt.Errorf("publish reply: %w", err)
	}
	return nil
}

func reviewEmbed(p *domain.PendingResponse, status string) *discordgo.MessageEmbed {
	suggestion := p.SuggestedResponse
	if suggestion == "" {
		suggestion = "_no draft available, use Edit to write one_"
	}
	return &discordgo.MessageEmbed{
		Title: "Welcome reply (" + status + ")",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Introduction", Value: truncate(p.IntroContent, 1024)},
			{Name: "Suggested reply", Value: truncate(suggestion, 1024)},
			{Name: "Source", Value: p.SourceLink},
		},
	}
}

func reviewButtons(id string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Approve", Style: discordgo.SuccessButton, CustomID: actionApprove + id},
			discordgo.Button{Label: "Edit", Style: discordgo.PrimaryButton, CustomID: actionEdit + id},
			discordgo.Button{Label: "Skip", Style: discordgo.DangerButton, CustomID: actionSkip + id},
		}},
	}
}

// --- interactions ---

func (d *Discord) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		d.onButton(s, i)
	case discordgo.InteractionModalSubmit:
		d.onModalSubmit(s, i)
	}
}

func (d *Discord) onButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	ctx := context.Background()

	switch {
	case strings.HasPrefix(customID, actionApprove):
		id := strings.TrimPrefix(customID, actionApprove)
		notice := d.decider.Decide(ctx, domain.Decision{
			Kind: domain.DecisionApprove, MessageID: id, ReviewerID: interactionUserID(i),
		})
		d.respondEphemeral(s, i, notice)

	case strings.HasPrefix(customID, actionSkip):
		id := strings.TrimPrefix(customID, actionSkip)
		notice := d.decider.Decide(ctx, domain.Decision{
			Kind: domain.DecisionSkip, MessageID: id, ReviewerID: interactionUserID(i),
		})
		d.respondEphemeral(s, i, notice)

	case strings.HasPrefix(customID, actionEdit):
		id := strings.TrimPrefix(customID, actionEdit)
		draft, ok := d.decider.PendingDraft(id)
		if !ok {
			// Expired before the modal could open; route through Decide for
			// the canonical notice.
			notice := d.decider.Decide(ctx, domain.Decision{
				Kind: domain.DecisionEdit, MessageID: id, ReviewerID: interactionUserID(i),
			})
			d.respondEphemeral(s, i, notice)
			return
		}
		d.openEditModal(s, i, id, draft)
	}
}

func (d *Discord) openEditModal(s *discordgo.Session, i *discordgo.InteractionCreate, id, draft string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: actionModal + id,
			Title:    "Edit welcome reply",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  "draft",
						Label:     "Reply text",
						Style:     discordgo.TextInputParagraph,
						Value:     draft,
						Required:  true,
						MaxLength: discordMaxMsgLen,
					},
				}},
			},
		},
	})
	if err != nil {
		d.logger.Error("opening edit modal failed", "messageId", id, "err", err)
	}
}

func (d *Discord) onModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	if !strings.HasPrefix(data.CustomID, actionModal) {
		return
	}
	id := strings.TrimPrefix(data.CustomID, actionModal)

	draft := modalInputValue(data, "draft")
	notice := d.decider.Decide(context.Background(), domain.Decision{
		Kind: domain.DecisionEdit, MessageID: id, Draft: draft, ReviewerID: interactionUserID(i),
	})
	d.respondEphemeral(s, i, notice)
}

func modalInputValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		ar, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range ar.Components {
			if ti, ok := comp.(*discordgo.TextInput); ok && ti.CustomID == customID {
				return ti.Value
			}
		}
	}
	return ""
}

func (d *Discord) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		d.logger.Error("interaction response failed", "err", err)
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
