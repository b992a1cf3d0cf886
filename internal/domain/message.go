package domain

import (
	"strings"
	"time"
)

// Topic is the closed set of coarse labels applied to every tracked message.
type Topic string

const (
	TopicSupportRequest    Topic = "support-request"
	TopicFeatureRequest    Topic = "feature-request"
	TopicBugReport         Topic = "bug-report"
	TopicGeneralDiscussion Topic = "general-discussion"
	TopicPraise            Topic = "praise"
	TopicQuestion          Topic = "question"
)

// Topics lists all labels in declaration order. Display ties are broken by
// this order.
var Topics = []Topic{
	TopicSupportRequest,
	TopicFeatureRequest,
	TopicBugReport,
	TopicGeneralDiscussion,
	TopicPraise,
	TopicQuestion,
}

// ParseTopic validates a raw label against the closed Topic set.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseTopic(raw string) (Topic, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, t := range Topics {
		if s == string(t) {
			return t, true
		}
	}
	return "", false
}

// TrackedMessage is the immutable record of one classified inbound message.
// Topic is always a member of the Topic set; HelpTopic is raw extracted text
// and only set for help-channel messages.
type TrackedMessage struct {
	Content    string    `json:"content"`
	Author     string    `json:"author"`
	Channel    string    `json:"channel"`
	Topic      Topic     `json:"topic"`
	HelpTopic  string    `json:"helpTopic,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	ThreadID   string    `json:"threadId,omitempty"`
	ThreadName string    `json:"threadName,omitempty"`
	MessageID  string    `json:"messageId,omitempty"`
	ChannelID  string    `json:"channelId,omitempty"`
}

// InboundMessage is one chat-platform event after channel resolution.
// The adapter only publishes messages whose channel is configured and enabled.
type InboundMessage struct {
	Content    string
	AuthorID   string
	AuthorName string
	Channel    ChannelConfig
	ChannelID  string
	MessageID  string
	ThreadID   string
	ThreadName string
	SourceLink string
	Timestamp  time.Time
}
