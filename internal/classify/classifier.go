// Package classify maps free text onto the fixed topic taxonomy through the
// completion service, with a strict validation gate on the way back.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pulsebot/internal/domain"
	"pulsebot/internal/metrics"
	"pulsebot/internal/normalize"
)

const taxonomyPrompt = `You are a message classifier for a developer community.
Classify the message into exactly one of these labels:
support-request, feature-request, bug-report, general-discussion, praise, question

Respond with the label only, nothing else.`

const helpTopicPrompt = `Extract the main help topic of this support message as a short phrase
of at most five words (for example "vs code issue", "ssh issue").
If there is no clear topic, respond with "general help".
Respond with the phrase only, nothing else.`

const welcomePrompt = `You are a friendly community greeter. Write a short, warm welcome reply
(two or three sentences) to a newcomer's introduction. Mention something
specific from their introduction. Do not use emoji excessively.`

// Result is the gated outcome of a classification: a valid Topic, with
// Fallback set when the upstream answer was unusable.
type Result struct {
	Topic    domain.Topic
	Fallback bool
}

// Classifier owns the taxonomy prompts and the fallback policy. None of its
// classification methods ever return an error to the caller.
type Classifier struct {
	completer domain.Completer
	metrics   *metrics.Collector
	logger    *slog.Logger
}

type Config struct {
	Completer domain.Completer
	Metrics   *metrics.Collector
	Logger    *slog.Logger
}

func New(cfg Config) *Classifier {
	return &Classifier{
		completer: cfg.Completer,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
}

// Classify maps text to a Topic. Network errors, malformed responses, and
// out-of-taxonomy labels all degrade to general-discussion.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	raw, err := c.completer.Complete(ctx, taxonomyPrompt, text)
	if err != nil {
		c.logger.Warn("classification call failed, using fallback", "err", err)
		return c.fallback()
	}
	topic, ok := parseLabel(raw)
	if !ok {
		c.logger.Warn("classifier returned out-of-taxonomy label, using fallback", "label", raw)
		return c.fallback()
	}
	c.metrics.Inc(metrics.MessagesClassified)
	return Result{Topic: topic}
}

func (c *Classifier) fallback() Result {
	c.metrics.Inc(metrics.ClassifierFallbacks)
	return Result{Topic: domain.TopicGeneralDiscussion, Fallback: true}
}

// ExtractHelpTopic pulls a short free-text subject phrase out of a help
// message. Failures degrade to "general help".
func (c *Classifier) ExtractHelpTopic(ctx context.Context, text string) string {
	raw, err := c.completer.Complete(ctx, helpTopicPrompt, text)
	if err != nil {
		c.logger.Warn("help topic extraction failed, using fallback", "err", err)
		return normalize.GeneralHelp
	}
	phrase := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), "\"'`"))
	if phrase == "" {
		return normalize.GeneralHelp
	}
	return phrase
}

// DraftWelcome asks for a suggested welcome reply. Unlike classification this
// returns the error: an empty draft routes the pending record to manual
// drafting instead of silently publishing boilerplate.
func (c *Classifier) DraftWelcome(ctx context.Context, author, intro string) (string, error) {
	prompt := fmt.Sprintf("New member %s introduced themselves:\n\n%s", author, intro)
	draft, err := c.completer.Complete(ctx, welcomePrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("draft welcome reply: %w", err)
	}
	return strings.TrimSpace(draft), nil
}

// parseLabel is the strict parse-and-validate boundary for the classifier's
// free-text answer: trim decoration, then require an exact taxonomy match.
func parseLabel(raw string) (domain.Topic, bool) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "\"'`")
	s = strings.TrimSuffix(s, ".")
	// Some models answer "label: feature-request"; keep the last token.
	if i := strings.LastIndexAny(s, ": \n"); i >= 0 {
		s = s[i+1:]
	}
	return domain.ParseTopic(s)
}
