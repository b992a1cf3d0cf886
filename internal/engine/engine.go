// Package engine wires the signal pipeline: inbound messages flow through
// classification into the ledger, welcome messages additionally through the
// approval workflow, and reviewer decisions resolve pending replies.
package engine

import (
	"context"
	"log/slog"

	"pulsebot/internal/analytics"
	"pulsebot/internal/approval"
	"pulsebot/internal/bus"
	"pulsebot/internal/classify"
	"pulsebot/internal/convmem"
	"pulsebot/internal/domain"
	"pulsebot/internal/metrics"
	"pulsebot/internal/persist"
)

const defaultConcurrency = 5

// Engine owns the per-message pipeline. All state lives in the injected
// stores; the engine itself only coordinates.
type Engine struct {
	bus         *bus.Bus
	classifier  *classify.Classifier
	completer   domain.Completer
	ledger      *analytics.Ledger
	conv        *convmem.Store
	workflow    *approval.Workflow
	persist     *persist.Manager
	review      domain.ReviewSurface
	metrics     *metrics.Collector
	logger      *slog.Logger
	concurrency int
	rules       []rule
}

type Config struct {
	Bus           *bus.Bus
	Classifier    *classify.Classifier
	Completer     domain.Completer
	Ledger        *analytics.Ledger
	Conversations *convmem.Store
	Workflow      *approval.Workflow
	Persist       *persist.Manager
	Review        domain.ReviewSurface
	Metrics       *metrics.Collector
	Logger        *slog.Logger
	Concurrency   int
}

func New(cfg Config) *Engine {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	e := &Engine{
		bus:         cfg.Bus,
		classifier:  cfg.Classifier,
		completer:   cfg.Completer,
		ledger:      cfg.Ledger,
		conv:        cfg.Conversations,
		workflow:    cfg.Workflow,
		persist:     cfg.Persist,
		review:      cfg.Review,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		concurrency: cfg.Concurrency,
	}
	e.rules = queryRules(e)
	return e
}

// Run consumes inbound messages until the context ends or the bus closes.
// Messages are processed on bounded worker goroutines: a slow classification
// call delays only its own message.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info("engine started", "concurrency", e.concurrency)

	sem := make(chan struct{}, e.concurrency)
	inbound := e.bus.Subscribe()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping")
			return
		case msg, ok := <-inbound:
			if !ok {
				e.logger.Info("inbound bus closed, engine stopping")
				return
			}
			sem <- struct{}{}
			go func(m domain.InboundMessage) {
				defer func() {
					<-sem
					if r := recover(); r != nil {
						e.logger.Error("message pipeline panic", "panic", r, "messageId", m.MessageID)
					}
				}()
				e.HandleMessage(ctx, m)
			}(msg)
		}
	}
}

// HandleMessage runs one inbound message through the full pipeline. Nothing
// here may take the process down; every failure degrades locally.
func (e *Engine) HandleMessage(ctx context.Context, m domain.InboundMessage) {
	if m.Content == "" || m.Channel.Name == "" {
		e.logger.Warn("dropping malformed inbound event",
			"messageId", m.MessageID, "channelId", m.ChannelID)
		return
	}

	if m.Channel.ResponseType == domain.ResponseWelcome {
		e.startWelcomeReview(ctx, m)
	}

	res := e.classifier.Classify(ctx, m.Content)

	var helpTopic string
	if m.Channel.Name == "help" {
		helpTopic = e.classifier.ExtractHelpTopic(ctx, m.Content)
	}

	e.ledger.Record(domain.TrackedMessage{
		Content:    m.Content,
		Author:     m.AuthorName,
		Channel:    m.Channel.Name,
		Topic:      res.Topic,
		HelpTopic:  helpTopic,
		Timestamp:  m.Timestamp,
		ThreadID:   m.ThreadID,
		ThreadName: m.ThreadName,
		MessageID:  m.MessageID,
		ChannelID:  m.ChannelID,
	})
	e.metrics.Inc(metrics.MessagesRecorded)
	e.persist.ScheduleMessageSave()

	e.logger.Debug("message recorded",
		"channel", m.Channel.Name,
		"topic", res.Topic,
		"fallback", res.Fallback,
	)
}

// startWelcomeReview drafts a reply and opens the approval workflow. A failed
// or empty draft still creates the pending record, awaiting a manual draft.
func (e *Engine) startWelcomeReview(ctx context.Context, m domain.InboundMessage) {
	draft, err := e.classifier.DraftWelcome(ctx, m.AuthorName, m.Content)
	if err != nil {
		e.logger.Warn("welcome draft failed, awaiting manual draft",
			"messageId", m.MessageID, "err", err)
		draft = ""
	}

	p := e.workflow.Create(m, draft)
	chID, msgID, err := e.review.PostReview(ctx, p)
	if err != nil {
		e.logger.Error("posting review notice failed", "messageId", m.MessageID, "err", err)
		return
	}
	e.workflow.SetNotice(m.MessageID, chID, msgID)
}

// Decide applies one reviewer action and returns the notice text for the
// reviewer. Decisions on unknown ids are no-ops reported as expired.
func (e *Engine) Decide(ctx context.Context, d domain.Decision) string {
	switch d.Kind {
	case domain.DecisionApprove:
		out := e.workflow.Approve(d.MessageID)
		if out.Expired {
			return e.expired(d)
		}
		if out.State == approval.StateAwaitingManualDraft {
			return "No draft yet. Use Edit to write one first."
		}
		p := out.Pending
		if err := e.review.PublishReply(ctx, p.Origin.ChannelID, p.Origin.MessageID, p.SuggestedResponse); err != nil {
			e.logger.Error("publishing approved reply failed", "messageId", d.MessageID, "err", err)
			return "Publishing the reply failed; the request is still pending."
		}
		e.workflow.Complete(d.MessageID)
		if err := e.review.ResolveReview(ctx, p, "approved"); err != nil {
			e.logger.Warn("updating review notice failed", "messageId", d.MessageID, "err", err)
		}
		e.metrics.Inc(metrics.RepliesApproved)
		return "Reply approved and published."

	case domain.DecisionEdit:
		out := e.workflow.Edit(d.MessageID, d.Draft)
		if out.Expired {
			return e.expired(d)
		}
		if err := e.review.UpdateReview(ctx, out.Pending); err != nil {
			e.logger.Warn("updating review notice failed", "messageId", d.MessageID, "err", err)
		}
		return "Draft updated."

	case domain.DecisionSkip:
		out := e.workflow.Skip(d.MessageID)
		if out.Expired {
			return e.expired(d)
		}
		if err := e.review.ResolveReview(ctx, out.Pending, "skipped"); err != nil {
			e.logger.Warn("updating review notice failed", "messageId", d.MessageID, "err", err)
		}
		e.metrics.Inc(metrics.RepliesSkipped)
		return "Skipped, no reply sent."

	default:
		e.logger.Warn("unknown decision kind", "kind", d.Kind)
		return e.expired(d)
	}
}

// PendingDraft returns the current suggested text for an in-flight review.
// Used to pre-fill the reviewer's edit form.
func (e *Engine) PendingDraft(id string) (string, bool) {
	p, ok := e.workflow.Get(id)
	if !ok {
		return "", false
	}
	return p.SuggestedResponse, true
}

func (e *Engine) expired(d domain.Decision) string {
	e.metrics.Inc(metrics.DecisionsExpired)
	e.logger.Info("decision on expired request",
		"kind", d.Kind, "messageId", d.MessageID, "reviewer", d.ReviewerID)
	return approval.ExpiredNotice
}
