package engine

import (
	"context"
	"strings"
)

// rule is one entry of the query router: the first matching predicate wins.
type rule struct {
	name  string
	match func(q string) bool
	run   func(ctx context.Context, e *Engine, userID, q string) string
}

var forgetTriggers = []string{
	"forget",
	"clear history",
	"start over",
	"new conversation",
}

// queryRules is the ordered routing table for the conversational front-end.
// Evaluated once per query; anything unmatched falls through to the freeform
// answerer.
func queryRules(e *Engine) []rule {
	return []rule{
		{
			name: "forget",
			match: func(q string) bool {
				return containsAny(q, forgetTriggers...)
			},
			run: func(ctx context.Context, e *Engine, userID, q string) string {
				e.conv.Clear(userID)
				e.persist.ScheduleConversationSave()
				return "Conversation history cleared. We're starting fresh."
			},
		},
		{
			name: "threads",
			match: func(q string) bool {
				return strings.Contains(q, "thread")
			},
			run: func(ctx context.Context, e *Engine, userID, q string) string {
				return e.TopThreads(DefaultMinThreadSize, DefaultTopN).Text
			},
		},
		{
			name: "help-topics",
			match: func(q string) bool {
				return containsAny(q, "help topic", "top topic", "common issue")
			},
			run: func(ctx context.Context, e *Engine, userID, q string) string {
				return e.TopHelpTopics(DefaultTopN).Text
			},
		},
		{
			name: "summary",
			match: func(q string) bool {
				return containsAny(q, "summary", "overview", "stats", "report")
			},
			run: func(ctx context.Context, e *Engine, userID, q string) string {
				return e.Summary().Text
			},
		},
		{
			name:  "freeform",
			match: func(q string) bool { return true },
			run: func(ctx context.Context, e *Engine, userID, q string) string {
				return e.AnswerFreeform(ctx, userID, q)
			},
		},
	}
}

// HandleQuery routes one conversational query and returns the reply text.
func (e *Engine) HandleQuery(ctx context.Context, userID, query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "Ask me about the community: summary, top help topics, active threads, or anything else."
	}
	for _, r := range e.rules {
		if r.match(q) {
			e.logger.Debug("query routed", "rule", r.name, "user", userID)
			return r.run(ctx, e, userID, query)
		}
	}
	// Unreachable: the freeform rule matches everything.
	return ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
