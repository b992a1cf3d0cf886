package engine

import (
	"context"
	"fmt"
	"strings"

	"pulsebot/internal/analytics"
	"pulsebot/internal/domain"
	"pulsebot/internal/metrics"
)

const (
	DefaultTopN          = 5
	DefaultMinThreadSize = 3
)

const answerSystemPrompt = `You are an analytics assistant for a community team. Answer the
question using only the provided community statistics and the prior
conversation. Be concise. If the statistics cannot answer the question,
say so.`

// Summary returns the full-ledger report.
func (e *Engine) Summary() domain.Report {
	return analytics.SummaryReport(e.ledger.Summarize())
}

// TopHelpTopics returns the ranked help-topic report.
func (e *Engine) TopHelpTopics(n int) domain.Report {
	if n <= 0 {
		n = DefaultTopN
	}
	return analytics.HelpTopicsReport(e.ledger.TopHelpTopics(n))
}

// TopThreads returns the ranked thread report.
func (e *Engine) TopThreads(minReplies, n int) domain.Report {
	if minReplies <= 0 {
		minReplies = DefaultMinThreadSize
	}
	if n <= 0 {
		n = DefaultTopN
	}
	return analytics.ThreadsReport(e.ledger.TopThreads(minReplies, n), minReplies)
}

// AnswerFreeform answers an ad-hoc analytics question. The prompt carries the
// current ledger summary plus the asker's conversation history; both the
// question and the answer are appended to that history. A completion failure
// degrades to an apology, never an error.
func (e *Engine) AnswerFreeform(ctx context.Context, userID, question string) string {
	var sb strings.Builder
	sb.WriteString("Community statistics:\n")
	sb.WriteString(e.Summary().Text)

	if history := e.conv.History(userID); len(history) > 0 {
		sb.WriteString("\nPrior conversation:\n")
		for _, turn := range history {
			fmt.Fprintf(&sb, "%s: %s\n", turn.Role, turn.Content)
		}
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)

	answer, err := e.completer.Complete(ctx, answerSystemPrompt, sb.String())
	if err != nil {
		e.logger.Warn("freeform answer failed", "user", userID, "err", err)
		return "Sorry, I couldn't work that out right now. Try again in a moment."
	}

	e.conv.Append(userID, domain.RoleUser, question)
	e.conv.Append(userID, domain.RoleAssistant, answer)
	e.persist.ScheduleConversationSave()
	e.metrics.Inc(metrics.QueriesAnswered)
	return answer
}
