package analytics

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pulsebot/internal/domain"
)

// SummaryReport formats the full-ledger summary as an outbound report.
func SummaryReport(s Summary) domain.Report {
	var blocks []domain.ReportBlock

	overall := domain.ReportBlock{Title: fmt.Sprintf("Community summary: %d messages", s.Total)}
	for _, tc := range s.Topics {
		overall.Lines = append(overall.Lines, fmt.Sprintf("%s: %d", tc.Topic, tc.Count))
	}
	if len(overall.Lines) == 0 {
		overall.Lines = []string{"no messages tracked yet"}
	}
	blocks = append(blocks, overall)

	for _, cs := range s.Channels {
		b := domain.ReportBlock{Title: fmt.Sprintf("#%s: %d messages", cs.Channel, cs.Total)}
		for _, tc := range cs.Topics {
			b.Lines = append(b.Lines, fmt.Sprintf("%s: %d", tc.Topic, tc.Count))
		}
		blocks = append(blocks, b)
	}

	return newReport(blocks)
}

// HelpTopicsReport formats a ranked help-topic list.
func HelpTopicsReport(topics []HelpTopicCount) domain.Report {
	b := domain.ReportBlock{Title: "Top help topics"}
	for i, ht := range topics {
		b.Lines = append(b.Lines, fmt.Sprintf("%d. %s (%d)", i+1, ht.Topic, ht.Count))
	}
	if len(b.Lines) == 0 {
		b.Lines = []string{"no help topics recorded yet"}
	}
	return newReport([]domain.ReportBlock{b})
}

// ThreadsReport formats a ranked active-thread list.
func ThreadsReport(threads []ThreadCount, minReplies int) domain.Report {
	b := domain.ReportBlock{Title: fmt.Sprintf("Most active threads (min %d replies)", minReplies)}
	for i, th := range threads {
		b.Lines = append(b.Lines, fmt.Sprintf("%d. %s (%d replies)", i+1, th.ThreadName, th.ReplyCount))
	}
	if len(b.Lines) == 0 {
		b.Lines = []string{"no threads above the reply threshold"}
	}
	return newReport([]domain.ReportBlock{b})
}

func newReport(blocks []domain.ReportBlock) domain.Report {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(b.Title)
		sb.WriteString("\n")
		for _, line := range b.Lines {
			sb.WriteString("  ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return domain.Report{
		ID:     uuid.NewString(),
		Text:   sb.String(),
		Blocks: blocks,
	}
}
