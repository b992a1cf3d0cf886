package domain

import "context"

// Completer is the opaque text-completion service behind classification,
// help-topic extraction, reply drafting, and freeform answering.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// ReviewSurface is the outbound side of the approval workflow: posting and
// updating review notices for moderators, and publishing the approved reply
// back to the origin conversation.
type ReviewSurface interface {
	// PostReview posts a review notice for the pending response and returns
	// the identifiers of the posted notice message.
	PostReview(ctx context.Context, p *PendingResponse) (channelID, messageID string, err error)
	// UpdateReview rewrites the notice in place to show the current draft
	// and re-offer the decision actions.
	UpdateReview(ctx context.Context, p *PendingResponse) error
	// ResolveReview rewrites the notice to its terminal form ("approved",
	// "skipped"), removing the decision actions.
	ResolveReview(ctx context.Context, p *PendingResponse, resolution string) error
	// PublishReply sends text to the origin channel, threaded under the
	// origin message.
	PublishReply(ctx context.Context, channelID, messageID, text string) error
}

// Report is a structured analytics payload: plain text plus formatted display
// blocks for messaging surfaces that support them.
type Report struct {
	ID     string
	Text   string
	Blocks []ReportBlock
}

// ReportBlock is one titled section of a report.
type ReportBlock struct {
	Title string
	Lines []string
}
