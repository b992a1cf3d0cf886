package domain

// PendingResponse tracks one in-flight welcome reply awaiting human review.
// It is keyed by the originating message's platform id and lives only in
// memory: an in-flight review does not survive a restart.
type PendingResponse struct {
	Origin            InboundMessage
	SuggestedResponse string
	IntroContent      string
	SourceLink        string

	// Set once the review notification has been posted, so the notice can
	// be edited in place on later transitions.
	NoticeChannelID string
	NoticeMessageID string
}

// DecisionKind is a human reviewer's action on a pending response.
type DecisionKind string

const (
	DecisionApprove DecisionKind = "approve"
	DecisionEdit    DecisionKind = "edit"
	DecisionSkip    DecisionKind = "skip"
)

// Decision is one reviewer action event, keyed by the origin message id.
type Decision struct {
	Kind       DecisionKind
	MessageID  string
	Draft      string // replacement text, edit only
	ReviewerID string
}
