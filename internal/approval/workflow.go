// Package approval tracks in-flight welcome replies through human review.
package approval

import (
	"log/slog"
	"strings"
	"sync"

	"pulsebot/internal/domain"
)

// State of one pending response.
type State string

const (
	// StateDrafted: a non-empty AI suggestion is available.
	StateDrafted State = "drafted"
	// StateAwaitingManualDraft: the AI draft failed or came back empty; a
	// human must supply text before approval is possible.
	StateAwaitingManualDraft State = "awaiting-manual-draft"
	// StateEdited: a human supplied or overwrote the text. Repeated edits
	// stay in this state.
	StateEdited State = "edited"
)

// ExpiredNotice is shown to a reviewer acting on an id with no pending
// record. Records never survive a restart, so this is a normal outcome.
const ExpiredNotice = "This request has expired."

// Outcome of a decision action.
type Outcome struct {
	Expired bool
	Pending *domain.PendingResponse
	State   State
}

type record struct {
	pending domain.PendingResponse
	state   State
}

// Workflow holds at most one active record per origin message id. A second
// Create for the same id overwrites the first.
type Workflow struct {
	mu      sync.Mutex
	pending map[string]*record
	logger  *slog.Logger
}

func NewWorkflow(logger *slog.Logger) *Workflow {
	return &Workflow{
		pending: make(map[string]*record),
		logger:  logger,
	}
}

// Create registers a pending response for the origin message. An empty or
// whitespace draft lands in StateAwaitingManualDraft.
func (w *Workflow) Create(origin domain.InboundMessage, draft string) *domain.PendingResponse {
	w.mu.Lock()
	defer w.mu.Unlock()

	state := StateDrafted
	if strings.TrimSpace(draft) == "" {
		draft = ""
		state = StateAwaitingManualDraft
	}
	rec := &record{
		pending: domain.PendingResponse{
			Origin:            origin,
			SuggestedResponse: draft,
			IntroContent:      origin.Content,
			SourceLink:        origin.SourceLink,
		},
		state: state,
	}
	if _, exists := w.pending[origin.MessageID]; exists {
		w.logger.Warn("pending response overwritten", "messageId", origin.MessageID)
	}
	w.pending[origin.MessageID] = rec
	return w.snapshot(rec)
}

// SetNotice records the posted review notice so it can be edited in place.
func (w *Workflow) SetNotice(id, channelID, messageID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if rec, ok := w.pending[id]; ok {
		rec.pending.NoticeChannelID = channelID
		rec.pending.NoticeMessageID = messageID
	}
}

// Get returns a copy of the pending response, if any.
func (w *Workflow) Get(id string) (*domain.PendingResponse, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	rec, ok := w.pending[id]
	if !ok {
		return nil, false
	}
	return w.snapshot(rec), true
}

// Edit replaces the suggested text. The record stays pending; repeated edits
// are allowed.
func (w *Workflow) Edit(id, text string) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec, ok := w.pending[id]
	if !ok {
		return Outcome{Expired: true}
	}
	rec.pending.SuggestedResponse = text
	rec.state = StateEdited
	return Outcome{Pending: w.snapshot(rec), State: rec.state}
}

// Approve returns the record for publishing. A record still awaiting a
// manual draft is returned with its state unchanged so the caller can reject
// the action; there is no text to publish yet. The record is only removed by
// Complete, after the reply has actually been sent.
func (w *Workflow) Approve(id string) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec, ok := w.pending[id]
	if !ok {
		return Outcome{Expired: true}
	}
	return Outcome{Pending: w.snapshot(rec), State: rec.state}
}

// Complete removes the record once its reply has been published. A failed
// publish never reaches here, so the record stays available for another
// attempt.
func (w *Workflow) Complete(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.pending, id)
}

// Skip removes the record without publishing.
func (w *Workflow) Skip(id string) Outcome {
	return w.resolve(id)
}

func (w *Workflow) resolve(id string) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec, ok := w.pending[id]
	if !ok {
		return Outcome{Expired: true}
	}
	delete(w.pending, id)
	return Outcome{Pending: w.snapshot(rec), State: rec.state}
}

// Len returns the number of in-flight reviews.
func (w *Workflow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *Workflow) snapshot(rec *record) *domain.PendingResponse {
	cp := rec.pending
	return &cp
}
