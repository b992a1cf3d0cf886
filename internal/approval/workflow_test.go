package approval

import (
	"log/slog"
	"os"
	"testing"

	"pulsebot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func origin(id string) domain.InboundMessage {
	return domain.InboundMessage{
		MessageID:  id,
		Content:    "Hi, I'm new here!",
		AuthorName: "newcomer",
		ChannelID:  "c1",
	}
}

func TestWorkflow_CreateDrafted(t *testing.T) {
	w := NewWorkflow(testLogger())
	p := w.Create(origin("m1"), "Welcome aboard!")

	if p.SuggestedResponse != "Welcome aboard!" {
		t.Errorf("draft lost: %+v", p)
	}
	if w.Len() != 1 {
		t.Errorf("expected 1 pending, got %d", w.Len())
	}
}

func TestWorkflow_CreateEmptyDraftAwaitsManual(t *testing.T) {
	w := NewWorkflow(testLogger())
	w.Create(origin("m1"), "   ")

	out := w.Edit("m1", "Hand-written welcome")
	if out.Expired {
		t.Fatal("record should exist")
	}
	if out.State != StateEdited {
		t.Errorf("expected edited state, got %s", out.State)
	}
	if out.Pending.SuggestedResponse != "Hand-written welcome" {
		t.Errorf("edit not applied: %+v", out.Pending)
	}
}

func TestWorkflow_EditApprovePublishesEditedText(t *testing.T) {
	w := NewWorkflow(testLogger())
	w.Create(origin("m1"), "Hi!")

	if out := w.Edit("m1", "Hello there!"); out.Expired {
		t.Fatal("edit on live record must not expire")
	}
	out := w.Approve("m1")
	if out.Expired {
		t.Fatal("approve on live record must not expire")
	}
	if out.Pending.SuggestedResponse != "Hello there!" {
		t.Errorf("approved text must be the edited draft, got %q", out.Pending.SuggestedResponse)
	}
	// The record survives until the reply is actually published.
	if _, ok := w.Get("m1"); !ok {
		t.Error("approve alone must not remove the record")
	}
	w.Complete("m1")
	if _, ok := w.Get("m1"); ok {
		t.Error("completed record must be removed")
	}
}

func TestWorkflow_ApproveWithoutDraftRejected(t *testing.T) {
	w := NewWorkflow(testLogger())
	w.Create(origin("m1"), "")

	out := w.Approve("m1")
	if out.Expired {
		t.Fatal("record exists, must not expire")
	}
	if out.State != StateAwaitingManualDraft {
		t.Errorf("expected awaiting-manual-draft, got %s", out.State)
	}
	if w.Len() != 1 {
		t.Error("rejected approval must keep the record")
	}

	// Supplying a draft makes it approvable.
	w.Edit("m1", "Hand-written welcome")
	if out := w.Approve("m1"); out.State != StateEdited {
		t.Errorf("expected edited state after manual draft, got %s", out.State)
	}
}

func TestWorkflow_RepeatedEdits(t *testing.T) {
	w := NewWorkflow(testLogger())
	w.Create(origin("m1"), "v1")
	w.Edit("m1", "v2")
	out := w.Edit("m1", "v3")

	if out.State != StateEdited || out.Pending.SuggestedResponse != "v3" {
		t.Errorf("repeated edit failed: %+v", out)
	}
}

func TestWorkflow_DecisionOnUnknownIDIsExpiredNoop(t *testing.T) {
	w := NewWorkflow(testLogger())
	w.Create(origin("m1"), "Hi!")

	for _, out := range []Outcome{w.Approve("ghost"), w.Skip("ghost"), w.Edit("ghost", "x")} {
		if !out.Expired {
			t.Error("decision on unknown id must report expired")
		}
	}
	// The live record is untouched.
	if w.Len() != 1 {
		t.Errorf("unknown-id decision must not change state, pending=%d", w.Len())
	}
}

func TestWorkflow_SkipRemovesWithoutTrace(t *testing.T) {
	w := NewWorkflow(testLogger())
	w.Create(origin("m1"), "Hi!")

	out := w.Skip("m1")
	if out.Expired {
		t.Fatal("skip on live record must not expire")
	}
	if w.Len() != 0 {
		t.Error("skipped record must be removed")
	}
	// A second skip is the expired no-op.
	if out := w.Skip("m1"); !out.Expired {
		t.Error("second skip must report expired")
	}
}

func TestWorkflow_SecondCreateOverwrites(t *testing.T) {
	w := NewWorkflow(testLogger())
	w.Create(origin("m1"), "first")
	w.Create(origin("m1"), "second")

	if w.Len() != 1 {
		t.Fatalf("map semantics: expected 1 record, got %d", w.Len())
	}
	p, _ := w.Get("m1")
	if p.SuggestedResponse != "second" {
		t.Errorf("second create must overwrite, got %q", p.SuggestedResponse)
	}
}

func TestWorkflow_SetNotice(t *testing.T) {
	w := NewWorkflow(testLogger())
	w.Create(origin("m1"), "Hi!")
	w.SetNotice("m1", "review-ch", "notice-42")

	p, _ := w.Get("m1")
	if p.NoticeChannelID != "review-ch" || p.NoticeMessageID != "notice-42" {
		t.Errorf("notice ids not stored: %+v", p)
	}
}
