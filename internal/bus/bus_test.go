package bus

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"pulsebot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func TestBus_PublishAndSubscribe(t *testing.T) {
	b := New(10, testLogger())

	b.Publish(domain.InboundMessage{Content: "hello", MessageID: "m1"})

	select {
	case msg := <-b.Subscribe():
		if msg.MessageID != "m1" {
			t.Errorf("expected message m1, got %q", msg.MessageID)
		}
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
}

func TestBus_PublishAfterClose(t *testing.T) {
	b := New(10, testLogger())
	b.Close()

	// Must not panic on a closed bus.
	b.Publish(domain.InboundMessage{Content: "late"})

	if _, ok := <-b.Subscribe(); ok {
		t.Error("expected closed subscribe channel")
	}
}

func TestBus_PreservesOrder(t *testing.T) {
	b := New(10, testLogger())

	for _, id := range []string{"a", "b", "c"} {
		b.Publish(domain.InboundMessage{MessageID: id})
	}
	b.Close()

	var got []string
	for msg := range b.Subscribe() {
		got = append(got, msg.MessageID)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("unexpected order: %v", got)
	}
}
