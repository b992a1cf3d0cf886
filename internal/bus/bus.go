package bus

import (
	"log/slog"
	"sync"
	"time"

	"pulsebot/internal/domain"
)

const publishTimeout = 10 * time.Second

// Bus is a Go-channel based feed of inbound platform messages. Channel
// adapters publish, the engine is the single subscriber.
type Bus struct {
	inbound chan domain.InboundMessage
	mu      sync.RWMutex
	closed  bool
	logger  *slog.Logger
}

// New creates a Bus with the given buffer size.
func New(bufferSize int, logger *slog.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &Bus{
		inbound: make(chan domain.InboundMessage, bufferSize),
		logger:  logger,
	}
}

// Publish enqueues a message. Blocks up to 10 seconds if the bus is full
// instead of dropping.
func (b *Bus) Publish(msg domain.InboundMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.logger.Warn("attempted to publish to closed bus")
		return
	}

	select {
	case b.inbound <- msg:
	default:
		b.logger.Warn("inbound bus full, waiting...",
			"channel", msg.Channel.Name,
			"author", msg.AuthorName,
		)
		timer := time.NewTimer(publishTimeout)
		defer timer.Stop()
		select {
		case b.inbound <- msg:
			b.logger.Info("message delivered after wait", "channel", msg.Channel.Name)
		case <-timer.C:
			b.logger.Error("message dropped: bus full for 10s",
				"channel", msg.Channel.Name,
				"author", msg.AuthorName,
			)
		}
	}
}

func (b *Bus) Subscribe() <-chan domain.InboundMessage {
	return b.inbound
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		close(b.inbound)
	}
}
