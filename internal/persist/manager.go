package persist

import (
	"encoding/json"
	"log/slog"
	"time"

	"pulsebot/internal/analytics"
	"pulsebot/internal/convmem"
	"pulsebot/internal/domain"
	"pulsebot/internal/metrics"
)

const (
	// Debounce quiet periods. The ledger absorbs bursts of channel traffic;
	// conversations change at human pace and flush sooner.
	DefaultMessageDebounce      = 5 * time.Second
	DefaultConversationDebounce = 2 * time.Second
)

// Manager connects the in-memory stores to the snapshot store: wholesale load
// at startup, debounced wholesale saves on mutation.
type Manager struct {
	store   *Store
	ledger  *analytics.Ledger
	conv    *convmem.Store
	metrics *metrics.Collector
	logger  *slog.Logger

	messages      *saver
	conversations *saver

	loadedMessages int
}

type ManagerConfig struct {
	Store                *Store
	Ledger               *analytics.Ledger
	Conversations        *convmem.Store
	Metrics              *metrics.Collector
	MessageDebounce      time.Duration
	ConversationDebounce time.Duration
	Logger               *slog.Logger
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.MessageDebounce <= 0 {
		cfg.MessageDebounce = DefaultMessageDebounce
	}
	if cfg.ConversationDebounce <= 0 {
		cfg.ConversationDebounce = DefaultConversationDebounce
	}
	m := &Manager{
		store:   cfg.Store,
		ledger:  cfg.Ledger,
		conv:    cfg.Conversations,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
	m.messages = newSaver(SnapshotMessages, cfg.MessageDebounce, m.saveMessages, cfg.Logger)
	m.conversations = newSaver(SnapshotConversations, cfg.ConversationDebounce, m.saveConversations, cfg.Logger)
	return m
}

// Load reads both snapshots into the in-memory stores. Each snapshot loads
// independently: a missing or corrupt payload leaves that store empty and is
// logged, never fatal.
func (m *Manager) Load() {
	var msgs []domain.TrackedMessage
	if m.loadInto(SnapshotMessages, &msgs) {
		m.ledger.Import(msgs)
		m.loadedMessages = len(msgs)
		m.logger.Info("message ledger loaded", "messages", len(msgs))
	}

	var histories map[string][]domain.ConversationTurn
	if m.loadInto(SnapshotConversations, &histories) {
		m.conv.Import(histories)
		m.logger.Info("conversation memory loaded", "users", len(histories))
	}
}

func (m *Manager) loadInto(name string, v any) bool {
	payload, ok, err := m.store.Load(name)
	if err != nil {
		m.logger.Warn("snapshot unreadable, starting empty", "snapshot", name, "err", err)
		return false
	}
	if !ok {
		m.logger.Info("no snapshot found, starting empty", "snapshot", name)
		return false
	}
	if err := json.Unmarshal(payload, v); err != nil {
		m.logger.Warn("snapshot corrupt, starting empty", "snapshot", name, "err", err)
		return false
	}
	return true
}

// HasData reports whether the message snapshot held anything at load time.
// The startup sequence uses it to skip the historical backfill.
func (m *Manager) HasData() bool {
	return m.loadedMessages > 0
}

// ScheduleMessageSave arms the debounced ledger save.
func (m *Manager) ScheduleMessageSave() { m.messages.Schedule() }

// ScheduleConversationSave arms the debounced conversation save.
func (m *Manager) ScheduleConversationSave() { m.conversations.Schedule() }

// Flush writes both snapshots now if dirty. Called on shutdown.
func (m *Manager) Flush() {
	m.messages.Flush()
	m.conversations.Flush()
}

// Stop cancels armed timers without writing.
func (m *Manager) Stop() {
	m.messages.Stop()
	m.conversations.Stop()
}

func (m *Manager) saveMessages() error {
	payload, err := json.Marshal(m.ledger.Export())
	if err != nil {
		return err
	}
	if err := m.store.Save(SnapshotMessages, payload); err != nil {
		return err
	}
	m.metrics.Inc(metrics.SnapshotsSaved)
	m.logger.Debug("message snapshot written", "messages", m.ledger.Len())
	return nil
}

func (m *Manager) saveConversations() error {
	histories := m.conv.Export()
	payload, err := json.Marshal(histories)
	if err != nil {
		return err
	}
	if err := m.store.Save(SnapshotConversations, payload); err != nil {
		return err
	}
	m.metrics.Inc(metrics.SnapshotsSaved)
	m.logger.Debug("conversation snapshot written", "users", len(histories))
	return nil
}
