// Package analytics keeps the append-only message log and its derived
// counters, and answers the ranked queries behind reports.
package analytics

import (
	"log/slog"
	"sort"
	"sync"

	"pulsebot/internal/domain"
	"pulsebot/internal/normalize"
)

// Ledger is the analytics store. The log is the source of truth; the
// per-channel topic counters are a cache that always equals a fold over the
// log.
type Ledger struct {
	mu     sync.RWMutex
	log    []domain.TrackedMessage
	counts map[string]map[domain.Topic]int // channel -> topic -> n
	logger *slog.Logger
}

func NewLedger(logger *slog.Logger) *Ledger {
	return &Ledger{
		counts: make(map[string]map[domain.Topic]int),
		logger: logger,
	}
}

// Record appends the message and bumps the channel/topic counter.
func (l *Ledger) Record(msg domain.TrackedMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.append(msg)
}

func (l *Ledger) append(msg domain.TrackedMessage) {
	if _, ok := domain.ParseTopic(string(msg.Topic)); !ok {
		// The classifier gate should make this unreachable.
		l.logger.Warn("message with unknown topic, recording as general-discussion",
			"topic", msg.Topic, "channel", msg.Channel)
		msg.Topic = domain.TopicGeneralDiscussion
	}
	l.log = append(l.log, msg)
	ch := l.counts[msg.Channel]
	if ch == nil {
		ch = make(map[domain.Topic]int)
		l.counts[msg.Channel] = ch
	}
	ch[msg.Topic]++
}

// Len returns the number of recorded messages.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.log)
}

// TopicCount is one topic's frequency within a scope.
type TopicCount struct {
	Topic domain.Topic
	Count int
}

// ChannelSummary is the per-channel slice of a summary, topics ordered by
// count descending, ties by Topic declaration order.
type ChannelSummary struct {
	Channel string
	Total   int
	Topics  []TopicCount
}

// Summary is the full-ledger aggregate.
type Summary struct {
	Total    int
	Channels []ChannelSummary
	Topics   []TopicCount // aggregated across all channels
}

// Summarize folds the counters into a deterministic summary. Channels are
// ordered by total descending, ties by name.
func (l *Ledger) Summarize() Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var s Summary
	global := make(map[domain.Topic]int)
	for name, topics := range l.counts {
		cs := ChannelSummary{Channel: name}
		for t, n := range topics {
			cs.Total += n
			global[t] += n
		}
		cs.Topics = orderTopics(topics)
		s.Total += cs.Total
		s.Channels = append(s.Channels, cs)
	}
	sort.Slice(s.Channels, func(i, j int) bool {
		if s.Channels[i].Total != s.Channels[j].Total {
			return s.Channels[i].Total > s.Channels[j].Total
		}
		return s.Channels[i].Channel < s.Channels[j].Channel
	})
	s.Topics = orderTopics(global)
	return s
}

// TopicCounts returns the counters for one channel, display-ordered.
func (l *Ledger) TopicCounts(channel string) []TopicCount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return orderTopics(l.counts[channel])
}

func orderTopics(m map[domain.Topic]int) []TopicCount {
	out := make([]TopicCount, 0, len(m))
	for _, t := range domain.Topics { // declaration order is the tie-break
		if n := m[t]; n > 0 {
			out = append(out, TopicCount{Topic: t, Count: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// HelpTopicCount is one normalized help topic's frequency.
type HelpTopicCount struct {
	Topic string
	Count int
}

// TopHelpTopics groups help-channel messages by normalized help topic and
// returns up to limit entries, count descending, ties in first-seen order.
func (l *Ledger) TopHelpTopics(limit int) []HelpTopicCount {
	l.mu.RLock()
	defer l.mu.RUnlock()

	type entry struct {
		count     int
		firstSeen int
	}
	byTopic := make(map[string]*entry)
	var order []string
	for i, msg := range l.log {
		if msg.HelpTopic == "" {
			continue
		}
		key := normalize.Normalize(msg.HelpTopic)
		e := byTopic[key]
		if e == nil {
			e = &entry{firstSeen: i}
			byTopic[key] = e
			order = append(order, key)
		}
		e.count++
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := byTopic[order[i]], byTopic[order[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		return a.firstSeen < b.firstSeen
	})
	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	out := make([]HelpTopicCount, 0, len(order))
	for _, key := range order {
		out = append(out, HelpTopicCount{Topic: key, Count: byTopic[key].count})
	}
	return out
}

// ThreadCount is one thread's tracked-message count.
type ThreadCount struct {
	ThreadID   string
	ThreadName string
	ReplyCount int
}

// TopThreads groups messages by thread, keeps threads with at least
// minReplies messages, and returns up to limit entries, count descending,
// ties in first-seen order. Threads without a name are not ranked.
func (l *Ledger) TopThreads(minReplies, limit int) []ThreadCount {
	l.mu.RLock()
	defer l.mu.RUnlock()

	type entry struct {
		name      string
		count     int
		firstSeen int
	}
	byThread := make(map[string]*entry)
	var order []string
	for i, msg := range l.log {
		if msg.ThreadID == "" || msg.ThreadName == "" {
			continue
		}
		e := byThread[msg.ThreadID]
		if e == nil {
			e = &entry{name: msg.ThreadName, firstSeen: i}
			byThread[msg.ThreadID] = e
			order = append(order, msg.ThreadID)
		}
		e.count++
	}
	filtered := order[:0]
	for _, id := range order {
		if byThread[id].count >= minReplies {
			filtered = append(filtered, id)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := byThread[filtered[i]], byThread[filtered[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		return a.firstSeen < b.firstSeen
	})
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	out := make([]ThreadCount, 0, len(filtered))
	for _, id := range filtered {
		out = append(out, ThreadCount{ThreadID: id, ThreadName: byThread[id].name, ReplyCount: byThread[id].count})
	}
	return out
}

// Export copies the full log for persistence.
func (l *Ledger) Export() []domain.TrackedMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.TrackedMessage, len(l.log))
	copy(out, l.log)
	return out
}

// Import replaces the log with a loaded snapshot and rebuilds the counters.
func (l *Ledger) Import(msgs []domain.TrackedMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log = nil
	l.counts = make(map[string]map[domain.Topic]int)
	for _, msg := range msgs {
		l.append(msg)
	}
}
