package realtime

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	v1 "github.com/jaswanth-exaze/recruitment-project-sub001/shared/contracts/notify/v1"
)

// Audience selects notification recipients. The zero value reaches everyone.
type Audience struct {
	UserIDs []string
	Roles   []string
}

func (a Audience) matches(p *peer) bool {
	if len(a.UserIDs) == 0 && len(a.Roles) == 0 {
		return true
	}
	for _, id := range a.UserIDs {
		if id == p.userID {
			return true
		}
	}
	for _, r := range a.Roles {
		if strings.EqualFold(r, p.role) {
			return true
		}
	}
	return false
}

// Broker fans notifications out to connected peers.
type Broker struct {
	log *slog.Logger

	mu    sync.RWMutex
	peers map[string]*peer
}

// NewBroker constructs an empty Broker.
func NewBroker(log *slog.Logger) *Broker {
	if log == nil {
		log = slog.Default()
	}
	return &Broker{log: log, peers: make(map[string]*peer)}
}

func (b *Broker) register(p *peer) {
	b.mu.Lock()
	b.peers[p.id] = p
	b.mu.Unlock()
}

func (b *Broker) unregister(id string) {
	b.mu.Lock()
	delete(b.peers, id)
	b.mu.Unlock()
}

// Connected returns the number of live peers.
func (b *Broker) Connected() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.peers)
}

// Publish delivers n to every matching peer and returns how many accepted it.
func (b *Broker) Publish(n v1.NotificationPayload, to Audience) int {
	now := time.Now().UTC()
	if n.ID == "" {
		n.ID = NewID(now)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	env, err := v1.New(v1.TypeNotification, NewID(now), now, n)
	if err != nil {
		b.log.Error("ws.publish.encode.fail", "err", err)
		return 0
	}

	b.mu.RLock()
	targets := make([]*peer, 0, len(b.peers))
	for _, p := range b.peers {
		if to.matches(p) {
			targets = append(targets, p)
		}
	}
	b.mu.RUnlock()

	delivered := 0
	for _, p := range targets {
		if p.offer(env) {
			delivered++
			continue
		}
		b.log.Warn("ws.publish.drop", "session_id", p.id, "kind", n.Kind)
	}
	return delivered
}
