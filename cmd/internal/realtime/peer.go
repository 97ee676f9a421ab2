package realtime

import (
	"sync"

	v1 "github.com/jaswanth-exaze/recruitment-project-sub001/shared/contracts/notify/v1"
)

// peer is one connected websocket session.
// send is never closed; done signals shutdown so concurrent publishers cannot panic.
type peer struct {
	id     string
	userID string
	role   string
	send   chan v1.Envelope

	done      chan struct{}
	closeOnce sync.Once
}

func newPeer(id string, who Identity, queue int) *peer {
	if queue < minSendQueue {
		queue = minSendQueue
	}
	return &peer{
		id:     id,
		userID: who.UserID,
		role:   who.Role,
		send:   make(chan v1.Envelope, queue),
		done:   make(chan struct{}),
	}
}

func (p *peer) Done() <-chan struct{} { return p.done }

func (p *peer) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}

// offer enqueues env without blocking. A full queue drops the envelope.
func (p *peer) offer(env v1.Envelope) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.send <- env:
		return true
	default:
		return false
	}
}
