// Package session adapts the identity provider: it holds the principal of
// the current session and tells subscribers when it changes.
package session

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
)

// Tracker publishes login and logout. Subscribers always see the latest
// principal; intermediate changes may be coalesced for a slow reader.
type Tracker struct {
	mu      sync.Mutex
	current domain.Principal
	subs    map[int]chan domain.Principal
	nextSub int
}

func NewTracker() *Tracker {
	return &Tracker{subs: make(map[int]chan domain.Principal)}
}

// Current is the principal at the time of the call.
// Operations should capture it once and pass it along.
func (t *Tracker) Current() domain.Principal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *Tracker) Login(principalID string) {
	t.set(domain.NewPrincipal(principalID))
}

func (t *Tracker) Logout() {
	t.set(domain.Anonymous())
}

// Subscribe returns a channel of principal changes and a cancel func that closes it
func (t *Tracker) Subscribe() (<-chan domain.Principal, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextSub
	t.nextSub++
	ch := make(chan domain.Principal, 1)
	t.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.subs, id)
			close(ch)
		})
	}
}

func (t *Tracker) set(p domain.Principal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == t.current {
		return
	}
	t.current = p
	logrus.Debugf("session principal changed, authenticated=%v", p.Present())

	for _, ch := range t.subs {
		select {
		case ch <- p:
		default:
			// drop the stale value, keep the newest
			select {
			case <-ch:
			default:
			}
			ch <- p
		}
	}
}
