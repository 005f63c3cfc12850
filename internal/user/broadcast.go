package user

import "sync"

// AuthState is the payload delivered on every authentication change.
// A zero LoggedIn value means no user is signed in.
type AuthState struct {
	LoggedIn    bool   `json:"loggedIn"`
	UserID      int    `json:"userId,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Broadcaster is the single subscription point for auth-state changes.
// Components read the latest state through a subscription instead of
// polling shared variables.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan AuthState
	next int
	last AuthState
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan AuthState)}
}

// Subscribe returns a channel receiving every subsequent auth change and
// a cancel function that releases the subscription. The current state is
// delivered immediately so late subscribers do not miss the latest value.
func (b *Broadcaster) Subscribe() (<-chan AuthState, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan AuthState, 16)
	ch <- b.last
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the new state to every subscriber. Slow subscribers
// with a full buffer miss intermediate states, never the broadcast itself.
func (b *Broadcaster) Publish(state AuthState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.last = state
	for _, ch := range b.subs {
		select {
		case ch <- state:
		default:
		}
	}
}

// Current returns the most recently published state.
func (b *Broadcaster) Current() AuthState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}
