package dialog

import "sync"

// session guards one user's conversation. Only the turn holding the session
// may read or write conv. Every other field is guarded by the table's mutex.
type session struct {
	conv *Conversation

	// wake is signalled whenever the session is released or suspended.
	wake *sync.Cond
	held bool

	// Turns are admitted with a ticket and start strictly in ticket order.
	issued  uint64
	serving uint64

	refs int
}

// sessions is the table of live sessions keyed by user id. Events of one user
// are serialized on that user's session in arrival order, while different
// users never contend beyond the short table lookup.
type sessions struct {
	mu sync.Mutex
	m  map[int64]*session
}

func newSessions() *sessions {
	return &sessions{m: make(map[int64]*session)}
}

// ticket is a place in one user's queue, taken when the event arrives.
type ticket struct {
	user int64
	s    *session
	n    uint64
}

// reserve queues a turn for user. It never blocks on other turns, so calling
// it in arrival order fixes the order the turns will run in.
func (t *sessions) reserve(user int64) ticket {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.m[user]
	if !ok {
		s = &session{wake: sync.NewCond(&t.mu)}
		t.m[user] = s
	}

	s.refs++
	n := s.issued
	s.issued++

	return ticket{user: user, s: s, n: n}
}

// wait blocks until every earlier ticket of the same user has started and the
// session is free, then takes the session.
func (t *sessions) wait(tk ticket) *session {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := tk.s
	for s.held || s.serving != tk.n {
		s.wake.Wait()
	}

	s.held = true
	s.serving++

	return s
}

func (t *sessions) acquire(user int64) *session {
	return t.wait(t.reserve(user))
}

// release frees s and drops it from the table once nobody holds or waits on
// it and it carries no conversation.
func (t *sessions) release(user int64, s *session) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s.held = false
	s.refs--

	if s.refs == 0 && s.conv == nil {
		delete(t.m, user)
	}

	s.wake.Broadcast()
}

// suspend runs fn with s released so the next queued event of the same user,
// a cancel in particular, is not held up by a slow network call. Callers must
// re-validate the conversation afterwards.
func (t *sessions) suspend(s *session, fn func()) {
	t.mu.Lock()
	s.held = false
	s.wake.Broadcast()
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		for s.held {
			s.wake.Wait()
		}

		s.held = true
	}()

	fn()
}

func (t *sessions) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.m)
}
