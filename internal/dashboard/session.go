package dashboard

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	sessionCookie = "newsagent_session"

	defaultSessionTTL  = 30 * time.Minute
	defaultMaxSessions = 1000
)

// session owns the dashboard model of one browser.
type session struct {
	mu    sync.Mutex
	model Model

	// seen is guarded by the store lock.
	seen time.Time
}

// apply runs e through Next under the session lock and returns the previous
// and the new model.
func (s *session) apply(e Event) (before, after Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before = s.model
	s.model = Next(s.model, e)
	return before, s.model
}

func (s *session) snapshot() Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// sessionStore keeps sessions in memory. An id cookie is handed out on the
// first visit but state is only allocated once a search is submitted. Idle
// sessions expire after ttl and the store never holds more than limit.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	limit    int
	now      func() time.Time
}

func newSessionStore(ttl time.Duration, limit int, now func() time.Time) *sessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if limit <= 0 {
		limit = defaultMaxSessions
	}
	if now == nil {
		now = time.Now
	}
	return &sessionStore{sessions: map[string]*session{}, ttl: ttl, limit: limit, now: now}
}

func cookieID(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

// issue returns the caller's session id, setting a fresh cookie when the
// request carries none.
func (st *sessionStore) issue(w http.ResponseWriter, r *http.Request) string {
	if id, ok := cookieID(r); ok {
		return id
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// lookup returns the caller's session or nil. It never allocates.
func (st *sessionStore) lookup(r *http.Request) *session {
	id, ok := cookieID(r)
	if !ok {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	s := st.sessions[id]
	if s != nil {
		s.seen = st.now()
	}
	return s
}

// get returns the caller's session, creating it on first use.
func (st *sessionStore) get(w http.ResponseWriter, r *http.Request) *session {
	id := st.issue(w, r)

	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	if s, ok := st.sessions[id]; ok {
		s.seen = now
		return s
	}

	st.evict(now)
	s := &session{seen: now}
	st.sessions[id] = s
	return s
}

// evict drops expired sessions and, when the store is still full, the least
// recently seen one. Sessions with a search in flight are kept.
func (st *sessionStore) evict(now time.Time) {
	var oldestID string
	var oldest time.Time
	for id, s := range st.sessions {
		if s.snapshot().State == StateWaiting {
			continue
		}
		if now.Sub(s.seen) > st.ttl {
			delete(st.sessions, id)
			continue
		}
		if oldestID == "" || s.seen.Before(oldest) {
			oldestID, oldest = id, s.seen
		}
	}
	if len(st.sessions) >= st.limit && oldestID != "" {
		delete(st.sessions, oldestID)
	}
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
