package sessions

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/jrsteele09/go-site-settings/token"
	"github.com/jrsteele09/go-site-settings/tokenstore"
)

// State is what views need to know about the local session.
type State struct {
	Authenticated bool
	UserID        int64
}

// Session tracks whether the single local user is logged in.
// It is backed by the token store and notifies subscribers on every change.
type Session struct {
	store tokenstore.Store

	mu    sync.RWMutex
	state State

	subMu     sync.Mutex
	nextSubID int
	subs      map[int]func(State)
}

// New creates an unauthenticated session over store. Call Restore to pick up
// tokens persisted by an earlier run.
func New(store tokenstore.Store) *Session {
	return &Session{
		store: store,
		subs:  make(map[int]func(State)),
	}
}

// Restore rehydrates the session from the store. Stored tokens that cannot back a
// session (expired access token, missing or unparsable user id) are cleared.
func (s *Session) Restore() error {
	tokens, err := s.store.Load()
	if err != nil {
		s.set(State{})
		return fmt.Errorf("[Session Restore] %w", err)
	}

	if st := StateOf(tokens); st.Authenticated {
		s.set(st)
		return nil
	}

	s.set(State{})
	if tokens.IsEmpty() {
		return nil
	}
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("[Session Restore] clear stale tokens: %w", err)
	}
	return nil
}

// StateOf reports the session state stored tokens can back, without touching the
// store. Only a valid access token with a numeric user id is authenticated.
func StateOf(tokens tokenstore.Tokens) State {
	if tokens.AccessToken == "" || token.IsExpired(tokens.AccessToken) {
		return State{}
	}
	id, err := strconv.ParseInt(tokens.UserID, 10, 64)
	if err != nil {
		return State{}
	}
	return State{Authenticated: true, UserID: id}
}

// Login persists all three token fields in one store write and marks the session
// authenticated.
func (s *Session) Login(tokens *token.AuthTokens) error {
	if tokens == nil || tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return fmt.Errorf("[Session Login] access and refresh tokens are required")
	}

	err := s.store.Save(tokenstore.Tokens{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		UserID:       tokens.UserIDString(),
	})
	if err != nil {
		return fmt.Errorf("[Session Login] %w", err)
	}

	s.set(State{Authenticated: true, UserID: tokens.UserID})
	return nil
}

// Logout clears the store and marks the session unauthenticated. Subscribers are
// notified even if clearing the store failed.
func (s *Session) Logout() error {
	err := s.store.Clear()
	s.set(State{})
	if err != nil {
		return fmt.Errorf("[Session Logout] %w", err)
	}
	return nil
}

// Expire ends the session after the API client gave up on refreshing it.
// The client has already cleared the store.
func (s *Session) Expire() {
	s.set(State{})
}

// RedirectToLogin makes a Session usable as the API client's navigator.
func (s *Session) RedirectToLogin() {
	s.Expire()
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) IsAuthenticated() bool {
	return s.State().Authenticated
}

func (s *Session) UserID() int64 {
	return s.State().UserID
}

// Subscribe registers fn to be called with the new state after each change.
// The returned func removes the subscription.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) set(next State) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	s.notify(next)
}

// notify runs outside both locks so subscribers may call back into the session.
func (s *Session) notify(st State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
