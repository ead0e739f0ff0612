// Package session owns the single authenticated-user session of the service.
package session

import (
	"context"
	"crypto/subtle"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/catalog-flipbook/internal/apperr"
	"github.com/example/catalog-flipbook/internal/auth"
	"github.com/example/catalog-flipbook/internal/config"
	"github.com/example/catalog-flipbook/internal/events"
	"github.com/example/catalog-flipbook/internal/infrastructure/store"
	"github.com/example/catalog-flipbook/internal/logger"
	"github.com/example/catalog-flipbook/internal/readmodel"
)

// Mode tells how a session was authenticated.
type Mode string

const (
	ModeDemo   Mode = "demo"
	ModeRemote Mode = "remote"
)

// Credentials is a login request.
type Credentials struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=256"`
}

// State is a snapshot of the session.
type State struct {
	Authenticated bool
	Mode          Mode
	Token         string
	User          *readmodel.Profile
	ExpiresAt     time.Time
}

// View converts the state to its client-facing form.
func (s State) View() readmodel.SessionView {
	return readmodel.SessionView{
		Authenticated: s.Authenticated,
		Mode:          string(s.Mode),
		Token:         s.Token,
		User:          s.User,
	}
}

// Authenticator exchanges credentials for a token with the remote API.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// record is the persisted form of an authenticated session.
type record struct {
	Token     string             `json:"token"`
	Mode      Mode               `json:"mode"`
	User      *readmodel.Profile `json:"user"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// Session holds the current user and notifies subscribers of every change.
type Session struct {
	remote Authenticator
	cfg    config.SessionConfig
	jwt    *auth.JWTService
	store  store.Store
	pub    events.Publisher
	log    *logger.Logger
	now    func() time.Time

	mu    sync.RWMutex
	state State

	subMu  sync.Mutex
	subs   map[uint64]func(State)
	nextID uint64
}

// New creates a logged-out session. pub may be nil.
func New(remote Authenticator, cfg config.SessionConfig, s store.Store, pub events.Publisher, log *logger.Logger) *Session {
	sess := &Session{
		remote: remote,
		cfg:    cfg,
		store:  s,
		pub:    pub,
		log:    log.Component("Session"),
		now:    time.Now,
		subs:   make(map[uint64]func(State)),
	}
	if cfg.IsDemoMode() {
		sess.jwt = auth.NewJWTService(cfg.GetSessionSecret(), cfg.GetSessionTTL())
	}
	return sess
}

// Login authenticates creds. Demo credentials are checked locally when demo
// mode is enabled; everything else goes to the remote API. A remote failure
// is returned as is and never turns into a demo login.
func (s *Session) Login(ctx context.Context, creds Credentials) (State, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		return State{}, apperr.Validation("username and password are required")
	}

	var (
		next State
		err  error
	)
	if s.isDemoUser(username) {
		next, err = s.demoLogin(username, creds.Password)
	} else {
		next, err = s.remoteLogin(ctx, username, creds.Password)
	}
	if err != nil {
		s.log.AuthEvent("login", username, false, err.Error())
		return State{}, err
	}

	s.set(next)
	s.persist(ctx, next)
	s.log.AuthEvent("login", username, true, string(next.Mode))
	s.notify(ctx, next)
	return next, nil
}

func (s *Session) isDemoUser(username string) bool {
	return s.cfg.IsDemoMode() && s.jwt != nil && username == s.cfg.GetDemoUsername()
}

func (s *Session) demoLogin(username, password string) (State, error) {
	if !auth.CheckPassword(password, s.cfg.GetDemoPasswordHash()) {
		return State{}, apperr.Unauthorized("invalid credentials").WithOp("session.Login")
	}

	token, expiresAt, err := s.jwt.Issue(username, string(ModeDemo), uuid.NewString())
	if err != nil {
		return State{}, apperr.Internal("issue demo token", err)
	}
	return State{
		Authenticated: true,
		Mode:          ModeDemo,
		Token:         token,
		User:          mockProfile(username),
		ExpiresAt:     expiresAt,
	}, nil
}

func (s *Session) remoteLogin(ctx context.Context, username, password string) (State, error) {
	if s.remote == nil {
		return State{}, apperr.Unauthorized("remote login is not configured")
	}
	token, err := s.remote.Login(ctx, username, password)
	if err != nil {
		return State{}, err
	}
	return State{
		Authenticated: true,
		Mode:          ModeRemote,
		Token:         token,
		User:          mockProfile(username),
		ExpiresAt:     s.now().Add(s.cfg.GetSessionTTL()),
	}, nil
}

// Logout clears the session and its stored record. Subscribers are only
// notified when a user was logged in.
func (s *Session) Logout(ctx context.Context) {
	prev := s.Snapshot()

	s.set(State{})
	s.clearRecord(ctx)
	if !prev.Authenticated {
		return
	}
	s.log.AuthEvent("logout", prev.User.Username, true, "")
	s.notify(ctx, State{})
}

// Restore loads a stored session. A corrupt or expired record is removed and
// the session stays logged out. It reports whether a session was restored.
func (s *Session) Restore(ctx context.Context) bool {
	var rec record
	found, err := store.GetJSON(ctx, s.store, store.KeyAuthSession, &rec)
	if err != nil {
		s.log.Warn("stored session is unreadable, clearing", "error", err)
		s.clearRecord(ctx)
		return false
	}
	if !found {
		return false
	}

	if rec.Token == "" || rec.User == nil || rec.User.Username == "" {
		s.log.Warn("stored session is incomplete, clearing")
		s.clearRecord(ctx)
		return false
	}
	if !rec.ExpiresAt.IsZero() && !s.now().Before(rec.ExpiresAt) {
		s.clearRecord(ctx)
		return false
	}
	if rec.Mode == ModeDemo {
		if s.jwt == nil {
			s.clearRecord(ctx)
			return false
		}
		if _, err := s.jwt.Validate(rec.Token); err != nil {
			s.clearRecord(ctx)
			return false
		}
	}

	restored := State{
		Authenticated: true,
		Mode:          rec.Mode,
		Token:         rec.Token,
		User:          rec.User,
		ExpiresAt:     rec.ExpiresAt,
	}
	s.set(restored)
	s.log.AuthEvent("restore", rec.User.Username, true, string(rec.Mode))
	s.notify(ctx, restored)
	return true
}

// ValidateToken checks that token belongs to the active session.
func (s *Session) ValidateToken(token string) error {
	st := s.Snapshot()
	if !st.Authenticated || token == "" {
		return apperr.Unauthorized("not authenticated")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(st.Token)) != 1 {
		return apperr.Unauthorized("invalid token")
	}
	if !st.ExpiresAt.IsZero() && !s.now().Before(st.ExpiresAt) {
		return apperr.Unauthorized("session expired")
	}
	if st.Mode == ModeDemo {
		if _, err := s.jwt.Validate(token); err != nil {
			return apperr.Unauthorized(err.Error())
		}
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// IsAuthenticated reports whether a user is logged in.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Authenticated
}

// Subscribe registers fn for every state change and returns a function
// that removes it.
func (s *Session) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Session) set(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) persist(ctx context.Context, st State) {
	rec := record{Token: st.Token, Mode: st.Mode, User: st.User, ExpiresAt: st.ExpiresAt}
	if err := store.SetJSON(ctx, s.store, store.KeyAuthSession, rec, s.cfg.GetSessionTTL()); err != nil {
		s.log.Warn("failed to persist session", "error", err)
	}
}

func (s *Session) clearRecord(ctx context.Context) {
	if err := s.store.Delete(ctx, store.KeyAuthSession); err != nil {
		s.log.Warn("failed to clear stored session", "error", err)
	}
}

// notify delivers st to direct subscribers in registration order, then
// publishes it on the bus.
func (s *Session) notify(ctx context.Context, st State) {
	s.subMu.Lock()
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	fns := make([]func(State), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}

	if s.pub == nil {
		return
	}
	evt := events.SessionChanged{
		BaseEvent:     events.NewBaseEvent(),
		Authenticated: st.Authenticated,
		Mode:          string(st.Mode),
	}
	if st.User != nil {
		evt.Username = st.User.Username
	}
	s.pub.Publish(ctx, evt)
}
