// ABOUTME: Session store holding the authentication state machine
// ABOUTME: Transitions anonymous -> authenticating -> authenticated or 2FA pending

package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sercanio/apptemplate-cli/internal/api"
)

// State is the authentication phase of the console.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
	StateTwoFactorRequired
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateTwoFactorRequired:
		return "two-factor required"
	default:
		return "unknown"
	}
}

// Store owns the session state. One instance is created at startup and
// injected into every screen; all transitions go through its methods.
//
// Transitions run network calls outside the lock. Each one captures the
// store generation when it starts and commits only if the generation is
// unchanged, so a response that arrives after a logout or a newer login
// cannot overwrite fresher state.
type Store struct {
	client *api.Client
	logger *slog.Logger

	mu          sync.Mutex
	generation  uint64
	state       State
	initialized bool
	user        *api.User
	rememberMe  bool
}

// Snapshot is a point-in-time copy of the session for rendering.
type Snapshot struct {
	State             State
	Initialized       bool
	Authenticated     bool
	RequiresTwoFactor bool
	User              *api.User
}

// NewStore builds a store around an API client. The logger receives
// best-effort failures that are deliberately not surfaced to the user.
func NewStore(client *api.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, logger: logger}
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:             s.state,
		Initialized:       s.initialized,
		Authenticated:     s.state == StateAuthenticated,
		RequiresTwoFactor: s.state == StateTwoFactorRequired,
		User:              s.user,
	}
}

// begin records the generation a transition starts from.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// commit applies fn under the lock only if no newer transition has
// completed since gen was captured.
func (s *Store) commit(gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	fn()
	return true
}

// Initialize fetches the anti-forgery token and the current user once at
// startup. Any failure means the console boots anonymous, not broken.
func (s *Store) Initialize(ctx context.Context) {
	gen := s.begin()

	if err := s.client.InitAntiforgery(ctx); err != nil {
		s.logger.Warn("anti-forgery token fetch failed", "error", err)
	}

	user, _ := s.client.CurrentUser(ctx)

	s.commit(gen, func() {
		s.initialized = true
		s.user = user
		if user != nil {
			s.state = StateAuthenticated
		} else {
			s.state = StateAnonymous
		}
	})
}

// Login runs a password login. On a two-factor signal the store parks in
// StateTwoFactorRequired, keeping rememberMe for the challenge step, and
// does not fetch the user. Otherwise the current user is fetched and the
// session becomes authenticated.
func (s *Store) Login(ctx context.Context, identifier, password string, rememberMe bool) error {
	gen := s.begin()
	s.commit(gen, func() { s.state = StateAuthenticating })

	result, err := s.client.Login(ctx, identifier, password, rememberMe)
	if err != nil {
		s.commit(gen, func() {
			s.state = StateAnonymous
			s.user = nil
		})
		return err
	}

	if result.TwoFactorRequired {
		s.commit(gen, func() {
			s.state = StateTwoFactorRequired
			s.rememberMe = rememberMe
			s.user = nil
		})
		return nil
	}

	user, _ := s.client.CurrentUser(ctx)
	s.commit(gen, func() {
		s.state = StateAuthenticated
		s.user = user
	})
	return nil
}

// LoginWith2FA completes a pending login with an authenticator code,
// replaying the rememberMe choice captured at the password step. On
// failure the session stays in StateTwoFactorRequired.
func (s *Store) LoginWith2FA(ctx context.Context, code string, rememberMachine bool) error {
	s.mu.Lock()
	gen := s.generation
	rememberMe := s.rememberMe
	s.mu.Unlock()

	if err := s.client.LoginWith2FA(ctx, code, rememberMe, rememberMachine); err != nil {
		return err
	}

	user, _ := s.client.CurrentUser(ctx)
	s.commit(gen, func() {
		s.state = StateAuthenticated
		s.user = user
		s.rememberMe = false
	})
	return nil
}

// LoginWithRecoveryCode completes a pending login with a one-time backup
// code. On failure the session stays in StateTwoFactorRequired.
func (s *Store) LoginWithRecoveryCode(ctx context.Context, code string) error {
	gen := s.begin()

	if err := s.client.LoginWithRecoveryCode(ctx, code); err != nil {
		return err
	}

	user, _ := s.client.CurrentUser(ctx)
	s.commit(gen, func() {
		s.state = StateAuthenticated
		s.user = user
		s.rememberMe = false
	})
	return nil
}

// Register creates an account. The session stays anonymous; the server
// sends a confirmation email before the account can sign in.
func (s *Store) Register(ctx context.Context, req api.RegisterRequest) (*api.Result, error) {
	return s.client.Register(ctx, req)
}

// Logout tears down the server session best-effort and unconditionally
// resets to anonymous. The generation bump discards any transition still
// in flight.
func (s *Store) Logout(ctx context.Context) {
	if err := s.client.Logout(ctx); err != nil {
		s.logger.Warn("logout request failed, resetting locally", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.state = StateAnonymous
	s.user = nil
	s.rememberMe = false
}

// UpdateUser optimistically replaces the cached user after a profile
// mutation. It is a no-op when the session is not authenticated.
func (s *Store) UpdateUser(user *api.User) {
	if user == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated {
		return
	}
	s.user = user
}

// Refresh refetches the current user, used after flows that change
// server-side account data (email confirmation, password reset).
func (s *Store) Refresh(ctx context.Context) {
	gen := s.begin()
	user, _ := s.client.CurrentUser(ctx)
	s.commit(gen, func() {
		s.user = user
		if user != nil {
			s.state = StateAuthenticated
		} else {
			s.state = StateAnonymous
		}
	})
}
