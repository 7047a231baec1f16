package account

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gatherly-app/gatherly-api/internal/config"
	"github.com/gatherly-app/gatherly-api/internal/notification"
	"github.com/gatherly-app/gatherly-api/internal/notification/templates"
	"github.com/gatherly-app/gatherly-api/internal/session"
	"github.com/google/uuid"
)

// --- In-memory Repository fake ---

type fakeRepo struct {
	mu        sync.Mutex
	accounts  map[string]*Account
	roles     map[string]*Role
	rolePerms map[string][]Permission
	codes     map[string]*VerificationCode
	states    map[string]*OAuthState
}

func newFakeRepo() *fakeRepo {
	r := &fakeRepo{
		accounts:  make(map[string]*Account),
		roles:     make(map[string]*Role),
		rolePerms: make(map[string][]Permission),
		codes:     make(map[string]*VerificationCode),
		states:    make(map[string]*OAuthState),
	}
	r.seedRole(RoleUser, PermCreateEvents)
	r.seedRole(RoleVolunteer, PermCreateEvents, PermIsVolunteer)
	r.seedRole(RoleAdmin, PermAdminAccess, PermCreateEvents, PermManageVenues, PermIsVolunteer)
	return r
}

func (r *fakeRepo) seedRole(name string, perms ...string) {
	id := uuid.NewString()
	r.roles[name] = &Role{ID: id, Name: name}
	ps := make([]Permission, 0, len(perms))
	for _, p := range perms {
		ps = append(ps, Permission{ID: uuid.NewString(), Key: p})
	}
	r.rolePerms[id] = ps
}

func (r *fakeRepo) addAccount(acct *Account) *Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	if acct.ID == "" {
		acct.ID = uuid.NewString()
	}
	if acct.RoleID == "" {
		acct.RoleID = r.roles[RoleUser].ID
	}
	cp := *acct
	r.accounts[acct.ID] = &cp
	return acct
}

func (r *fakeRepo) Create(_ context.Context, acct *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == acct.Email {
			return ErrEmailExists
		}
	}
	cp := *acct
	r.accounts[acct.ID] = &cp
	return nil
}

func (r *fakeRepo) FindByEmail(_ context.Context, email string) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acct := range r.accounts {
		if acct.Email == email {
			cp := *acct
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *acct
	return &cp, nil
}

func (r *fakeRepo) UpdatePassword(_ context.Context, accountID, hash string, setByUser bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	acct.PasswordHash = hash
	if setByUser {
		acct.PasswordSetByUser = true
	}
	return nil
}

func (r *fakeRepo) SetActive(_ context.Context, accountID string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	acct.Active = active
	return nil
}

func (r *fakeRepo) SetSuspended(_ context.Context, accountID string, suspended bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	acct.Suspended = suspended
	return nil
}

func (r *fakeRepo) UpdateLastLogin(_ context.Context, accountID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	t := at
	acct.LastLoginAt = &t
	return nil
}

func (r *fakeRepo) MarkDormantInactive(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, acct := range r.accounts {
		ref := acct.CreatedAt
		if acct.LastLoginAt != nil {
			ref = *acct.LastLoginAt
		}
		if acct.Active && ref.Before(cutoff) {
			acct.Active = false
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) GetRoleByName(_ context.Context, name string) (*Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *role
	return &cp, nil
}

func (r *fakeRepo) GetPermissionsForRole(_ context.Context, roleID string) ([]Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Permission(nil), r.rolePerms[roleID]...), nil
}

func (r *fakeRepo) CreateVerificationCode(_ context.Context, vc *VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if vc.ID == "" {
		vc.ID = uuid.NewString()
	}
	cp := *vc
	r.codes[vc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetActiveVerificationCode(_ context.Context, accountID string, purpose VerificationPurpose) (*VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var live []*VerificationCode
	for _, vc := range r.codes {
		if vc.AccountID == accountID && vc.Purpose == purpose && vc.ConsumedAt == nil {
			live = append(live, vc)
		}
	}
	if len(live) == 0 {
		return nil, ErrCodeNotFound
	}
	sort.Slice(live, func(i, j int) bool { return live[i].CreatedAt.After(live[j].CreatedAt) })
	cp := *live[0]
	return &cp, nil
}

func (r *fakeRepo) InvalidateActiveVerificationCodes(_ context.Context, accountID string, purpose VerificationPurpose, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, vc := range r.codes {
		if vc.AccountID == accountID && vc.Purpose == purpose && vc.ConsumedAt == nil {
			t := at
			vc.ConsumedAt = &t
		}
	}
	return nil
}

func (r *fakeRepo) IncrementAttemptBelowCeiling(_ context.Context, id string) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vc, ok := r.codes[id]
	if !ok || vc.ConsumedAt != nil || vc.Attempts >= vc.MaxAttempts {
		return 0, 0, ErrTooManyAttempts
	}
	vc.Attempts++
	return vc.Attempts, vc.MaxAttempts, nil
}

func (r *fakeRepo) ConsumeVerificationCode(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	vc, ok := r.codes[id]
	if !ok || vc.ConsumedAt != nil {
		return ErrCodeNotFound
	}
	t := at
	vc.ConsumedAt = &t
	return nil
}

func (r *fakeRepo) InsertOAuthState(_ context.Context, state *OAuthState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *state
	r.states[state.State] = &cp
	return nil
}

func (r *fakeRepo) GetOAuthStateByState(_ context.Context, state string) (*OAuthState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[state]
	if !ok {
		return nil, ErrOAuthStateInvalid
	}
	cp := *st
	return &cp, nil
}

func (r *fakeRepo) DeleteOAuthState(_ context.Context, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, state)
	return nil
}

func (r *fakeRepo) DeleteExpiredOAuthStates(_ context.Context, before time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, st := range r.states {
		if st.ExpiresAt.Before(before) {
			delete(r.states, key)
		}
	}
	return nil
}

// --- Limiter fake ---

type fakeLimiter struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{counts: make(map[string]int)}
}

func (l *fakeLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[key]++
	return l.counts[key] <= limit, nil
}

// --- Notification fakes ---

type fakeMailer struct {
	mu   sync.Mutex
	sent []notification.Notification
}

func (m *fakeMailer) Send(_ context.Context, n notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
	return nil
}

type fakeRenderer struct{}

func (fakeRenderer) RenderAny(_ context.Context, id string, _ any) (templates.Rendered, error) {
	return templates.Rendered{Subject: id, EmailText: id, EmailHTML: id}, nil
}

// --- Session provider fake ---

type fakeSessions struct {
	mu          sync.Mutex
	byToken     map[string]string
	extendCalls int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byToken: make(map[string]string)}
}

func (s *fakeSessions) CreateAuthSession(_ context.Context, accountID string, _ bool, _ string, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := "auth:" + uuid.NewString()
	s.byToken[token] = accountID
	return token, nil
}

func (s *fakeSessions) GetAndExtend(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	s.extendCalls++
	s.mu.Unlock()
	return s.Get(ctx, sessionID)
}

func (s *fakeSessions) Get(_ context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accountID, ok := s.byToken[sessionID]
	if !ok {
		return "", session.ErrNotFound
	}
	return accountID, nil
}

func (s *fakeSessions) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byToken, sessionID)
	return nil
}

// --- Clock ---

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- Service under test ---

type testEnv struct {
	repo    *fakeRepo
	limiter *fakeLimiter
	mailer  *fakeMailer
	clock   *testClock
	svc     Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := newFakeRepo()
	limiter := newFakeLimiter()
	mailer := &fakeMailer{}
	clock := newTestClock()

	cfg := &config.Config{
		Verification: config.VerificationConfig{TTLMinutes: 15, MaxAttempts: 5, DailyCap: 5},
		Dormancy:     config.DormancyConfig{ThresholdDays: 90, SweepHours: 24},
		SMTP:         config.SMTPConfig{From: "no-reply@gatherly.test"},
		StateSecret:  "test-state-secret",
	}

	svc := NewService(&Config{
		Repo:     repo,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:   cfg,
		Limiter:  limiter,
		Mailer:   mailer,
		Renderer: fakeRenderer{},
		Now:      clock.Now,
	})
	return &testEnv{repo: repo, limiter: limiter, mailer: mailer, clock: clock, svc: svc}
}

func (e *testEnv) addPasswordAccount(t *testing.T, email, password string) *Account {
	t.Helper()
	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	return e.repo.addAccount(&Account{
		Email:             email,
		PasswordHash:      hash,
		Active:            true,
		AuthProvider:      AuthProviderPassword,
		PasswordSetByUser: true,
		CreatedAt:         e.clock.Now(),
	})
}
