package application_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/studydigest/internal/domain/model"
	"github.com/ericfisherdev/studydigest/internal/domain/port/driven"
)

// --- Mock implementations ---

// memStore is an in-memory CredentialStore with the same selection semantics
// as the SQLite adapter.
type memStore struct {
	mu    sync.Mutex
	creds map[string]*model.Credential

	resetErr error
}

func newMemStore(creds ...model.Credential) *memStore {
	s := &memStore{creds: make(map[string]*model.Credential)}
	for i := range creds {
		c := creds[i]
		s.creds[c.ID] = &c
	}
	return s
}

func (s *memStore) Create(_ context.Context, cred model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creds[cred.ID]; ok {
		return fmt.Errorf("duplicate id %s", cred.ID)
	}
	s.creds[cred.ID] = &cred
	return nil
}

func (s *memStore) Get(_ context.Context, id string) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.creds[id]
	if !ok {
		return nil, driven.ErrCredentialNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) NextUsable(_ context.Context, now time.Time) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var usable []model.Credential
	for _, c := range s.creds {
		if c.Usable(now) {
			usable = append(usable, *c)
		}
	}
	if len(usable) == 0 {
		return nil, nil
	}

	sort.Slice(usable, func(i, j int) bool {
		a, b := usable[i], usable[j]
		switch {
		case a.LastUsedAt == nil && b.LastUsedAt != nil:
			return true
		case a.LastUsedAt != nil && b.LastUsedAt == nil:
			return false
		case a.LastUsedAt != nil && !a.LastUsedAt.Equal(*b.LastUsedAt):
			return a.LastUsedAt.Before(*b.LastUsedAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
	return &usable[0], nil
}

func (s *memStore) List(_ context.Context) ([]model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Credential, 0, len(s.creds))
	for _, c := range s.creds {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) TouchLastUsed(_ context.Context, id string, at time.Time) error {
	return s.update(id, func(c *model.Credential) { c.LastUsedAt = &at })
}

func (s *memStore) IncrementFailCount(_ context.Context, id string) (int, error) {
	var count int
	err := s.update(id, func(c *model.Credential) {
		c.FailCount++
		count = c.FailCount
	})
	return count, err
}

func (s *memStore) SetDisabledUntil(_ context.Context, id string, until time.Time) error {
	return s.update(id, func(c *model.Credential) { c.DisabledUntil = &until })
}

func (s *memStore) ResetHealth(_ context.Context, id string) error {
	if s.resetErr != nil {
		return s.resetErr
	}
	return s.update(id, func(c *model.Credential) {
		c.FailCount = 0
		c.DisabledUntil = nil
	})
}

func (s *memStore) SetActive(_ context.Context, id string, active bool) error {
	return s.update(id, func(c *model.Credential) {
		c.Active = active
		if active {
			c.FailCount = 0
			c.DisabledUntil = nil
		}
	})
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creds[id]; !ok {
		return driven.ErrCredentialNotFound
	}
	delete(s.creds, id)
	return nil
}

func (s *memStore) update(id string, fn func(*model.Credential)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.creds[id]
	if !ok {
		return driven.ErrCredentialNotFound
	}
	fn(c)
	return nil
}

func (s *memStore) get(id string) model.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.creds[id]
}

// prefixCipher "encrypts" by prefixing, which keeps tests readable.
type prefixCipher struct {
	unconfigured bool
}

const cipherPrefix = "enc:"

func (c prefixCipher) Encrypt(plaintext string) (string, error) {
	if c.unconfigured {
		return "", driven.ErrCipherNotConfigured
	}
	return cipherPrefix + plaintext, nil
}

func (c prefixCipher) Decrypt(blob string) (string, error) {
	if c.unconfigured {
		return "", driven.ErrCipherNotConfigured
	}
	if !strings.HasPrefix(blob, cipherPrefix) {
		return "", fmt.Errorf("%w: bad prefix", driven.ErrDecryption)
	}
	return strings.TrimPrefix(blob, cipherPrefix), nil
}

// reply is one scripted CompletionClient outcome.
type reply struct {
	text string
	err  error
}

// mockCompletionClient returns scripted replies in order and records the keys
// and messages it was called with. When the script runs out, fallback is used.
type mockCompletionClient struct {
	mu       sync.Mutex
	script   []reply
	fallback func(messages []model.Message) (string, error)
	keys     []string
	calls    [][]model.Message
}

func (m *mockCompletionClient) Complete(_ context.Context, apiKey string, messages []model.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys = append(m.keys, apiKey)
	m.calls = append(m.calls, messages)

	if len(m.script) > 0 {
		r := m.script[0]
		m.script = m.script[1:]
		return r.text, r.err
	}
	if m.fallback != nil {
		return m.fallback(messages)
	}
	return "", fmt.Errorf("unexpected call %d", len(m.calls))
}

func (m *mockCompletionClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// testClock is a manually advanced time source.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
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

// --- Helper functions ---

func timePtr(t time.Time) *time.Time {
	return &t
}

func credential(id, secret string, created time.Time) model.Credential {
	return model.Credential{
		ID:         id,
		Ciphertext: cipherPrefix + secret,
		Provider:   model.DefaultProvider,
		Active:     true,
		CreatedAt:  created,
	}
}
