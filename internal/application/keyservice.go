// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/studydigest/internal/domain/model"
	"github.com/ericfisherdev/studydigest/internal/domain/port/driven"
)

// ErrNoKeyAvailable is returned when no credential is active and outside its
// disable window.
var ErrNoKeyAvailable = errors.New("no API key available")

// ErrEmptyCredential is returned when adding a blank secret.
var ErrEmptyCredential = errors.New("credential value is empty")

// Health policy.
const (
	// maxFailures is the consecutive-failure count a credential may reach
	// before the long cool-down applies.
	maxFailures       = 3
	failureCooldown   = time.Hour
	rateLimitCooldown = 5 * time.Minute
)

const (
	maskedSuffixLen = 4
	maskPrefix      = "••••••••"
	unreadableMask  = "(unreadable)"
)

// KeyService selects provider credentials and tracks their health. It also
// exposes the operator actions used by the admin surfaces.
//
// Selection reads the store on every call and takes no locks; concurrent
// callers may be handed the same credential.
type KeyService struct {
	store  driven.CredentialStore
	cipher driven.SecretCipher
	now    func() time.Time
}

// KeyServiceOption customizes a KeyService.
type KeyServiceOption func(*KeyService)

// WithClock overrides the time source used for selection and cool-downs.
func WithClock(now func() time.Time) KeyServiceOption {
	return func(s *KeyService) {
		s.now = now
	}
}

// NewKeyService creates a KeyService with the required dependencies.
func NewKeyService(store driven.CredentialStore, cipher driven.SecretCipher, opts ...KeyServiceOption) *KeyService {
	s := &KeyService{
		store:  store,
		cipher: cipher,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectCredential claims the least recently used usable credential and
// returns its decrypted secret. The claim (LastUsedAt update) is written
// before decryption so a credential whose ciphertext is broken still sinks to
// the back of the queue.
func (s *KeyService) SelectCredential(ctx context.Context) (*model.Lease, error) {
	now := s.now()

	cred, err := s.store.NextUsable(ctx, now)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, ErrNoKeyAvailable
	}

	if err := s.store.TouchLastUsed(ctx, cred.ID, now); err != nil {
		return nil, err
	}

	apiKey, err := s.cipher.Decrypt(cred.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decrypt credential %s: %w", cred.ID, err)
	}

	return &model.Lease{ID: cred.ID, APIKey: apiKey}, nil
}

// ReportSuccess resets the credential's failure state.
func (s *KeyService) ReportSuccess(ctx context.Context, id string) error {
	if err := s.store.ResetHealth(ctx, id); err != nil {
		return fmt.Errorf("report success for %s: %w", id, err)
	}
	return nil
}

// ReportFailure records one observed failure. Past the failure threshold the
// credential is disabled for an hour; a rate-limited failure disables it for
// five minutes regardless of the count.
func (s *KeyService) ReportFailure(ctx context.Context, id string, rateLimited bool) error {
	count, err := s.store.IncrementFailCount(ctx, id)
	if err != nil {
		return fmt.Errorf("report failure for %s: %w", id, err)
	}

	var cooldown time.Duration
	switch {
	case count > maxFailures:
		cooldown = failureCooldown
	case rateLimited:
		cooldown = rateLimitCooldown
	default:
		return nil
	}

	until := s.now().Add(cooldown)
	if err := s.store.SetDisabledUntil(ctx, id, until); err != nil {
		return fmt.Errorf("disable credential %s: %w", id, err)
	}

	slog.Warn("credential disabled",
		"credential_id", id,
		"fail_count", count,
		"rate_limited", rateLimited,
		"disabled_until", until,
	)
	return nil
}

// AddCredential encrypts and stores a new active credential and returns its id.
// An empty provider defaults to model.DefaultProvider.
func (s *KeyService) AddCredential(ctx context.Context, plaintext, provider string) (string, error) {
	plaintext = strings.TrimSpace(plaintext)
	if plaintext == "" {
		return "", ErrEmptyCredential
	}

	provider = strings.TrimSpace(provider)
	if provider == "" {
		provider = model.DefaultProvider
	}

	blob, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return "", fmt.Errorf("encrypt credential: %w", err)
	}

	cred := model.Credential{
		ID:         uuid.NewString(),
		Ciphertext: blob,
		Provider:   provider,
		Active:     true,
		CreatedAt:  s.now(),
	}
	if err := s.store.Create(ctx, cred); err != nil {
		return "", err
	}

	slog.Info("credential added", "credential_id", cred.ID, "provider", provider)
	return cred.ID, nil
}

// Deactivate removes the credential from rotation without clearing its
// failure state.
func (s *KeyService) Deactivate(ctx context.Context, id string) error {
	if err := s.store.SetActive(ctx, id, false); err != nil {
		return err
	}
	slog.Info("credential deactivated", "credential_id", id)
	return nil
}

// Reactivate returns the credential to rotation with a clean health record.
func (s *KeyService) Reactivate(ctx context.Context, id string) error {
	if err := s.store.SetActive(ctx, id, true); err != nil {
		return err
	}
	slog.Info("credential reactivated", "credential_id", id)
	return nil
}

// DeleteCredential permanently removes the credential.
func (s *KeyService) DeleteCredential(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("credential deleted", "credential_id", id)
	return nil
}

// ListCredentials returns display-safe views of all credentials. A credential
// whose ciphertext fails to decrypt is listed with a placeholder mask rather
// than failing the listing; a missing master secret fails it outright.
func (s *KeyService) ListCredentials(ctx context.Context) ([]model.CredentialView, error) {
	creds, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]model.CredentialView, 0, len(creds))
	for _, cred := range creds {
		view := model.CredentialView{
			ID:            cred.ID,
			Provider:      cred.Provider,
			Active:        cred.Active,
			Usable:        cred.Usable(now),
			FailCount:     cred.FailCount,
			LastUsedAt:    cred.LastUsedAt,
			DisabledUntil: cred.DisabledUntil,
			CreatedAt:     cred.CreatedAt,
		}

		plaintext, err := s.cipher.Decrypt(cred.Ciphertext)
		switch {
		case errors.Is(err, driven.ErrCipherNotConfigured):
			return nil, err
		case err != nil:
			slog.Warn("credential unreadable", "credential_id", cred.ID, "error", err)
			view.Unreadable = true
			view.MaskedKey = unreadableMask
		default:
			view.MaskedKey = MaskSecret(plaintext)
		}

		views = append(views, view)
	}

	return views, nil
}

// MaskSecret hides all but the last few characters of a secret.
func MaskSecret(secret string) string {
	runes := []rune(secret)
	if len(runes) <= maskedSuffixLen {
		return maskPrefix
	}
	return maskPrefix + string(runes[len(runes)-maskedSuffixLen:])
}
