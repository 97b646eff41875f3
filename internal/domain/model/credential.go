package model

import "time"

// DefaultProvider is the provider tag assigned to credentials added without one.
const DefaultProvider = "openrouter"

// Credential is a stored provider API key with its health metadata. The
// secret itself is only ever held in encrypted form; see Lease for the
// decrypted value handed to callers at selection time.
type Credential struct {
	ID            string
	Ciphertext    string
	Provider      string
	Active        bool
	LastUsedAt    *time.Time
	FailCount     int
	DisabledUntil *time.Time
	CreatedAt     time.Time
}

// Usable reports whether the credential may be selected at the given instant:
// it must be active and outside any disable window.
func (c Credential) Usable(now time.Time) bool {
	if !c.Active {
		return false
	}
	return c.DisabledUntil == nil || c.DisabledUntil.Before(now)
}

// Lease is a selected credential with its decrypted secret.
type Lease struct {
	ID     string
	APIKey string
}

// CredentialView is the masked, display-safe representation of a credential.
// Only the last few characters of the secret are ever exposed.
type CredentialView struct {
	ID            string
	Provider      string
	MaskedKey     string
	Active        bool
	Usable        bool
	Unreadable    bool // stored ciphertext failed to decrypt
	FailCount     int
	LastUsedAt    *time.Time
	DisabledUntil *time.Time
	CreatedAt     time.Time
}
