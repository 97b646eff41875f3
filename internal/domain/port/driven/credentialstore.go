package driven

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/studydigest/internal/domain/model"
)

// ErrCredentialNotFound is returned when an operation targets a credential id
// that does not exist.
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialStore defines the driven port for provider credential persistence.
// Values cross this boundary encrypted; the store never sees plaintext.
//
// Implementations perform plain read and update statements without locking.
// Two concurrent callers of NextUsable may receive the same record before
// either TouchLastUsed is visible; callers must tolerate that.
type CredentialStore interface {
	// Create inserts a new credential record.
	Create(ctx context.Context, cred model.Credential) error

	// Get returns the credential with the given id, or ErrCredentialNotFound.
	Get(ctx context.Context, id string) (*model.Credential, error)

	// NextUsable returns the usable credential (active and not disabled at now)
	// with the oldest LastUsedAt, never-used first. Returns (nil, nil) when
	// no credential is usable.
	NextUsable(ctx context.Context, now time.Time) (*model.Credential, error)

	// List returns all credentials, most recently used first.
	List(ctx context.Context) ([]model.Credential, error)

	// TouchLastUsed sets LastUsedAt.
	TouchLastUsed(ctx context.Context, id string, at time.Time) error

	// IncrementFailCount adds one to FailCount and returns the new value.
	IncrementFailCount(ctx context.Context, id string) (int, error)

	// SetDisabledUntil sets the end of the credential's disable window.
	SetDisabledUntil(ctx context.Context, id string, until time.Time) error

	// ResetHealth sets FailCount to 0 and clears DisabledUntil.
	ResetHealth(ctx context.Context, id string) error

	// SetActive flips the operator-controlled active flag. Activating also
	// resets health; deactivating leaves failure state untouched.
	SetActive(ctx context.Context, id string, active bool) error

	// Delete permanently removes the credential.
	Delete(ctx context.Context, id string) error
}
