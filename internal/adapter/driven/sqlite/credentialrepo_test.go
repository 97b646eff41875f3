package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/studydigest/internal/domain/model"
	"github.com/ericfisherdev/studydigest/internal/domain/port/driven"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newCredential(id string) model.Credential {
	return model.Credential{
		ID:         id,
		Ciphertext: "blob-" + id,
		Provider:   model.DefaultProvider,
		Active:     true,
		CreatedAt:  baseTime,
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestCredentialRepo_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	cred := newCredential("a")
	cred.LastUsedAt = timePtr(baseTime.Add(time.Minute))
	require.NoError(t, repo.Create(ctx, cred))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "blob-a", got.Ciphertext)
	assert.Equal(t, "openrouter", got.Provider)
	assert.True(t, got.Active)
	assert.Equal(t, 0, got.FailCount)
	assert.Nil(t, got.DisabledUntil)
	require.NotNil(t, got.LastUsedAt)
	assert.True(t, baseTime.Add(time.Minute).Equal(*got.LastUsedAt))
	assert.True(t, baseTime.Equal(got.CreatedAt))
}

func TestCredentialRepo_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, driven.ErrCredentialNotFound)
}

func TestCredentialRepo_CreateDuplicateID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newCredential("a")))
	assert.Error(t, repo.Create(ctx, newCredential("a")))
}

func TestCredentialRepo_NextUsable_NeverUsedFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	used := newCredential("used")
	used.LastUsedAt = timePtr(baseTime)
	require.NoError(t, repo.Create(ctx, used))
	require.NoError(t, repo.Create(ctx, newCredential("fresh")))

	got, err := repo.NextUsable(ctx, baseTime.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "fresh", got.ID)
}

func TestCredentialRepo_NextUsable_LeastRecentlyUsed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	recent := newCredential("recent")
	recent.LastUsedAt = timePtr(baseTime.Add(10 * time.Minute))
	older := newCredential("older")
	older.LastUsedAt = timePtr(baseTime)
	require.NoError(t, repo.Create(ctx, recent))
	require.NoError(t, repo.Create(ctx, older))

	got, err := repo.NextUsable(ctx, baseTime.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "older", got.ID)

	// Touching moves it behind the other one.
	require.NoError(t, repo.TouchLastUsed(ctx, "older", baseTime.Add(20*time.Minute)))

	got, err = repo.NextUsable(ctx, baseTime.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "recent", got.ID)
}

func TestCredentialRepo_NextUsable_SkipsInactiveAndDisabled(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()
	now := baseTime.Add(time.Hour)

	inactive := newCredential("inactive")
	inactive.Active = false
	disabled := newCredential("disabled")
	disabled.DisabledUntil = timePtr(now.Add(time.Minute))
	expired := newCredential("expired")
	expired.DisabledUntil = timePtr(now.Add(-time.Minute))
	expired.LastUsedAt = timePtr(baseTime)

	require.NoError(t, repo.Create(ctx, inactive))
	require.NoError(t, repo.Create(ctx, disabled))
	require.NoError(t, repo.Create(ctx, expired))

	got, err := repo.NextUsable(ctx, now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "expired", got.ID)
}

func TestCredentialRepo_NextUsable_NoneUsable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	inactive := newCredential("inactive")
	inactive.Active = false
	require.NoError(t, repo.Create(ctx, inactive))

	got, err := repo.NextUsable(ctx, baseTime)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCredentialRepo_IncrementFailCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newCredential("a")))

	for want := 1; want <= 3; want++ {
		got, err := repo.IncrementFailCount(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := repo.IncrementFailCount(ctx, "missing")
	assert.ErrorIs(t, err, driven.ErrCredentialNotFound)
}

func TestCredentialRepo_IncrementFailCount_Concurrent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newCredential("a")))

	const goroutines = 20
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			_, err := repo.IncrementFailCount(ctx, "a")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, goroutines, got.FailCount)
}

func TestCredentialRepo_DisableAndResetHealth(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newCredential("a")))
	_, err := repo.IncrementFailCount(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, repo.SetDisabledUntil(ctx, "a", baseTime.Add(time.Hour)))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, got.FailCount)
	require.NotNil(t, got.DisabledUntil)
	assert.True(t, baseTime.Add(time.Hour).Equal(*got.DisabledUntil))

	require.NoError(t, repo.ResetHealth(ctx, "a"))

	got, err = repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 0, got.FailCount)
	assert.Nil(t, got.DisabledUntil)
}

func TestCredentialRepo_SetActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newCredential("a")))
	_, err := repo.IncrementFailCount(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, repo.SetDisabledUntil(ctx, "a", baseTime.Add(time.Hour)))

	require.NoError(t, repo.SetActive(ctx, "a", false))
	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, 1, got.FailCount, "deactivation keeps failure state")
	assert.NotNil(t, got.DisabledUntil)

	require.NoError(t, repo.SetActive(ctx, "a", true))
	got, err = repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, got.Active)
	assert.Equal(t, 0, got.FailCount)
	assert.Nil(t, got.DisabledUntil)

	assert.ErrorIs(t, repo.SetActive(ctx, "missing", true), driven.ErrCredentialNotFound)
}

func TestCredentialRepo_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	never := newCredential("never")
	old := newCredential("old")
	old.LastUsedAt = timePtr(baseTime)
	recent := newCredential("recent")
	recent.LastUsedAt = timePtr(baseTime.Add(time.Hour))

	require.NoError(t, repo.Create(ctx, never))
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, recent))

	creds, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, creds, 3)
	assert.Equal(t, "recent", creds[0].ID)
	assert.Equal(t, "old", creds[1].ID)
	assert.Equal(t, "never", creds[2].ID)
}

func TestCredentialRepo_ListEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)

	creds, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, creds)
}

func TestCredentialRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newCredential("a")))
	require.NoError(t, repo.Delete(ctx, "a"))

	_, err := repo.Get(ctx, "a")
	assert.ErrorIs(t, err, driven.ErrCredentialNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "a"), driven.ErrCredentialNotFound)
}
