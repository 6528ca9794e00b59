package handlers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/shop/models"
	"github.com/m3rciful/shopbot/shop/storage"
)

type fakeUserStore struct {
	users    map[int64]models.User
	fetchErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]models.User)}
}

func (s *fakeUserStore) FetchUser(_ context.Context, userID int64) (models.User, error) {
	if s.fetchErr != nil {
		return models.User{}, s.fetchErr
	}
	u, ok := s.users[userID]
	if !ok {
		return models.User{}, fmt.Errorf("user %d: %w", userID, storage.ErrNotFound)
	}
	return u, nil
}

func (s *fakeUserStore) UpsertUser(_ context.Context, userID int64, firstName, lastName string, phone *string, referrerID *int64) error {
	if _, ok := s.users[userID]; ok {
		return nil
	}
	s.users[userID] = models.User{UserID: userID, FirstName: firstName, LastName: lastName, Phone: phone, ReferrerID: referrerID}
	return nil
}

func (s *fakeUserStore) AddToCart(context.Context, int64, int64) error {
	return nil
}

func TestResolveStartSelfLinkRejected(t *testing.T) {
	h := NewUser(newFakeUserStore(), nil)

	out, err := h.resolveStart(context.Background(), 7, "7")
	require.NoError(t, err)
	assert.True(t, out.SelfLink)
	assert.Nil(t, out.ReferrerID)
	assert.False(t, out.Notify)
}

func TestResolveStartNewUserWithReferral(t *testing.T) {
	h := NewUser(newFakeUserStore(), nil)

	out, err := h.resolveStart(context.Background(), 7, "9")
	require.NoError(t, err)
	assert.False(t, out.SelfLink)
	require.NotNil(t, out.ReferrerID)
	assert.Equal(t, int64(9), *out.ReferrerID)
	assert.True(t, out.Notify)
}

func TestResolveStartReplayKeepsRegistration(t *testing.T) {
	store := newFakeUserStore()
	store.users[7] = models.User{UserID: 7, FirstName: "Ann"}
	h := NewUser(store, nil)

	out, err := h.resolveStart(context.Background(), 7, "9")
	require.NoError(t, err)
	assert.Nil(t, out.ReferrerID)
	assert.False(t, out.Notify)
}

func TestResolveStartIgnoresGarbagePayload(t *testing.T) {
	h := NewUser(newFakeUserStore(), nil)

	out, err := h.resolveStart(context.Background(), 7, "friend")
	require.NoError(t, err)
	assert.Nil(t, out.ReferrerID)
	assert.False(t, out.SelfLink)
	assert.False(t, out.Notify)
}

func TestResolveStartPropagatesStorageError(t *testing.T) {
	store := newFakeUserStore()
	store.fetchErr = errors.New("connection reset")
	h := NewUser(store, nil)

	_, err := h.resolveStart(context.Background(), 7, "9")
	assert.Error(t, err)
}
