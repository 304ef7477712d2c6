package access_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-tripbooking/internal/access"
	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/logger"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetCapabilities(ctx context.Context, principalID string) ([]string, error) {
	args := m.Called(principalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) ReplaceCapabilities(ctx context.Context, principalID string, capabilities []string) error {
	args := m.Called(principalID, capabilities)
	return args.Error(0)
}

func (m *MockStore) AddCapability(ctx context.Context, principalID string, capability string) error {
	args := m.Called(principalID, capability)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetCapabilities(ctx context.Context, principalID string) ([]string, bool, error) {
	args := m.Called(principalID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]string), args.Bool(1), args.Error(2)
}

func (m *MockCache) SetCapabilities(ctx context.Context, principalID string, capabilities []string) error {
	args := m.Called(principalID, capabilities)
	return args.Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, principalID string) error {
	args := m.Called(principalID)
	return args.Error(0)
}

func newChecker(store *MockStore, cache *MockCache) *access.Checker {
	if cache == nil {
		return access.NewChecker(store, nil, logger.NewLogger())
	}
	return access.NewChecker(store, cache, logger.NewLogger())
}

func TestCapabilitiesDefaultToUser(t *testing.T) {
	store := new(MockStore)
	store.On("GetCapabilities", "p1").Return([]string{}, nil)

	checker := newChecker(store, nil)
	set, err := checker.Capabilities(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, []string{"user"}, set.Strings())
	store.AssertExpectations(t)
}

func TestHasCapability(t *testing.T) {
	store := new(MockStore)
	store.On("GetCapabilities", "p1").Return([]string{"user", "vendor"}, nil)

	checker := newChecker(store, nil)

	ok, err := checker.HasCapability(context.Background(), "p1", access.CapabilityVendor)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRequireForbidden(t *testing.T) {
	store := new(MockStore)
	store.On("GetCapabilities", "p1").Return([]string{"user"}, nil)

	checker := newChecker(store, nil)

	err := checker.Require(context.Background(), "p1", access.CapabilityAdmin)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestCacheHitSkipsStore(t *testing.T) {
	store := new(MockStore)
	cache := new(MockCache)
	cache.On("GetCapabilities", "p1").Return([]string{"admin", "user"}, true, nil)

	checker := newChecker(store, cache)

	ok, err := checker.HasCapability(context.Background(), "p1", access.CapabilityAdmin)
	require.NoError(t, err)
	assert.True(t, ok)
	store.AssertNotCalled(t, "GetCapabilities", mock.Anything)
}

func TestCacheFailureFallsBackToStore(t *testing.T) {
	store := new(MockStore)
	cache := new(MockCache)
	cache.On("GetCapabilities", "p1").Return(nil, false, errors.New("redis down"))
	store.On("GetCapabilities", "p1").Return([]string{"user"}, nil)
	cache.On("SetCapabilities", "p1", []string{"user"}).Return(errors.New("redis down")).Maybe()

	checker := newChecker(store, cache)

	ok, err := checker.HasCapability(context.Background(), "p1", access.CapabilityUser)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetCapabilitiesRejectsEmptySet(t *testing.T) {
	checker := newChecker(new(MockStore), nil)

	err := checker.SetCapabilities(context.Background(), "p1", access.NewSet())
	assert.ErrorIs(t, err, apperr.ErrInvalidRoleSet)
}

func TestSetCapabilitiesRequiresUser(t *testing.T) {
	checker := newChecker(new(MockStore), nil)

	err := checker.SetCapabilities(context.Background(), "p1", access.NewSet(access.CapabilityAdmin))
	assert.ErrorIs(t, err, apperr.ErrInvalidRoleSet)
}

func TestSetCapabilitiesRejectsUnknownCapability(t *testing.T) {
	checker := newChecker(new(MockStore), nil)

	set := access.SetFromStrings([]string{"user", "superuser"})
	err := checker.SetCapabilities(context.Background(), "p1", set)
	assert.ErrorIs(t, err, apperr.ErrInvalidRoleSet)
}

func TestSetCapabilitiesReplacesAndInvalidates(t *testing.T) {
	store := new(MockStore)
	cache := new(MockCache)
	store.On("ReplaceCapabilities", "p1", []string{"user", "vendor"}).Return(nil)
	cache.On("Invalidate", "p1").Return(nil)

	checker := newChecker(store, cache)

	err := checker.SetCapabilities(context.Background(), "p1", access.NewSet(access.CapabilityUser, access.CapabilityVendor))
	require.NoError(t, err)
	store.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestGrantCapabilityInvalidatesCache(t *testing.T) {
	store := new(MockStore)
	cache := new(MockCache)
	store.On("AddCapability", "p1", "vendor").Return(nil)
	cache.On("Invalidate", "p1").Return(nil)

	checker := newChecker(store, cache)

	require.NoError(t, checker.GrantCapability(context.Background(), "p1", access.CapabilityVendor))
	store.AssertExpectations(t)
	cache.AssertExpectations(t)
}
