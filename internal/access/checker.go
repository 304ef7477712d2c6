package access

import (
	"context"
	"fmt"

	"ms-tripbooking/internal/apperr"
	"ms-tripbooking/internal/logger"
)

type Store interface {
	GetCapabilities(ctx context.Context, principalID string) ([]string, error)
	ReplaceCapabilities(ctx context.Context, principalID string, capabilities []string) error
	AddCapability(ctx context.Context, principalID string, capability string) error
}

type Cache interface {
	GetCapabilities(ctx context.Context, principalID string) ([]string, bool, error)
	SetCapabilities(ctx context.Context, principalID string, capabilities []string) error
	Invalidate(ctx context.Context, principalID string) error
}

// Checker answers "may principal P perform action A". Reads go through the
// cache; every write invalidates before it returns.
type Checker struct {
	Store  Store
	Cache  Cache
	Logger *logger.Logger
}

func NewChecker(store Store, cache Cache, log *logger.Logger) *Checker {
	return &Checker{Store: store, Cache: cache, Logger: log}
}

// Capabilities returns the principal's full capability set. A principal with
// no stored assignment holds exactly {user}.
func (c *Checker) Capabilities(ctx context.Context, principalID string) (CapabilitySet, error) {
	if principalID == "" {
		return nil, fmt.Errorf("principal id is required: %w", apperr.ErrInvalidInput)
	}

	if c.Cache != nil {
		cached, hit, err := c.Cache.GetCapabilities(ctx, principalID)
		if err != nil {
			// A broken cache must not block authorization; fall through to
			// the store.
			c.Logger.Warn("ACCESS", fmt.Sprintf("capability cache read failed for %s: %v", principalID, err))
		} else if hit {
			return SetFromStrings(cached), nil
		}
	}

	stored, err := c.Store.GetCapabilities(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("load capabilities for %s: %w", principalID, err)
	}

	set := SetFromStrings(stored)
	if len(set) == 0 {
		set = DefaultSet()
	}

	if c.Cache != nil {
		if err := c.Cache.SetCapabilities(ctx, principalID, set.Strings()); err != nil {
			c.Logger.Warn("ACCESS", fmt.Sprintf("capability cache write failed for %s: %v", principalID, err))
		}
	}
	return set, nil
}

func (c *Checker) HasCapability(ctx context.Context, principalID string, capability Capability) (bool, error) {
	set, err := c.Capabilities(ctx, principalID)
	if err != nil {
		return false, err
	}
	return set.Has(capability), nil
}

// Require returns ErrForbidden unless the principal holds the capability.
func (c *Checker) Require(ctx context.Context, principalID string, capability Capability) error {
	ok, err := c.HasCapability(ctx, principalID, capability)
	if err != nil {
		return err
	}
	if !ok {
		c.Logger.LogSecurity("DENIED", fmt.Sprintf("principal %s lacks capability %s", principalID, capability))
		return fmt.Errorf("principal %s lacks capability %s: %w", principalID, capability, apperr.ErrForbidden)
	}
	return nil
}

// SetCapabilities replaces the principal's entire capability set atomically.
func (c *Checker) SetCapabilities(ctx context.Context, principalID string, set CapabilitySet) error {
	if principalID == "" {
		return fmt.Errorf("principal id is required: %w", apperr.ErrInvalidInput)
	}
	if len(set) == 0 {
		return fmt.Errorf("capability set cannot be empty: %w", apperr.ErrInvalidRoleSet)
	}
	if !set.Has(CapabilityUser) {
		return fmt.Errorf("capability set must contain %q: %w", CapabilityUser, apperr.ErrInvalidRoleSet)
	}
	for cap := range set {
		if !cap.Valid() {
			return fmt.Errorf("unknown capability %q: %w", cap, apperr.ErrInvalidRoleSet)
		}
	}

	if err := c.Store.ReplaceCapabilities(ctx, principalID, set.Strings()); err != nil {
		return fmt.Errorf("replace capabilities for %s: %w", principalID, err)
	}
	c.invalidate(ctx, principalID)
	c.Logger.Info("ACCESS", fmt.Sprintf("capabilities for %s set to %v", principalID, set.Strings()))
	return nil
}

// GrantCapability adds one capability without touching the rest of the set.
// Used by vendor application approval.
func (c *Checker) GrantCapability(ctx context.Context, principalID string, capability Capability) error {
	if !capability.Valid() {
		return fmt.Errorf("unknown capability %q: %w", capability, apperr.ErrInvalidRoleSet)
	}
	if err := c.Store.AddCapability(ctx, principalID, string(capability)); err != nil {
		return fmt.Errorf("grant %s to %s: %w", capability, principalID, err)
	}
	c.invalidate(ctx, principalID)
	c.Logger.Info("ACCESS", fmt.Sprintf("granted %s to %s", capability, principalID))
	return nil
}

func (c *Checker) invalidate(ctx context.Context, principalID string) {
	if c.Cache == nil {
		return
	}
	if err := c.Cache.Invalidate(ctx, principalID); err != nil {
		c.Logger.Warn("ACCESS", fmt.Sprintf("capability cache invalidation failed for %s: %v", principalID, err))
	}
}
