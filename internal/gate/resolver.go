package gate

import (
	"context"
	"sync"
	"time"

	"github.com/senyabanana/creator-marketplace/internal/models"
	"github.com/senyabanana/creator-marketplace/internal/repository"
)

// RoleResolver возвращает сохраненную роль пользователя.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (models.Role, error)
}

// RoleResolverFunc позволяет использовать функцию как RoleResolver.
type RoleResolverFunc func(ctx context.Context, userID string) (models.Role, error)

func (f RoleResolverFunc) ResolveRole(ctx context.Context, userID string) (models.Role, error) {
	return f(ctx, userID)
}

// ProfileRoleResolver читает роль из профиля пользователя.
type ProfileRoleResolver struct {
	Profiles repository.ProfileRepository
}

func (r ProfileRoleResolver) ResolveRole(ctx context.Context, userID string) (models.Role, error) {
	profile, err := r.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	return profile.Role, nil
}

// CachedResolver кэширует роли на ttl. Роль профиля не меняется,
// поэтому устаревшей запись может стать только после удаления пользователя.
type CachedResolver struct {
	Now func() time.Time

	inner RoleResolver
	ttl   time.Duration
	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	role      models.Role
	expiresAt time.Time
}

// NewCachedResolver оборачивает resolver кэшем.
func NewCachedResolver(inner RoleResolver, ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		Now:   time.Now,
		inner: inner,
		ttl:   ttl,
		cache: make(map[string]cacheEntry),
	}
}

// ResolveRole возвращает роль из кэша или из inner. Ошибки не кэшируются.
func (r *CachedResolver) ResolveRole(ctx context.Context, userID string) (models.Role, error) {
	r.mu.RLock()
	entry, ok := r.cache[userID]
	r.mu.RUnlock()

	if ok && r.Now().Before(entry.expiresAt) {
		return entry.role, nil
	}

	role, err := r.inner.ResolveRole(ctx, userID)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.cache[userID] = cacheEntry{role: role, expiresAt: r.Now().Add(r.ttl)}
	r.mu.Unlock()
	return role, nil
}

// Invalidate удаляет пользователя из кэша.
func (r *CachedResolver) Invalidate(userID string) {
	r.mu.Lock()
	delete(r.cache, userID)
	r.mu.Unlock()
}
