// Package memory is a thread-safe in-memory credential store for local
// development and tests. Each operation holds the store lock for its whole
// read-modify-write, which gives it the same atomicity as a single Mongo update.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/AnthoniusHendriyanto/travel-auth/internal/auth/domain"
	autherror "github.com/AnthoniusHendriyanto/travel-auth/internal/errors"
	"github.com/google/uuid"
)

type Repository struct {
	mu sync.RWMutex

	byID    map[string]*domain.Account
	byEmail map[string]string // email -> id
}

func NewRepository() *Repository {
	return &Repository{
		byID:    make(map[string]*domain.Account),
		byEmail: make(map[string]string),
	}
}

func (r *Repository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	return clone(r.byID[id]), nil
}

func (r *Repository) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return clone(a), nil
}

func (r *Repository) Insert(_ context.Context, account *domain.Account) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[account.Email]; exists {
		return "", autherror.ErrEmailAlreadyInUse
	}

	cp := clone(account)
	cp.ID = uuid.NewString()
	if cp.RefreshTokens == nil {
		cp.RefreshTokens = []string{}
	}
	r.byID[cp.ID] = cp
	r.byEmail[cp.Email] = cp.ID
	return cp.ID, nil
}

func (r *Repository) Update(_ context.Context, id string, patch domain.AccountPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return autherror.ErrAccountNotFound
	}

	if patch.FullName != nil {
		a.FullName = *patch.FullName
	}
	if patch.Phone != nil {
		a.Phone = *patch.Phone
	}
	if patch.PhotoURL != nil {
		a.PhotoURL = *patch.PhotoURL
	}
	if patch.FederatedUID != nil {
		a.FederatedUID = *patch.FederatedUID
	}
	if patch.PasswordHash != nil {
		a.PasswordHash = *patch.PasswordHash
	}
	if patch.IsActive != nil {
		a.IsActive = *patch.IsActive
	}
	if patch.LastLoginAt != nil {
		t := *patch.LastLoginAt
		a.LastLoginAt = &t
	}
	if patch.ClearRefreshTokens {
		a.RefreshTokens = []string{}
	}
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *Repository) PushRefreshToken(_ context.Context, id, token string, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return autherror.ErrAccountNotFound
	}
	a.RefreshTokens = keepLast(append(a.RefreshTokens, token), limit)
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *Repository) RotateRefreshToken(_ context.Context, id, oldToken, newToken string, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok || !a.HasRefreshToken(oldToken) {
		return autherror.ErrRefreshTokenNotFound
	}

	kept := make([]string, 0, len(a.RefreshTokens))
	for _, t := range a.RefreshTokens {
		if t != oldToken {
			kept = append(kept, t)
		}
	}
	a.RefreshTokens = keepLast(append(kept, newToken), limit)
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *Repository) RemoveRefreshToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil
	}

	kept := a.RefreshTokens[:0]
	for _, t := range a.RefreshTokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	a.RefreshTokens = kept
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// keepLast drops the oldest entries so that at most limit remain.
func keepLast(tokens []string, limit int) []string {
	if limit > 0 && len(tokens) > limit {
		return append([]string(nil), tokens[len(tokens)-limit:]...)
	}
	return tokens
}

// clone returns a deep copy so callers never alias stored state.
func clone(a *domain.Account) *domain.Account {
	cp := *a
	cp.RefreshTokens = append([]string(nil), a.RefreshTokens...)
	if a.LastLoginAt != nil {
		t := *a.LastLoginAt
		cp.LastLoginAt = &t
	}
	return &cp
}
