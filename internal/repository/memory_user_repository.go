package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/student-records-api/internal/models"
)

// MemoryUserRepository keeps user accounts and sessions in process memory.
// Paired with the memory record store for local development and tests.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	users   map[string]*models.User
	byEmail map[string]string
	tokens  map[string]*models.RefreshToken
}

// NewMemoryUserRepository constructs an empty in-memory user store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
		tokens:  make(map[string]*models.RefreshToken),
	}
}

// FindByEmail returns a user by email address.
func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	user := *r.users[id]
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *MemoryUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

// Create inserts a new user account.
func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	clone := *user
	r.users[user.ID] = &clone
	r.byEmail[user.Email] = user.ID
	return nil
}

// UpdateLastLogin stamps the last successful login.
func (r *MemoryUserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	stamp := ts
	user.LastLogin = &stamp
	user.UpdatedAt = ts
	return nil
}

// CreateRefreshToken persists a refresh token session.
func (r *MemoryUserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *token
	r.tokens[token.Token] = &clone
	return nil
}

// FindRefreshToken fetches a refresh token by its opaque value.
func (r *MemoryUserRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

// RevokeRefreshToken marks a single session as revoked.
func (r *MemoryUserRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range r.tokens {
		if token.ID == id {
			token.Revoked = true
			stamp := revokedAt
			token.RevokedAt = &stamp
			return nil
		}
	}
	return sql.ErrNoRows
}

// RevokeUserRefreshTokens revokes every open session for a user.
func (r *MemoryUserRepository) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, token := range r.tokens {
		if token.UserID == userID && !token.Revoked {
			token.Revoked = true
			stamp := now
			token.RevokedAt = &stamp
		}
	}
	return nil
}
