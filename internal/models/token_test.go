package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshTokenUsable(t *testing.T) {
	now := time.Now().UTC()

	fresh := RefreshToken{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, fresh.Usable(now))

	expired := RefreshToken{ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, expired.Usable(now))

	revoked := RefreshToken{ExpiresAt: now.Add(time.Hour), Revoked: true}
	assert.False(t, revoked.Usable(now))
}
