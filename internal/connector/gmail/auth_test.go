package gmail

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAuthError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsAuthError(errors.New("oauth2: \"invalid_grant\" \"Token has been expired or revoked.\"")))
	assert.True(t, IsAuthError(errors.New("googleapi: Error 401: Invalid Credentials, authError")))
	assert.True(t, IsAuthError(fmt.Errorf("fetch message failed: %w", errors.New("INVALID_CREDENTIALS"))))

	assert.False(t, IsAuthError(nil))
	assert.False(t, IsAuthError(errors.New("connection refused")))
	assert.False(t, IsAuthError(errors.New("googleapi: Error 429: rate limit exceeded")))
}

func TestOAuthConfigScopes(t *testing.T) {
	t.Parallel()

	cfg := OAuthConfig("client-id", "client-secret", "http://localhost/callback")
	assert.Equal(t, "client-id", cfg.ClientID)
	assert.Equal(t, "http://localhost/callback", cfg.RedirectURL)
	// One consent must cover mail polling and document import.
	assert.Contains(t, cfg.Scopes, "https://www.googleapis.com/auth/gmail.modify")
	assert.Contains(t, cfg.Scopes, "https://www.googleapis.com/auth/documents.readonly")
}
