package auth

import (
	"context"
	"net/http"

	"github.com/ylexus/google-issue-193814298/domain/auth"

	"golang.org/x/oauth2"
)

// Session is the outcome of authorization, shared by every API client
type Session struct {
	config *oauth2.Config
	token  *oauth2.Token
}

// NewSession wraps an authorized token
func NewSession(config *oauth2.Config, token *oauth2.Token) *Session {
	return &Session{config: config, token: token}
}

// Credential returns the long-lived credential bundle
func (s *Session) Credential() auth.Credential {
	return auth.Credential{
		ClientID:     s.config.ClientID,
		ClientSecret: s.config.ClientSecret,
		RefreshToken: s.token.RefreshToken,
	}
}

// HTTPClient returns a client that authorizes with the session token
func (s *Session) HTTPClient(ctx context.Context) *http.Client {
	return s.config.Client(ctx, s.token)
}

// CredentialHTTPClient returns a client built from the credential bundle alone.
// The first request trades the refresh token for an access token.
func (s *Session) CredentialHTTPClient(ctx context.Context) *http.Client {
	cred := s.Credential()
	config := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Endpoint:     s.config.Endpoint,
		Scopes:       s.config.Scopes,
	}
	return config.Client(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken})
}
