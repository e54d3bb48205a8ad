package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingClient is returned when the client id or secret is empty
	ErrMissingClient = errors.New("client id and client secret are required")

	// ErrMissingRefreshToken is returned when authorization did not yield a refresh token
	ErrMissingRefreshToken = errors.New("refresh token is required")
)

// Credential is the long-lived bundle produced by authorization.
// It lives for the whole process and is never refreshed or revoked here.
type Credential struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Validate checks that every part of the bundle is present
func (c Credential) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return ErrMissingClient
	}
	if c.RefreshToken == "" {
		return ErrMissingRefreshToken
	}
	return nil
}

// String renders the credential with secrets masked
func (c Credential) String() string {
	return fmt.Sprintf("Credential{clientId=%s, clientSecret=%s, refreshToken=%s}",
		c.ClientID, mask(c.ClientSecret), mask(c.RefreshToken))
}

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
