package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/ylexus/google-issue-193814298/infrastructure/logging"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// DefaultCallbackPort is the local port the browser redirects to
const DefaultCallbackPort = 8888

// Bootstrapper obtains an authorized session, interactively if needed
type Bootstrapper struct {
	mu      sync.Mutex
	config  *oauth2.Config
	store   *TokenStore
	port    int
	out     io.Writer
	browser func(url string) error
	used    bool
}

// Option is a functional option for configuring Bootstrapper
type Option func(*Bootstrapper)

// WithCallbackPort sets the local callback port (0 picks a free one)
func WithCallbackPort(port int) Option {
	return func(b *Bootstrapper) {
		b.port = port
	}
}

// WithOutput sets where the authorization prompts are printed
func WithOutput(w io.Writer) Option {
	return func(b *Bootstrapper) {
		b.out = w
	}
}

// WithBrowser replaces the browser opener (for testing)
func WithBrowser(open func(url string) error) Option {
	return func(b *Bootstrapper) {
		b.browser = open
	}
}

// NewBootstrapper creates a bootstrapper for the client config and token store
func NewBootstrapper(config *oauth2.Config, store *TokenStore, opts ...Option) *Bootstrapper {
	b := &Bootstrapper{
		config:  config,
		store:   store,
		port:    DefaultCallbackPort,
		out:     os.Stderr,
		browser: OpenBrowser,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Authorize returns a session from the cached token when it carries a
// refresh token, and otherwise runs the browser flow once per process.
func (b *Bootstrapper) Authorize(ctx context.Context) (*Session, error) {
	token, err := b.store.Load()
	switch {
	case err == nil && token.RefreshToken != "":
		logging.Debug("Using cached token from %s", b.store.Path())
		return NewSession(b.config, token), nil
	case err == nil:
		logging.Warn("Cached token in %s has no refresh token, authorizing again", b.store.Path())
	case !errors.Is(err, fs.ErrNotExist):
		logging.Warn("Ignoring unreadable token cache: %v", err)
	}

	token, err = b.authorizeInteractively(ctx)
	if err != nil {
		return nil, err
	}

	if err := b.store.Save(token); err != nil {
		logging.Warn("couldn't save token: %v", err)
	}

	return NewSession(b.config, token), nil
}

func (b *Bootstrapper) authorizeInteractively(ctx context.Context) (*oauth2.Token, error) {
	b.mu.Lock()
	if b.used {
		b.mu.Unlock()
		return nil, ErrInteractiveFlowUsed
	}
	b.used = true
	b.mu.Unlock()

	state := uuid.NewString()
	server := NewCallbackServer(b.port, state)
	if err := server.Start(); err != nil {
		return nil, fmt.Errorf("unable to start callback receiver: %w", err)
	}
	defer server.Stop()

	// Redirect to wherever the receiver actually bound
	b.config.RedirectURL = server.RedirectURI()
	authURL := b.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	fmt.Fprintln(b.out, "Please open the following address in your browser:")
	fmt.Fprintln(b.out, "  "+authURL)

	if err := b.browser(authURL); err != nil {
		logging.Debug("Unable to open browser: %v", err)
	}

	code, err := server.WaitForCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}

	token, err := b.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange auth code: %w", err)
	}

	fmt.Fprintln(b.out, "Authentication successful!")
	return token, nil
}
