package oauth

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const githubProfileURL = "https://api.github.com/user"

// Client drives an authorization-code flow against a provider and fetches the
// resulting profile. The provider is GitHub in production; tests substitute a
// stub endpoint via NewClient.
type Client struct {
	cfg        *oauth2.Config
	profileURL string
}

// NewGitHubClient builds a client for the GitHub provider.
func NewGitHubClient(clientID, clientSecret, callbackURL string) *Client {
	return NewClient(&oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  callbackURL,
		Scopes:       []string{"user:email"},
		Endpoint:     endpoints.GitHub,
	}, githubProfileURL)
}

// NewClient builds a client for an arbitrary provider endpoint.
func NewClient(cfg *oauth2.Config, profileURL string) *Client {
	return &Client{
		cfg:        cfg,
		profileURL: profileURL,
	}
}

// AuthURL returns the provider URL to redirect the browser to.
func (c *Client) AuthURL(state string) string {
	return c.cfg.AuthCodeURL(state)
}

// Exchange trades the callback code for an access token and fetches the raw
// profile JSON with it.
func (c *Client) Exchange(ctx context.Context, code string) ([]byte, error) {
	tok, err := c.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := c.cfg.Client(ctx, tok).Get(c.profileURL)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch profile: unexpected status %d", resp.StatusCode)
	}

	profile, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return profile, nil
}
