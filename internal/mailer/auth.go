package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

// oobRedirectURL is the out-of-band redirect target: the provider shows
// the authorization code to the user instead of redirecting to a server.
const oobRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// Authorizer drives the OAuth2 authorization-code flow for the send-only
// Gmail scope and caches the granted token in a file.
type Authorizer struct {
	config    *oauth2.Config
	tokenFile string
}

// NewAuthorizer parses the Google client-credentials JSON and prepares
// the flow. tokenFile may be empty to disable token caching.
func NewAuthorizer(credentialsJSON []byte, tokenFile string) (*Authorizer, error) {
	config, err := google.ConfigFromJSON(credentialsJSON, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse mail credentials: %w", err)
	}
	config.RedirectURL = oobRedirectURL

	return &Authorizer{
		config:    config,
		tokenFile: strings.TrimSpace(tokenFile),
	}, nil
}

// AuthURL returns the URL the user must visit to grant access.
func (a *Authorizer) AuthURL() string {
	return a.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
}

// Exchange trades the authorization code for a token and caches it.
func (a *Authorizer) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("authorization code is required")
	}

	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	if a.tokenFile != "" {
		if err := saveToken(a.tokenFile, token); err != nil {
			return nil, err
		}
	}

	return token, nil
}

// CachedToken loads a previously granted token from the token file.
func (a *Authorizer) CachedToken() (*oauth2.Token, error) {
	if a.tokenFile == "" {
		return nil, os.ErrNotExist
	}

	f, err := os.Open(a.tokenFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decode cached token: %w", err)
	}

	return token, nil
}

func (a *Authorizer) httpClient(ctx context.Context, token *oauth2.Token) *http.Client {
	return a.config.Client(ctx, token)
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("cache oauth token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("cache oauth token: %w", err)
	}

	return nil
}
