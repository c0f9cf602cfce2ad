package mailer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

const testCredentials = `{
  "installed": {
    "client_id": "client-123.apps.googleusercontent.com",
    "client_secret": "secret",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token"
  }
}`

func TestNewAuthorizerAuthURL(t *testing.T) {
	auth, err := NewAuthorizer([]byte(testCredentials), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	url := auth.AuthURL()

	if !strings.Contains(url, "client-123.apps.googleusercontent.com") {
		t.Fatalf("expected client id in auth url: %s", url)
	}

	if !strings.Contains(url, "gmail.send") {
		t.Fatalf("expected send-only scope in auth url: %s", url)
	}

	if !strings.Contains(url, "urn%3Aietf%3Awg%3Aoauth%3A2.0%3Aoob") {
		t.Fatalf("expected out-of-band redirect in auth url: %s", url)
	}
}

func TestNewAuthorizerRejectsGarbage(t *testing.T) {
	if _, err := NewAuthorizer([]byte("not credentials"), ""); err == nil {
		t.Fatal("expected error for malformed credentials")
	}
}

func TestCachedToken(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token.json")

	auth, err := NewAuthorizer([]byte(testCredentials), tokenFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := auth.CachedToken(); err == nil {
		t.Fatal("expected error when no token is cached")
	}

	token := &oauth2.Token{AccessToken: "granted", TokenType: "Bearer"}
	data, err := json.Marshal(token)
	if err != nil {
		t.Fatalf("marshal token: %v", err)
	}
	if err := os.WriteFile(tokenFile, data, 0o600); err != nil {
		t.Fatalf("writing token file: %v", err)
	}

	cached, err := auth.CachedToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cached.AccessToken != "granted" {
		t.Fatalf("unexpected token: %+v", cached)
	}
}
