package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"voicenote/internal/config"
)

type fakeGitHub struct {
	profile map[string]interface{}
	emails  []map[string]interface{}
	codes   []string
}

func (f *fakeGitHub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.codes = append(f.codes, r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "gho_test",
			"token_type":   "bearer",
			"scope":        "read:user,user:email",
		})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gho_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(f.profile)
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(f.emails)
	})
	return mux
}

func newTestGitHub(t *testing.T, fake *fakeGitHub) *GitHub {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	return NewGitHub(config.GitHubConfig{ClientID: "id", ClientSecret: "secret"}, "http://localhost:8080/").
		WithEndpoints(oauth2.Endpoint{
			AuthURL:  srv.URL + "/login/oauth/authorize",
			TokenURL: srv.URL + "/login/oauth/access_token",
		}, srv.URL)
}

func TestGitHub_AuthCodeURL(t *testing.T) {
	g := NewGitHub(config.GitHubConfig{ClientID: "client-123"}, "https://voicenote.example.com")

	u, err := url.Parse(g.AuthCodeURL("state-xyz"))
	require.NoError(t, err)
	assert.Equal(t, "github.com", u.Host)
	q := u.Query()
	assert.Equal(t, "client-123", q.Get("client_id"))
	assert.Equal(t, "state-xyz", q.Get("state"))
	assert.Equal(t, "https://voicenote.example.com/auth/github/callback", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "user:email")
}

func TestGitHub_Exchange(t *testing.T) {
	fake := &fakeGitHub{
		profile: map[string]interface{}{
			"id": 583231, "login": "octocat", "name": "The Octocat",
			"email": "octocat@github.com", "avatar_url": "https://avatars.example.com/u/583231",
		},
	}
	g := newTestGitHub(t, fake)

	user, account, err := g.Exchange(context.Background(), "code-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"code-1"}, fake.codes)
	assert.Equal(t, "octocat@github.com", user.Email)
	require.NotNil(t, user.Name)
	assert.Equal(t, "The Octocat", *user.Name)
	require.NotNil(t, user.Image)

	assert.Equal(t, "github", account.Provider)
	assert.Equal(t, "583231", account.ProviderAccountID)
	assert.Equal(t, "oauth", account.Type)
	assert.Equal(t, "gho_test", account.AccessToken)
	assert.Equal(t, "read:user,user:email", account.Scope)
}

func TestGitHub_Exchange_PrivateEmail(t *testing.T) {
	fake := &fakeGitHub{
		profile: map[string]interface{}{"id": 7, "login": "hidden"},
		emails: []map[string]interface{}{
			{"email": "old@example.com", "primary": false, "verified": true},
			{"email": "main@example.com", "primary": true, "verified": true},
		},
	}
	g := newTestGitHub(t, fake)

	user, _, err := g.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "main@example.com", user.Email)
	require.NotNil(t, user.Name)
	assert.Equal(t, "hidden", *user.Name)
	assert.Nil(t, user.Image)
}

func TestGitHub_Exchange_NoVerifiedEmail(t *testing.T) {
	fake := &fakeGitHub{
		profile: map[string]interface{}{"id": 7, "login": "hidden"},
		emails:  []map[string]interface{}{{"email": "x@example.com", "primary": true, "verified": false}},
	}
	g := newTestGitHub(t, fake)

	_, _, err := g.Exchange(context.Background(), "code")
	assert.Error(t, err)
}
