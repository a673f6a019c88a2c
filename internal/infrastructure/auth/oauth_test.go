package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/appforge/backend/internal/domain/identity"
	"github.com/appforge/backend/internal/domain/shared"
	"github.com/appforge/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeIdP serves the token endpoint plus GitHub and Google style profile endpoints
func fakeIdP(t *testing.T, githubEmail string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"bad_verification_code"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": 583231, "login": "octocat", "name": "", "email": githubEmail,
			"avatar_url": "https://avatars/octocat",
		})
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"email":"old@x.io","primary":false,"verified":true},
			{"email":"octo@x.io","primary":true,"verified":true}]`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"sub":"g-123","email":"ada@gmail.com","email_verified":true,"name":"Ada","picture":"https://pic"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testProvider(srv *httptest.Server, name identity.Provider, fetch profileFetcher) *oauthProvider {
	return &oauthProvider{
		name: name,
		config: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:   srv.URL + "/authorize",
				TokenURL:  srv.URL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
			RedirectURL: "http://localhost/cb",
		},
		fetch: fetch,
	}
}

func TestNewOAuthProviders(t *testing.T) {
	providers := NewOAuthProviders(config.OAuthConfig{
		GitHubClientID:  "gh-id",
		RedirectBaseURL: "https://forge.example.com/api/v1/auth/",
	})
	require.Len(t, providers, 1)

	gh, err := providers.Get("GitHub")
	require.NoError(t, err)
	assert.Equal(t, identity.ProviderGitHub, gh.Name())

	u, err := url.Parse(gh.AuthCodeURL("state-1"))
	require.NoError(t, err)
	assert.Equal(t, "github.com", u.Host)
	assert.Equal(t, "state-1", u.Query().Get("state"))
	assert.Equal(t, "https://forge.example.com/api/v1/auth/github/callback", u.Query().Get("redirect_uri"))

	_, err = providers.Get("google")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOAuthProvider_ExchangeGitHub(t *testing.T) {
	t.Run("private email falls back to the emails endpoint", func(t *testing.T) {
		srv := fakeIdP(t, "")
		p := testProvider(srv, identity.ProviderGitHub, fetchGitHubProfile(srv.URL+"/user", srv.URL+"/user/emails"))

		profile, err := p.Exchange(context.Background(), "good-code")
		require.NoError(t, err)
		assert.Equal(t, "583231", profile.ProviderUserID)
		assert.Equal(t, "octocat", profile.Name)
		assert.Equal(t, "octo@x.io", profile.Email)
		assert.Equal(t, "https://avatars/octocat", profile.AvatarURL)
	})

	t.Run("public email is used directly", func(t *testing.T) {
		srv := fakeIdP(t, "public@x.io")
		p := testProvider(srv, identity.ProviderGitHub, fetchGitHubProfile(srv.URL+"/user", srv.URL+"/user/emails"))

		profile, err := p.Exchange(context.Background(), "good-code")
		require.NoError(t, err)
		assert.Equal(t, "public@x.io", profile.Email)
	})

	t.Run("bad code", func(t *testing.T) {
		srv := fakeIdP(t, "")
		p := testProvider(srv, identity.ProviderGitHub, fetchGitHubProfile(srv.URL+"/user", srv.URL+"/user/emails"))

		_, err := p.Exchange(context.Background(), "bad-code")
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("profile endpoint failure", func(t *testing.T) {
		srv := fakeIdP(t, "")
		p := testProvider(srv, identity.ProviderGitHub, fetchGitHubProfile(srv.URL+"/missing", srv.URL+"/user/emails"))

		_, err := p.Exchange(context.Background(), "good-code")
		assert.ErrorIs(t, err, shared.ErrVendor)
	})
}

func TestOAuthProvider_ExchangeGoogle(t *testing.T) {
	srv := fakeIdP(t, "")
	p := testProvider(srv, identity.ProviderGoogle, fetchGoogleProfile(srv.URL+"/userinfo"))

	profile, err := p.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, identity.Profile{
		ProviderUserID: "g-123",
		Email:          "ada@gmail.com",
		Name:           "Ada",
		AvatarURL:      "https://pic",
	}, profile)
}
