package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/appforge/backend/internal/domain/identity"
	"github.com/appforge/backend/internal/domain/shared"
	"github.com/appforge/backend/internal/infrastructure/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// Profile endpoints
const (
	GitHubUserURL   = "https://api.github.com/user"
	GitHubEmailsURL = "https://api.github.com/user/emails"
	GoogleUserURL   = "https://openidconnect.googleapis.com/v1/userinfo"
)

// OAuthProvider runs the authorization code flow for one identity provider
type OAuthProvider interface {
	Name() identity.Provider
	AuthCodeURL(state string) string
	// Exchange trades the callback code for the user's profile
	Exchange(ctx context.Context, code string) (identity.Profile, error)
}

// OAuthProviders holds the providers with credentials configured
type OAuthProviders map[identity.Provider]OAuthProvider

// Get returns the named provider, ErrNotFound when unknown or unconfigured
func (p OAuthProviders) Get(name string) (OAuthProvider, error) {
	provider, ok := p[identity.Provider(strings.ToLower(name))]
	if !ok {
		return nil, shared.ErrNotFound.WithMessage("unknown sign-in provider")
	}
	return provider, nil
}

// NewOAuthProviders builds the GitHub and Google providers that have a client ID
func NewOAuthProviders(cfg config.OAuthConfig) OAuthProviders {
	providers := OAuthProviders{}
	base := strings.TrimRight(cfg.RedirectBaseURL, "/")

	if cfg.GitHubClientID != "" {
		providers[identity.ProviderGitHub] = &oauthProvider{
			name: identity.ProviderGitHub,
			config: &oauth2.Config{
				ClientID:     cfg.GitHubClientID,
				ClientSecret: cfg.GitHubClientSecret,
				Endpoint:     github.Endpoint,
				RedirectURL:  base + "/github/callback",
				Scopes:       []string{"read:user", "user:email"},
			},
			fetch: fetchGitHubProfile(GitHubUserURL, GitHubEmailsURL),
		}
	}
	if cfg.GoogleClientID != "" {
		providers[identity.ProviderGoogle] = &oauthProvider{
			name: identity.ProviderGoogle,
			config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				RedirectURL:  base + "/google/callback",
				Scopes:       []string{"openid", "email", "profile"},
			},
			fetch: fetchGoogleProfile(GoogleUserURL),
		}
	}
	return providers
}

type profileFetcher func(ctx context.Context, client *http.Client) (identity.Profile, error)

type oauthProvider struct {
	name   identity.Provider
	config *oauth2.Config
	fetch  profileFetcher
}

func (p *oauthProvider) Name() identity.Provider {
	return p.name
}

func (p *oauthProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *oauthProvider) Exchange(ctx context.Context, code string) (identity.Profile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return identity.Profile{}, shared.ErrUnauthorized.WithMessage(fmt.Sprintf("%s sign-in failed", p.name))
	}
	profile, err := p.fetch(ctx, p.config.Client(ctx, token))
	if err != nil {
		return identity.Profile{}, err
	}
	if profile.ProviderUserID == "" {
		return identity.Profile{}, shared.ErrVendor.WithMessage(fmt.Sprintf("%s returned no user id", p.name))
	}
	return profile, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return shared.ErrVendor.WithMessage("identity provider unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return shared.ErrVendor.WithMessage(fmt.Sprintf("identity provider returned %d", resp.StatusCode))
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return shared.ErrVendor.WithMessage("identity provider returned an invalid profile")
	}
	return nil
}

func fetchGitHubProfile(userURL, emailsURL string) profileFetcher {
	return func(ctx context.Context, client *http.Client) (identity.Profile, error) {
		var user struct {
			ID        int64  `json:"id"`
			Login     string `json:"login"`
			Name      string `json:"name"`
			Email     string `json:"email"`
			AvatarURL string `json:"avatar_url"`
		}
		if err := getJSON(ctx, client, userURL, &user); err != nil {
			return identity.Profile{}, err
		}

		profile := identity.Profile{
			Email:     user.Email,
			Name:      user.Name,
			AvatarURL: user.AvatarURL,
		}
		if user.ID != 0 {
			profile.ProviderUserID = strconv.FormatInt(user.ID, 10)
		}
		if profile.Name == "" {
			profile.Name = user.Login
		}

		// private emails are only listed on the emails endpoint
		if profile.Email == "" {
			var emails []struct {
				Email    string `json:"email"`
				Primary  bool   `json:"primary"`
				Verified bool   `json:"verified"`
			}
			if err := getJSON(ctx, client, emailsURL, &emails); err == nil {
				for _, e := range emails {
					if e.Primary && e.Verified {
						profile.Email = e.Email
						break
					}
				}
			}
		}
		return profile, nil
	}
}

func fetchGoogleProfile(userURL string) profileFetcher {
	return func(ctx context.Context, client *http.Client) (identity.Profile, error) {
		var user struct {
			Sub           string `json:"sub"`
			Email         string `json:"email"`
			EmailVerified bool   `json:"email_verified"`
			Name          string `json:"name"`
			Picture       string `json:"picture"`
		}
		if err := getJSON(ctx, client, userURL, &user); err != nil {
			return identity.Profile{}, err
		}
		profile := identity.Profile{
			ProviderUserID: user.Sub,
			Name:           user.Name,
			AvatarURL:      user.Picture,
		}
		if user.EmailVerified {
			profile.Email = user.Email
		}
		return profile, nil
	}
}
