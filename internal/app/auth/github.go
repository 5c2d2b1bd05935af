package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"voicenote/internal/app/model"
	"voicenote/internal/config"
)

const (
	githubProvider = "github"
	githubAPIURL   = "https://api.github.com"
)

// GitHub runs the OAuth2 authorization code flow against GitHub.
type GitHub struct {
	oauth  *oauth2.Config
	apiURL string
}

// NewGitHub creates the provider; redirects land on <publicBaseURL>/auth/github/callback.
func NewGitHub(cfg config.GitHubConfig, publicBaseURL string) *GitHub {
	return &GitHub{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     github.Endpoint,
			RedirectURL:  strings.TrimRight(publicBaseURL, "/") + "/auth/github/callback",
			Scopes:       []string{"read:user", "user:email"},
		},
		apiURL: githubAPIURL,
	}
}

// WithEndpoints points the provider at other OAuth and API hosts.
func (g *GitHub) WithEndpoints(endpoint oauth2.Endpoint, apiURL string) *GitHub {
	g.oauth.Endpoint = endpoint
	g.apiURL = strings.TrimRight(apiURL, "/")
	return g
}

// AuthCodeURL returns the GitHub consent URL for state.
func (g *GitHub) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Exchange trades code for a token and loads the GitHub profile.
func (g *GitHub) Exchange(ctx context.Context, code string) (model.User, model.Account, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return model.User{}, model.Account{}, fmt.Errorf("exchange code: %w", err)
	}

	client := g.oauth.Client(ctx, token)

	var profile githubUser
	if err := g.get(ctx, client, "/user", &profile); err != nil {
		return model.User{}, model.Account{}, err
	}

	email := profile.Email
	if email == "" {
		var emails []githubEmail
		if err := g.get(ctx, client, "/user/emails", &emails); err != nil {
			return model.User{}, model.Account{}, err
		}
		email = primaryEmail(emails)
	}
	if email == "" {
		return model.User{}, model.Account{}, fmt.Errorf("github account %d has no usable email", profile.ID)
	}

	user := model.User{Email: email}
	name := profile.Name
	if name == "" {
		name = profile.Login
	}
	if name != "" {
		user.Name = &name
	}
	if profile.AvatarURL != "" {
		image := profile.AvatarURL
		user.Image = &image
	}

	scope, _ := token.Extra("scope").(string)
	account := model.Account{
		Type:              "oauth",
		Provider:          githubProvider,
		ProviderAccountID: strconv.FormatInt(profile.ID, 10),
		AccessToken:       token.AccessToken,
		TokenType:         token.TokenType,
		Scope:             scope,
	}
	return user, account, nil
}

func (g *GitHub) get(ctx context.Context, client *http.Client, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL+path, nil)
	if err != nil {
		return fmt.Errorf("build github request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("github %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode github %s: %w", path, err)
	}
	return nil
}

func primaryEmail(emails []githubEmail) string {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email
		}
	}
	return ""
}
