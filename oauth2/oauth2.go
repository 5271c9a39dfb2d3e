package oauth2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/quillhq/quill/config"
	"golang.org/x/oauth2"
)

// tokenExchangeTimeout bounds the whole provider round trip so an
// unresponsive provider cannot hang the login request.
const tokenExchangeTimeout = 10 * time.Second

var (
	// ErrTokenExchangeFailed is returned when the authorization code cannot
	// be exchanged for a provider token.
	ErrTokenExchangeFailed = errors.New("oauth2 token exchange failed")
	// ErrUserInfoFailed is returned when the provider user info cannot be
	// fetched or decoded.
	ErrUserInfoFailed = errors.New("oauth2 user info fetch failed")
)

// Profile is the provider-independent view of an authenticated OAuth2 user.
// Email may be empty when the provider exposes none; callers decide whether
// that is fatal.
type Profile struct {
	Provider       string
	ProviderUserID string
	Email          string
	Username       string
	Name           string
	AvatarURL      string
	// RawToken is the provider token serialized as JSON. It is stored on the
	// identity link and refreshed on every login.
	RawToken string
}

// Fetcher exchanges authorization codes and normalizes provider user info
// into Profiles.
type Fetcher struct{}

func NewFetcher() *Fetcher {
	return &Fetcher{}
}

// Fetch runs the provider side of the login: code exchange, user info fetch
// and per-provider normalization.
func (f *Fetcher) Fetch(ctx context.Context, provider config.OAuth2Provider, code, codeVerifier, redirectURI string) (*Profile, error) {
	oauth2Config := oauth2.Config{
		ClientID:     provider.ClientID,
		ClientSecret: provider.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       provider.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  provider.AuthURL,
			TokenURL: provider.TokenURL,
		},
	}

	ctx, cancel := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancel()

	var opts []oauth2.AuthCodeOption
	if codeVerifier != "" {
		opts = append(opts, oauth2.SetAuthURLParam("code_verifier", codeVerifier))
	}
	token, err := oauth2Config.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenExchangeFailed, err)
	}

	client := oauth2Config.Client(ctx, token)

	var profile *Profile
	switch provider.Name {
	case config.OAuth2ProviderGitHub:
		profile, err = fetchGitHubProfile(client, provider)
	case config.OAuth2ProviderGoogle:
		profile, err = fetchGoogleProfile(client, provider)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrUserInfoFailed, provider.Name)
	}
	if err != nil {
		return nil, err
	}

	rawToken, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUserInfoFailed, err)
	}
	profile.Provider = provider.Name
	profile.RawToken = string(rawToken)
	return profile, nil
}

func getJSON(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUserInfoFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %d: %s", ErrUserInfoFailed, url, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrUserInfoFailed, err)
	}
	return nil
}

func fetchGitHubProfile(client *http.Client, provider config.OAuth2Provider) (*Profile, error) {
	var info struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(client, provider.UserInfoURL, &info); err != nil {
		return nil, err
	}

	email := info.Email
	// The public profile email is often hidden. The emails endpoint lists
	// all addresses; prefer the primary verified one, fall back to any
	// verified address.
	if email == "" && provider.EmailsURL != "" {
		if found, err := fetchGitHubEmail(client, provider.EmailsURL); err == nil {
			email = found
		}
	}

	return &Profile{
		ProviderUserID: strconv.FormatInt(info.ID, 10),
		Email:          email,
		Username:       info.Login,
		Name:           info.Name,
		AvatarURL:      info.AvatarURL,
	}, nil
}

func fetchGitHubEmail(client *http.Client, emailsURL string) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(client, emailsURL, &emails); err != nil {
		return "", err
	}

	var fallback string
	for _, e := range emails {
		if !e.Verified {
			continue
		}
		if e.Primary {
			return e.Email, nil
		}
		if fallback == "" {
			fallback = e.Email
		}
	}
	return fallback, nil
}

func fetchGoogleProfile(client *http.Client, provider config.OAuth2Provider) (*Profile, error) {
	var info struct {
		Sub     string `json:"sub"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := getJSON(client, provider.UserInfoURL, &info); err != nil {
		return nil, err
	}

	// Google has no username concept; suggest the local part of the email.
	username := ""
	if at := strings.Index(info.Email, "@"); at > 0 {
		username = info.Email[:at]
	}

	return &Profile{
		ProviderUserID: info.Sub,
		Email:          info.Email,
		Username:       username,
		Name:           info.Name,
		AvatarURL:      info.Picture,
	}, nil
}
