package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/quillhq/quill/crypto"
	"github.com/quillhq/quill/identity"
	"github.com/quillhq/quill/oauth2"
	xoauth2 "golang.org/x/oauth2"
)

// oauth2StateTTL is how long an issued state parameter stays redeemable.
const oauth2StateTTL = 10 * time.Minute

// OAuth2ProviderInfo contains the provider details needed for client-side OAuth2 flow
type OAuth2ProviderInfo struct {
	Name                string `json:"name"`
	DisplayName         string `json:"displayName"`
	State               string `json:"state"`
	AuthURL             string `json:"authURL"`
	RedirectURL         string `json:"redirectURL"`
	CodeVerifier        string `json:"codeVerifier,omitempty"`
	CodeChallenge       string `json:"codeChallenge,omitempty"`
	CodeChallengeMethod string `json:"codeChallengeMethod,omitempty"`
}

// OAuth2ProviderListData wraps the list of providers for standardized response
type OAuth2ProviderListData struct {
	Providers []OAuth2ProviderInfo `json:"providers"`
}

// AuthWithOAuth2Handler finishes an OAuth2 login: state check, code
// exchange, profile fetch, reconciliation, session token.
// Endpoint: POST /api/auth/oauth2
// Authenticated: No
// Allowed Mimetype: application/json
//
// OAuth2 logins bypass the verified-email gate: the provider vouches for
// the address.
func (a *App) AuthWithOAuth2Handler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Provider     string `json:"provider"`
		Code         string `json:"code"`
		State        string `json:"state"`
		CodeVerifier string `json:"code_verifier"`
		RedirectURI  string `json:"redirect_uri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.Provider == "" || req.Code == "" || req.State == "" || req.RedirectURI == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	// The state must have been issued by us for this provider, and is
	// consumed on first use.
	issuedFor, ok := a.states.Get(req.State)
	if !ok || issuedFor != req.Provider {
		writeJsonError(w, errorInvalidOAuth2State)
		return
	}
	a.states.Del(req.State)

	provider, ok := a.cfg.OAuth2Providers[req.Provider]
	if !ok {
		writeJsonError(w, errorInvalidOAuth2Provider)
		return
	}

	profile, err := a.profiles.Fetch(r.Context(), provider, req.Code, req.CodeVerifier, req.RedirectURI)
	if err != nil {
		a.Logger().Debug("oauth2 profile fetch failed", "provider", req.Provider, "error", err)
		switch {
		case errors.Is(err, oauth2.ErrTokenExchangeFailed):
			writeJsonError(w, errorOAuth2TokenExchangeFailed)
		default:
			writeJsonError(w, errorOAuth2UserInfoFailed)
		}
		return
	}

	user, err := a.reconciler.Reconcile(profile)
	if err != nil {
		if errors.Is(err, identity.ErrMissingEmail) {
			writeJsonError(w, errorOAuth2MissingEmail)
			return
		}
		a.Logger().Error("oauth2 reconciliation failed", "provider", req.Provider, "error", err)
		writeJsonError(w, errorOAuth2DatabaseError)
		return
	}

	token, expiresIn, err := a.issueAccessToken(user)
	if err != nil {
		writeJsonError(w, errorTokenGeneration)
		return
	}

	writeAuthResponse(w, token, expiresIn, user)
}

// ListOAuth2ProvidersHandler returns the configured OAuth2 providers with a
// fresh CSRF state each.
// Endpoint: GET /api/auth/oauth2-providers
// Authenticated: No
func (a *App) ListOAuth2ProvidersHandler(w http.ResponseWriter, r *http.Request) {
	var providers []OAuth2ProviderInfo

	for name, provider := range a.cfg.OAuth2Providers {
		state := crypto.Oauth2State()
		if !a.states.SetWithTTL(state, name, 1, oauth2StateTTL) {
			a.Logger().Error("failed to record oauth2 state", "provider", name)
			writeJsonError(w, errorServiceUnavailable)
			return
		}

		oauth2Config := xoauth2.Config{
			ClientID:     provider.ClientID,
			ClientSecret: provider.ClientSecret,
			RedirectURL:  provider.RedirectURL,
			Scopes:       provider.Scopes,
			Endpoint: xoauth2.Endpoint{
				AuthURL:  provider.AuthURL,
				TokenURL: provider.TokenURL,
			},
		}

		info := OAuth2ProviderInfo{
			Name:        name,
			DisplayName: provider.DisplayName,
			State:       state,
			RedirectURL: provider.RedirectURL,
		}

		if provider.PKCE {
			codeVerifier := crypto.Oauth2CodeVerifier()
			codeChallenge := crypto.S256Challenge(codeVerifier)
			info.AuthURL = oauth2Config.AuthCodeURL(state,
				xoauth2.SetAuthURLParam("code_challenge", codeChallenge),
				xoauth2.SetAuthURLParam("code_challenge_method", crypto.PKCECodeChallengeMethod),
			)
			info.CodeVerifier = codeVerifier
			info.CodeChallenge = codeChallenge
			info.CodeChallengeMethod = crypto.PKCECodeChallengeMethod
		} else {
			info.AuthURL = oauth2Config.AuthCodeURL(state)
		}

		providers = append(providers, info)
	}

	if len(providers) == 0 {
		writeJsonError(w, errorInvalidOAuth2Provider)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkOAuth2ProvidersList,
			Message: "OAuth2 providers list",
		},
		Data: OAuth2ProviderListData{Providers: providers},
	})
}
