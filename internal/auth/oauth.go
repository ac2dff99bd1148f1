// Package auth implements Google OAuth login and the in-memory sessions
// behind the session cookie.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"paperchat/internal/config"
)

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"
	userInfoURL    = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// GoogleUser is the identity returned by Google's userinfo endpoint.
type GoogleUser struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// OAuth drives the Google login flow: consent redirect, code exchange,
// profile fetch.
type OAuth struct {
	cfg         *oauth2.Config
	userInfoURL string
}

func NewOAuth(cfg config.Config) *OAuth {
	return &OAuth{
		cfg: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.ExternalURL + "/auth/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  googleAuthURL,
				TokenURL: googleTokenURL,
			},
		},
		userInfoURL: userInfoURL,
	}
}

// Configured reports whether Google client credentials are present.
func (o *OAuth) Configured() bool {
	return o.cfg.ClientID != "" && o.cfg.ClientSecret != ""
}

// LoginURL returns the Google consent-screen URL carrying the given
// anti-forgery state.
func (o *OAuth) LoginURL(state string) string {
	return o.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades a callback code for a token and fetches the user's
// Google profile with it.
func (o *OAuth) Exchange(ctx context.Context, code string) (GoogleUser, error) {
	tok, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		return GoogleUser{}, fmt.Errorf("exchange oauth code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.userInfoURL, http.NoBody)
	if err != nil {
		return GoogleUser{}, fmt.Errorf("create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return GoogleUser{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GoogleUser{}, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}
	var gu GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return GoogleUser{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if gu.Sub == "" {
		return GoogleUser{}, fmt.Errorf("userinfo response missing subject")
	}
	return gu, nil
}
