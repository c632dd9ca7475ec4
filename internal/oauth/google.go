// Package oauth completes social sign-in against upstream identity providers.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"shop-backend/internal/model"
)

const (
	ProviderGoogle = "google"

	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

var ErrEmailNotVerified = errors.New("provider email is not verified")

type googleUserInfo struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// Google runs the authorization-code flow and reads the OpenID userinfo.
type Google struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogle(clientID string, clientSecret string, redirectURL string) *Google {
	return &Google{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

// WithEndpoints overrides the provider URLs.
func (g *Google) WithEndpoints(endpoint oauth2.Endpoint, userInfoURL string) *Google {
	g.config.Endpoint = endpoint
	g.userInfoURL = userInfoURL
	return g
}

func (g *Google) Name() string {
	return ProviderGoogle
}

// NewState returns an unguessable value for the state parameter.
func (g *Google) NewState() string {
	return uuid.NewString()
}

func (g *Google) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the caller's profile.
func (g *Google) Exchange(ctx context.Context, code string) (*model.SocialProfile, error) {
	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.config.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	if strings.TrimSpace(info.Email) == "" || !info.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return &model.SocialProfile{
		Provider:  ProviderGoogle,
		Email:     info.Email,
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
		Picture:   info.Picture,
	}, nil
}
