// Auth gateway implementation of [AuthGateway]
//
// The server exposes an OAuth2 password-grant credential exchange, so Login
// rides on [oauth2.Config.PasswordCredentialsToken]; everything else is plain
// bearer-authenticated JSON.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmchugh/medlib/internal/models"
	"github.com/dmchugh/medlib/internal/shared"
	"golang.org/x/oauth2"
)

// AuthService implements [AuthGateway] against the remote server.
type AuthService struct {
	*Client
	oauth *oauth2.Config
}

var _ AuthGateway = (*AuthService)(nil)

// NewAuthService creates an auth gateway sharing the given client's
// connection and token slot.
func NewAuthService(client *Client) *AuthService {
	return &AuthService{
		Client: client,
		oauth: &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  client.BaseURL() + apiPrefix + "/auth/login",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// Login performs the password-grant credential exchange.
//
// The returned token is handed back to the caller; this gateway does not
// install it (the session manager owns token placement).
func (a *AuthService) Login(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	token, err := a.oauth.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			switch retrieveErr.Response.StatusCode {
			case http.StatusUnauthorized, http.StatusBadRequest, http.StatusForbidden:
				return nil, fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
			}
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return &models.TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	}, nil
}

// Register creates a new account. The new account is not logged in.
func (a *AuthService) Register(ctx context.Context, data models.RegisterData) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := a.doJSON(ctx, http.MethodPost, "/auth/register", nil, data, &user, nil); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser resolves the profile behind the installed token.
func (a *AuthService) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	if a.Token() == "" {
		return nil, shared.ErrNotAuthenticated
	}

	var user models.UserProfile
	if err := a.doJSON(ctx, http.MethodGet, "/auth/me", nil, nil, &user, nil); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a partial profile update. The response is decoded as
// a patch so absent fields stay distinguishable for the caller's merge.
func (a *AuthService) UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.UserPatch, error) {
	var echo models.UserPatch
	if err := a.doJSON(ctx, http.MethodPut, "/users/me", nil, patch, &echo, nil); err != nil {
		return nil, err
	}
	return &echo, nil
}

// Preferences fetches the current user's display preferences.
func (a *AuthService) Preferences(ctx context.Context) (*models.UserPreferences, error) {
	var prefs models.UserPreferences
	if err := a.doJSON(ctx, http.MethodGet, "/user/preferences", nil, nil, &prefs, nil); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// UpdatePreferences applies a partial preferences update.
func (a *AuthService) UpdatePreferences(ctx context.Context, patch models.PreferencesPatch) (*models.PreferencesPatch, error) {
	var echo models.PreferencesPatch
	if err := a.doJSON(ctx, http.MethodPut, "/user/preferences", nil, patch, &echo, nil); err != nil {
		return nil, err
	}
	return &echo, nil
}

// ColorPalettes lists the palettes offered by the server.
func (a *AuthService) ColorPalettes(ctx context.Context) ([]models.ColorPalette, error) {
	var resp struct {
		Palettes []models.ColorPalette `json:"palettes"`
	}
	if err := a.doJSON(ctx, http.MethodGet, "/user/preferences/color-palettes", nil, nil, &resp, nil); err != nil {
		return nil, err
	}
	return resp.Palettes, nil
}
