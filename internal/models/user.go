package models

import "time"

// UserProfile represents the authenticated principal as reported by the
// server. It is treated as an opaque externally-sourced record; local updates
// happen only through shallow merges of server responses.
type UserProfile struct {
	ID          string           `json:"id"`
	Username    string           `json:"username"`
	Email       string           `json:"email"`
	FullName    string           `json:"full_name,omitempty"`
	IsActive    bool             `json:"is_active"`
	IsSuperuser bool             `json:"is_superuser"`
	AvatarURL   string           `json:"avatar_url,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   *time.Time       `json:"updated_at,omitempty"`
	LastLogin   *time.Time       `json:"last_login,omitempty"`
	Preferences *UserPreferences `json:"preferences,omitempty"`
}

// UserPatch is a partial profile; nil fields were absent from the payload.
type UserPatch struct {
	Username    *string          `json:"username,omitempty"`
	Email       *string          `json:"email,omitempty"`
	FullName    *string          `json:"full_name,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
	IsSuperuser *bool            `json:"is_superuser,omitempty"`
	AvatarURL   *string          `json:"avatar_url,omitempty"`
	UpdatedAt   *time.Time       `json:"updated_at,omitempty"`
	LastLogin   *time.Time       `json:"last_login,omitempty"`
	Preferences *UserPreferences `json:"preferences,omitempty"`
}

// Apply shallow-merges the patch into the profile. Fields present in the
// patch win; fields the server did not echo back are preserved.
func (p UserPatch) Apply(u UserProfile) UserProfile {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.IsSuperuser != nil {
		u.IsSuperuser = *p.IsSuperuser
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.UpdatedAt != nil {
		u.UpdatedAt = p.UpdatedAt
	}
	if p.LastLogin != nil {
		u.LastLogin = p.LastLogin
	}
	if p.Preferences != nil {
		u.Preferences = p.Preferences
	}
	return u
}

// RegisterData is the payload for account creation.
type RegisterData struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// TokenResponse is the credential exchange response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

// UserPreferences holds per-user display settings.
type UserPreferences struct {
	Theme          string        `json:"theme"`
	Layout         string        `json:"layout"`
	ItemsPerPage   int           `json:"items_per_page"`
	AutoScan       bool          `json:"auto_scan"`
	ShowThumbnails bool          `json:"show_thumbnails"`
	ColorPalette   *ColorPalette `json:"color_palette,omitempty"`
}

// PreferencesPatch is a partial preferences update; nil fields were absent.
type PreferencesPatch struct {
	Theme          *string       `json:"theme,omitempty"`
	Layout         *string       `json:"layout,omitempty"`
	ItemsPerPage   *int          `json:"items_per_page,omitempty"`
	AutoScan       *bool         `json:"auto_scan,omitempty"`
	ShowThumbnails *bool         `json:"show_thumbnails,omitempty"`
	ColorPalette   *ColorPalette `json:"color_palette,omitempty"`
}

// Apply shallow-merges the patch into existing preferences with the same
// precedence rule as [UserPatch.Apply].
func (p PreferencesPatch) Apply(prefs UserPreferences) UserPreferences {
	if p.Theme != nil {
		prefs.Theme = *p.Theme
	}
	if p.Layout != nil {
		prefs.Layout = *p.Layout
	}
	if p.ItemsPerPage != nil {
		prefs.ItemsPerPage = *p.ItemsPerPage
	}
	if p.AutoScan != nil {
		prefs.AutoScan = *p.AutoScan
	}
	if p.ShowThumbnails != nil {
		prefs.ShowThumbnails = *p.ShowThumbnails
	}
	if p.ColorPalette != nil {
		prefs.ColorPalette = p.ColorPalette
	}
	return prefs
}

// ColorPalette is a named set of UI colors offered by the server.
type ColorPalette struct {
	Name          string `json:"name,omitempty"`
	Primary       string `json:"primary"`
	Secondary     string `json:"secondary"`
	Accent        string `json:"accent"`
	Background    string `json:"background"`
	Surface       string `json:"surface"`
	Text          string `json:"text"`
	TextSecondary string `json:"text_secondary"`
	Border        string `json:"border"`
	Success       string `json:"success"`
	Warning       string `json:"warning"`
	Error         string `json:"error"`
}
