// package services defines gateway interfaces for the remote media library API
//
// Auth (credential exchange, profile, preferences) and Media (library,
// uploads, playlists, streaming)
package services

import (
	"context"

	"github.com/dmchugh/medlib/internal/models"
)

// AuthGateway is the remote authentication surface consumed by the session
// manager. Implementations perform plain pass-through HTTP calls; all session
// state lives in the caller.
type AuthGateway interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, username, password string) (*models.TokenResponse, error)

	// Register creates a new account. It does not log the account in.
	Register(ctx context.Context, data models.RegisterData) (*models.UserProfile, error)

	// CurrentUser resolves the profile behind the configured token.
	CurrentUser(ctx context.Context) (*models.UserProfile, error)

	// UpdateProfile applies a partial profile update and returns the
	// server's (possibly partial) echo.
	UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.UserPatch, error)

	// Preferences fetches the current user's display preferences.
	Preferences(ctx context.Context) (*models.UserPreferences, error)

	// UpdatePreferences applies a partial preferences update.
	UpdatePreferences(ctx context.Context, patch models.PreferencesPatch) (*models.PreferencesPatch, error)

	// ColorPalettes lists the palettes offered by the server.
	ColorPalettes(ctx context.Context) ([]models.ColorPalette, error)
}

// ListParams carries the query parameters of the paginated media list call.
// Filters hold flat key → value pairs (media_type, genre, year, sort_by,
// sort_order, search).
type ListParams struct {
	Page     int
	PageSize int
	Filters  map[string]string
}

// MediaGateway is the remote media library surface consumed by the library
// browser and the task engine.
type MediaGateway interface {
	// ListMedia performs the paginated, filterable list call.
	ListMedia(ctx context.Context, params ListParams) (*models.SearchPage, error)

	// GetMedia fetches a single entry by id.
	GetMedia(ctx context.Context, id string) (*models.MediaEntry, error)

	// Categories fetches the category summary.
	Categories(ctx context.Context) ([]models.CategoryInfo, error)

	// TVSeries fetches every TV show with its episodes grouped by season.
	TVSeries(ctx context.Context) ([]models.TVSeries, error)

	// TVSeriesEpisodes fetches the episodes of one series, optionally
	// narrowed to a single season (season 0 means all).
	TVSeriesEpisodes(ctx context.Context, seriesKey string, season int) ([]models.TVEpisode, error)

	// Scan triggers a server-side directory scan.
	Scan(ctx context.Context, directory string) (*models.ScanResult, error)

	// Upload sends a local file to the library.
	Upload(ctx context.Context, path string) (*models.UploadResult, error)

	// DeleteMedia removes an entry by id.
	DeleteMedia(ctx context.Context, id string) error

	// StreamURL resolves the playback URL for an entry.
	StreamURL(ctx context.Context, id string) (string, error)

	// Version reports the remote server build.
	Version(ctx context.Context) (*models.VersionInfo, error)

	// Playlist operations. Mutations return the server's record so callers
	// can patch local state without refetching the library.
	Playlists(ctx context.Context) ([]models.Playlist, error)
	Playlist(ctx context.Context, id string) (*models.Playlist, error)
	CreatePlaylist(ctx context.Context, data models.PlaylistCreate) (*models.Playlist, error)
	UpdatePlaylist(ctx context.Context, id string, data models.PlaylistUpdate) (*models.Playlist, error)
	DeletePlaylist(ctx context.Context, id string) error
	AddPlaylistItem(ctx context.Context, playlistID string, item models.PlaylistItemAdd) error
	RemovePlaylistItem(ctx context.Context, playlistID, mediaID string) error
	PlaylistItems(ctx context.Context, playlistID string) ([]models.PlaylistItem, error)
}
