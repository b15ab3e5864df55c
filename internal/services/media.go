// Media gateway implementation of [MediaGateway]
package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmchugh/medlib/internal/models"
	"github.com/dmchugh/medlib/internal/shared"
)

// MediaService implements [MediaGateway] against the remote server.
type MediaService struct {
	*Client
}

var _ MediaGateway = (*MediaService)(nil)

// NewMediaService creates a media gateway sharing the given client's
// connection and token slot.
func NewMediaService(client *Client) *MediaService {
	return &MediaService{Client: client}
}

// ListMedia performs the paginated, filterable list call.
//
// Page defaults to 1 and page size to 20; filters map one-to-one onto query
// parameters (search, media_type, genre, year, sort_by, sort_order).
func (m *MediaService) ListMedia(ctx context.Context, params ListParams) (*models.SearchPage, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = 20
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("page_size", strconv.Itoa(params.PageSize))
	for k, v := range params.Filters {
		if v != "" {
			query.Set(k, v)
		}
	}

	var page models.SearchPage
	if err := m.doJSON(ctx, http.MethodGet, "/media", query, nil, &page, nil); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetMedia fetches a single entry by id.
func (m *MediaService) GetMedia(ctx context.Context, id string) (*models.MediaEntry, error) {
	var entry models.MediaEntry
	if err := m.doJSON(ctx, http.MethodGet, "/media/"+url.PathEscape(id), nil, nil, &entry, shared.ErrMediaNotFound); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Categories fetches the category summary.
func (m *MediaService) Categories(ctx context.Context) ([]models.CategoryInfo, error) {
	var resp struct {
		Categories []models.CategoryInfo `json:"categories"`
	}
	if err := m.doJSON(ctx, http.MethodGet, "/media/categories", nil, nil, &resp, nil); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// TVSeries fetches every TV show with its episodes grouped by season.
func (m *MediaService) TVSeries(ctx context.Context) ([]models.TVSeries, error) {
	var resp struct {
		Series []models.TVSeries `json:"series"`
	}
	if err := m.doJSON(ctx, http.MethodGet, "/media/tv-series", nil, nil, &resp, nil); err != nil {
		return nil, err
	}
	return resp.Series, nil
}

// TVSeriesEpisodes fetches the episodes of one series, sorted by season and
// episode on the server. A positive season narrows the result.
func (m *MediaService) TVSeriesEpisodes(ctx context.Context, seriesKey string, season int) ([]models.TVEpisode, error) {
	var query url.Values
	if season > 0 {
		query = url.Values{}
		query.Set("season", strconv.Itoa(season))
	}

	var resp struct {
		Episodes []models.TVEpisode `json:"episodes"`
	}
	path := "/media/tv-series/" + url.PathEscape(seriesKey) + "/episodes"
	if err := m.doJSON(ctx, http.MethodGet, path, query, nil, &resp, shared.ErrMediaNotFound); err != nil {
		return nil, err
	}
	return resp.Episodes, nil
}

// Scan triggers a server-side directory scan.
func (m *MediaService) Scan(ctx context.Context, directory string) (*models.ScanResult, error) {
	body := map[string]string{"directory": directory}
	var result models.ScanResult
	if err := m.doJSON(ctx, http.MethodPost, "/media/scan", nil, body, &result, nil); err != nil {
		return nil, err
	}
	return &result, nil
}

// Upload sends a local file to the library as a multipart form.
func (m *MediaService) Upload(ctx context.Context, path string) (*models.UploadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		part, err := form.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(form.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL("/media/upload", nil), pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if token := m.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp, nil)
	}

	var result models.UploadResult
	if err := decodeJSON(resp.Body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteMedia removes an entry by id.
func (m *MediaService) DeleteMedia(ctx context.Context, id string) error {
	return m.doJSON(ctx, http.MethodDelete, "/media/"+url.PathEscape(id), nil, nil, nil, shared.ErrMediaNotFound)
}

// StreamURL resolves the playback URL for an entry.
//
// Relative URLs are resolved against the server base URL so callers can hand
// the result straight to a player.
func (m *MediaService) StreamURL(ctx context.Context, id string) (string, error) {
	var resp struct {
		StreamURL string `json:"stream_url"`
	}
	if err := m.doJSON(ctx, http.MethodGet, "/media/"+url.PathEscape(id)+"/stream", nil, nil, &resp, shared.ErrMediaNotFound); err != nil {
		return "", err
	}
	if resp.StreamURL == "" {
		return "", fmt.Errorf("%w: empty stream URL", shared.ErrAPIRequest)
	}

	u, err := url.Parse(resp.StreamURL)
	if err != nil {
		return "", fmt.Errorf("%w: bad stream URL: %v", shared.ErrAPIRequest, err)
	}
	if u.IsAbs() {
		return resp.StreamURL, nil
	}
	return m.BaseURL() + resp.StreamURL, nil
}

// Version reports the remote server build.
func (m *MediaService) Version(ctx context.Context) (*models.VersionInfo, error) {
	var info models.VersionInfo
	if err := m.doJSON(ctx, http.MethodGet, "/version", nil, nil, &info, nil); err != nil {
		return nil, err
	}
	return &info, nil
}

// Playlists retrieves the current user's playlists.
func (m *MediaService) Playlists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	if err := m.doJSON(ctx, http.MethodGet, "/playlists", nil, nil, &playlists, nil); err != nil {
		return nil, err
	}
	return playlists, nil
}

// Playlist retrieves a single playlist with its items.
func (m *MediaService) Playlist(ctx context.Context, id string) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := m.doJSON(ctx, http.MethodGet, "/playlists/"+url.PathEscape(id), nil, nil, &playlist, shared.ErrPlaylistNotFound); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// CreatePlaylist creates a playlist and returns the server's record.
func (m *MediaService) CreatePlaylist(ctx context.Context, data models.PlaylistCreate) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := m.doJSON(ctx, http.MethodPost, "/playlists", nil, data, &playlist, nil); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// UpdatePlaylist applies a partial playlist mutation.
func (m *MediaService) UpdatePlaylist(ctx context.Context, id string, data models.PlaylistUpdate) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := m.doJSON(ctx, http.MethodPut, "/playlists/"+url.PathEscape(id), nil, data, &playlist, shared.ErrPlaylistNotFound); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// DeletePlaylist removes a playlist by id.
func (m *MediaService) DeletePlaylist(ctx context.Context, id string) error {
	return m.doJSON(ctx, http.MethodDelete, "/playlists/"+url.PathEscape(id), nil, nil, nil, shared.ErrPlaylistNotFound)
}

// AddPlaylistItem appends a media reference to a playlist.
func (m *MediaService) AddPlaylistItem(ctx context.Context, playlistID string, item models.PlaylistItemAdd) error {
	return m.doJSON(ctx, http.MethodPost, "/playlists/"+url.PathEscape(playlistID)+"/items", nil, item, nil, shared.ErrPlaylistNotFound)
}

// RemovePlaylistItem removes a media reference from a playlist.
func (m *MediaService) RemovePlaylistItem(ctx context.Context, playlistID, mediaID string) error {
	path := "/playlists/" + url.PathEscape(playlistID) + "/items/" + url.PathEscape(mediaID)
	return m.doJSON(ctx, http.MethodDelete, path, nil, nil, nil, shared.ErrPlaylistNotFound)
}

// PlaylistItems lists the items of one playlist.
func (m *MediaService) PlaylistItems(ctx context.Context, playlistID string) ([]models.PlaylistItem, error) {
	var resp struct {
		Items []models.PlaylistItem `json:"items"`
	}
	if err := m.doJSON(ctx, http.MethodGet, "/playlists/"+url.PathEscape(playlistID)+"/items", nil, nil, &resp, shared.ErrPlaylistNotFound); err != nil {
		return nil, err
	}
	return resp.Items, nil
}
