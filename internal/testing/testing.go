// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/dmchugh/medlib/internal/models"
	"github.com/dmchugh/medlib/internal/services"
)

// MockAuthGateway is a function-field test double for [services.AuthGateway].
// Unset fields return zero values with no error.
type MockAuthGateway struct {
	LoginFunc             func(ctx context.Context, username, password string) (*models.TokenResponse, error)
	RegisterFunc          func(ctx context.Context, data models.RegisterData) (*models.UserProfile, error)
	CurrentUserFunc       func(ctx context.Context) (*models.UserProfile, error)
	UpdateProfileFunc     func(ctx context.Context, patch models.UserPatch) (*models.UserPatch, error)
	PreferencesFunc       func(ctx context.Context) (*models.UserPreferences, error)
	UpdatePreferencesFunc func(ctx context.Context, patch models.PreferencesPatch) (*models.PreferencesPatch, error)
	ColorPalettesFunc     func(ctx context.Context) ([]models.ColorPalette, error)
}

var _ services.AuthGateway = (*MockAuthGateway)(nil)

func (m *MockAuthGateway) Login(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password)
	}
	return &models.TokenResponse{AccessToken: "test-token", TokenType: "bearer"}, nil
}

func (m *MockAuthGateway) Register(ctx context.Context, data models.RegisterData) (*models.UserProfile, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, data)
	}
	return &models.UserProfile{Username: data.Username, Email: data.Email}, nil
}

func (m *MockAuthGateway) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx)
	}
	return &models.UserProfile{ID: "user-1", Username: "tester"}, nil
}

func (m *MockAuthGateway) UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.UserPatch, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, patch)
	}
	return &patch, nil
}

func (m *MockAuthGateway) Preferences(ctx context.Context) (*models.UserPreferences, error) {
	if m.PreferencesFunc != nil {
		return m.PreferencesFunc(ctx)
	}
	return &models.UserPreferences{}, nil
}

func (m *MockAuthGateway) UpdatePreferences(ctx context.Context, patch models.PreferencesPatch) (*models.PreferencesPatch, error) {
	if m.UpdatePreferencesFunc != nil {
		return m.UpdatePreferencesFunc(ctx, patch)
	}
	return &patch, nil
}

func (m *MockAuthGateway) ColorPalettes(ctx context.Context) ([]models.ColorPalette, error) {
	if m.ColorPalettesFunc != nil {
		return m.ColorPalettesFunc(ctx)
	}
	return nil, nil
}

// MockMediaGateway is a function-field test double for
// [services.MediaGateway]. Unset fields return zero values with no error.
type MockMediaGateway struct {
	ListMediaFunc          func(ctx context.Context, params services.ListParams) (*models.SearchPage, error)
	GetMediaFunc           func(ctx context.Context, id string) (*models.MediaEntry, error)
	CategoriesFunc         func(ctx context.Context) ([]models.CategoryInfo, error)
	TVSeriesFunc           func(ctx context.Context) ([]models.TVSeries, error)
	TVSeriesEpisodesFunc   func(ctx context.Context, seriesKey string, season int) ([]models.TVEpisode, error)
	ScanFunc               func(ctx context.Context, directory string) (*models.ScanResult, error)
	UploadFunc             func(ctx context.Context, path string) (*models.UploadResult, error)
	DeleteMediaFunc        func(ctx context.Context, id string) error
	StreamURLFunc          func(ctx context.Context, id string) (string, error)
	VersionFunc            func(ctx context.Context) (*models.VersionInfo, error)
	PlaylistsFunc          func(ctx context.Context) ([]models.Playlist, error)
	PlaylistFunc           func(ctx context.Context, id string) (*models.Playlist, error)
	CreatePlaylistFunc     func(ctx context.Context, data models.PlaylistCreate) (*models.Playlist, error)
	UpdatePlaylistFunc     func(ctx context.Context, id string, data models.PlaylistUpdate) (*models.Playlist, error)
	DeletePlaylistFunc     func(ctx context.Context, id string) error
	AddPlaylistItemFunc    func(ctx context.Context, playlistID string, item models.PlaylistItemAdd) error
	RemovePlaylistItemFunc func(ctx context.Context, playlistID, mediaID string) error
	PlaylistItemsFunc      func(ctx context.Context, playlistID string) ([]models.PlaylistItem, error)
}

var _ services.MediaGateway = (*MockMediaGateway)(nil)

func (m *MockMediaGateway) ListMedia(ctx context.Context, params services.ListParams) (*models.SearchPage, error) {
	if m.ListMediaFunc != nil {
		return m.ListMediaFunc(ctx, params)
	}
	return &models.SearchPage{Page: 1, PageSize: params.PageSize, TotalPages: 1}, nil
}

func (m *MockMediaGateway) GetMedia(ctx context.Context, id string) (*models.MediaEntry, error) {
	if m.GetMediaFunc != nil {
		return m.GetMediaFunc(ctx, id)
	}
	return &models.MediaEntry{ID: id}, nil
}

func (m *MockMediaGateway) Categories(ctx context.Context) ([]models.CategoryInfo, error) {
	if m.CategoriesFunc != nil {
		return m.CategoriesFunc(ctx)
	}
	return nil, nil
}

func (m *MockMediaGateway) TVSeries(ctx context.Context) ([]models.TVSeries, error) {
	if m.TVSeriesFunc != nil {
		return m.TVSeriesFunc(ctx)
	}
	return nil, nil
}

func (m *MockMediaGateway) TVSeriesEpisodes(ctx context.Context, seriesKey string, season int) ([]models.TVEpisode, error) {
	if m.TVSeriesEpisodesFunc != nil {
		return m.TVSeriesEpisodesFunc(ctx, seriesKey, season)
	}
	return nil, nil
}

func (m *MockMediaGateway) Scan(ctx context.Context, directory string) (*models.ScanResult, error) {
	if m.ScanFunc != nil {
		return m.ScanFunc(ctx, directory)
	}
	return &models.ScanResult{}, nil
}

func (m *MockMediaGateway) Upload(ctx context.Context, path string) (*models.UploadResult, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, path)
	}
	return &models.UploadResult{Status: "uploaded"}, nil
}

func (m *MockMediaGateway) DeleteMedia(ctx context.Context, id string) error {
	if m.DeleteMediaFunc != nil {
		return m.DeleteMediaFunc(ctx, id)
	}
	return nil
}

func (m *MockMediaGateway) StreamURL(ctx context.Context, id string) (string, error) {
	if m.StreamURLFunc != nil {
		return m.StreamURLFunc(ctx, id)
	}
	return "http://localhost:8000/stream/" + id, nil
}

func (m *MockMediaGateway) Version(ctx context.Context) (*models.VersionInfo, error) {
	if m.VersionFunc != nil {
		return m.VersionFunc(ctx)
	}
	return &models.VersionInfo{}, nil
}

func (m *MockMediaGateway) Playlists(ctx context.Context) ([]models.Playlist, error) {
	if m.PlaylistsFunc != nil {
		return m.PlaylistsFunc(ctx)
	}
	return nil, nil
}

func (m *MockMediaGateway) Playlist(ctx context.Context, id string) (*models.Playlist, error) {
	if m.PlaylistFunc != nil {
		return m.PlaylistFunc(ctx, id)
	}
	return &models.Playlist{ID: id}, nil
}

func (m *MockMediaGateway) CreatePlaylist(ctx context.Context, data models.PlaylistCreate) (*models.Playlist, error) {
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, data)
	}
	return &models.Playlist{Name: data.Name}, nil
}

func (m *MockMediaGateway) UpdatePlaylist(ctx context.Context, id string, data models.PlaylistUpdate) (*models.Playlist, error) {
	if m.UpdatePlaylistFunc != nil {
		return m.UpdatePlaylistFunc(ctx, id, data)
	}
	return &models.Playlist{ID: id}, nil
}

func (m *MockMediaGateway) DeletePlaylist(ctx context.Context, id string) error {
	if m.DeletePlaylistFunc != nil {
		return m.DeletePlaylistFunc(ctx, id)
	}
	return nil
}

func (m *MockMediaGateway) AddPlaylistItem(ctx context.Context, playlistID string, item models.PlaylistItemAdd) error {
	if m.AddPlaylistItemFunc != nil {
		return m.AddPlaylistItemFunc(ctx, playlistID, item)
	}
	return nil
}

func (m *MockMediaGateway) RemovePlaylistItem(ctx context.Context, playlistID, mediaID string) error {
	if m.RemovePlaylistItemFunc != nil {
		return m.RemovePlaylistItemFunc(ctx, playlistID, mediaID)
	}
	return nil
}

func (m *MockMediaGateway) PlaylistItems(ctx context.Context, playlistID string) ([]models.PlaylistItem, error) {
	if m.PlaylistItemsFunc != nil {
		return m.PlaylistItemsFunc(ctx, playlistID)
	}
	return nil, nil
}

// MemoryTokenStore is an in-memory [shared.TokenStore] for tests.
type MemoryTokenStore struct {
	TokenValue string
	LoadErr    error
	SaveErr    error
	ClearErr   error
	Saves      int
	Clears     int
}

func (s *MemoryTokenStore) Load() (string, error) {
	if s.LoadErr != nil {
		return "", s.LoadErr
	}
	return s.TokenValue, nil
}

func (s *MemoryTokenStore) Save(token string) error {
	s.Saves++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.TokenValue = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.Clears++
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.TokenValue = ""
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
