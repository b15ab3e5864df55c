// Package library implements the client's media library state container.
//
// A single [Browser] holds the accumulated listing, the detail selection, the
// playlist list, pagination cursors and active filters. Remote calls go
// through a [services.MediaGateway]; results are applied to local state in
// the order responses arrive. The lock is held only while reading or writing
// fields, never across a network call.
package library

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dmchugh/medlib/internal/models"
	"github.com/dmchugh/medlib/internal/services"
	"github.com/dmchugh/medlib/internal/shared"
)

// DefaultPageSize is the page size used when a fetch does not specify one.
const DefaultPageSize = 20

// FetchParams selects the page and per-call filter overrides for a fetch.
// A zero Page means page 1. Filters are shallow-merged over the browser's
// stored filters for this call only; per-call values win.
type FetchParams struct {
	Page     int
	PageSize int
	Filters  map[string]string
}

// Browser is the library state container.
type Browser struct {
	gateway services.MediaGateway
	logger  *log.Logger

	mu           sync.Mutex
	items        []models.MediaEntry
	currentMedia *models.MediaEntry
	playlists    []models.Playlist
	page         int
	pageSize     int
	totalPages   int
	total        int
	query        string
	filters      map[string]string
	isLoading    bool
}

// NewBrowser creates a library browser backed by the given gateway.
func NewBrowser(gateway services.MediaGateway, logger *log.Logger) *Browser {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Browser{
		gateway:  gateway,
		logger:   logger,
		page:     1,
		pageSize: DefaultPageSize,
		filters:  map[string]string{},
	}
}

// Items returns a copy of the accumulated listing.
func (b *Browser) Items() []models.MediaEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.MediaEntry, len(b.items))
	copy(out, b.items)
	return out
}

// CurrentMedia returns a copy of the detail selection, or nil.
func (b *Browser) CurrentMedia() *models.MediaEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.currentMedia == nil {
		return nil
	}
	entry := *b.currentMedia
	return &entry
}

// Playlists returns a copy of the cached playlist list.
func (b *Browser) Playlists() []models.Playlist {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Playlist, len(b.playlists))
	copy(out, b.playlists)
	return out
}

// Page returns the current page cursor. Always at least 1.
func (b *Browser) Page() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page
}

// TotalPages returns the server-reported page count. Always at least 1.
func (b *Browser) TotalPages() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.totalPages < 1 {
		return 1
	}
	return b.totalPages
}

// Total returns the server-reported total entry count across all pages.
func (b *Browser) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// Query returns the stored search text.
func (b *Browser) Query() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// Filters returns a copy of the stored filters.
func (b *Browser) Filters() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]string, len(b.filters))
	for k, v := range b.filters {
		out[k] = v
	}
	return out
}

// IsLoading reports whether a listing fetch is in flight.
//
// Cooperative guard: LoadMore honors it, direct fetches do not.
func (b *Browser) IsLoading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isLoading
}

func (b *Browser) setLoading(v bool) {
	b.mu.Lock()
	b.isLoading = v
	b.mu.Unlock()
}

// effectiveFilters merges per-call overrides over the stored filters without
// mutating them. extra applies last.
func (b *Browser) effectiveFilters(overrides, extra map[string]string) map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()

	merged := make(map[string]string, len(b.filters)+len(overrides)+len(extra))
	for k, v := range b.filters {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// FetchPage retrieves one page of the listing. Page 1 (explicit or default)
// replaces the accumulated items; later pages append. Pagination cursors
// always reflect the server's response, clamped to at least 1.
func (b *Browser) FetchPage(ctx context.Context, params FetchParams) (*models.SearchPage, error) {
	return b.fetch(ctx, params, nil)
}

// Search stores the query text and fetches page 1 with it. params are
// one-shot filter overrides; neither they nor the query are written into the
// stored filters.
func (b *Browser) Search(ctx context.Context, query string, params FetchParams) (*models.SearchPage, error) {
	b.mu.Lock()
	b.query = query
	b.mu.Unlock()

	params.Page = 1
	return b.fetch(ctx, params, map[string]string{"search": query})
}

func (b *Browser) fetch(ctx context.Context, params FetchParams, extra map[string]string) (*models.SearchPage, error) {
	b.setLoading(true)
	return b.doFetch(ctx, params, extra)
}

// doFetch performs the list call. The caller must have set the loading flag;
// doFetch clears it on every exit path.
func (b *Browser) doFetch(ctx context.Context, params FetchParams, extra map[string]string) (*models.SearchPage, error) {
	defer b.setLoading(false)

	page := params.Page
	if page <= 0 {
		page = 1
	}
	size := params.PageSize
	if size <= 0 {
		b.mu.Lock()
		size = b.pageSize
		b.mu.Unlock()
	}

	result, err := b.gateway.ListMedia(ctx, services.ListParams{
		Page:     page,
		PageSize: size,
		Filters:  b.effectiveFilters(params.Filters, extra),
	})
	if err != nil {
		return nil, err
	}

	b.apply(page, size, result)
	return result, nil
}

// apply folds one page response into state. requested is the page the caller
// asked for; replace-vs-append is decided by it, cursors by the response.
func (b *Browser) apply(requested, size int, result *models.SearchPage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if requested == 1 {
		b.items = append([]models.MediaEntry(nil), result.Items...)
	} else {
		b.items = append(b.items, result.Items...)
	}

	b.page = result.Page
	if b.page < 1 {
		b.page = 1
	}
	b.totalPages = result.TotalPages
	if b.totalPages < 1 {
		b.totalPages = 1
	}
	b.total = result.Total
	if result.PageSize > 0 {
		b.pageSize = result.PageSize
	} else {
		b.pageSize = size
	}
}

// LoadMore appends the next page to the listing. It is a silent no-op while
// a fetch is in flight or when the last known page has been reached, so
// repeated triggers cannot double-advance or run past the end.
func (b *Browser) LoadMore(ctx context.Context) error {
	b.mu.Lock()
	if b.isLoading || (b.totalPages > 0 && b.page >= b.totalPages) {
		b.mu.Unlock()
		return nil
	}
	// Claim the loading flag before releasing the lock so a concurrent
	// LoadMore cannot slip past the guard and double-append.
	b.isLoading = true
	next := b.page + 1
	b.mu.Unlock()

	_, err := b.doFetch(ctx, FetchParams{Page: next}, nil)
	return err
}

// FetchOne retrieves a single entry and makes it the detail selection. The
// accumulated listing is not touched.
func (b *Browser) FetchOne(ctx context.Context, id string) (*models.MediaEntry, error) {
	entry, err := b.gateway.GetMedia(ctx, id)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.currentMedia = entry
	b.mu.Unlock()
	return entry, nil
}

// Upload sends a local file to the library and, on success, refetches page 1
// with the current filters so the new entry shows up in the listing.
func (b *Browser) Upload(ctx context.Context, path string) (*models.UploadResult, error) {
	b.setLoading(true)
	defer b.setLoading(false)

	result, err := b.gateway.Upload(ctx, path)
	if err != nil {
		return nil, err
	}

	if _, err := b.FetchPage(ctx, FetchParams{Page: 1}); err != nil {
		b.logger.Warn("upload succeeded but listing refresh failed", "error", err)
	}
	return result, nil
}

// DeleteEntry removes an entry on the server, then drops it from the local
// listing and clears the detail selection if it pointed at the same entry.
// No refetch.
func (b *Browser) DeleteEntry(ctx context.Context, id string) error {
	if err := b.gateway.DeleteMedia(ctx, id); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.items[:0]
	for _, entry := range b.items {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	b.items = kept
	if b.currentMedia != nil && b.currentMedia.ID == id {
		b.currentMedia = nil
	}
	return nil
}

// SetFilters merges the given keys into the stored filters. Existing keys
// not named are preserved; an empty value removes the key.
func (b *Browser) SetFilters(partial map[string]string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k, v := range partial {
		if v == "" {
			delete(b.filters, k)
			continue
		}
		b.filters[k] = v
	}
}

// ClearFilters resets the stored filters and the search text.
func (b *Browser) ClearFilters() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filters = map[string]string{}
	b.query = ""
}

// Categories fetches the category summary. Pass-through; no state changes.
func (b *Browser) Categories(ctx context.Context) ([]models.CategoryInfo, error) {
	return b.gateway.Categories(ctx)
}

// Series fetches the TV show overview. Pass-through; no state changes.
func (b *Browser) Series(ctx context.Context) ([]models.TVSeries, error) {
	return b.gateway.TVSeries(ctx)
}

// SeriesEpisodes fetches one show's episodes, optionally narrowed to a
// season (0 means all). Pass-through; no state changes.
func (b *Browser) SeriesEpisodes(ctx context.Context, seriesKey string, season int) ([]models.TVEpisode, error) {
	return b.gateway.TVSeriesEpisodes(ctx, seriesKey, season)
}

// Scan triggers a server-side directory scan and refetches page 1 so any
// newly indexed entries appear in the listing.
func (b *Browser) Scan(ctx context.Context, directory string) (*models.ScanResult, error) {
	result, err := b.gateway.Scan(ctx, directory)
	if err != nil {
		return nil, err
	}

	if _, err := b.FetchPage(ctx, FetchParams{Page: 1}); err != nil {
		b.logger.Warn("scan succeeded but listing refresh failed", "error", err)
	}
	return result, nil
}

// StreamURL resolves the playback URL for an entry. Pass-through.
func (b *Browser) StreamURL(ctx context.Context, id string) (string, error) {
	return b.gateway.StreamURL(ctx, id)
}

// RefreshPlaylists replaces the cached playlist list from the server.
func (b *Browser) RefreshPlaylists(ctx context.Context) ([]models.Playlist, error) {
	playlists, err := b.gateway.Playlists(ctx)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.playlists = playlists
	b.mu.Unlock()
	return playlists, nil
}

// FetchPlaylist retrieves one playlist with its items and folds it into the
// cached list, replacing any stale entry with the same id.
func (b *Browser) FetchPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	playlist, err := b.gateway.Playlist(ctx, id)
	if err != nil {
		return nil, err
	}

	b.replacePlaylist(*playlist)
	return playlist, nil
}

// CreatePlaylist creates a playlist and appends the server's record to the
// cached list.
func (b *Browser) CreatePlaylist(ctx context.Context, data models.PlaylistCreate) (*models.Playlist, error) {
	playlist, err := b.gateway.CreatePlaylist(ctx, data)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.playlists = append(b.playlists, *playlist)
	b.mu.Unlock()
	return playlist, nil
}

// UpdatePlaylist applies a partial playlist mutation and swaps the server's
// record into the cached list.
func (b *Browser) UpdatePlaylist(ctx context.Context, id string, data models.PlaylistUpdate) (*models.Playlist, error) {
	playlist, err := b.gateway.UpdatePlaylist(ctx, id, data)
	if err != nil {
		return nil, err
	}

	b.replacePlaylist(*playlist)
	return playlist, nil
}

// DeletePlaylist removes a playlist on the server and drops it from the
// cached list.
func (b *Browser) DeletePlaylist(ctx context.Context, id string) error {
	if err := b.gateway.DeletePlaylist(ctx, id); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.playlists[:0]
	for _, p := range b.playlists {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	b.playlists = kept
	return nil
}

// AddPlaylistItem appends a media reference to a playlist, then refreshes
// that one playlist's items so positions reflect the server's ordering. The
// rest of the cached state is untouched.
func (b *Browser) AddPlaylistItem(ctx context.Context, playlistID, mediaID string, position *int) error {
	item := models.PlaylistItemAdd{MediaID: mediaID, Position: position}
	if err := b.gateway.AddPlaylistItem(ctx, playlistID, item); err != nil {
		return err
	}

	items, err := b.gateway.PlaylistItems(ctx, playlistID)
	if err != nil {
		b.logger.Warn("added playlist item but item refresh failed", "playlist", playlistID, "error", err)
		return nil
	}
	b.setPlaylistItems(playlistID, items)
	return nil
}

// RemovePlaylistItem removes a media reference from a playlist, drops it from
// the cached items and renumbers the survivors so positions stay dense.
func (b *Browser) RemovePlaylistItem(ctx context.Context, playlistID, mediaID string) error {
	if err := b.gateway.RemovePlaylistItem(ctx, playlistID, mediaID); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.playlists {
		if b.playlists[i].ID != playlistID {
			continue
		}
		kept := b.playlists[i].Items[:0]
		for _, item := range b.playlists[i].Items {
			if item.MediaID != mediaID {
				kept = append(kept, item)
			}
		}
		for j := range kept {
			kept[j].Position = j
		}
		b.playlists[i].Items = kept
		break
	}
	return nil
}

// replacePlaylist swaps the server's record into the cached list, appending
// when the playlist is not cached yet.
func (b *Browser) replacePlaylist(playlist models.Playlist) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.playlists {
		if b.playlists[i].ID == playlist.ID {
			b.playlists[i] = playlist
			return
		}
	}
	b.playlists = append(b.playlists, playlist)
}

// setPlaylistItems swaps a playlist's cached items.
func (b *Browser) setPlaylistItems(playlistID string, items []models.PlaylistItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.playlists {
		if b.playlists[i].ID == playlistID {
			b.playlists[i].Items = items
			return
		}
	}
}

// FindEntry returns the listed entry with the given id, searching the
// accumulated items first and the detail selection second.
func (b *Browser) FindEntry(id string) (*models.MediaEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, entry := range b.items {
		if entry.ID == id {
			e := entry
			return &e, nil
		}
	}
	if b.currentMedia != nil && b.currentMedia.ID == id {
		e := *b.currentMedia
		return &e, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrMediaNotFound, id)
}

// Videos returns the listed entries of type video, in listing order.
func (b *Browser) Videos() []models.MediaEntry {
	return b.byType(models.MediaTypeVideo)
}

// Audio returns the listed entries of type audio, in listing order.
func (b *Browser) Audio() []models.MediaEntry {
	return b.byType(models.MediaTypeAudio)
}

// Images returns the listed entries of type image, in listing order.
func (b *Browser) Images() []models.MediaEntry {
	return b.byType(models.MediaTypeImage)
}

func (b *Browser) byType(mediaType string) []models.MediaEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.MediaEntry
	for _, entry := range b.items {
		if entry.MediaType == mediaType {
			out = append(out, entry)
		}
	}
	return out
}

// Recent returns the n most recently created listed entries, newest first.
// n <= 0 means the default of 20.
func (b *Browser) Recent(n int) []models.MediaEntry {
	if n <= 0 {
		n = 20
	}

	b.mu.Lock()
	sorted := make([]models.MediaEntry, len(b.items))
	copy(sorted, b.items)
	b.mu.Unlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
