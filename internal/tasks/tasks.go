// package tasks implements long-running library operations.
//
// The core type is Engine, which orchestrates full-library dumps, offline
// cache synchronization, bulk uploads and playlist exports on top of the
// media gateway. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/dmchugh/medlib/internal/models"
	"github.com/dmchugh/medlib/internal/services"
	"github.com/dmchugh/medlib/internal/shared"
)

// dumpPageSize is the page size used when walking the whole library.
const dumpPageSize = 100

// DumpResult contains everything fetched by a full-library dump.
type DumpResult struct {
	Version    *models.VersionInfo   `json:"version,omitempty"`
	Categories []models.CategoryInfo `json:"categories,omitempty"`
	Entries    []models.MediaEntry   `json:"entries,omitempty"`
	Playlists  []models.Playlist     `json:"playlists,omitempty"`
	Errors     []EndpointResult      `json:"errors,omitempty"`
}

// EndpointResult records a failed fetch during a dump. Endpoint failures are
// collected rather than aborting so a partial dump is still useful.
type EndpointResult struct {
	Endpoint string `json:"endpoint"`
	Error    string `json:"error"`
}

// SyncResult summarizes an offline cache refresh.
type SyncResult struct {
	Entries        int   `json:"entries"`
	Playlists      int   `json:"playlists"`
	PrunedEntries  int64 `json:"pruned_entries"`
	PrunedLists    int64 `json:"pruned_playlists"`
	DurationMillis int64 `json:"duration_ms"`
}

// MediaCacher is the slice of the cache layer the engine writes entries to.
type MediaCacher interface {
	Upsert(entries []models.MediaEntry, syncedAt time.Time) error
	PruneBefore(cutoff time.Time) (int64, error)
}

// PlaylistCacher is the slice of the cache layer the engine writes playlists to.
type PlaylistCacher interface {
	Upsert(playlists []models.Playlist, syncedAt time.Time) error
	PruneBefore(cutoff time.Time) (int64, error)
}

// Engine orchestrates long-running operations against the media gateway.
type Engine struct {
	media services.MediaGateway
}

// NewEngine creates an Engine backed by the given gateway.
func NewEngine(media services.MediaGateway) *Engine {
	return &Engine{media: media}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// fetchAllEntries walks the paginated listing until the last page.
func (e *Engine) fetchAllEntries(ctx context.Context, progress chan<- ProgressUpdate) ([]models.MediaEntry, error) {
	var entries []models.MediaEntry

	page := 1
	for {
		result, err := e.media.ListMedia(ctx, services.ListParams{Page: page, PageSize: dumpPageSize})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch library page %d: %w", page, err)
		}

		entries = append(entries, result.Items...)
		e.sendProgress(progress, fetchPageUpdate(result.Page, result.TotalPages, len(entries)))

		if result.Page >= result.TotalPages || len(result.Items) == 0 {
			return entries, nil
		}
		page = result.Page + 1
	}
}

// fetchAllPlaylists retrieves the playlist list and expands each playlist's
// items.
func (e *Engine) fetchAllPlaylists(ctx context.Context, progress chan<- ProgressUpdate) ([]models.Playlist, []EndpointResult) {
	playlists, err := e.media.Playlists(ctx)
	if err != nil {
		return nil, []EndpointResult{{Endpoint: "playlists", Error: err.Error()}}
	}

	var errs []EndpointResult
	for i := range playlists {
		e.sendProgress(progress, endpointUpdate(FetchPlaylists, i+1, len(playlists),
			fmt.Sprintf("Fetching playlist %q...", playlists[i].Name)))

		full, err := e.media.Playlist(ctx, playlists[i].ID)
		if err != nil {
			errs = append(errs, EndpointResult{
				Endpoint: "playlists/" + playlists[i].ID,
				Error:    err.Error(),
			})
			continue
		}
		playlists[i] = *full
	}
	return playlists, errs
}

// Dump fetches the whole remote library: server version, category summary,
// every listing page and every playlist with items. Individual endpoint
// failures are collected in the result instead of aborting the dump.
func (e *Engine) Dump(ctx context.Context, progress chan<- ProgressUpdate) (*DumpResult, error) {
	if e.media == nil {
		return nil, fmt.Errorf("%w: media gateway not initialized", shared.ErrServiceUnavailable)
	}

	result := &DumpResult{}

	e.sendProgress(progress, endpointUpdate(FetchVersion, 1, 4, "Fetching server version..."))
	if version, err := e.media.Version(ctx); err != nil {
		result.Errors = append(result.Errors, EndpointResult{Endpoint: "version", Error: err.Error()})
	} else {
		result.Version = version
	}

	e.sendProgress(progress, endpointUpdate(FetchCategories, 2, 4, "Fetching categories..."))
	if categories, err := e.media.Categories(ctx); err != nil {
		result.Errors = append(result.Errors, EndpointResult{Endpoint: "media/categories", Error: err.Error()})
	} else {
		result.Categories = categories
	}

	e.sendProgress(progress, endpointUpdate(FetchLibrary, 3, 4, "Fetching library..."))
	if entries, err := e.fetchAllEntries(ctx, progress); err != nil {
		result.Errors = append(result.Errors, EndpointResult{Endpoint: "media", Error: err.Error()})
	} else {
		result.Entries = entries
	}

	e.sendProgress(progress, endpointUpdate(FetchPlaylists, 4, 4, "Fetching playlists..."))
	playlists, errs := e.fetchAllPlaylists(ctx, progress)
	result.Playlists = playlists
	result.Errors = append(result.Errors, errs...)

	return result, nil
}

// Sync refreshes the offline cache from the server: every listing page and
// every playlist is written, then rows untouched by this sync are pruned.
func (e *Engine) Sync(ctx context.Context, progress chan<- ProgressUpdate, media MediaCacher, playlists PlaylistCacher) (*SyncResult, error) {
	if e.media == nil {
		return nil, fmt.Errorf("%w: media gateway not initialized", shared.ErrServiceUnavailable)
	}

	start := time.Now()
	result := &SyncResult{}

	e.sendProgress(progress, syncCacheUpdate(1, 3, "Fetching library..."))
	entries, err := e.fetchAllEntries(ctx, progress)
	if err != nil {
		return nil, err
	}
	if err := media.Upsert(entries, start); err != nil {
		return nil, fmt.Errorf("failed to cache library entries: %w", err)
	}
	result.Entries = len(entries)

	e.sendProgress(progress, syncCacheUpdate(2, 3, "Fetching playlists..."))
	lists, errs := e.fetchAllPlaylists(ctx, progress)
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrAPIRequest, errs[0].Error)
	}
	if err := playlists.Upsert(lists, start); err != nil {
		return nil, fmt.Errorf("failed to cache playlists: %w", err)
	}
	result.Playlists = len(lists)

	e.sendProgress(progress, syncCacheUpdate(3, 3, "Pruning stale rows..."))
	if result.PrunedEntries, err = media.PruneBefore(start); err != nil {
		return nil, err
	}
	if result.PrunedLists, err = playlists.PruneBefore(start); err != nil {
		return nil, err
	}

	result.DurationMillis = time.Since(start).Milliseconds()
	return result, nil
}
