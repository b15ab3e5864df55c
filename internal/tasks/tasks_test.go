package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmchugh/medlib/internal/models"
	"github.com/dmchugh/medlib/internal/services"
	"github.com/dmchugh/medlib/internal/shared"
	libtest "github.com/dmchugh/medlib/internal/testing"
)

func pagedListFunc(totalEntries, pageSize int) func(ctx context.Context, params services.ListParams) (*models.SearchPage, error) {
	return func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
		totalPages := (totalEntries + pageSize - 1) / pageSize
		if totalPages < 1 {
			totalPages = 1
		}
		start := (params.Page - 1) * pageSize
		count := totalEntries - start
		if count > pageSize {
			count = pageSize
		}
		if count < 0 {
			count = 0
		}
		items := make([]models.MediaEntry, count)
		for i := range items {
			items[i] = models.MediaEntry{
				ID:        fmt.Sprintf("m-%d", start+i),
				Filename:  fmt.Sprintf("file-%d.mp4", start+i),
				MediaType: models.MediaTypeVideo,
				CreatedAt: time.Now(),
			}
		}
		return &models.SearchPage{
			Items:      items,
			Total:      totalEntries,
			Page:       params.Page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		}, nil
	}
}

func TestEngineDump(t *testing.T) {
	ctx := context.Background()

	t.Run("collects all endpoints", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			VersionFunc: func(context.Context) (*models.VersionInfo, error) {
				return &models.VersionInfo{Version: "1.4.0"}, nil
			},
			CategoriesFunc: func(context.Context) ([]models.CategoryInfo, error) {
				return []models.CategoryInfo{{Name: "video", Count: 250}}, nil
			},
			ListMediaFunc: pagedListFunc(250, 100),
			PlaylistsFunc: func(context.Context) ([]models.Playlist, error) {
				return []models.Playlist{{ID: "p-1", Name: "Favorites"}}, nil
			},
			PlaylistFunc: func(_ context.Context, id string) (*models.Playlist, error) {
				return &models.Playlist{
					ID:   id,
					Name: "Favorites",
					Items: []models.PlaylistItem{
						{MediaID: "m-1", Position: 0},
					},
				}, nil
			},
		}
		engine := NewEngine(gateway)

		result, err := engine.Dump(ctx, nil)
		if err != nil {
			t.Fatalf("Dump failed: %v", err)
		}

		if result.Version == nil || result.Version.Version != "1.4.0" {
			t.Errorf("unexpected version: %+v", result.Version)
		}
		if len(result.Categories) != 1 {
			t.Errorf("expected 1 category, got %d", len(result.Categories))
		}
		if len(result.Entries) != 250 {
			t.Errorf("expected all pages walked (250 entries), got %d", len(result.Entries))
		}
		if len(result.Playlists) != 1 || len(result.Playlists[0].Items) != 1 {
			t.Errorf("expected expanded playlists, got %+v", result.Playlists)
		}
		if len(result.Errors) != 0 {
			t.Errorf("expected no errors, got %+v", result.Errors)
		}
	})

	t.Run("endpoint failures are collected, not fatal", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			VersionFunc: func(context.Context) (*models.VersionInfo, error) {
				return nil, shared.ErrAPIRequest
			},
			ListMediaFunc: pagedListFunc(5, 100),
			PlaylistsFunc: func(context.Context) ([]models.Playlist, error) {
				return nil, nil
			},
		}
		engine := NewEngine(gateway)

		result, err := engine.Dump(ctx, nil)
		if err != nil {
			t.Fatalf("Dump failed: %v", err)
		}
		if len(result.Errors) != 1 || result.Errors[0].Endpoint != "version" {
			t.Errorf("expected one version error, got %+v", result.Errors)
		}
		if len(result.Entries) != 5 {
			t.Errorf("remaining endpoints should still be fetched, got %d entries", len(result.Entries))
		}
	})

	t.Run("emits progress without blocking", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: pagedListFunc(250, 100),
			PlaylistsFunc: func(context.Context) ([]models.Playlist, error) {
				return nil, nil
			},
		}
		engine := NewEngine(gateway)

		// Unbuffered channel that nobody reads: sends must be dropped, not
		// deadlock.
		progress := make(chan ProgressUpdate)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if _, err := engine.Dump(ctx, progress); err != nil {
				t.Errorf("Dump failed: %v", err)
			}
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("Dump blocked on progress channel")
		}
	})

	t.Run("nil gateway", func(t *testing.T) {
		engine := NewEngine(nil)
		if _, err := engine.Dump(ctx, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Fatalf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

type fakeMediaCacher struct {
	mu      sync.Mutex
	entries []models.MediaEntry
	pruned  int64
}

func (f *fakeMediaCacher) Upsert(entries []models.MediaEntry, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeMediaCacher) PruneBefore(time.Time) (int64, error) {
	return f.pruned, nil
}

type fakePlaylistCacher struct {
	playlists []models.Playlist
}

func (f *fakePlaylistCacher) Upsert(playlists []models.Playlist, _ time.Time) error {
	f.playlists = append(f.playlists, playlists...)
	return nil
}

func (f *fakePlaylistCacher) PruneBefore(time.Time) (int64, error) {
	return 0, nil
}

func TestEngineSync(t *testing.T) {
	ctx := context.Background()

	t.Run("writes entries and playlists then prunes", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: pagedListFunc(42, 100),
			PlaylistsFunc: func(context.Context) ([]models.Playlist, error) {
				return []models.Playlist{{ID: "p-1", Name: "Favorites"}}, nil
			},
			PlaylistFunc: func(_ context.Context, id string) (*models.Playlist, error) {
				return &models.Playlist{ID: id, Name: "Favorites"}, nil
			},
		}
		engine := NewEngine(gateway)
		media := &fakeMediaCacher{pruned: 3}
		playlists := &fakePlaylistCacher{}

		result, err := engine.Sync(ctx, nil, media, playlists)
		if err != nil {
			t.Fatalf("Sync failed: %v", err)
		}

		if result.Entries != 42 || len(media.entries) != 42 {
			t.Errorf("expected 42 cached entries, got result=%d cached=%d", result.Entries, len(media.entries))
		}
		if result.Playlists != 1 || len(playlists.playlists) != 1 {
			t.Errorf("expected 1 cached playlist, got result=%d cached=%d", result.Playlists, len(playlists.playlists))
		}
		if result.PrunedEntries != 3 {
			t.Errorf("expected prune count surfaced, got %d", result.PrunedEntries)
		}
	})

	t.Run("listing failure aborts", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(context.Context, services.ListParams) (*models.SearchPage, error) {
				return nil, shared.ErrAPIRequest
			},
		}
		engine := NewEngine(gateway)

		if _, err := engine.Sync(ctx, nil, &fakeMediaCacher{}, &fakePlaylistCacher{}); !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
	})
}
