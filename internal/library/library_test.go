package library

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmchugh/medlib/internal/models"
	"github.com/dmchugh/medlib/internal/services"
	"github.com/dmchugh/medlib/internal/shared"
	libtest "github.com/dmchugh/medlib/internal/testing"
)

// makePage builds a server response of count entries with page-scoped ids.
func makePage(page, pageSize, total, count int, mediaType string) (*models.SearchPage, error) {
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	items := make([]models.MediaEntry, count)
	for i := range items {
		items[i] = models.MediaEntry{
			ID:        fmt.Sprintf("m-%d-%d", page, i),
			Filename:  fmt.Sprintf("file-%d-%d.mp4", page, i),
			MediaType: mediaType,
			CreatedAt: time.Date(2025, 1, page, i, 0, 0, 0, time.UTC),
		}
	}
	return &models.SearchPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func TestBrowserFetchPage(t *testing.T) {
	ctx := context.Background()

	t.Run("page 1 replaces the listing", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				return makePage(params.Page, params.PageSize, 50, params.PageSize, models.MediaTypeVideo)
			},
		}
		b := NewBrowser(gateway, nil)

		if _, err := b.FetchPage(ctx, FetchParams{Page: 2}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}
		if _, err := b.FetchPage(ctx, FetchParams{Page: 1}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}

		items := b.Items()
		if len(items) != DefaultPageSize {
			t.Errorf("expected page 1 to replace listing, got %d items", len(items))
		}
		if b.Page() != 1 {
			t.Errorf("expected page cursor 1, got %d", b.Page())
		}
	})

	t.Run("later pages append in order", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				return makePage(params.Page, params.PageSize, 50, params.PageSize, models.MediaTypeVideo)
			},
		}
		b := NewBrowser(gateway, nil)

		if _, err := b.FetchPage(ctx, FetchParams{Page: 1}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}
		if _, err := b.FetchPage(ctx, FetchParams{Page: 2}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}

		items := b.Items()
		if len(items) != 2*DefaultPageSize {
			t.Fatalf("expected %d items after two pages, got %d", 2*DefaultPageSize, len(items))
		}
		if items[0].ID != "m-1-0" || items[DefaultPageSize].ID != "m-2-0" {
			t.Errorf("pages out of order: first=%s, boundary=%s", items[0].ID, items[DefaultPageSize].ID)
		}
		seen := map[string]bool{}
		for _, entry := range items {
			if seen[entry.ID] {
				t.Errorf("duplicate id %s in listing", entry.ID)
			}
			seen[entry.ID] = true
		}
		if b.Page() != 2 || b.TotalPages() != 3 {
			t.Errorf("expected cursors 2/3, got %d/%d", b.Page(), b.TotalPages())
		}
	})

	t.Run("zero page defaults to 1 and replaces", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				if params.Page != 1 {
					t.Errorf("expected default page 1, got %d", params.Page)
				}
				return makePage(1, params.PageSize, 5, 5, models.MediaTypeAudio)
			},
		}
		b := NewBrowser(gateway, nil)

		if _, err := b.FetchPage(ctx, FetchParams{}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}
		if len(b.Items()) != 5 {
			t.Errorf("expected 5 items, got %d", len(b.Items()))
		}
	})

	t.Run("per-call filters win without mutating stored filters", func(t *testing.T) {
		var sent map[string]string
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				sent = params.Filters
				return makePage(1, params.PageSize, 0, 0, "")
			},
		}
		b := NewBrowser(gateway, nil)
		b.SetFilters(map[string]string{"media_type": "video", "genre": "jazz"})

		if _, err := b.FetchPage(ctx, FetchParams{Filters: map[string]string{"media_type": "audio"}}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}

		if sent["media_type"] != "audio" {
			t.Errorf("per-call override should win, sent %q", sent["media_type"])
		}
		if sent["genre"] != "jazz" {
			t.Errorf("stored filter should carry through, sent %q", sent["genre"])
		}
		if b.Filters()["media_type"] != "video" {
			t.Errorf("stored filters must not be mutated, got %q", b.Filters()["media_type"])
		}
	})

	t.Run("gateway error leaves listing untouched and clears isLoading", func(t *testing.T) {
		fail := false
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				if fail {
					return nil, shared.ErrAPIRequest
				}
				return makePage(1, params.PageSize, 3, 3, models.MediaTypeImage)
			},
		}
		b := NewBrowser(gateway, nil)
		if _, err := b.FetchPage(ctx, FetchParams{Page: 1}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}

		fail = true
		if _, err := b.FetchPage(ctx, FetchParams{Page: 2}); !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if len(b.Items()) != 3 {
			t.Errorf("failed fetch must not touch the listing, got %d items", len(b.Items()))
		}
		if b.IsLoading() {
			t.Error("isLoading should be cleared after a failed fetch")
		}
	})
}

func TestBrowserSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("always fetches page 1 with the query", func(t *testing.T) {
		var got services.ListParams
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				got = params
				return makePage(1, params.PageSize, 2, 2, models.MediaTypeVideo)
			},
		}
		b := NewBrowser(gateway, nil)
		if _, err := b.FetchPage(ctx, FetchParams{Page: 1}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}
		if _, err := b.FetchPage(ctx, FetchParams{Page: 2}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}

		if _, err := b.Search(ctx, "sunrise", FetchParams{}); err != nil {
			t.Fatalf("Search failed: %v", err)
		}

		if got.Page != 1 {
			t.Errorf("search must fetch page 1, got %d", got.Page)
		}
		if got.Filters["search"] != "sunrise" {
			t.Errorf("expected search filter, got %q", got.Filters["search"])
		}
		if b.Query() != "sunrise" {
			t.Errorf("query text should be stored, got %q", b.Query())
		}
		if len(b.Items()) != 2 {
			t.Errorf("search results should replace the listing, got %d items", len(b.Items()))
		}
	})

	t.Run("params are one-shot filters", func(t *testing.T) {
		var sent map[string]string
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				sent = params.Filters
				return makePage(1, params.PageSize, 0, 0, "")
			},
		}
		b := NewBrowser(gateway, nil)

		if _, err := b.Search(ctx, "q", FetchParams{Filters: map[string]string{"media_type": "audio"}}); err != nil {
			t.Fatalf("Search failed: %v", err)
		}

		if sent["media_type"] != "audio" {
			t.Errorf("one-shot filter should be sent, got %q", sent["media_type"])
		}
		if _, ok := b.Filters()["media_type"]; ok {
			t.Error("one-shot filters must not be stored")
		}
	})
}

func TestBrowserLoadMore(t *testing.T) {
	ctx := context.Background()

	t.Run("appends the next page", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				return makePage(params.Page, params.PageSize, 50, params.PageSize, models.MediaTypeVideo)
			},
		}
		b := NewBrowser(gateway, nil)
		if _, err := b.FetchPage(ctx, FetchParams{Page: 1}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}

		if err := b.LoadMore(ctx); err != nil {
			t.Fatalf("LoadMore failed: %v", err)
		}
		if len(b.Items()) != 2*DefaultPageSize {
			t.Errorf("expected %d items, got %d", 2*DefaultPageSize, len(b.Items()))
		}
		if b.Page() != 2 {
			t.Errorf("expected page cursor 2, got %d", b.Page())
		}
	})

	t.Run("no-op on the last page", func(t *testing.T) {
		calls := 0
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				calls++
				return makePage(1, params.PageSize, 5, 5, models.MediaTypeVideo)
			},
		}
		b := NewBrowser(gateway, nil)
		if _, err := b.FetchPage(ctx, FetchParams{Page: 1}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}

		if err := b.LoadMore(ctx); err != nil {
			t.Fatalf("LoadMore failed: %v", err)
		}
		if calls != 1 {
			t.Errorf("LoadMore past the end must not hit the gateway, saw %d calls", calls)
		}
	})

	t.Run("no-op while a fetch is in flight", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		calls := 0
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				calls++
				if params.Page == 2 {
					close(started)
					<-release
				}
				return makePage(params.Page, params.PageSize, 100, params.PageSize, models.MediaTypeVideo)
			},
		}
		b := NewBrowser(gateway, nil)
		if _, err := b.FetchPage(ctx, FetchParams{Page: 1}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}

		done := make(chan error, 1)
		go func() { done <- b.LoadMore(ctx) }()
		<-started

		// Second trigger arrives while the first is still in flight.
		if err := b.LoadMore(ctx); err != nil {
			t.Fatalf("concurrent LoadMore failed: %v", err)
		}
		close(release)
		if err := <-done; err != nil {
			t.Fatalf("LoadMore failed: %v", err)
		}

		if calls != 2 {
			t.Errorf("expected exactly one extra page fetch, saw %d calls", calls)
		}
		if len(b.Items()) != 2*DefaultPageSize {
			t.Errorf("expected %d items, got %d", 2*DefaultPageSize, len(b.Items()))
		}
	})

	t.Run("three loads advance to page 4", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				return makePage(params.Page, params.PageSize, 100, params.PageSize, models.MediaTypeVideo)
			},
		}
		b := NewBrowser(gateway, nil)
		if _, err := b.FetchPage(ctx, FetchParams{Page: 1}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}

		for i := 0; i < 3; i++ {
			if err := b.LoadMore(ctx); err != nil {
				t.Fatalf("LoadMore %d failed: %v", i+1, err)
			}
		}

		if b.Page() != 4 {
			t.Errorf("expected page cursor 4, got %d", b.Page())
		}
		if len(b.Items()) != 4*DefaultPageSize {
			t.Errorf("expected %d items, got %d", 4*DefaultPageSize, len(b.Items()))
		}
		if b.TotalPages() != 5 {
			t.Errorf("expected 5 total pages, got %d", b.TotalPages())
		}
	})

	t.Run("guard claims the loading flag before the request starts", func(t *testing.T) {
		calls := 0
		var b *Browser
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				calls++
				// A trigger landing mid-request must find the flag
				// already set and back off.
				if err := b.LoadMore(ctx); err != nil {
					t.Errorf("nested LoadMore failed: %v", err)
				}
				return makePage(params.Page, params.PageSize, 100, params.PageSize, models.MediaTypeVideo)
			},
		}
		b = NewBrowser(gateway, nil)

		if _, err := b.FetchPage(ctx, FetchParams{Page: 1}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}
		if err := b.LoadMore(ctx); err != nil {
			t.Fatalf("LoadMore failed: %v", err)
		}

		if calls != 2 {
			t.Errorf("mid-request triggers must not reach the gateway, saw %d calls", calls)
		}
		if b.Page() != 2 {
			t.Errorf("expected page cursor 2, got %d", b.Page())
		}
	})
}

func TestBrowserSeries(t *testing.T) {
	ctx := context.Background()

	t.Run("lists shows", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			TVSeriesFunc: func(_ context.Context) ([]models.TVSeries, error) {
				return []models.TVSeries{{
					SeriesName: "Orbit",
					Seasons: map[string][]models.TVEpisode{
						"1": {{ID: "m-1", Episode: 1}, {ID: "m-2", Episode: 2}},
					},
				}}, nil
			},
		}
		b := NewBrowser(gateway, nil)

		series, err := b.Series(ctx)
		if err != nil {
			t.Fatalf("Series failed: %v", err)
		}
		if len(series) != 1 || series[0].EpisodeCount() != 2 {
			t.Errorf("unexpected series %+v", series)
		}
	})

	t.Run("forwards the series key and season", func(t *testing.T) {
		var gotKey string
		var gotSeason int
		gateway := &libtest.MockMediaGateway{
			TVSeriesEpisodesFunc: func(_ context.Context, seriesKey string, season int) ([]models.TVEpisode, error) {
				gotKey, gotSeason = seriesKey, season
				return []models.TVEpisode{{ID: "m-1", Season: 2, Episode: 1}}, nil
			},
		}
		b := NewBrowser(gateway, nil)

		episodes, err := b.SeriesEpisodes(ctx, "orbit_s02", 2)
		if err != nil {
			t.Fatalf("SeriesEpisodes failed: %v", err)
		}
		if gotKey != "orbit_s02" || gotSeason != 2 {
			t.Errorf("unexpected forwarded arguments %q %d", gotKey, gotSeason)
		}
		if len(episodes) != 1 {
			t.Errorf("unexpected episodes %+v", episodes)
		}
	})
}

func TestBrowserDetailAndMutation(t *testing.T) {
	ctx := context.Background()

	t.Run("FetchOne sets the detail selection", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			GetMediaFunc: func(_ context.Context, id string) (*models.MediaEntry, error) {
				return &models.MediaEntry{ID: id, Filename: "clip.mp4"}, nil
			},
		}
		b := NewBrowser(gateway, nil)

		entry, err := b.FetchOne(ctx, "m-9")
		if err != nil {
			t.Fatalf("FetchOne failed: %v", err)
		}
		if entry.ID != "m-9" {
			t.Errorf("expected entry m-9, got %q", entry.ID)
		}
		if current := b.CurrentMedia(); current == nil || current.ID != "m-9" {
			t.Errorf("detail selection not set: %+v", current)
		}
	})

	t.Run("missing entry maps to the sentinel", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			GetMediaFunc: func(_ context.Context, id string) (*models.MediaEntry, error) {
				return nil, fmt.Errorf("%w: %s", shared.ErrMediaNotFound, id)
			},
		}
		b := NewBrowser(gateway, nil)

		if _, err := b.FetchOne(ctx, "nope"); !errors.Is(err, shared.ErrMediaNotFound) {
			t.Fatalf("expected ErrMediaNotFound, got %v", err)
		}
		if b.CurrentMedia() != nil {
			t.Error("failed fetch must not set the detail selection")
		}
	})

	t.Run("Upload refetches page 1", func(t *testing.T) {
		var fetched []int
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				fetched = append(fetched, params.Page)
				return makePage(params.Page, params.PageSize, 50, params.PageSize, models.MediaTypeVideo)
			},
			UploadFunc: func(_ context.Context, path string) (*models.UploadResult, error) {
				return &models.UploadResult{FileID: "m-new", Filename: path, Status: "uploaded"}, nil
			},
		}
		b := NewBrowser(gateway, nil)
		if _, err := b.FetchPage(ctx, FetchParams{Page: 1}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}
		if err := b.LoadMore(ctx); err != nil {
			t.Fatalf("LoadMore failed: %v", err)
		}

		result, err := b.Upload(ctx, "clip.mp4")
		if err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
		if result.FileID != "m-new" {
			t.Errorf("expected upload result m-new, got %q", result.FileID)
		}

		last := fetched[len(fetched)-1]
		if last != 1 {
			t.Errorf("upload must refetch page 1, last fetch was page %d", last)
		}
		if len(b.Items()) != DefaultPageSize {
			t.Errorf("refetch should replace the accumulated listing, got %d items", len(b.Items()))
		}
		if b.IsLoading() {
			t.Error("isLoading should be cleared after Upload")
		}
	})

	t.Run("failed upload does not refetch", func(t *testing.T) {
		calls := 0
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				calls++
				return makePage(1, params.PageSize, 0, 0, "")
			},
			UploadFunc: func(context.Context, string) (*models.UploadResult, error) {
				return nil, shared.ErrInvalidInput
			},
		}
		b := NewBrowser(gateway, nil)

		if _, err := b.Upload(ctx, "bad.bin"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if calls != 0 {
			t.Errorf("failed upload must not refetch, saw %d list calls", calls)
		}
	})

	t.Run("DeleteEntry removes locally without refetching", func(t *testing.T) {
		listCalls := 0
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				listCalls++
				return makePage(1, params.PageSize, 3, 3, models.MediaTypeVideo)
			},
		}
		b := NewBrowser(gateway, nil)
		if _, err := b.FetchPage(ctx, FetchParams{Page: 1}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}
		if _, err := b.FetchOne(ctx, "m-1-1"); err != nil {
			t.Fatalf("FetchOne failed: %v", err)
		}

		if err := b.DeleteEntry(ctx, "m-1-1"); err != nil {
			t.Fatalf("DeleteEntry failed: %v", err)
		}

		for _, entry := range b.Items() {
			if entry.ID == "m-1-1" {
				t.Error("deleted entry still in listing")
			}
		}
		if len(b.Items()) != 2 {
			t.Errorf("expected 2 remaining items, got %d", len(b.Items()))
		}
		if b.CurrentMedia() != nil {
			t.Error("detail selection pointing at the deleted entry should be cleared")
		}
		if listCalls != 1 {
			t.Errorf("delete must not refetch, saw %d list calls", listCalls)
		}
	})

	t.Run("DeleteEntry keeps an unrelated detail selection", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				return makePage(1, params.PageSize, 3, 3, models.MediaTypeVideo)
			},
		}
		b := NewBrowser(gateway, nil)
		if _, err := b.FetchPage(ctx, FetchParams{Page: 1}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}
		if _, err := b.FetchOne(ctx, "m-1-0"); err != nil {
			t.Fatalf("FetchOne failed: %v", err)
		}

		if err := b.DeleteEntry(ctx, "m-1-2"); err != nil {
			t.Fatalf("DeleteEntry failed: %v", err)
		}
		if current := b.CurrentMedia(); current == nil || current.ID != "m-1-0" {
			t.Errorf("unrelated detail selection should survive, got %+v", current)
		}
	})

	t.Run("failed delete leaves the listing untouched", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				return makePage(1, params.PageSize, 3, 3, models.MediaTypeVideo)
			},
			DeleteMediaFunc: func(context.Context, string) error {
				return shared.ErrMediaNotFound
			},
		}
		b := NewBrowser(gateway, nil)
		if _, err := b.FetchPage(ctx, FetchParams{Page: 1}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}

		if err := b.DeleteEntry(ctx, "m-1-0"); !errors.Is(err, shared.ErrMediaNotFound) {
			t.Fatalf("expected ErrMediaNotFound, got %v", err)
		}
		if len(b.Items()) != 3 {
			t.Errorf("failed delete must not touch the listing, got %d items", len(b.Items()))
		}
	})
}

func TestBrowserFilters(t *testing.T) {
	t.Run("SetFilters merges and empty removes", func(t *testing.T) {
		b := NewBrowser(&libtest.MockMediaGateway{}, nil)

		b.SetFilters(map[string]string{"media_type": "video", "genre": "jazz"})
		b.SetFilters(map[string]string{"genre": "", "year": "2024"})

		filters := b.Filters()
		if filters["media_type"] != "video" {
			t.Errorf("unnamed key should be preserved, got %q", filters["media_type"])
		}
		if _, ok := filters["genre"]; ok {
			t.Error("empty value should remove the key")
		}
		if filters["year"] != "2024" {
			t.Errorf("new key should be set, got %q", filters["year"])
		}
	})

	t.Run("ClearFilters resets filters and query", func(t *testing.T) {
		ctx := context.Background()
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				return makePage(1, params.PageSize, 0, 0, "")
			},
		}
		b := NewBrowser(gateway, nil)
		b.SetFilters(map[string]string{"media_type": "video"})
		if _, err := b.Search(ctx, "sunset", FetchParams{}); err != nil {
			t.Fatalf("Search failed: %v", err)
		}

		b.ClearFilters()

		if len(b.Filters()) != 0 {
			t.Errorf("expected empty filters, got %v", b.Filters())
		}
		if b.Query() != "" {
			t.Errorf("expected empty query, got %q", b.Query())
		}
	})
}

func TestBrowserDerivedViews(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) *Browser {
		t.Helper()
		gateway := &libtest.MockMediaGateway{
			ListMediaFunc: func(_ context.Context, params services.ListParams) (*models.SearchPage, error) {
				return &models.SearchPage{
					Items: []models.MediaEntry{
						{ID: "v1", MediaType: models.MediaTypeVideo, CreatedAt: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)},
						{ID: "a1", MediaType: models.MediaTypeAudio, CreatedAt: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)},
						{ID: "i1", MediaType: models.MediaTypeImage, CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
						{ID: "v2", MediaType: models.MediaTypeVideo, CreatedAt: time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)},
					},
					Total: 4, Page: 1, PageSize: 20, TotalPages: 1,
				}, nil
			},
		}
		b := NewBrowser(gateway, nil)
		if _, err := b.FetchPage(ctx, FetchParams{Page: 1}); err != nil {
			t.Fatalf("FetchPage failed: %v", err)
		}
		return b
	}

	t.Run("type views preserve listing order", func(t *testing.T) {
		b := seed(t)

		videos := b.Videos()
		if len(videos) != 2 || videos[0].ID != "v1" || videos[1].ID != "v2" {
			t.Errorf("unexpected videos view: %+v", videos)
		}
		if audio := b.Audio(); len(audio) != 1 || audio[0].ID != "a1" {
			t.Errorf("unexpected audio view: %+v", audio)
		}
		if images := b.Images(); len(images) != 1 || images[0].ID != "i1" {
			t.Errorf("unexpected images view: %+v", images)
		}
	})

	t.Run("recent sorts newest first and caps at n", func(t *testing.T) {
		b := seed(t)

		recent := b.Recent(2)
		if len(recent) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(recent))
		}
		if recent[0].ID != "a1" || recent[1].ID != "v2" {
			t.Errorf("unexpected recency order: %s, %s", recent[0].ID, recent[1].ID)
		}
	})

	t.Run("views recompute from current items", func(t *testing.T) {
		b := seed(t)

		if err := b.DeleteEntry(ctx, "v1"); err != nil {
			t.Fatalf("DeleteEntry failed: %v", err)
		}
		if videos := b.Videos(); len(videos) != 1 || videos[0].ID != "v2" {
			t.Errorf("view should reflect the deletion: %+v", videos)
		}
	})
}

func TestBrowserPlaylists(t *testing.T) {
	ctx := context.Background()

	t.Run("create appends to the cached list", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			PlaylistsFunc: func(context.Context) ([]models.Playlist, error) {
				return []models.Playlist{{ID: "p1", Name: "Favorites"}}, nil
			},
			CreatePlaylistFunc: func(_ context.Context, data models.PlaylistCreate) (*models.Playlist, error) {
				return &models.Playlist{ID: "p2", Name: data.Name}, nil
			},
		}
		b := NewBrowser(gateway, nil)
		if _, err := b.RefreshPlaylists(ctx); err != nil {
			t.Fatalf("RefreshPlaylists failed: %v", err)
		}

		if _, err := b.CreatePlaylist(ctx, models.PlaylistCreate{Name: "Road trip"}); err != nil {
			t.Fatalf("CreatePlaylist failed: %v", err)
		}

		playlists := b.Playlists()
		if len(playlists) != 2 || playlists[1].Name != "Road trip" {
			t.Errorf("unexpected playlist cache: %+v", playlists)
		}
	})

	t.Run("update swaps the server record in place", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			PlaylistsFunc: func(context.Context) ([]models.Playlist, error) {
				return []models.Playlist{{ID: "p1", Name: "Favorites"}, {ID: "p2", Name: "Mix"}}, nil
			},
			UpdatePlaylistFunc: func(_ context.Context, id string, data models.PlaylistUpdate) (*models.Playlist, error) {
				return &models.Playlist{ID: id, Name: *data.Name}, nil
			},
		}
		b := NewBrowser(gateway, nil)
		if _, err := b.RefreshPlaylists(ctx); err != nil {
			t.Fatalf("RefreshPlaylists failed: %v", err)
		}

		name := "Evening mix"
		if _, err := b.UpdatePlaylist(ctx, "p2", models.PlaylistUpdate{Name: &name}); err != nil {
			t.Fatalf("UpdatePlaylist failed: %v", err)
		}

		playlists := b.Playlists()
		if playlists[1].Name != "Evening mix" {
			t.Errorf("expected renamed playlist, got %q", playlists[1].Name)
		}
		if playlists[0].Name != "Favorites" {
			t.Errorf("other playlists should be untouched, got %q", playlists[0].Name)
		}
	})

	t.Run("delete drops from the cached list", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			PlaylistsFunc: func(context.Context) ([]models.Playlist, error) {
				return []models.Playlist{{ID: "p1"}, {ID: "p2"}}, nil
			},
		}
		b := NewBrowser(gateway, nil)
		if _, err := b.RefreshPlaylists(ctx); err != nil {
			t.Fatalf("RefreshPlaylists failed: %v", err)
		}

		if err := b.DeletePlaylist(ctx, "p1"); err != nil {
			t.Fatalf("DeletePlaylist failed: %v", err)
		}
		playlists := b.Playlists()
		if len(playlists) != 1 || playlists[0].ID != "p2" {
			t.Errorf("unexpected playlist cache after delete: %+v", playlists)
		}
	})

	t.Run("add item refreshes that playlist only", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			PlaylistsFunc: func(context.Context) ([]models.Playlist, error) {
				return []models.Playlist{{ID: "p1"}, {ID: "p2"}}, nil
			},
			PlaylistItemsFunc: func(_ context.Context, playlistID string) ([]models.PlaylistItem, error) {
				return []models.PlaylistItem{
					{ID: "it1", PlaylistID: playlistID, MediaID: "m-1", Position: 0},
					{ID: "it2", PlaylistID: playlistID, MediaID: "m-2", Position: 1},
				}, nil
			},
		}
		b := NewBrowser(gateway, nil)
		if _, err := b.RefreshPlaylists(ctx); err != nil {
			t.Fatalf("RefreshPlaylists failed: %v", err)
		}

		if err := b.AddPlaylistItem(ctx, "p1", "m-2", nil); err != nil {
			t.Fatalf("AddPlaylistItem failed: %v", err)
		}

		playlists := b.Playlists()
		if len(playlists[0].Items) != 2 {
			t.Errorf("expected refreshed items on p1, got %d", len(playlists[0].Items))
		}
		if len(playlists[1].Items) != 0 {
			t.Errorf("p2 should be untouched, got %d items", len(playlists[1].Items))
		}
	})

	t.Run("remove item renumbers positions", func(t *testing.T) {
		gateway := &libtest.MockMediaGateway{
			PlaylistFunc: func(_ context.Context, id string) (*models.Playlist, error) {
				return &models.Playlist{
					ID: id,
					Items: []models.PlaylistItem{
						{ID: "it1", MediaID: "m-1", Position: 0},
						{ID: "it2", MediaID: "m-2", Position: 1},
						{ID: "it3", MediaID: "m-3", Position: 2},
					},
				}, nil
			},
		}
		b := NewBrowser(gateway, nil)
		if _, err := b.FetchPlaylist(ctx, "p1"); err != nil {
			t.Fatalf("FetchPlaylist failed: %v", err)
		}

		if err := b.RemovePlaylistItem(ctx, "p1", "m-2"); err != nil {
			t.Fatalf("RemovePlaylistItem failed: %v", err)
		}

		items := b.Playlists()[0].Items
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		if items[0].MediaID != "m-1" || items[1].MediaID != "m-3" {
			t.Errorf("unexpected item order: %+v", items)
		}
		if items[0].Position != 0 || items[1].Position != 1 {
			t.Errorf("positions should be renumbered densely: %d, %d", items[0].Position, items[1].Position)
		}
	})
}
