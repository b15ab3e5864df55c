package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmchugh/medlib/internal/cache"
	"github.com/dmchugh/medlib/internal/shared"
	"github.com/urfave/cli/v3"
)

// openCache opens the offline cache database from the runner's config.
func (r *Runner) openCache() (*sql.DB, error) {
	path := shared.ExpandPath(r.config.Database.Path)
	db, err := cache.Open(path, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	return db, nil
}

// CacheSync refreshes the offline cache from the server.
func (r *Runner) CacheSync(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	db, err := r.openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	media := cache.NewMediaRepository(db)
	playlists := cache.NewPlaylistRepository(db)

	r.logger.Info("syncing offline cache", "path", r.config.Database.Path)

	progress, wait := r.watchProgress()
	result, err := r.engine.Sync(ctx, progress, media, playlists)
	wait()
	if err != nil {
		return err
	}

	r.writePlainln("✓ Cache synced in %dms", result.DurationMillis)
	r.writePlain("Entries:   %d cached, %d pruned\n", result.Entries, result.PrunedEntries)
	r.writePlain("Playlists: %d cached, %d pruned\n", result.Playlists, result.PrunedLists)
	return nil
}

// CacheList lists cached media entries without touching the network.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{}
	if cmd.IsSet("type") {
		criteria["media_type"] = cmd.String("type")
	}
	if cmd.IsSet("genre") {
		criteria["genre"] = cmd.String("genre")
	}

	entries, err := cache.NewMediaRepository(db).List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		return r.writePlain("Cache is empty\n")
	}
	for _, entry := range entries {
		r.writePlain("%s  %s [%s, %s]\n", entry.ID, entry.DisplayTitle(), entry.MediaType, shared.FormatSize(entry.FileSize))
	}
	return nil
}

// CacheStatus reports cache row counts.
func (r *Runner) CacheStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	count, err := cache.NewMediaRepository(db).Count()
	if err != nil {
		return err
	}

	playlists, err := cache.NewPlaylistRepository(db).List()
	if err != nil {
		return err
	}

	r.writePlainHeader("Offline cache")
	r.writePlain("Database:  %s\n", shared.ExpandPath(r.config.Database.Path))
	r.writePlain("Entries:   %d\n", count)
	r.writePlain("Playlists: %d\n", len(playlists))
	return nil
}

// cacheCommand handles the offline cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the offline media cache",
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Refresh the cache from the server",
				Action: r.CacheSync,
			},
			{
				Name:  "list",
				Usage: "List cached entries (offline)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Usage: "Filter by media type"},
					&cli.StringFlag{Name: "genre", Usage: "Filter by genre"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.CacheList,
			},
			{
				Name:   "status",
				Usage:  "Show cache row counts",
				Action: r.CacheStatus,
			},
		},
	}
}
