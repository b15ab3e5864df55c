package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmchugh/medlib/internal/formatter"
	"github.com/dmchugh/medlib/internal/library"
	"github.com/dmchugh/medlib/internal/models"
	"github.com/dmchugh/medlib/internal/shared"
	"github.com/dmchugh/medlib/internal/tasks"
	"github.com/urfave/cli/v3"
)

// listFilters collects filter flags into the flat filter map the server expects.
func listFilters(cmd *cli.Command) map[string]string {
	filters := map[string]string{}
	for flag, param := range map[string]string{
		"type":  "media_type",
		"genre": "genre",
		"year":  "year",
		"sort":  "sort_by",
		"order": "sort_order",
	} {
		if cmd.IsSet(flag) {
			filters[param] = cmd.String(flag)
		}
	}
	return filters
}

// LibraryList fetches a page of the library listing.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	params := library.FetchParams{
		Page:     int(cmd.Int("page")),
		PageSize: int(cmd.Int("page-size")),
		Filters:  listFilters(cmd),
	}

	page, err := r.browser.FetchPage(ctx, params)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}
	if cmd.Bool("csv") {
		csv, err := formatter.EntriesToCSV(page.Items)
		if err != nil {
			return err
		}
		return r.writePlain("%s", csv)
	}

	return r.printEntries(page)
}

// LibrarySearch performs a text search over the library.
func (r *Runner) LibrarySearch(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}

	params := library.FetchParams{
		PageSize: int(cmd.Int("page-size")),
		Filters:  listFilters(cmd),
	}

	page, err := r.browser.Search(ctx, query, params)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}

	r.writePlain("Results for %q:\n", query)
	return r.printEntries(page)
}

func (r *Runner) printEntries(page *models.SearchPage) error {
	if len(page.Items) == 0 {
		return r.writePlain("No entries found\n")
	}

	for _, entry := range page.Items {
		line := fmt.Sprintf("%s  %s [%s, %s]", entry.ID, entry.DisplayTitle(), entry.MediaType, shared.FormatSize(entry.FileSize))
		if !entry.IsAvailable {
			line += " (unavailable)"
		}
		r.writePlain("%s\n", line)
	}
	return r.writePlain("\nPage %d/%d (%d entries total)\n", page.Page, page.TotalPages, page.Total)
}

// LibraryGet fetches and prints a single entry.
func (r *Runner) LibraryGet(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: entry id is required", shared.ErrMissingArgument)
	}

	entry, err := r.browser.FetchOne(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entry, true)
	}

	r.writePlainHeader(entry.DisplayTitle())
	r.writePlain("ID:   %s\n", entry.ID)
	r.writePlain("File: %s\n", entry.Filename)
	r.writePlain("Type: %s (%s)\n", entry.MediaType, entry.MimeType)
	r.writePlain("Size: %s\n", shared.FormatSize(entry.FileSize))
	if entry.Duration != nil {
		r.writePlain("Duration: %s\n", shared.FormatDuration(*entry.Duration))
	}
	if entry.Width != nil && entry.Height != nil {
		r.writePlain("Resolution: %dx%d\n", *entry.Width, *entry.Height)
	}
	r.writePlain("Added: %s\n", entry.CreatedAt.Format("2006-01-02"))
	if entry.Metadata != nil && entry.Metadata.Genre != "" {
		r.writePlain("Genre: %s\n", entry.Metadata.Genre)
	}
	return nil
}

// LibraryUpload sends one or more local files to the library. Multiple paths
// go through the concurrent bulk uploader.
// collectUploadPaths walks a directory and returns every regular file in it.
// The server decides which files it accepts; nothing is filtered here.
func collectUploadPaths(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return paths, nil
}

func (r *Runner) LibraryUpload(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	paths := cmd.Args().Slice()
	if dir := cmd.String("dir"); dir != "" {
		collected, err := collectUploadPaths(dir)
		if err != nil {
			return err
		}
		paths = append(paths, collected...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one file path is required", shared.ErrMissingArgument)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
	}

	if len(paths) == 1 {
		result, err := r.browser.Upload(ctx, paths[0])
		if err != nil {
			return err
		}
		r.writePlain("✓ Uploaded %s (%s)\n", result.Filename, result.Status)
		return nil
	}

	opts := tasks.BulkUploadOpts{
		NumWorkers: r.config.Upload.Workers,
		RateLimit:  r.config.Upload.RateLimit,
	}

	progress, wait := r.watchProgress()
	result, err := r.engine.BulkUpload(ctx, progress, paths, opts)
	wait()
	if err != nil {
		return err
	}

	r.writePlainln("✓ Uploaded %d/%d files (batch %s)", result.SuccessfulUploads, result.TotalFiles, result.BatchID)
	if result.FailedUploads > 0 {
		r.writePlain("✗ %d uploads failed:\n", result.FailedUploads)
		for _, file := range result.Results {
			if !file.Success {
				r.writePlain("  %s: %s\n", file.Path, file.Error)
			}
		}
	}
	return nil
}

// LibraryDelete removes an entry from the library.
func (r *Runner) LibraryDelete(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: entry id is required", shared.ErrMissingArgument)
	}

	if err := r.browser.DeleteEntry(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s\n", id)
}

// LibraryScan triggers a server-side directory scan.
func (r *Runner) LibraryScan(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	result, err := r.browser.Scan(ctx, cmd.String("directory"))
	if err != nil {
		return err
	}

	r.writePlain("✓ Scan complete\n")
	r.writePlain("Scanned: %d  New: %d  Updated: %d\n", result.ScannedFiles, result.NewFiles, result.UpdatedFiles)
	for _, scanErr := range result.Errors {
		r.writePlain("✗ %s\n", scanErr)
	}
	return nil
}

// LibraryCategories prints the category summary.
func (r *Runner) LibraryCategories(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	categories, err := r.browser.Categories(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(categories, true)
	}

	for _, c := range categories {
		r.writePlain("%-12s %d\n", c.Name, c.Count)
	}
	return nil
}

// LibrarySeries lists TV shows, or one show's episodes when a series key is
// given.
func (r *Runner) LibrarySeries(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	if key := cmd.StringArg("key"); key != "" {
		episodes, err := r.browser.SeriesEpisodes(ctx, key, int(cmd.Int("season")))
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			return r.writeJSON(episodes, true)
		}
		if len(episodes) == 0 {
			return r.writePlain("No episodes\n")
		}
		for _, e := range episodes {
			r.writePlain("S%02dE%02d  %s  %s\n", e.Season, e.Episode, e.ID, e.Filename)
		}
		return nil
	}

	series, err := r.browser.Series(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(series, true)
	}
	if len(series) == 0 {
		return r.writePlain("No TV series\n")
	}
	for _, s := range series {
		r.writePlain("%-40s %d seasons, %d episodes\n", s.SeriesName, len(s.Seasons), s.EpisodeCount())
	}
	return nil
}

// LibraryRecent shows the newest loaded entries, optionally narrowed to one
// media kind. Loads the first page when nothing is loaded yet.
func (r *Runner) LibraryRecent(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	if _, err := r.browser.FetchPage(ctx, library.FetchParams{Page: 1}); err != nil {
		return err
	}

	var entries []models.MediaEntry
	switch kind := cmd.String("type"); kind {
	case "video":
		entries = r.browser.Videos()
	case "audio":
		entries = r.browser.Audio()
	case "image":
		entries = r.browser.Images()
	case "":
		entries = r.browser.Recent(int(cmd.Int("count")))
	default:
		return fmt.Errorf("%w: unknown media type %q", shared.ErrInvalidFlag, kind)
	}

	if len(entries) == 0 {
		return r.writePlain("No entries\n")
	}
	for _, entry := range entries {
		r.writePlain("%s  %s [%s]  %s\n", entry.ID, entry.DisplayTitle(), entry.MediaType, entry.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

// LibraryDump walks the whole library and prints or saves the result.
func (r *Runner) LibraryDump(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	pretty := cmd.Bool("pretty")
	save := cmd.Bool("save")

	r.logger.Info("dumping library state")
	r.writePlain("Fetching library state...\n\n")

	progress, wait := r.watchProgress()
	dump, err := r.engine.Dump(ctx, progress)
	wait()
	if err != nil {
		return err
	}

	r.writePlain("\n✓ Dump complete\n\n")

	if save {
		saveFile := "library_dump.json"
		data, err := shared.MarshalJSON(dump, true)
		if err != nil {
			return fmt.Errorf("failed to marshal dump: %w", err)
		}
		if err := os.WriteFile(saveFile, data, 0644); err != nil {
			r.logger.Warn("failed to save dump", "error", err)
		} else {
			r.logger.Info("dump saved", "file", saveFile)
			r.writePlain("✓ Dump saved to %s\n\n", saveFile)
		}
	}

	return r.writeJSON(dump, pretty)
}

// Play resolves the streaming URL for an entry and opens it in the browser.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: entry id is required", shared.ErrMissingArgument)
	}

	streamURL, err := r.browser.StreamURL(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("url-only") {
		return r.writePlain("%s\n", streamURL)
	}

	r.logger.Info("opening stream", "url", streamURL)
	if err := shared.OpenBrowser(streamURL); err != nil {
		r.writePlain("Stream URL: %s\n", streamURL)
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return r.writePlain("✓ Opened %s\n", streamURL)
}

// ServerVersion prints the remote server build next to the client version.
func (r *Runner) ServerVersion(ctx context.Context, cmd *cli.Command) error {
	r.writePlain("medlib %s\n", version)

	info, err := r.media.Version(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	r.writePlain("server %s (built %s)\n", info.Version, info.BuildDate)
	if len(info.Features) > 0 {
		r.writePlain("features: %s\n", strings.Join(info.Features, ", "))
	}
	return nil
}

// libraryCommand handles media listing, search, upload and entry operations
func libraryCommand(r *Runner) *cli.Command {
	listFlags := []cli.Flag{
		&cli.IntFlag{Name: "page", Usage: "Page number", Value: 1},
		&cli.IntFlag{Name: "page-size", Usage: "Entries per page"},
		&cli.StringFlag{Name: "type", Usage: "Filter by media type (video, audio, image)"},
		&cli.StringFlag{Name: "genre", Usage: "Filter by genre"},
		&cli.StringFlag{Name: "year", Usage: "Filter by release year"},
		&cli.StringFlag{Name: "sort", Usage: "Sort field"},
		&cli.StringFlag{Name: "order", Usage: "Sort order (asc or desc)"},
		&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
	}

	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Browse and manage the media library",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List media entries",
				Flags:  append(listFlags, &cli.BoolFlag{Name: "csv", Usage: "Output CSV"}),
				Action: r.LibraryList,
			},
			{
				Name:  "search",
				Usage: "Search the library",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags:  listFlags,
				Action: r.LibrarySearch,
			},
			{
				Name:  "get",
				Usage: "Show a single entry",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.LibraryGet,
			},
			{
				Name:      "upload",
				Usage:     "Upload one or more local files",
				ArgsUsage: "[path ...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Usage: "Upload every file under a directory"},
				},
				Action: r.LibraryUpload,
			},
			{
				Name:  "delete",
				Usage: "Delete an entry",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.LibraryDelete,
			},
			{
				Name:  "scan",
				Usage: "Trigger a server-side directory scan",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "directory", Aliases: []string{"d"}, Usage: "Directory to scan (server default when omitted)"},
				},
				Action: r.LibraryScan,
			},
			{
				Name:  "recent",
				Usage: "Show recently added entries",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Usage: "Narrow to one media type (video, audio, image)"},
					&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "Number of entries", Value: 20},
				},
				Action: r.LibraryRecent,
			},
			{
				Name:  "series",
				Usage: "List TV series, or one show's episodes",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "season", Aliases: []string{"s"}, Usage: "Narrow episodes to one season"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.LibrarySeries,
			},
			{
				Name:  "categories",
				Usage: "Show the category summary",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.LibraryCategories,
			},
			{
				Name:  "dump",
				Usage: "Walk the whole library and dump everything as JSON",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
					&cli.BoolFlag{Name: "save", Usage: "Save dump to library_dump.json"},
				},
				Action: r.LibraryDump,
			},
		},
	}
}

// playCommand streams a media entry in the default browser.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Open a media entry's stream",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "url-only", Usage: "Print the stream URL instead of opening it"},
		},
		Action: r.Play,
	}
}

// versionCommand reports client and server versions.
func versionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show client and server versions",
		Action: r.ServerVersion,
	}
}
