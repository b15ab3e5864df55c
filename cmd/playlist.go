package main

import (
	"context"
	"fmt"

	"github.com/dmchugh/medlib/internal/formatter"
	"github.com/dmchugh/medlib/internal/models"
	"github.com/dmchugh/medlib/internal/shared"
	"github.com/dmchugh/medlib/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistList fetches and prints the user's playlists.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	playlists, err := r.browser.RefreshPlaylists(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists\n")
	}

	for _, p := range playlists {
		line := fmt.Sprintf("%s  %s", p.ID, p.Name)
		if p.IsSmart {
			line += " (smart)"
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

// PlaylistGet fetches a playlist with its items.
func (r *Runner) PlaylistGet(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}

	playlist, err := r.browser.FetchPlaylist(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlist, true)
	}

	text, err := formatter.PlaylistToText(playlist)
	if err != nil {
		return err
	}
	return r.writePlain("%s", text)
}

// PlaylistCreate creates a new playlist.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}

	data := models.PlaylistCreate{
		Name:        name,
		Description: cmd.String("description"),
		IsPublic:    cmd.Bool("public"),
	}

	playlist, err := r.browser.CreatePlaylist(ctx, data)
	if err != nil {
		return err
	}

	r.writePlain("✓ Created playlist %s (%s)\n", playlist.Name, playlist.ID)
	return nil
}

// PlaylistUpdate applies a partial playlist update from the provided flags.
func (r *Runner) PlaylistUpdate(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}

	data := models.PlaylistUpdate{}
	if cmd.IsSet("name") {
		v := cmd.String("name")
		data.Name = &v
	}
	if cmd.IsSet("description") {
		v := cmd.String("description")
		data.Description = &v
	}
	if cmd.IsSet("public") {
		v := cmd.Bool("public")
		data.IsPublic = &v
	}

	playlist, err := r.browser.UpdatePlaylist(ctx, id, data)
	if err != nil {
		return err
	}

	r.writePlain("✓ Updated playlist %s\n", playlist.Name)
	return nil
}

// PlaylistDelete removes a playlist.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}

	if err := r.browser.DeletePlaylist(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted playlist %s\n", id)
}

// PlaylistAddItem appends a media reference to a playlist.
func (r *Runner) PlaylistAddItem(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	playlistID := cmd.StringArg("id")
	mediaID := cmd.String("media")
	if playlistID == "" || mediaID == "" {
		return fmt.Errorf("%w: playlist id and --media are required", shared.ErrMissingArgument)
	}

	var position *int
	if cmd.IsSet("position") {
		v := int(cmd.Int("position"))
		position = &v
	}

	if err := r.browser.AddPlaylistItem(ctx, playlistID, mediaID, position); err != nil {
		return err
	}
	return r.writePlain("✓ Added %s to playlist %s\n", mediaID, playlistID)
}

// PlaylistRemoveItem removes a media reference from a playlist.
func (r *Runner) PlaylistRemoveItem(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	playlistID := cmd.StringArg("id")
	mediaID := cmd.String("media")
	if playlistID == "" || mediaID == "" {
		return fmt.Errorf("%w: playlist id and --media are required", shared.ErrMissingArgument)
	}

	if err := r.browser.RemovePlaylistItem(ctx, playlistID, mediaID); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s from playlist %s\n", mediaID, playlistID)
}

// PlaylistExport exports playlists to disk in the requested format.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	r.restoreSession(ctx)

	opts := tasks.ExportOpts{
		Format:    cmd.String("format"),
		OutputDir: cmd.String("output"),
	}

	ids := cmd.Args().Slice()

	progress, wait := r.watchProgress()
	result, err := r.engine.ExportPlaylists(ctx, progress, ids, opts)
	wait()
	if err != nil {
		return err
	}

	r.writePlainln("✓ Exported %d/%d playlists to %s", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	if result.FailedExports > 0 {
		r.writePlain("✗ %d exports failed:\n", result.FailedExports)
		for _, p := range result.Results {
			if !p.Success {
				r.writePlain("  %s: %s\n", p.PlaylistID, p.Error)
			}
		}
	}
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}
	return nil
}

// playlistCommand handles playlist CRUD, membership and export operations
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Manage playlists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.PlaylistList,
			},
			{
				Name:  "get",
				Usage: "Show a playlist with its items",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.PlaylistGet,
			},
			{
				Name:  "create",
				Usage: "Create a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Usage: "Playlist description"},
					&cli.BoolFlag{Name: "public", Usage: "Make playlist public"},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:  "update",
				Usage: "Update a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "New name"},
					&cli.StringFlag{Name: "description", Usage: "New description"},
					&cli.BoolFlag{Name: "public", Usage: "Visibility"},
				},
				Action: r.PlaylistUpdate,
			},
			{
				Name:  "delete",
				Usage: "Delete a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlaylistDelete,
			},
			{
				Name:  "add",
				Usage: "Add a media entry to a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "media", Usage: "Media entry ID", Required: true},
					&cli.IntFlag{Name: "position", Usage: "Insert position (appended when omitted)"},
				},
				Action: r.PlaylistAddItem,
			},
			{
				Name:  "remove",
				Usage: "Remove a media entry from a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "media", Usage: "Media entry ID", Required: true},
				},
				Action: r.PlaylistRemoveItem,
			},
			{
				Name:      "export",
				Usage:     "Export playlists to disk (all when no ids given)",
				ArgsUsage: "[id ...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Export format (json, csv, markdown, txt)", Value: "json"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory"},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}
