package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmchugh/medlib/internal/formatter"
	"github.com/dmchugh/medlib/internal/shared"
)

// ExportOpts contains configuration for playlist exports.
type ExportOpts struct {
	Format    string // Export format: json, csv, markdown, txt
	OutputDir string // Base output directory (default: medlib_export_{epoch})
}

// PlaylistExportResult records the outcome of exporting one playlist.
type PlaylistExportResult struct {
	PlaylistID   string   `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name"`
	Success      bool     `json:"success"`
	Files        []string `json:"files,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// ExportResult summarizes a playlist export run. ExportID ties the written
// files and manifest back to one run.
type ExportResult struct {
	ExportID          string                 `json:"export_id"`
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"manifest_path,omitempty"`
	Results           []PlaylistExportResult `json:"results"`
}

// ExportPlaylists fetches the named playlists with their items and writes
// each to disk in the requested format, finishing with a JSON manifest that
// summarizes the run. An empty ids slice exports every playlist.
func (e *Engine) ExportPlaylists(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	ids []string,
	opts ExportOpts,
) (*ExportResult, error) {
	if e.media == nil {
		return nil, fmt.Errorf("%w: media gateway not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("medlib_export_%d", time.Now().Unix())
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if len(ids) == 0 {
		playlists, err := e.media.Playlists(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to list playlists: %v", shared.ErrAPIRequest, err)
		}
		for _, playlist := range playlists {
			ids = append(ids, playlist.ID)
		}
	}

	result := &ExportResult{
		ExportID:        shared.GenerateID(),
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(ids)),
	}

	for i, id := range ids {
		e.sendProgress(progress, exportingPlaylistUpdate(i+1, len(ids), id))
		res := e.exportSinglePlaylist(ctx, id, opts)
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(progress, exportCompletedUpdate(i+1, len(ids), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(progress, exportFailedUpdate(i+1, len(ids), res.PlaylistName, fmt.Errorf("%s", res.Error)))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportSinglePlaylist fetches one playlist and writes it in the requested
// format.
func (e *Engine) exportSinglePlaylist(ctx context.Context, id string, opts ExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{
		PlaylistID: id,
		Success:    false,
		Files:      []string{},
	}

	playlist, err := e.media.Playlist(ctx, id)
	if err != nil {
		result.PlaylistName = fmt.Sprintf("Unknown (%s)", id)
		result.Error = fmt.Sprintf("failed to fetch playlist: %v", err)
		return result
	}
	result.PlaylistName = playlist.Name

	switch opts.Format {
	case "csv":
		baseFilepath := filepath.Join(opts.OutputDir, playlist.ID)
		csvRes, err := formatter.WriteCSVExport(playlist, baseFilepath)
		if err != nil {
			result.Error = fmt.Sprintf("CSV export failed: %v", err)
			return result
		}
		result.Files = []string{csvRes.ItemsFile, csvRes.MetadataFile}
		result.Success = true

	case "markdown":
		outputDir := filepath.Join(opts.OutputDir, playlist.ID)
		mdRes, err := formatter.WriteMarkdownExport(playlist, outputDir)
		if err != nil {
			result.Error = fmt.Sprintf("markdown export failed: %v", err)
			return result
		}
		result.Files = mdRes.Files
		result.Success = true

	case "txt":
		txtPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s_items.txt", playlist.ID))
		written, err := formatter.WriteTextExport(playlist, txtPath)
		if err != nil {
			result.Error = fmt.Sprintf("text export failed: %v", err)
			return result
		}
		result.Files = []string{written}
		result.Success = true

	case "json":
		fallthrough
	default:
		jsonPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s.json", playlist.ID))
		data, err := shared.MarshalJSON(playlist, true)
		if err != nil {
			result.Error = fmt.Sprintf("JSON marshal failed: %v", err)
			return result
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			result.Error = fmt.Sprintf("JSON write failed: %v", err)
			return result
		}
		result.Files = []string{jsonPath}
		result.Success = true
	}
	return result
}
