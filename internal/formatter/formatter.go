// package formatter provides functions to export playlists and library
// listings to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/dmchugh/medlib/internal/models"
	"github.com/dmchugh/medlib/internal/shared"
)

// itemTitle resolves the display title of a playlist item, falling back to
// the raw media id when the server did not expand the media record.
func itemTitle(item models.PlaylistItem) string {
	if item.Media != nil {
		return item.Media.DisplayTitle()
	}
	return item.MediaID
}

// visibility renders the public flag for human-readable output.
func visibility(public bool) string {
	if public {
		return "public"
	}
	return "private"
}

// PlaylistToCSV converts a playlist's items to CSV with columns:
// Position, Title, MediaID, Type, Duration, Size
func PlaylistToCSV(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "MediaID", "Type", "Duration", "Size"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range playlist.Items {
		mediaType, duration, size := "", "", ""
		if item.Media != nil {
			mediaType = item.Media.MediaType
			if item.Media.Duration != nil {
				duration = shared.FormatDuration(*item.Media.Duration)
			}
			size = shared.FormatSize(item.Media.FileSize)
		}
		record := []string{
			strconv.Itoa(item.Position),
			itemTitle(item),
			item.MediaID,
			mediaType,
			duration,
			size,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// PlaylistToMarkdown converts a playlist to Markdown format
func PlaylistToMarkdown(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", playlist.Name))

	if playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", playlist.Description))
	}

	buf.WriteString(fmt.Sprintf("**Items**: %d\n", len(playlist.Items)))
	buf.WriteString(fmt.Sprintf("**Visibility**: %s\n", visibility(playlist.IsPublic)))
	if playlist.IsSmart {
		buf.WriteString("**Smart playlist**\n")
	}
	buf.WriteString("\n## Items\n\n")

	for i, item := range playlist.Items {
		line := fmt.Sprintf("%d. %s", i+1, itemTitle(item))
		if item.Media != nil && item.Media.Duration != nil {
			line += fmt.Sprintf(" [%s]", shared.FormatDuration(*item.Media.Duration))
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// PlaylistToText converts a playlist to plain text format
func PlaylistToText(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", playlist.Name))
	if playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", playlist.Description))
	}
	buf.WriteString(fmt.Sprintf("Items: %d\n\n", len(playlist.Items)))

	for i, item := range playlist.Items {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, itemTitle(item)))
	}

	return buf.Bytes(), nil
}

// EntriesToCSV converts a library listing to CSV with columns:
// ID, Title, Filename, Type, MimeType, Duration, Size, Created
func EntriesToCSV(entries []models.MediaEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Filename", "Type", "MimeType", "Duration", "Size", "Created"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range entries {
		duration := ""
		if entry.Duration != nil {
			duration = shared.FormatDuration(*entry.Duration)
		}
		record := []string{
			entry.ID,
			entry.DisplayTitle(),
			entry.Filename,
			entry.MediaType,
			entry.MimeType,
			duration,
			shared.FormatSize(entry.FileSize),
			entry.CreatedAt.Format("2006-01-02"),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without items)
func ToMetadataJSON(playlist models.Playlist) ([]byte, error) {
	playlist.Items = nil
	return shared.MarshalJSON(playlist, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ItemsFile    string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV with an accompanying metadata JSON
// file.
//
// Defaults to the playlist ID as the base filename & creates {base}_items.csv
// and {base}_metadata.json
func WriteCSVExport(playlist *models.Playlist, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = playlist.ID
	}

	csvData, err := PlaylistToCSV(playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	itemsFile := baseFilepath + "_items.csv"
	if err := os.WriteFile(itemsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(*playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		ItemsFile:    itemsFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
}

// WriteMarkdownExport exports a playlist to Markdown in a dedicated directory.
//
// Directory name defaults to the playlist ID. Creates {dir}/README.md.
func WriteMarkdownExport(playlist *models.Playlist, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = playlist.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := PlaylistToMarkdown(playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{mdFile},
	}, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {playlist.ID}_items.txt as the filename.
func WriteTextExport(playlist *models.Playlist, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_items.txt", playlist.ID)
	}

	textData, err := PlaylistToText(playlist)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

// WriteManifest writes a JSON manifest summarizing a bulk operation.
func WriteManifest(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to generate manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
