package models

import "time"

// Media kind values used in MediaEntry.MediaType.
const (
	MediaTypeVideo = "video"
	MediaTypeAudio = "audio"
	MediaTypeImage = "image"
)

// MediaEntry represents a single media file in the remote library.
//
// Entries are immutable from the client's perspective; the library browser
// only replaces, appends or removes whole entries.
type MediaEntry struct {
	ID               string         `json:"id"`
	Filename         string         `json:"filename"`
	OriginalFilename string         `json:"original_filename,omitempty"`
	FileSize         int64          `json:"file_size"`
	MimeType         string         `json:"mime_type"`
	MediaType        string         `json:"media_type"`
	Duration         *int           `json:"duration,omitempty"`
	Width            *int           `json:"width,omitempty"`
	Height           *int           `json:"height,omitempty"`
	ThumbnailPath    string         `json:"thumbnail_path,omitempty"`
	IsProcessed      bool           `json:"is_processed"`
	IsAvailable      bool           `json:"is_available"`
	ProcessingStatus string         `json:"processing_status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        *time.Time     `json:"updated_at,omitempty"`
	Metadata         *MediaMetadata `json:"metadata,omitempty"`
}

// MediaMetadata holds optional rich metadata for a media entry.
type MediaMetadata struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Genre       string   `json:"genre,omitempty"`
	Year        *int     `json:"year,omitempty"`
	Director    string   `json:"director,omitempty"`
	Cast        []string `json:"cast,omitempty"`
	Language    string   `json:"language,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	IMDBID      string   `json:"imdb_id,omitempty"`
	TMDBID      string   `json:"tmdb_id,omitempty"`
}

// DisplayTitle returns the metadata title when present, else the filename.
func (m MediaEntry) DisplayTitle() string {
	if m.Metadata != nil && m.Metadata.Title != "" {
		return m.Metadata.Title
	}
	return m.Filename
}

// SearchPage is the canonical paginated list response:
// {items, total, page, page_size, total_pages}.
type SearchPage struct {
	Items      []MediaEntry `json:"items"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

// UploadResult is the server's response to a file upload.
type UploadResult struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// ScanResult summarizes a server-side directory scan.
type ScanResult struct {
	ScannedFiles int            `json:"scanned_files"`
	NewFiles     int            `json:"new_files"`
	UpdatedFiles int            `json:"updated_files"`
	Errors       []string       `json:"errors"`
	Categories   map[string]int `json:"categories"`
}

// CategoryInfo is one entry of the category summary.
type CategoryInfo struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TVSeries groups a show's episodes by season. The server assembles these
// from filename patterns; season keys arrive as JSON object keys, so they
// decode as strings.
type TVSeries struct {
	SeriesName string                 `json:"series_name"`
	Seasons    map[string][]TVEpisode `json:"seasons"`
}

// EpisodeCount returns the total number of episodes across all seasons.
func (s TVSeries) EpisodeCount() int {
	n := 0
	for _, episodes := range s.Seasons {
		n += len(episodes)
	}
	return n
}

// TVEpisode is one episode reference inside a series listing.
type TVEpisode struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Season   int    `json:"season,omitempty"`
	Episode  int    `json:"episode"`
	FilePath string `json:"file_path,omitempty"`
	Duration *int   `json:"duration,omitempty"`
	Artwork  string `json:"artwork,omitempty"`
}

// VersionInfo describes the remote server build.
type VersionInfo struct {
	Version   string   `json:"version"`
	BuildDate string   `json:"build_date"`
	Features  []string `json:"features"`
}
