package models

import "time"

// Playlist is a named, ordered collection of media references owned by a
// user. Smart playlists compute membership from stored filter criteria
// instead of explicit items.
type Playlist struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	OwnerID      string         `json:"owner_id"`
	IsPublic     bool           `json:"is_public"`
	IsSmart      bool           `json:"is_smart"`
	SmartFilters map[string]any `json:"smart_filters,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    *time.Time     `json:"updated_at,omitempty"`
	Items        []PlaylistItem `json:"items,omitempty"`
}

// PlaylistItem is a (position, media reference) pair. Position is a dense,
// client-visible ordinal used for display order only; the server is
// authoritative for persisted order.
type PlaylistItem struct {
	ID         string      `json:"id,omitempty"`
	PlaylistID string      `json:"playlist_id,omitempty"`
	MediaID    string      `json:"media_id"`
	Position   int         `json:"position"`
	AddedAt    time.Time   `json:"added_at"`
	Media      *MediaEntry `json:"media_file,omitempty"`
}

// PlaylistCreate is the payload for creating a playlist.
type PlaylistCreate struct {
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	IsPublic     bool           `json:"is_public"`
	IsSmart      bool           `json:"is_smart"`
	SmartFilters map[string]any `json:"smart_filters,omitempty"`
}

// PlaylistUpdate is a partial playlist mutation; nil fields are left alone.
type PlaylistUpdate struct {
	Name         *string        `json:"name,omitempty"`
	Description  *string        `json:"description,omitempty"`
	IsPublic     *bool          `json:"is_public,omitempty"`
	IsSmart      *bool          `json:"is_smart,omitempty"`
	SmartFilters map[string]any `json:"smart_filters,omitempty"`
}

// PlaylistItemAdd is the payload for appending a media reference.
type PlaylistItemAdd struct {
	MediaID  string `json:"media_id"`
	Position *int   `json:"position,omitempty"`
}
