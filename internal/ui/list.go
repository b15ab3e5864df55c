package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/dmchugh/medlib/internal/models"
	"github.com/dmchugh/medlib/internal/shared"
)

var (
	_ list.Item = entryItem{}
	_ list.Item = playlistListItem{}
	_ list.Item = mediaRefItem{}
)

// entryItem wraps [models.MediaEntry] to implement [list.Item].
type entryItem struct {
	entry models.MediaEntry
}

func (i entryItem) FilterValue() string { return i.entry.DisplayTitle() }
func (i entryItem) Title() string       { return i.entry.DisplayTitle() }
func (i entryItem) Description() string {
	desc := i.entry.MediaType
	if i.entry.Duration != nil {
		desc = fmt.Sprintf("%s • %s", desc, shared.FormatDuration(*i.entry.Duration))
	}
	desc = fmt.Sprintf("%s • %s", desc, shared.FormatSize(i.entry.FileSize))
	if !i.entry.IsAvailable {
		desc = fmt.Sprintf("%s • unavailable", desc)
	}
	return desc
}

// playlistListItem wraps [models.Playlist] to implement [list.Item].
type playlistListItem struct {
	playlist models.Playlist
}

func (i playlistListItem) FilterValue() string { return i.playlist.Name }
func (i playlistListItem) Title() string       { return i.playlist.Name }
func (i playlistListItem) Description() string {
	desc := fmt.Sprintf("%d items", len(i.playlist.Items))
	if i.playlist.IsSmart {
		desc = fmt.Sprintf("%s • smart", desc)
	}
	if i.playlist.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Description)
	}
	return desc
}

// mediaRefItem wraps [models.PlaylistItem] to implement [list.Item].
type mediaRefItem struct {
	item models.PlaylistItem
}

func (i mediaRefItem) FilterValue() string { return i.Title() }
func (i mediaRefItem) Title() string {
	if i.item.Media != nil {
		return i.item.Media.DisplayTitle()
	}
	return i.item.MediaID
}
func (i mediaRefItem) Description() string {
	desc := fmt.Sprintf("#%d", i.item.Position+1)
	if i.item.Media != nil && i.item.Media.Duration != nil {
		desc = fmt.Sprintf("%s • %s", desc, shared.FormatDuration(*i.item.Media.Duration))
	}
	return desc
}
