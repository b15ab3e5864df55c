// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing the media library:
//  1. [LibraryView] : Browse the paginated listing, filter by kind, load more pages
//  2. [DetailView] : Inspect a single entry's metadata
//  3. [ConfirmView] : Confirm entry deletion
//  4. [PlaylistListView] : Browse the user's playlists
//  5. [PlaylistItemsView] : Inspect one playlist's items
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View
// pattern. All remote state flows through the library browser; the TUI never
// talks to the gateway directly, so its lists always agree with what a
// subsequent CLI command would see.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
