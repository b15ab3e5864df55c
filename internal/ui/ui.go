package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dmchugh/medlib/internal/library"
	"github.com/dmchugh/medlib/internal/models"
	"github.com/dmchugh/medlib/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LibraryView ViewState = iota
	DetailView
	ConfirmView
	PlaylistListView
	PlaylistItemsView
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	browser *library.Browser
	width   int
	height  int

	entryList    list.Model
	playlistList list.Model
	itemList     list.Model

	current          *models.MediaEntry
	selectedPlaylist *models.Playlist
	status           string
	err              error
	help             help.Model
	keys             keyMap
}

type entriesFetchedMsg struct {
	err error
}

type entryFetchedMsg struct {
	entry *models.MediaEntry
	err   error
}

type entryDeletedMsg struct {
	id  string
	err error
}

type playlistsFetchedMsg struct {
	playlists []models.Playlist
	err       error
}

type playlistFetchedMsg struct {
	playlist *models.Playlist
	err      error
}

// NewModel creates a new TUI model on top of the library browser.
func NewModel(ctx context.Context, browser *library.Browser) *Model {
	entryList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	entryList.Title = "Library"

	return &Model{
		ctx:          ctx,
		view:         LibraryView,
		browser:      browser,
		entryList:    entryList,
		playlistList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		itemList:     list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init initializes the TUI by fetching the first library page.
func (m *Model) Init() tea.Cmd {
	return m.fetchFirstPage()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.entryList.SetSize(msg.Width-4, msg.Height-8)
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.itemList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LibraryView:
			return m.handleLibraryKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case PlaylistItemsView:
			return m.handlePlaylistItemsKeys(msg)
		}

	case entriesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.rebuildEntryList()
		return m, nil

	case entryFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = LibraryView
			return m, nil
		}
		m.err = nil
		m.current = msg.entry
		m.view = DetailView
		return m, nil

	case entryDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = DetailView
			return m, nil
		}
		m.err = nil
		m.current = nil
		m.status = fmt.Sprintf("Deleted %s", msg.id)
		m.rebuildEntryList()
		m.view = LibraryView
		return m, nil

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = LibraryView
			return m, nil
		}
		m.err = nil
		items := make([]list.Item, len(msg.playlists))
		for i, playlist := range msg.playlists {
			items[i] = playlistListItem{playlist: playlist}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-8)
		m.playlistList.Title = "Playlists"
		m.view = PlaylistListView
		return m, nil

	case playlistFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistListView
			return m, nil
		}
		m.err = nil
		m.selectedPlaylist = msg.playlist
		items := make([]list.Item, len(msg.playlist.Items))
		for i, item := range msg.playlist.Items {
			items[i] = mediaRefItem{item: item}
		}
		m.itemList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-8)
		m.itemList.Title = fmt.Sprintf("Items in '%s'", msg.playlist.Name)
		m.view = PlaylistItemsView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LibraryView:
		return m.renderLibrary()
	case DetailView:
		return m.renderDetail()
	case ConfirmView:
		return m.renderConfirm()
	case PlaylistListView:
		return m.renderPlaylistList()
	case PlaylistItemsView:
		return m.renderPlaylistItems()
	default:
		return ""
	}
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if selected, ok := m.entryList.SelectedItem().(entryItem); ok {
			return m, m.fetchEntry(selected.entry.ID)
		}
	case "m":
		return m, m.loadMore()
	case "p":
		return m, m.fetchPlaylists()
	}

	var cmd tea.Cmd
	m.entryList, cmd = m.entryList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = LibraryView
		return m, nil
	case "d":
		m.view = ConfirmView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = DetailView
		return m, nil
	case "y":
		if m.current != nil {
			return m, m.deleteEntry(m.current.ID)
		}
		m.view = LibraryView
		return m, nil
	}
	return m, nil
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = LibraryView
		return m, nil
	case "enter":
		if selected, ok := m.playlistList.SelectedItem().(playlistListItem); ok {
			return m, m.fetchPlaylist(selected.playlist.ID)
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handlePlaylistItemsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PlaylistListView
		return m, nil
	}

	var cmd tea.Cmd
	m.itemList, cmd = m.itemList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case LibraryView:
		m.entryList, cmd = m.entryList.Update(msg)
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case PlaylistItemsView:
		m.itemList, cmd = m.itemList.Update(msg)
	}
	return m, cmd
}

// rebuildEntryList recreates the library list from the browser's current
// items, preserving the cursor where possible.
func (m *Model) rebuildEntryList() {
	index := m.entryList.Index()
	entries := m.browser.Items()
	items := make([]list.Item, len(entries))
	for i, entry := range entries {
		items[i] = entryItem{entry: entry}
	}
	m.entryList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-8)
	m.entryList.Title = fmt.Sprintf("Library (page %d/%d)", m.browser.Page(), m.browser.TotalPages())
	if index < len(items) {
		m.entryList.Select(index)
	}
}

func (m *Model) fetchFirstPage() tea.Cmd {
	return func() tea.Msg {
		_, err := m.browser.FetchPage(m.ctx, library.FetchParams{Page: 1})
		return entriesFetchedMsg{err: err}
	}
}

func (m *Model) loadMore() tea.Cmd {
	return func() tea.Msg {
		return entriesFetchedMsg{err: m.browser.LoadMore(m.ctx)}
	}
}

func (m *Model) fetchEntry(id string) tea.Cmd {
	return func() tea.Msg {
		entry, err := m.browser.FetchOne(m.ctx, id)
		return entryFetchedMsg{entry: entry, err: err}
	}
}

func (m *Model) deleteEntry(id string) tea.Cmd {
	return func() tea.Msg {
		return entryDeletedMsg{id: id, err: m.browser.DeleteEntry(m.ctx, id)}
	}
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.browser.RefreshPlaylists(m.ctx)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) fetchPlaylist(id string) tea.Cmd {
	return func() tea.Msg {
		playlist, err := m.browser.FetchPlaylist(m.ctx, id)
		return playlistFetchedMsg{playlist: playlist, err: err}
	}
}

func (m *Model) renderLibrary() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.more, m.keys.playlists, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	header := ""
	if m.err != nil {
		header = styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	} else if m.status != "" {
		header = styles.ok.Render(m.status) + "\n"
	}
	return fmt.Sprintf("%s%s\n\n%s", header, m.entryList.View(), helpView)
}

func (m *Model) renderDetail() string {
	if m.current == nil {
		return styles.err.Render("No entry selected\n\nPress esc to go back")
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(m.current.DisplayTitle()) + "\n\n")
	b.WriteString(fmt.Sprintf("File: %s\n", m.current.Filename))
	b.WriteString(fmt.Sprintf("Type: %s (%s)\n", m.current.MediaType, m.current.MimeType))
	b.WriteString(fmt.Sprintf("Size: %s\n", shared.FormatSize(m.current.FileSize)))
	if m.current.Duration != nil {
		b.WriteString(fmt.Sprintf("Duration: %s\n", shared.FormatDuration(*m.current.Duration)))
	}
	if m.current.Width != nil && m.current.Height != nil {
		b.WriteString(fmt.Sprintf("Resolution: %dx%d\n", *m.current.Width, *m.current.Height))
	}
	b.WriteString(fmt.Sprintf("Added: %s\n", m.current.CreatedAt.Format("2006-01-02")))
	if !m.current.IsAvailable {
		b.WriteString(styles.warn.Render("Unavailable") + "\n")
	}

	helpKeys := []key.Binding{m.keys.del, m.keys.back, m.keys.quit}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderConfirm() string {
	name := ""
	if m.current != nil {
		name = m.current.DisplayTitle()
	}
	title := styles.title.Render(fmt.Sprintf("Delete '%s'?", name))
	warning := styles.warn.Render("This removes the entry from the library.")

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", title, warning, helpView)
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderPlaylistItems() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.itemList.View(), helpView)
}
