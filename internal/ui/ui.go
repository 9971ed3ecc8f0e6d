package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/trackdown/internal/models"
	"github.com/desertthunder/trackdown/internal/services"
	"github.com/desertthunder/trackdown/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	CompareView
	ResultListView
	ConfirmView
	ResolveView
	SummaryView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	spotify      services.Service
	engine       *tasks.ReconcileEngine
	opts         tasks.RunOpts
	width        int
	height       int
	playlistList list.Model
	playlists    []models.Playlist
	resultList   list.Model
	compare      *tasks.CompareResult
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.RunResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, spotify services.Service, engine *tasks.ReconcileEngine, opts tasks.RunOpts) *Model {
	return &Model{
		ctx:     ctx,
		view:    PlaylistListView,
		spotify: spotify,
		engine:  engine,
		opts:    opts,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init initializes the TUI by fetching playlists from Spotify.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistList.Width() == 0 {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.resultList.Width() == 0 {
			m.resultList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case ResultListView:
			return m.handleResultListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case SummaryView:
			return m.handleSummaryKeys(msg)
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.playlists = msg.playlists
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Spotify Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case compareCompleteMsg:
		m.progressChan = nil
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistListView
			return m, nil
		}
		m.compare = msg.compare
		items := make([]list.Item, len(msg.compare.Results))
		for i, r := range msg.compare.Results {
			items[i] = resultItem{result: r}
		}
		m.resultList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.resultList.Title = fmt.Sprintf("'%s' vs local library (%d matched, %d missing)",
			msg.compare.Playlist.Playlist.Name, msg.compare.MatchedCount, msg.compare.MissingCount)
		m.resultList.SetSize(m.width-4, m.height-8)
		m.view = ResultListView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case runCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = SummaryView
		m.progressChan = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != SummaryView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case CompareView:
		return m.renderProgress("Comparing Playlist")
	case ResultListView:
		return m.renderResultList()
	case ConfirmView:
		return m.renderConfirm()
	case ResolveView:
		return m.renderProgress("Resolving Missing Tracks")
	case SummaryView:
		return m.renderSummary()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.playlistList.SelectedItem()
		if selected != nil {
			if pl, ok := selected.(playlistItem); ok {
				m.view = CompareView
				return m, m.startCompare(pl.playlist.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleResultListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PlaylistListView
		m.compare = nil
		return m, nil
	case "enter":
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		m.view = ResultListView
		return m, nil
	case "y":
		m.view = ResolveView
		return m, m.startResolve()
	}
	return m, nil
}

func (m *Model) handleSummaryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PlaylistListView
		m.compare = nil
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case ResultListView:
		m.resultList, cmd = m.resultList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.spotify.GetPlaylists(m.ctx)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) startCompare(playlistID string) tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		compare, err := m.engine.Compare(m.ctx, m.progressChan, playlistID, m.opts.Threshold)
		m.compare = compare
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) startResolve() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		result, err := m.engine.Resolve(m.ctx, m.progressChan, m.compare, m.opts)
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return m.completionMsg()
		}

		update, ok := <-m.progressChan
		if !ok {
			return m.completionMsg()
		}
		return progressUpdateMsg(update)
	}
}

// completionMsg picks the terminal message for the phase that just drained
// its progress channel.
func (m *Model) completionMsg() tea.Msg {
	if m.view == ResolveView {
		return runCompleteMsg{result: m.result, err: m.err}
	}
	return compareCompleteMsg{compare: m.compare, err: m.err}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderResultList() string {
	resolveKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "resolve"),
	)
	helpKeys := []key.Binding{resolveKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.resultList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	name := m.compare.Playlist.Playlist.Name
	title := styles.title.Render(fmt.Sprintf("Resolve %d missing tracks from '%s'?", m.compare.MissingCount, name))
	info := fmt.Sprintf("\nEach missing track is looked up on Spotify and the ones found\nare staged into a new private playlist.\n\nMatched: %d\nMissing: %d\n",
		m.compare.MatchedCount, m.compare.MissingCount)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderProgress(heading string) string {
	title := styles.title.Render(heading)

	var phase string
	switch m.progress.Phase {
	case tasks.FetchPlaylist:
		phase = "Fetching playlist..."
	case tasks.ScanLibrary:
		phase = "Scanning local library..."
	case tasks.CompareTracks:
		phase = "Comparing tracks..."
	case tasks.ResolveTracks:
		phase = fmt.Sprintf("Searching tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.CreatePlaylist:
		phase = "Creating playlist..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderSummary() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Resolution failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Reconciliation Complete!")
	info := fmt.Sprintf(
		"\nPlaylist: %s\nMatched: %d\nMissing: %d\nStaged: %d",
		m.result.Compare.Playlist.Playlist.Name,
		m.result.Compare.MatchedCount,
		m.result.Compare.MissingCount,
		m.result.Staged,
	)
	if m.result.Created != nil {
		info += fmt.Sprintf("\nCreated: %s", m.result.Created.Name)
	}

	var unmatched string
	if m.result.Unmatched > 0 {
		unmatched = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("No candidate found for %d tracks:", m.result.Unmatched)))
		for _, a := range m.result.Additions {
			if a.TrackID == "" {
				unmatched += fmt.Sprintf("\n  • %s", a.SourceKey)
			}
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, unmatched, helpView)
}
